// Worker entry point. Consumes the document lifecycle topics and drives
// submissions through processing, completion indexing and retry handling.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Credmatrix/portfolio-management-sub006/internal/application/ingestion"
	"github.com/Credmatrix/portfolio-management-sub006/internal/config"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/database/postgres"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/messaging/kafka"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/prometheus"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/search/opensearch"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Log.Logging())
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	logger = logger.Named("worker")
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()
	repo := postgres.NewCompanyRepository(pool, logger)

	search, err := opensearch.NewClient(ctx, cfg.OpenSearch, logger)
	if err != nil {
		return fmt.Errorf("connecting to opensearch: %w", err)
	}
	indexer := opensearch.NewIndexer(search, logger)
	if err := indexer.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensuring search index: %w", err)
	}

	producer := kafka.NewProducer(cfg.Kafka, "worker", logger)
	defer producer.Close()

	processor := ingestion.NewProcessor(repo, producer, indexer, cfg.Worker.MaxRetries, logger)

	collector := prometheus.NewCollector()
	metrics := prometheus.NewMetrics(collector)

	consumers := map[string]kafka.Handler{
		kafka.TopicDocumentSubmitted: processor.HandleSubmitted,
		kafka.TopicDocumentCompleted: processor.HandleCompleted,
		kafka.TopicDocumentFailed:    processor.HandleFailed,
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Worker.MetricsPort > 0 {
		metricsSrv := &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Worker.MetricsPort),
			Handler:      metricsMux(collector),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.Info("metrics endpoint listening", logging.String("addr", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}

	for topic, handler := range consumers {
		topic := topic
		handler := handler
		consumer := kafka.NewConsumer(cfg.Kafka, topic, logger)
		instrumented := func(ctx context.Context, env *kafka.EventEnvelope) error {
			err := handler(ctx, env)
			if err != nil && ctx.Err() == nil {
				metrics.RecordDocumentEvent(topic, "error")
				return err
			}
			if err == nil {
				metrics.RecordDocumentEvent(topic, "ok")
			}
			return err
		}
		g.Go(func() error {
			defer consumer.Close()
			logger.Info("consumer started", logging.String("topic", consumer.Topic()))
			return consumer.Run(gctx, instrumented)
		})
	}

	logger.Info("worker running")
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	logger.Info("worker stopped")
	return nil
}

func metricsMux(collector *prometheus.Collector) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	return mux
}
