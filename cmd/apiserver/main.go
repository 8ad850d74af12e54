// API server entry point. Wires the portfolio, ingestion and reporting
// services to their infrastructure and serves the dashboard API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Credmatrix/portfolio-management-sub006/internal/application/ingestion"
	"github.com/Credmatrix/portfolio-management-sub006/internal/application/portfolio"
	"github.com/Credmatrix/portfolio-management-sub006/internal/application/reporting"
	"github.com/Credmatrix/portfolio-management-sub006/internal/config"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/database/postgres"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/database/redis"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/messaging/kafka"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/prometheus"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/search/opensearch"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/storage/minio"
	grpcserver "github.com/Credmatrix/portfolio-management-sub006/internal/interfaces/grpc"
	httpserver "github.com/Credmatrix/portfolio-management-sub006/internal/interfaces/http"
	"github.com/Credmatrix/portfolio-management-sub006/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	httpPort := flag.Int("http-port", 0, "HTTP listen port (overrides config)")
	skipMigrations := flag.Bool("skip-migrations", false, "do not run database migrations on startup")
	flag.Parse()

	if err := run(*configPath, *httpPort, *skipMigrations); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, httpPort int, skipMigrations bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if httpPort > 0 {
		cfg.Server.Port = httpPort
	}

	logger, err := logging.NewLogger(cfg.Log.Logging())
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	if !skipMigrations {
		if err := postgres.RunMigrations(cfg.Database.DSN(), "file://migrations"); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	}
	pool, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()
	repo := postgres.NewCompanyRepository(pool, logger)

	// Cache
	rdb, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer rdb.Close()
	cache := redis.NewCache(rdb, logger, redis.WithPrefix("credmatrix:"))

	// Object storage
	store, err := minio.NewClient(ctx, cfg.MinIO, logger)
	if err != nil {
		return fmt.Errorf("connecting to object storage: %w", err)
	}
	blobs := minio.NewStore(store, logger)

	// Search
	search, err := opensearch.NewClient(ctx, cfg.OpenSearch, logger)
	if err != nil {
		return fmt.Errorf("connecting to opensearch: %w", err)
	}
	searcher := opensearch.NewSearcher(search, logger)

	// Messaging
	producer := kafka.NewProducer(cfg.Kafka, "apiserver", logger)
	defer producer.Close()

	// Metrics
	collector := prometheus.NewCollector()
	metrics := prometheus.NewMetrics(collector)

	// Application services
	portfolioSvc := portfolio.NewService(repo, cache, cfg.Analytics.CacheTTL, logger, portfolio.WithMetrics(metrics))
	ingestionSvc := ingestion.NewService(repo, blobs, store.DocumentsBucket(), producer, cfg.Worker.MaxRetries, logger)
	reportingSvc := reporting.NewService(portfolioSvc, blobs, store.ReportsBucket(), cfg.MinIO.PresignExpiry, logger, reporting.WithMetrics(metrics))

	router := httpserver.NewRouter(httpserver.RouterConfig{
		PortfolioHandler: handlers.NewPortfolioHandler(portfolioSvc),
		DocumentHandler:  handlers.NewDocumentHandler(ingestionSvc),
		ReportHandler:    handlers.NewReportHandler(reportingSvc),
		SearchHandler:    handlers.NewSearchHandler(searcher),
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"postgres":   pool,
			"redis":      cache,
			"minio":      store,
			"opensearch": search,
		}, metrics),
		Logger:         logger,
		Metrics:        metrics,
		MetricsHandler: collector.Handler(),
		Mode:           cfg.Server.Mode,
	})
	srv := httpserver.NewServer(cfg.Server, router, logger)

	// gRPC health endpoint for cluster probes.
	grpcErr := make(chan error, 1)
	if cfg.Server.GRPCHealthPort > 0 {
		healthSrv, err := grpcserver.NewHealthServer(cfg.Server.GRPCHealthPort, grpcserver.WithLogger(logger))
		if err != nil {
			return err
		}
		go func() { grpcErr <- healthSrv.Start() }()
		defer healthSrv.Stop(context.Background())
	}

	httpErr := make(chan error, 1)
	go func() { httpErr <- srv.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-httpErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case err := <-grpcErr:
		if err != nil {
			return fmt.Errorf("grpc health server: %w", err)
		}
	}

	if err := srv.Stop(context.Background()); err != nil {
		return fmt.Errorf("stopping http server: %w", err)
	}
	logger.Info("apiserver stopped")
	return nil
}
