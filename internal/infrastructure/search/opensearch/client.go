// Package opensearch maintains the full-text company index. Completed
// assessments are indexed by the worker and queried by the search endpoint.
package opensearch

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/Credmatrix/portfolio-management-sub006/internal/config"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
)

// Client wraps the cluster connection and the index naming scheme.
type Client struct {
	client      *opensearch.Client
	indexPrefix string
	logger      logging.Logger
}

// NewClient connects to the configured cluster and verifies it responds.
func NewClient(ctx context.Context, cfg config.OpenSearchConfig, logger logging.Logger) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "at least one opensearch address is required")
	}

	transport := &http.Transport{MaxIdleConnsPerHost: 10}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	osClient, err := opensearch.NewClient(opensearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.User,
		Password:      cfg.Password,
		Transport:     transport,
		MaxRetries:    3,
		RetryOnStatus: []int{429, 502, 503, 504},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "creating opensearch client")
	}

	c := &Client{
		client:      osClient,
		indexPrefix: cfg.IndexPrefix,
		logger:      logger,
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "connecting to opensearch")
	}

	logger.Info("opensearch connected", logging.String("index_prefix", cfg.IndexPrefix))
	return c, nil
}

// Ping verifies the cluster responds.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.client.Ping(c.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return errors.New(errors.ErrCodeServiceUnavailable, "opensearch ping returned error status")
	}
	return nil
}

// CompanyIndex returns the prefixed name of the company index.
func (c *Client) CompanyIndex() string {
	if c.indexPrefix == "" {
		return "companies"
	}
	return c.indexPrefix + "-companies"
}

// API returns the underlying opensearch client.
func (c *Client) API() *opensearch.Client {
	return c.client
}
