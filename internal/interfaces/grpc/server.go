// Package grpc serves the gRPC health-checking protocol for cluster
// probes. Kubernetes and most load balancers speak grpc_health_v1
// natively, so the apiserver exposes it on a dedicated port next to the
// HTTP API.
package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
)

const defaultGracefulTimeout = 10 * time.Second

var defaultKeepaliveParams = keepalive.ServerParameters{
	MaxConnectionIdle: 15 * time.Minute,
	MaxConnectionAge:  30 * time.Minute,
	Time:              5 * time.Minute,
	Timeout:           time.Second,
}

// HealthServer exposes the grpc_health_v1 service. The overall status and
// per-component statuses are settable at runtime so readiness flips do
// not need a restart.
type HealthServer struct {
	srv      *grpc.Server
	health   *health.Server
	listener net.Listener
	logger   logging.Logger

	mu      sync.Mutex
	stopped bool
}

// Option customizes a HealthServer.
type Option func(*options)

type options struct {
	logger    logging.Logger
	keepalive keepalive.ServerParameters
}

// WithLogger sets the server's logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithKeepaliveParams overrides the keepalive settings.
func WithKeepaliveParams(params keepalive.ServerParameters) Option {
	return func(o *options) {
		o.keepalive = params
	}
}

// NewHealthServer opens a TCP listener on the port and registers the
// health service, initially SERVING.
func NewHealthServer(port int, opts ...Option) (*HealthServer, error) {
	o := &options{
		logger:    logging.NewNopLogger(),
		keepalive: defaultKeepaliveParams,
	}
	for _, opt := range opts {
		opt(o)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("listening on grpc health port: %w", err)
	}

	srv := grpc.NewServer(grpc.KeepaliveParams(o.keepalive))
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, healthSrv)

	return &HealthServer{
		srv:      srv,
		health:   healthSrv,
		listener: lis,
		logger:   o.logger.Named("grpc_health"),
	}, nil
}

// Start serves until Stop is called. It blocks.
func (s *HealthServer) Start() error {
	s.logger.Info("grpc health server listening",
		logging.String("addr", s.listener.Addr().String()))
	if err := s.srv.Serve(s.listener); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc health server: %w", err)
	}
	return nil
}

// SetServing marks a component (or the whole server when name is empty)
// as serving.
func (s *HealthServer) SetServing(name string) {
	s.health.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
}

// SetNotServing marks a component (or the whole server when name is
// empty) as not serving. Probes start failing on the next check.
func (s *HealthServer) SetNotServing(name string) {
	s.health.SetServingStatus(name, healthpb.HealthCheckResponse_NOT_SERVING)
}

// Addr returns the actual listen address, useful when port 0 was given.
func (s *HealthServer) Addr() string {
	return s.listener.Addr().String()
}

// Stop drains in-flight RPCs and shuts the server down. It falls back to
// a hard stop when draining outlives the context or the graceful timeout.
func (s *HealthServer) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()

	timeout := defaultGracefulTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	select {
	case <-done:
	case <-time.After(timeout):
		s.logger.Warn("graceful stop timed out, forcing shutdown")
		s.srv.Stop()
	case <-ctx.Done():
		s.srv.Stop()
	}
}
