// Package server exposes the portfolio services over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/artpar/portfolio/internal/auth"
	"github.com/artpar/portfolio/internal/portfolio"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
)

// Config holds the HTTP server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080", "127.0.0.1:8080")
	ListenAddr string

	// MaxConnections caps concurrently accepted connections. Zero means
	// no cap.
	MaxConnections int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// RateLimit and RateBurst bound each client on the tracking endpoints.
	RateLimit float64
	RateBurst int

	// MaxUploadSize bounds multipart admin uploads (bytes)
	MaxUploadSize int64

	// MediaDir is served under /media when set.
	MediaDir string

	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxy bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr:      ":8080",
		MaxConnections:  1024,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		RateLimit:       2,
		RateBurst:       10,
		MaxUploadSize:   50 * 1024 * 1024, // 50MB
	}
}

// ConfigOption is a function that modifies the Config.
type ConfigOption func(*Config)

// WithListenAddr sets the listen address.
func WithListenAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.ListenAddr = addr
	}
}

// WithMaxConnections sets the connection cap.
func WithMaxConnections(n int) ConfigOption {
	return func(c *Config) {
		c.MaxConnections = n
	}
}

// WithTimeouts sets the read, write and shutdown timeouts.
func WithTimeouts(read, write, shutdown time.Duration) ConfigOption {
	return func(c *Config) {
		c.ReadTimeout = read
		c.WriteTimeout = write
		c.ShutdownTimeout = shutdown
	}
}

// WithRateLimit sets the per-client rate of the tracking endpoints.
func WithRateLimit(perSecond float64, burst int) ConfigOption {
	return func(c *Config) {
		c.RateLimit = perSecond
		c.RateBurst = burst
	}
}

// WithMediaDir serves dir under /media.
func WithMediaDir(dir string) ConfigOption {
	return func(c *Config) {
		c.MediaDir = dir
	}
}

// WithTrustProxy enables client addresses from proxy headers.
func WithTrustProxy(trust bool) ConfigOption {
	return func(c *Config) {
		c.TrustProxy = trust
	}
}

// NewConfig creates a new Config with the given options applied to defaults.
func NewConfig(opts ...ConfigOption) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Server serves the public and admin APIs.
type Server struct {
	portfolio *portfolio.Service
	auth      *auth.Service
	feed      http.Handler
	logger    *zap.Logger
	config    Config
	limiter   *ipLimiter
	handler   http.Handler

	httpServer *http.Server
	listener   net.Listener
	running    bool
	mu         sync.RWMutex
}

// New creates a server. feed serves the progress websocket and may be nil.
func New(svc *portfolio.Service, authSvc *auth.Service, feed http.Handler, logger *zap.Logger, opts ...ConfigOption) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	config := NewConfig(opts...)
	s := &Server{
		portfolio: svc,
		auth:      authSvc,
		feed:      feed,
		logger:    logger,
		config:    config,
		limiter:   newIPLimiter(config.RateLimit, config.RateBurst),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts serving. The server stops when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server is already running")
	}

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddr, err)
	}
	if s.config.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, s.config.MaxConnections)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
	s.running = true
	httpServer := s.httpServer
	s.mu.Unlock()

	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("server listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		// Force close if graceful shutdown fails
		s.httpServer.Close()
	}

	s.running = false
	return nil
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// ListenAddr returns the actual address the server is listening on.
// Useful when using port 0 to get an available port.
func (s *Server) ListenAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.ListenAddr
}

// Config returns the server configuration.
func (s *Server) Config() Config {
	return s.config
}
