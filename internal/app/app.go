// Package app wires configuration into a running portfolio backend.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/artpar/portfolio/internal/auth"
	authsqlite "github.com/artpar/portfolio/internal/auth/sqlite"
	"github.com/artpar/portfolio/internal/blob"
	blobminio "github.com/artpar/portfolio/internal/blob/minio"
	blobs3 "github.com/artpar/portfolio/internal/blob/s3"
	"github.com/artpar/portfolio/internal/config"
	"github.com/artpar/portfolio/internal/content/sqlite"
	"github.com/artpar/portfolio/internal/logging"
	"github.com/artpar/portfolio/internal/portfolio"
	"github.com/artpar/portfolio/internal/realtime"
	"github.com/artpar/portfolio/internal/server"
	"go.uber.org/zap"
)

// PruneInterval is how often expired sessions are removed while running.
const PruneInterval = time.Hour

// App is the application container.
type App struct {
	config config.Config
	logger *zap.Logger
	blobs  blob.Store

	store     *sqlite.Store
	auth      *auth.Service
	portfolio *portfolio.Service
	hub       *realtime.Hub
	server    *server.Server

	closeOnce sync.Once
	closeErr  error
}

// Option is a function that configures the App.
type Option func(*App)

// WithConfig sets the application configuration.
func WithConfig(cfg config.Config) Option {
	return func(a *App) {
		a.config = cfg
	}
}

// WithLogger replaces the logger built from the log configuration.
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithBlobStore replaces the media store selected by the storage driver.
func WithBlobStore(store blob.Store) Option {
	return func(a *App) {
		a.blobs = store
	}
}

// New validates the configuration and opens every dependency. Close
// releases them.
func New(ctx context.Context, opts ...Option) (*App, error) {
	a := &App{config: config.DefaultConfig()}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.config.Validate(); err != nil {
		return nil, err
	}

	if a.logger == nil {
		logger, _, err := logging.New(a.config.Log.Level, a.config.Log.Format)
		if err != nil {
			return nil, err
		}
		a.logger = logger
	}

	store, err := sqlite.New(a.config.Database.Path)
	if err != nil {
		return nil, err
	}
	a.store = store

	authStore, err := authsqlite.NewWithDB(store.DB())
	if err != nil {
		store.Close()
		return nil, err
	}
	a.auth = auth.NewService(authStore,
		auth.WithSessionTTL(a.config.Auth.SessionTTL),
		auth.WithLogger(a.logger.Named("auth")))
	a.auth.OnAuthChange(func(event auth.Event, session auth.Session) {
		a.logger.Info("auth change", zap.String("event", string(event)), zap.String("email", session.Email))
	})

	if a.blobs == nil {
		a.blobs, err = openBlobStore(ctx, a.config.Storage)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	a.hub = realtime.NewHub(nil, a.logger.Named("realtime"))
	a.portfolio = portfolio.New(store,
		portfolio.WithBlobStore(a.blobs),
		portfolio.WithNotifier(a.hub),
		portfolio.WithLogger(a.logger.Named("portfolio")),
		portfolio.WithSettings(Settings(a.config)))

	srv := a.config.Server
	serverOpts := []server.ConfigOption{
		server.WithListenAddr(srv.Addr),
		server.WithMaxConnections(srv.MaxConnections),
		server.WithTimeouts(srv.ReadTimeout, srv.WriteTimeout, srv.ShutdownTimeout),
		server.WithRateLimit(srv.RateLimit, srv.RateBurst),
		server.WithTrustProxy(srv.TrustProxy),
	}
	if a.config.Storage.Driver == config.DriverLocal {
		serverOpts = append(serverOpts, server.WithMediaDir(a.config.Storage.Local.Dir))
	}
	a.server = server.New(a.portfolio, a.auth, a.hub, a.logger.Named("http"), serverOpts...)

	return a, nil
}

// Settings derives service settings from cfg.
func Settings(cfg config.Config) portfolio.Settings {
	settings := portfolio.DefaultSettings()
	settings.ItemThreshold = cfg.Search.ItemThreshold
	settings.TagThreshold = cfg.Search.TagThreshold
	settings.PopularLimit = cfg.Search.PopularLimit
	settings.PrivatePassword = cfg.PrivateAccess.Password
	return settings
}

func openBlobStore(ctx context.Context, cfg config.StorageConfig) (blob.Store, error) {
	switch cfg.Driver {
	case config.DriverLocal:
		return blob.NewLocalStore(cfg.Local.Dir, cfg.PublicBaseURL), nil

	case config.DriverMemory:
		return blob.NewMemoryStore(cfg.PublicBaseURL), nil

	case config.DriverMinIO:
		client, err := blobminio.Dial(blobminio.Options{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Secure:    cfg.MinIO.Secure,
			Region:    cfg.MinIO.Region,
		})
		if err != nil {
			return nil, err
		}
		store := blobminio.NewStore(client, cfg.Bucket, cfg.Prefix, cfg.PublicBaseURL)
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil

	case config.DriverS3:
		client, err := blobs3.NewClient(ctx, blobs3.Options{
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return blobs3.NewStore(client, cfg.Bucket, cfg.Prefix, cfg.PublicBaseURL), nil
	}
	return nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
}

// Config returns the application configuration.
func (a *App) Config() config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Portfolio returns the content service.
func (a *App) Portfolio() *portfolio.Service {
	return a.portfolio
}

// Auth returns the admin auth service.
func (a *App) Auth() *auth.Service {
	return a.auth
}

// Server returns the HTTP server.
func (a *App) Server() *server.Server {
	return a.server
}

// Run serves until ctx is cancelled, pruning expired sessions in the
// background.
func (a *App) Run(ctx context.Context) error {
	if err := a.server.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(PruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return a.server.Stop()
		case <-ticker.C:
			if n, err := a.auth.PruneExpired(ctx); err != nil {
				a.logger.Warn("failed to prune sessions", zap.Error(err))
			} else if n > 0 {
				a.logger.Debug("pruned sessions", zap.Int64("count", n))
			}
		}
	}
}

// Close stops the server and releases every dependency. It is safe to call
// more than once.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		var errs []error
		if err := a.server.Stop(); err != nil {
			errs = append(errs, err)
		}
		if err := a.hub.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := a.store.Close(); err != nil {
			errs = append(errs, err)
		}
		_ = a.logger.Sync()
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}
