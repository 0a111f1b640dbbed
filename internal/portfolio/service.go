// Package portfolio implements the gallery, admin and analytics
// operations of the portfolio site on top of the content, blob and star
// collaborators.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/artpar/portfolio/internal/blob"
	"github.com/artpar/portfolio/internal/content"
	"github.com/artpar/portfolio/internal/estimate"
	"github.com/artpar/portfolio/internal/fuzzy"
	"github.com/artpar/portfolio/internal/star"
	"go.uber.org/zap"
)

// Settings tune search and access behaviour.
type Settings struct {
	ItemThreshold   float64
	TagThreshold    float64
	PopularLimit    int
	PrivatePassword string
}

// DefaultSettings returns the settings the site ships with.
func DefaultSettings() Settings {
	return Settings{
		ItemThreshold: fuzzy.ItemThreshold,
		TagThreshold:  fuzzy.TagThreshold,
		PopularLimit:  12,
	}
}

// ProgressNotifier is told about every progress change.
type ProgressNotifier interface {
	NotifyProgress(p ProgressEstimate)
}

// ProgressEstimate is the current production load and its delivery tier.
type ProgressEstimate struct {
	ThumbnailsInProgress int64             `json:"thumbnails_in_progress"`
	Estimate             estimate.Estimate `json:"estimate"`
	UpdatedAt            time.Time         `json:"updated_at,omitzero"`
}

// Upload is a file received from an admin.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Option configures a Service.
type Option func(*Service)

// WithBlobStore sets where uploads are written.
func WithBlobStore(store blob.Store) Option {
	return func(s *Service) {
		s.blobs = store
	}
}

// WithNotifier sets the progress notifier.
func WithNotifier(n ProgressNotifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithSettings replaces the default settings.
func WithSettings(settings Settings) Option {
	return func(s *Service) {
		s.settings = settings
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service is the application layer of the site.
type Service struct {
	store    content.Store
	blobs    blob.Store
	limiter  *star.Limiter
	notifier ProgressNotifier
	logger   *zap.Logger
	settings Settings
	now      func() time.Time

	// orderMu serializes reorders so each one starts from stored state.
	orderMu sync.Mutex
}

// New creates a service over store.
func New(store content.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		logger:   zap.NewNop(),
		settings: DefaultSettings(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.limiter = star.NewLimiter(starStore{store: store})
	return s
}

// Settings returns the active settings.
func (s *Service) Settings() Settings {
	return s.settings
}

// fail logs a collaborator failure and converts it to an OpError.
// Validation, not-found and star-limit errors pass through unchanged.
func (s *Service) fail(action string, err error, fields ...zap.Field) error {
	if IsValidation(err) || errors.Is(err, star.ErrLimitReached) || errors.Is(err, content.ErrNotFound) {
		return err
	}
	var op *OpError
	if errors.As(err, &op) {
		return err
	}
	s.logger.Error("failed "+action, append(fields, zap.Error(err))...)
	return &OpError{Action: action, Err: err}
}

func (s *Service) upload(ctx context.Context, objectPath string, file Upload) (string, error) {
	if s.blobs == nil {
		return "", errors.New("no media storage configured")
	}
	if len(file.Data) == 0 {
		return "", invalid("file", "file is empty")
	}
	url, err := s.blobs.Put(ctx, objectPath, file.Data, file.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectPath, err)
	}
	return url, nil
}

func required(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", invalid(field, "is required")
	}
	return v, nil
}

func fetchAs[T any](ctx context.Context, store content.Store, kind content.Kind, opts content.QueryOptions, decode func(content.Record) T) ([]T, error) {
	records, err := store.Fetch(ctx, kind, opts)
	if err != nil {
		return nil, err
	}
	return content.Decode(records, decode), nil
}

func byOrder() content.QueryOptions {
	return content.QueryOptions{
		OrderBy: []content.Order{content.Asc(content.ColOrder), content.Asc(content.ColCreatedAt)},
	}
}

// starStore persists star state in the items table.
type starStore struct {
	store content.Store
}

func (s starStore) SetStarred(ctx context.Context, itemID string, starred bool) error {
	_, err := s.store.Update(ctx, content.KindItems, itemID, content.Record{"is_starred": starred})
	return err
}

func (s starStore) StarredCount(ctx context.Context, categoryID string) (int, error) {
	n, err := s.store.Count(ctx, content.KindItems, content.QueryOptions{
		Filters: []content.Filter{
			content.Eq("category_id", categoryID),
			content.Eq("is_starred", true),
		},
	})
	return int(n), err
}
