package review

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/craftmart/storefront/internal/cache"
	"github.com/craftmart/storefront/internal/config"
	"github.com/craftmart/storefront/internal/entity"
	"github.com/craftmart/storefront/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/craftmart/storefront/service/review")

const listCacheKey = "reviews:list"

// Store is the persistence gateway the service depends on.
type Store interface {
	Insert(ctx context.Context, review *entity.Review) error
	List(ctx context.Context) ([]entity.Review, error)
}

// Input is one review submission before validation.
type Input struct {
	Name    string
	Rating  int
	Comment string
}

// Service validates, stores, and lists product reviews.
type Service struct {
	store    Store
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store  Store
	Cache  cache.Store
	Config config.Config
	Logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store:    p.Store,
		cache:    p.Cache,
		cacheTTL: p.Config.Cache.DefaultTTL,
		logger:   p.Logger,
	}
}

// Submit validates and persists one review.
func (s *Service) Submit(ctx context.Context, in Input) (*entity.Review, error) {
	ctx, span := serviceTracer.Start(ctx, "ReviewService.Submit")
	defer span.End()

	if strings.TrimSpace(in.Name) == "" {
		return nil, errorbank.BadRequest("name is required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, errorbank.BadRequest("rating must be between 1 and 5")
	}
	if strings.TrimSpace(in.Comment) == "" {
		return nil, errorbank.BadRequest("comment is required")
	}

	review := &entity.Review{
		Name:    strings.TrimSpace(in.Name),
		Rating:  in.Rating,
		Comment: strings.TrimSpace(in.Comment),
	}

	if err := s.store.Insert(ctx, review); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to save review", errorbank.WithCause(err))
	}

	s.invalidateListing(ctx)
	return review, nil
}

// List returns all reviews newest first, consulting the cache when available.
func (s *Service) List(ctx context.Context) ([]entity.Review, error) {
	ctx, span := serviceTracer.Start(ctx, "ReviewService.List")
	defer span.End()

	if reviews, err := s.listFromCache(ctx); err == nil {
		return reviews, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("reviews cache read failed", zap.Error(err))
	}

	reviews, err := s.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load reviews", errorbank.WithCause(err))
	}

	if err := s.storeListing(ctx, reviews); err != nil {
		s.logger.Warn("reviews cache write failed", zap.Error(err))
	}
	return reviews, nil
}

func (s *Service) listFromCache(ctx context.Context) ([]entity.Review, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, listCacheKey)
	if err != nil {
		return nil, err
	}
	var reviews []entity.Review
	if err := json.Unmarshal(bytes, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *Service) storeListing(ctx context.Context, reviews []entity.Review) error {
	if s.cache == nil {
		return nil
	}
	bytes, err := json.Marshal(reviews)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, listCacheKey, bytes, s.cacheTTL)
}

func (s *Service) invalidateListing(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, listCacheKey); err != nil {
		s.logger.Warn("reviews cache invalidation failed", zap.Error(err))
	}
}
