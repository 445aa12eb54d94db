package seeder

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/craftmart/storefront/internal/entity"
	reviewrepo "github.com/craftmart/storefront/internal/repository/review"
)

// Module exposes the seeder to Fx.
var Module = fx.Provide(New)

// Seeder populates demo content for local/dev setups.
type Seeder struct {
	reviews *reviewrepo.Repository
	logger  *zap.Logger
}

// New constructs a Seeder backed by the review repository.
func New(reviews *reviewrepo.Repository, logger *zap.Logger) *Seeder {
	return &Seeder{reviews: reviews, logger: logger}
}

// Reviews seeds a few demo reviews when the collection is empty.
func (s *Seeder) Reviews(ctx context.Context) error {
	count, err := s.reviews.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		if s.logger != nil {
			s.logger.Info("reviews already present; skipping seed", zap.Int64("count", count))
		}
		return nil
	}

	samples := []entity.Review{
		{Name: "Hamza", Rating: 5, Comment: "Great quality, delivered fast."},
		{Name: "Ayesha", Rating: 4, Comment: "Loved the print, sizing runs a bit small."},
		{Name: "Bilal", Rating: 5, Comment: "Second order, still impressed."},
	}

	for i := range samples {
		if err := s.reviews.Insert(ctx, &samples[i]); err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded reviews", zap.Int("count", len(samples)))
	}
	return nil
}
