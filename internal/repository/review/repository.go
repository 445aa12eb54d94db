package review

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/craftmart/storefront/internal/config"
	"github.com/craftmart/storefront/internal/database"
	"github.com/craftmart/storefront/internal/entity"
)

var repoTracer = otel.Tracer("github.com/craftmart/storefront/repository/review")

// Repository stores product reviews. The collection is append-only.
type Repository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewRepository wires a repository backed by the reviews collection.
func NewRepository(m *database.Mongo, cfg config.Config) *Repository {
	return &Repository{
		coll:    m.Collection(database.CollectionReviews),
		timeout: cfg.Mongo.QueryTimeout,
	}
}

// Insert stores a new review, assigning its id and creation timestamp.
func (r *Repository) Insert(ctx context.Context, review *entity.Review) error {
	if review == nil {
		return errors.New("nil review")
	}
	ctx, span := repoTracer.Start(ctx, "ReviewRepository.Insert")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, review); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

// List returns all reviews, most recent first.
func (r *Repository) List(ctx context.Context) ([]entity.Review, error) {
	ctx, span := repoTracer.Start(ctx, "ReviewRepository.List")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "find failed")
		return nil, err
	}

	reviews := make([]entity.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, err
	}
	return reviews, nil
}

// Count reports how many reviews exist. Used by the seeder.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}
