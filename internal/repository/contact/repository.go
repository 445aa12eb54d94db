package contact

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/craftmart/storefront/internal/config"
	"github.com/craftmart/storefront/internal/database"
	"github.com/craftmart/storefront/internal/entity"
)

var repoTracer = otel.Tracer("github.com/craftmart/storefront/repository/contact")

// Repository stores contact messages. The collection is append-only.
type Repository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewRepository wires a repository backed by the contact messages collection.
func NewRepository(m *database.Mongo, cfg config.Config) *Repository {
	return &Repository{
		coll:    m.Collection(database.CollectionContactMessages),
		timeout: cfg.Mongo.QueryTimeout,
	}
}

// Insert stores a new contact message, assigning its id and creation timestamp.
func (r *Repository) Insert(ctx context.Context, msg *entity.ContactMessage) error {
	if msg == nil {
		return errors.New("nil contact message")
	}
	ctx, span := repoTracer.Start(ctx, "ContactRepository.Insert")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}
