package order

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/craftmart/storefront/internal/config"
	"github.com/craftmart/storefront/internal/database"
	"github.com/craftmart/storefront/internal/entity"
)

var repoTracer = otel.Tracer("github.com/craftmart/storefront/repository/order")

// ErrNotFound is returned when no order matches the given id.
var ErrNotFound = errors.New("order not found")

// ErrInvalidID is returned when the id is not a valid document id.
var ErrInvalidID = errors.New("invalid order id")

// Repository encapsulates document store access for orders.
type Repository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewRepository wires a repository backed by the orders collection.
func NewRepository(m *database.Mongo, cfg config.Config) *Repository {
	return &Repository{
		coll:    m.Collection(database.CollectionOrders),
		timeout: cfg.Mongo.QueryTimeout,
	}
}

// Insert stores a new order, assigning its id and creation timestamp.
func (r *Repository) Insert(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Insert", trace.WithAttributes(attribute.Int("order.items", len(order.Items))))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

// List returns all orders, most recent first.
func (r *Repository) List(ctx context.Context) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "find failed")
		return nil, err
	}

	orders := make([]entity.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, err
	}
	return orders, nil
}

// Delete removes one order by its hex id. A missing id is reported as
// ErrNotFound rather than silently succeeding.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Delete", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		span.SetStatus(codes.Error, "invalid id")
		return ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	if res.DeletedCount == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}
