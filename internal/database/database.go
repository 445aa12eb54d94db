package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/craftmart/storefront/internal/config"
)

// Collection names used by the repositories.
const (
	CollectionOrders          = "orders"
	CollectionContactMessages = "contact_messages"
	CollectionReviews         = "reviews"
)

// Mongo bundles the client and the application database handle.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Module registers the document store connection with Fx.
var Module = fx.Provide(New)

// New establishes the Mongo connection and ties it to the Fx lifecycle.
func New(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*Mongo, error) {
	opts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetConnectTimeout(cfg.Mongo.ConnectTimeout)

	client, err := mongo.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("build mongo client: %w", err)
	}

	m := &Mongo{
		Client: client,
		DB:     client.Database(cfg.Mongo.Database),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
			defer cancel()
			if err := client.Connect(connectCtx); err != nil {
				return fmt.Errorf("connect mongo: %w", err)
			}
			if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
				return fmt.Errorf("ping mongo: %w", err)
			}
			logger.Info("document store connected", zap.String("database", cfg.Mongo.Database))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})

	return m, nil
}

// Collection is a shorthand for looking up a collection on the app database.
func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.DB.Collection(name)
}
