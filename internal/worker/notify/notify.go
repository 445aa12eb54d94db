package notify

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/craftmart/storefront/internal/config"
	"github.com/craftmart/storefront/internal/messaging"
	"github.com/craftmart/storefront/internal/notifier"
	contactsvc "github.com/craftmart/storefront/internal/service/contact"
	ordersvc "github.com/craftmart/storefront/internal/service/order"
	"github.com/craftmart/storefront/internal/worker"
)

var workerTracer = otel.Tracer("github.com/craftmart/storefront/worker/notify")

// Module registers the notification worker handler.
var Module = fx.Module("worker_notify",
	fx.Provide(
		fx.Annotate(
			NewNotifyHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// envelope peeks at the event discriminator before full decoding.
type envelope struct {
	Type string `json:"type"`
}

// NewNotifyHandler sets up a worker handler that turns bus events into
// admin emails.
func NewNotifyHandler(logger *zap.Logger, cfg config.Config, mailer notifier.Mailer) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.notify.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var env envelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			logger.Error("failed to decode event envelope", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}
		span.SetAttributes(attribute.String("event.type", env.Type))

		switch env.Type {
		case ordersvc.EventOrderPlaced:
			var event ordersvc.OrderPlacedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.Error("failed to decode order placed event", zap.Error(err))

				span.RecordError(err)
				span.SetStatus(codes.Error, "decode error")
				return err
			}
			if err := mailer.OrderCreated(ctx, &event.Order); err != nil {
				logger.Error("order notification mail failed",
					zap.String("order_id", event.Order.ID.Hex()),
					zap.Error(err),
				)

				span.RecordError(err)
				span.SetStatus(codes.Error, "mail error")
				return err
			}
			logger.Info("order notification sent", zap.String("order_id", event.Order.ID.Hex()))
		case contactsvc.EventContactReceived:
			var event contactsvc.ContactReceivedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.Error("failed to decode contact received event", zap.Error(err))

				span.RecordError(err)
				span.SetStatus(codes.Error, "decode error")
				return err
			}
			if err := mailer.ContactReceived(ctx, &event.Message); err != nil {
				logger.Error("contact notification mail failed",
					zap.String("name", event.Message.Name),
					zap.Error(err),
				)

				span.RecordError(err)
				span.SetStatus(codes.Error, "mail error")
				return err
			}
			logger.Info("contact notification sent", zap.String("name", event.Message.Name))
		default:
			logger.Warn("unknown event type; skipping", zap.String("type", env.Type))
		}

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
