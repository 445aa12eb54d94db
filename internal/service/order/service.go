package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/craftmart/storefront/internal/cache"
	"github.com/craftmart/storefront/internal/cart"
	"github.com/craftmart/storefront/internal/config"
	"github.com/craftmart/storefront/internal/entity"
	"github.com/craftmart/storefront/internal/messaging"
	repo "github.com/craftmart/storefront/internal/repository/order"
	"github.com/craftmart/storefront/internal/uploads"
	"github.com/craftmart/storefront/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/craftmart/storefront/service/order")

const listCacheKey = "orders:list"

// EventOrderPlaced identifies order events on the bus.
const EventOrderPlaced = "order.placed"

// Store is the persistence gateway the service depends on.
type Store interface {
	Insert(ctx context.Context, order *entity.Order) error
	List(ctx context.Context) ([]entity.Order, error)
	Delete(ctx context.Context, id string) error
}

// Upload carries an optional screenshot file part of a checkout submission.
type Upload struct {
	Name    string
	Content io.Reader
}

// CheckoutInput is one checkout submission before validation.
type CheckoutInput struct {
	Name             string
	Contact          string
	Address          string
	City             string
	PaymentMethod    string
	PaymentReference string
	RawCart          string
	Screenshot       *Upload
}

// OrderPlacedEvent is emitted on the bus when a new order is persisted.
type OrderPlacedEvent struct {
	Type  string       `json:"type"`
	Order entity.Order `json:"order"`
}

// Service owns the order submission pipeline and the read/delete paths.
type Service struct {
	store     Store
	files     uploads.Store
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
	notifier  Notifier
	mailWait  time.Duration

	notifyWG sync.WaitGroup
}

type messagingConfig struct {
	enabled bool
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store     Store
	Files     uploads.Store
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
	Notifier  Notifier
}

// Notifier is the subset of the mailer the order service uses directly when
// no message bus is configured.
type Notifier interface {
	OrderCreated(ctx context.Context, order *entity.Order) error
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store:     p.Store,
		files:     p.Files,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{enabled: p.Config.Messaging.Enabled},
		mailWait:  p.Config.Mail.SendTimeout,
		notifier:  p.Notifier,
	}
}

// Checkout runs the full submission pipeline: file intake, cart parsing and
// validation, materialization, persistence, then best-effort notification.
// Validation failures stop the pipeline before anything is persisted.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Checkout")
	defer span.End()

	if err := validateCustomer(in); err != nil {
		return nil, err
	}

	screenshot, err := s.intakeScreenshot(ctx, in.Screenshot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return nil, errorbank.Internal("failed to store payment screenshot", errorbank.WithCause(err))
	}

	items, err := cart.Parse(in.RawCart)
	if err != nil {
		return nil, errorbank.BadRequest(err.Error())
	}
	span.SetAttributes(attribute.Int("order.items", len(items)))

	order := materialize(in, items, screenshot)

	if err := s.store.Insert(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to save order", errorbank.WithCause(err))
	}

	s.invalidateListing(ctx)
	s.notifyOrderPlaced(ctx, order)
	return order, nil
}

// List returns all orders newest first, consulting the cache when available.
func (s *Service) List(ctx context.Context) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	if orders, err := s.listFromCache(ctx); err == nil {
		return orders, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.Error(err))
	}

	orders, err := s.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load orders", errorbank.WithCause(err))
	}

	if err := s.storeListing(ctx, orders); err != nil {
		s.logger.Warn("orders cache write failed", zap.Error(err))
	}
	return orders, nil
}

// Delete removes one order by id. A missing id is reported as not found.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	if err := s.store.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repo.ErrInvalidID):
			return errorbank.BadRequest("invalid order id")
		case errors.Is(err, repo.ErrNotFound):
			return errorbank.NotFound("order not found")
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return errorbank.Internal("failed to delete order", errorbank.WithCause(err))
		}
	}

	s.invalidateListing(ctx)
	return nil
}

func validateCustomer(in CheckoutInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return errorbank.BadRequest("name is required")
	}
	if strings.TrimSpace(in.Contact) == "" {
		return errorbank.BadRequest("contact is required")
	}
	if strings.TrimSpace(in.Address) == "" {
		return errorbank.BadRequest("address is required")
	}
	switch entity.PaymentMethod(strings.ToLower(strings.TrimSpace(in.PaymentMethod))) {
	case entity.PaymentCash, entity.PaymentEasypaisa, entity.PaymentBank:
		return nil
	default:
		return errorbank.BadRequest("unsupported payment method")
	}
}

// intakeScreenshot stores the uploaded file, if any, before the rest of the
// submission is processed. The stored name is what the order record carries.
func (s *Service) intakeScreenshot(ctx context.Context, upload *Upload) (string, error) {
	if upload == nil {
		return "", nil
	}
	return s.files.Save(ctx, upload.Name, upload.Content)
}

// materialize projects customer fields and a validated cart onto one order
// record holding the whole cart. Pure; the repository assigns id and timestamp.
func materialize(in CheckoutInput, items []entity.LineItem, screenshot string) *entity.Order {
	return &entity.Order{
		Name:             strings.TrimSpace(in.Name),
		Contact:          strings.TrimSpace(in.Contact),
		Address:          strings.TrimSpace(in.Address),
		City:             strings.TrimSpace(in.City),
		PaymentMethod:    entity.PaymentMethod(strings.ToLower(strings.TrimSpace(in.PaymentMethod))),
		PaymentReference: strings.TrimSpace(in.PaymentReference),
		Screenshot:       screenshot,
		Items:            items,
	}
}

// notifyOrderPlaced hands the order to the notification path. With a message
// bus the event is published and the worker sends the mail; without one the
// mailer runs on a detached goroutine. Either way a failure is logged and the
// already-persisted order is unaffected.
func (s *Service) notifyOrderPlaced(ctx context.Context, order *entity.Order) {
	if s.messaging.enabled && s.publisher != nil {
		event := OrderPlacedEvent{Type: EventOrderPlaced, Order: *order}
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("marshal order placed event", zap.Error(err))
			return
		}
		key := []byte(fmt.Sprintf("order-%s", order.ID.Hex()))
		if err := s.publisher.Publish(ctx, key, payload); err != nil {
			s.logger.Error("publish order placed event", zap.String("order_id", order.ID.Hex()), zap.Error(err))
		}
		return
	}

	if s.notifier == nil {
		return
	}

	snapshot := *order
	s.notifyWG.Add(1)
	go func() {
		defer s.notifyWG.Done()
		sendCtx, cancel := context.WithTimeout(context.Background(), s.mailWait)
		defer cancel()
		if err := s.notifier.OrderCreated(sendCtx, &snapshot); err != nil {
			s.logger.Warn("order notification failed", zap.String("order_id", snapshot.ID.Hex()), zap.Error(err))
		}
	}()
}

func (s *Service) listFromCache(ctx context.Context) ([]entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, listCacheKey)
	if err != nil {
		return nil, err
	}
	var orders []entity.Order
	if err := json.Unmarshal(bytes, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Service) storeListing(ctx context.Context, orders []entity.Order) error {
	if s.cache == nil {
		return nil
	}
	bytes, err := json.Marshal(orders)
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
		s.logger.Warn("orders cache invalidation failed", zap.Error(err))
	}
}
