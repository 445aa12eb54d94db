package contact

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/craftmart/storefront/internal/config"
	"github.com/craftmart/storefront/internal/entity"
	"github.com/craftmart/storefront/internal/messaging"
	"github.com/craftmart/storefront/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/craftmart/storefront/service/contact")

// EventContactReceived identifies contact events on the bus.
const EventContactReceived = "contact.received"

// Store is the persistence gateway the service depends on.
type Store interface {
	Insert(ctx context.Context, msg *entity.ContactMessage) error
}

// Notifier is the subset of the mailer used when no message bus is configured.
type Notifier interface {
	ContactReceived(ctx context.Context, msg *entity.ContactMessage) error
}

// Input is one contact form submission before validation.
type Input struct {
	Name    string
	Phone   string
	Email   string
	Message string
}

// ContactReceivedEvent is emitted on the bus when a contact message is stored.
type ContactReceivedEvent struct {
	Type    string                `json:"type"`
	Message entity.ContactMessage `json:"message"`
}

// Service validates and stores contact messages and dispatches notifications.
type Service struct {
	store     Store
	logger    *zap.Logger
	publisher messaging.Client
	notifier  Notifier
	enabled   bool
	mailWait  time.Duration

	notifyWG sync.WaitGroup
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store     Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
	Notifier  Notifier
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store:     p.Store,
		logger:    p.Logger,
		publisher: p.Publisher,
		notifier:  p.Notifier,
		enabled:   p.Config.Messaging.Enabled,
		mailWait:  p.Config.Mail.SendTimeout,
	}
}

// Submit validates, persists, and announces one contact message. Missing
// required fields reject the submission before anything is stored.
func (s *Service) Submit(ctx context.Context, in Input) (*entity.ContactMessage, error) {
	ctx, span := serviceTracer.Start(ctx, "ContactService.Submit")
	defer span.End()

	if strings.TrimSpace(in.Name) == "" {
		return nil, errorbank.BadRequest("name is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return nil, errorbank.BadRequest("phone is required")
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, errorbank.BadRequest("message is required")
	}

	msg := &entity.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Email:   strings.TrimSpace(in.Email),
		Message: strings.TrimSpace(in.Message),
	}

	if err := s.store.Insert(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to save contact message", errorbank.WithCause(err))
	}

	s.notifyContactReceived(ctx, msg)
	return msg, nil
}

// notifyContactReceived mirrors the order notification path: bus when enabled,
// detached mailer goroutine otherwise, failures logged either way.
func (s *Service) notifyContactReceived(ctx context.Context, msg *entity.ContactMessage) {
	if s.enabled && s.publisher != nil {
		event := ContactReceivedEvent{Type: EventContactReceived, Message: *msg}
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("marshal contact received event", zap.Error(err))
			return
		}
		key := []byte(fmt.Sprintf("contact-%s", msg.ID.Hex()))
		if err := s.publisher.Publish(ctx, key, payload); err != nil {
			s.logger.Error("publish contact received event", zap.String("message_id", msg.ID.Hex()), zap.Error(err))
		}
		return
	}

	if s.notifier == nil {
		return
	}

	snapshot := *msg
	s.notifyWG.Add(1)
	go func() {
		defer s.notifyWG.Done()
		sendCtx, cancel := context.WithTimeout(context.Background(), s.mailWait)
		defer cancel()
		if err := s.notifier.ContactReceived(sendCtx, &snapshot); err != nil {
			s.logger.Warn("contact notification failed", zap.String("message_id", snapshot.ID.Hex()), zap.Error(err))
		}
	}()
}
