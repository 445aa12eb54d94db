package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/craftmart/storefront/internal/config"
	"github.com/craftmart/storefront/internal/entity"
	"github.com/craftmart/storefront/internal/messaging"
	"github.com/craftmart/storefront/internal/notifier"
	"github.com/craftmart/storefront/pkg/errorbank"
)

type memStore struct {
	mu       sync.Mutex
	messages []entity.ContactMessage
}

func (m *memStore) Insert(_ context.Context, msg *entity.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now().UTC()
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func newTestService(messagingEnabled bool) (*Service, *memStore, *messaging.MemoryClient, *notifier.RecorderMailer) {
	store := &memStore{}
	bus := messaging.NewMemoryClient("storefront.events")
	mailer := &notifier.RecorderMailer{}

	cfg := config.Config{}
	cfg.Mail.SendTimeout = time.Second
	cfg.Messaging.Enabled = messagingEnabled

	svc := NewService(Params{
		Store:     store,
		Config:    cfg,
		Logger:    zap.NewNop(),
		Publisher: bus,
		Notifier:  mailer,
	})
	return svc, store, bus, mailer
}

func TestSubmit(t *testing.T) {
	svc, store, _, mailer := newTestService(false)

	msg, err := svc.Submit(context.Background(), Input{
		Name:    "Bilal",
		Phone:   "0321-7654321",
		Email:   "bilal@example.com",
		Message: "Where is my parcel?",
	})
	if err != nil {
		t.Fatalf("Submit() unexpected error = %v", err)
	}

	if store.count() != 1 {
		t.Fatalf("store holds %d messages, want 1", store.count())
	}
	if msg.ID.IsZero() || msg.CreatedAt.IsZero() {
		t.Error("id or timestamp was not assigned")
	}

	svc.notifyWG.Wait()
	if len(mailer.Contacts) != 1 {
		t.Errorf("mailer invoked %d times, want 1", len(mailer.Contacts))
	}
}

func TestSubmitRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"missing name", Input{Phone: "p", Message: "m"}},
		{"missing phone", Input{Name: "n", Message: "m"}},
		{"missing message", Input{Name: "n", Phone: "p"}},
		{"blank message", Input{Name: "n", Phone: "p", Message: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _, _ := newTestService(false)

			_, err := svc.Submit(context.Background(), tt.in)
			if err == nil {
				t.Fatal("Submit() accepted an incomplete submission")
			}
			if errorbank.From(err).StatusCode() != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", errorbank.From(err).StatusCode())
			}
			if store.count() != 0 {
				t.Errorf("store holds %d messages, want 0", store.count())
			}
		})
	}
}

func TestSubmitPublishesEventWhenMessagingEnabled(t *testing.T) {
	svc, _, bus, mailer := newTestService(true)

	msg, err := svc.Submit(context.Background(), Input{Name: "Bilal", Phone: "p", Message: "hello"})
	if err != nil {
		t.Fatalf("Submit() unexpected error = %v", err)
	}

	msgs := bus.Messages()
	if len(msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(msgs))
	}

	var event ContactReceivedEvent
	if err := json.Unmarshal(msgs[0].Value, &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.Type != EventContactReceived {
		t.Errorf("event type = %q, want %q", event.Type, EventContactReceived)
	}
	if event.Message.ID != msg.ID {
		t.Errorf("event message id = %s, want %s", event.Message.ID.Hex(), msg.ID.Hex())
	}

	svc.notifyWG.Wait()
	if len(mailer.Contacts) != 0 {
		t.Errorf("mailer invoked %d times, want 0", len(mailer.Contacts))
	}
}

func TestSubmitSwallowsMailFailure(t *testing.T) {
	svc, store, _, mailer := newTestService(false)
	mailer.Err = context.DeadlineExceeded

	if _, err := svc.Submit(context.Background(), Input{Name: "n", Phone: "p", Message: "m"}); err != nil {
		t.Fatalf("Submit() failed because of the mailer: %v", err)
	}
	svc.notifyWG.Wait()

	if store.count() != 1 {
		t.Error("message was not kept after mail failure")
	}
}
