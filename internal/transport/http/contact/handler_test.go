package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/craftmart/storefront/internal/config"
	"github.com/craftmart/storefront/internal/entity"
	"github.com/craftmart/storefront/internal/messaging"
	"github.com/craftmart/storefront/internal/notifier"
	service "github.com/craftmart/storefront/internal/service/contact"
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

func newTestServer(t *testing.T) (*echo.Echo, *memStore) {
	t.Helper()

	store := &memStore{}
	cfg := config.Config{}
	cfg.Mail.SendTimeout = time.Second

	svc := service.NewService(service.Params{
		Store:     store,
		Config:    cfg,
		Logger:    zap.NewNop(),
		Publisher: messaging.NewMemoryClient("storefront.events"),
		Notifier:  &notifier.RecorderMailer{},
	})

	e := echo.New()
	Register(e, NewHandler(svc))
	return e, store
}

func postJSON(e *echo.Echo, path, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSubmitStoresMessageAndConfirms(t *testing.T) {
	e, store := newTestServer(t)

	rec := postJSON(e, "/contact", `{
		"name": "Sara Khan",
		"phone": "03211234567",
		"email": "sara@example.com",
		"message": "Is the blue mug back in stock?"
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var env struct {
		Success bool           `json:"success"`
		Meta    map[string]any `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !env.Success {
		t.Fatalf("success = false: %s", rec.Body.String())
	}
	confirmation, _ := env.Meta["confirmation"].(string)
	if confirmation != "Message received! Our team will contact you soon." {
		t.Errorf("confirmation = %q", confirmation)
	}

	if len(store.messages) != 1 {
		t.Fatalf("stored %d messages, want 1", len(store.messages))
	}
	if store.messages[0].Name != "Sara Khan" {
		t.Errorf("name = %q, want %q", store.messages[0].Name, "Sara Khan")
	}
}

func TestSubmitAcceptsFormEncoding(t *testing.T) {
	e, store := newTestServer(t)

	form := "name=Ahmed&phone=03009876543&message=Please+call+me+back"
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if len(store.messages) != 1 {
		t.Fatalf("stored %d messages, want 1", len(store.messages))
	}
	if store.messages[0].Message != "Please call me back" {
		t.Errorf("message = %q", store.messages[0].Message)
	}
}

func TestSubmitRejectsIncompletePayloads(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"missing name", `{"phone":"0300","message":"hi"}`},
		{"missing phone", `{"name":"Ahmed","message":"hi"}`},
		{"missing message", `{"name":"Ahmed","phone":"0300"}`},
		{"blank fields", `{"name":"  ","phone":"0300","message":"hi"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, store := newTestServer(t)

			rec := postJSON(e, "/contact", tc.payload)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
			if len(store.messages) != 0 {
				t.Errorf("stored %d messages, want 0", len(store.messages))
			}
		})
	}
}
