package review

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

	"github.com/craftmart/storefront/internal/cache"
	"github.com/craftmart/storefront/internal/config"
	"github.com/craftmart/storefront/internal/entity"
	service "github.com/craftmart/storefront/internal/service/review"
)

type memStore struct {
	mu      sync.Mutex
	reviews []entity.Review
	clock   time.Time
}

func (m *memStore) Insert(_ context.Context, review *entity.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	review.ID = primitive.NewObjectID()
	m.clock = m.clock.Add(time.Second)
	review.CreatedAt = m.clock
	m.reviews = append(m.reviews, *review)
	return nil
}

func (m *memStore) List(_ context.Context) ([]entity.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Review, 0, len(m.reviews))
	for i := len(m.reviews) - 1; i >= 0; i-- {
		out = append(out, m.reviews[i])
	}
	return out, nil
}

func newTestServer(t *testing.T) (*echo.Echo, *memStore) {
	t.Helper()

	store := &memStore{clock: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := service.NewService(service.Params{
		Store:  store,
		Cache:  cache.NewMemoryStore(),
		Config: config.Config{},
		Logger: zap.NewNop(),
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

func TestSubmitThenListNewestFirst(t *testing.T) {
	e, _ := newTestServer(t)

	payloads := []string{
		`{"name":"Hamza","rating":5,"comment":"Great quality."}`,
		`{"name":"Ayesha","rating":4,"comment":"Sizing runs small."}`,
	}
	for _, payload := range payloads {
		rec := postJSON(e, "/reviews", payload)
		if rec.Code != http.StatusOK {
			t.Fatalf("submit status = %d: %s", rec.Code, rec.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/reviews", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want %d", rec.Code, http.StatusOK)
	}

	var env struct {
		Success bool `json:"success"`
		Data    []struct {
			Name   string `json:"name"`
			Rating int    `json:"rating"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(env.Data) != 2 {
		t.Fatalf("listed %d reviews, want 2", len(env.Data))
	}
	if env.Data[0].Name != "Ayesha" || env.Data[1].Name != "Hamza" {
		t.Errorf("review names = %q, %q; want newest first", env.Data[0].Name, env.Data[1].Name)
	}
}

func TestSubmitRejectsInvalidReviews(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"missing name", `{"rating":5,"comment":"nice"}`},
		{"rating too low", `{"name":"Bilal","rating":0,"comment":"nice"}`},
		{"rating too high", `{"name":"Bilal","rating":6,"comment":"nice"}`},
		{"missing comment", `{"name":"Bilal","rating":3}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, store := newTestServer(t)

			rec := postJSON(e, "/reviews", tc.payload)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
			if len(store.reviews) != 0 {
				t.Errorf("stored %d reviews, want 0", len(store.reviews))
			}
		})
	}
}
