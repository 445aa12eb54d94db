package order

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/craftmart/storefront/internal/cache"
	"github.com/craftmart/storefront/internal/config"
	"github.com/craftmart/storefront/internal/entity"
	"github.com/craftmart/storefront/internal/messaging"
	"github.com/craftmart/storefront/internal/notifier"
	repo "github.com/craftmart/storefront/internal/repository/order"
	"github.com/craftmart/storefront/internal/uploads"
	"github.com/craftmart/storefront/pkg/errorbank"
)

// memStore is an in-memory Store double mirroring the repository contract.
type memStore struct {
	mu     sync.Mutex
	orders []entity.Order
	clock  time.Time
	fail   bool
}

func newMemStore() *memStore {
	return &memStore{clock: time.Now().UTC()}
}

func (m *memStore) Insert(_ context.Context, order *entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return context.DeadlineExceeded
	}
	m.clock = m.clock.Add(time.Millisecond)
	order.ID = primitive.NewObjectID()
	order.CreatedAt = m.clock
	m.orders = append(m.orders, *order)
	return nil
}

func (m *memStore) List(_ context.Context) ([]entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, context.DeadlineExceeded
	}
	out := append([]entity.Order(nil), m.orders...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return repo.ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, order := range m.orders {
		if order.ID.Hex() == id {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type serviceDeps struct {
	store  *memStore
	files  *uploads.MemoryStore
	cache  *cache.MemoryStore
	bus    *messaging.MemoryClient
	mailer *notifier.RecorderMailer
}

func newTestService(t *testing.T, messagingEnabled bool) (*Service, serviceDeps) {
	t.Helper()

	deps := serviceDeps{
		store:  newMemStore(),
		files:  uploads.NewMemoryStore(),
		cache:  cache.NewMemoryStore(),
		bus:    messaging.NewMemoryClient("storefront.events"),
		mailer: &notifier.RecorderMailer{},
	}

	cfg := config.Config{}
	cfg.Cache.DefaultTTL = time.Minute
	cfg.Mail.SendTimeout = time.Second
	cfg.Messaging.Enabled = messagingEnabled

	svc := NewService(Params{
		Store:     deps.store,
		Files:     deps.files,
		Cache:     deps.cache,
		Config:    cfg,
		Logger:    zap.NewNop(),
		Publisher: deps.bus,
		Notifier:  deps.mailer,
	})
	return svc, deps
}

func validInput() CheckoutInput {
	return CheckoutInput{
		Name:          "Ayesha Khan",
		Contact:       "0300-1234567",
		Address:       "12 Mall Road",
		City:          "Lahore",
		PaymentMethod: "easypaisa",
		RawCart:       `[{"product":"Widget","size":"M","quantity":2,"price":500},{"product":"Gadget","quantity":1,"price":1200}]`,
	}
}

func TestCheckoutPersistsOneOrderPerSubmission(t *testing.T) {
	svc, deps := newTestService(t, false)

	order, err := svc.Checkout(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Checkout() unexpected error = %v", err)
	}

	if deps.store.count() != 1 {
		t.Fatalf("store holds %d orders, want 1", deps.store.count())
	}
	if len(order.Items) != 2 {
		t.Fatalf("order has %d items, want 2", len(order.Items))
	}
	if order.Items[0].Quantity != 2 || order.Items[0].Price != 500 {
		t.Errorf("first item = %+v, want quantity 2 price 500", order.Items[0])
	}
	if order.Items[1].Quantity != 1 || order.Items[1].Price != 1200 {
		t.Errorf("second item = %+v, want quantity 1 price 1200", order.Items[1])
	}
	if order.ID.IsZero() {
		t.Error("order id was not assigned")
	}
	if order.CreatedAt.IsZero() {
		t.Error("order timestamp was not assigned")
	}
	if order.Total() != 2200 {
		t.Errorf("order total = %v, want 2200", order.Total())
	}
}

func TestCheckoutStoresScreenshotBeforePersisting(t *testing.T) {
	svc, deps := newTestService(t, false)

	in := validInput()
	in.Screenshot = &Upload{Name: "receipt.png", Content: strings.NewReader("png-bytes")}

	order, err := svc.Checkout(context.Background(), in)
	if err != nil {
		t.Fatalf("Checkout() unexpected error = %v", err)
	}

	if order.Screenshot == "" {
		t.Fatal("order carries no screenshot reference")
	}
	if _, ok := deps.files.Get(order.Screenshot); !ok {
		t.Errorf("screenshot %q not present in file store", order.Screenshot)
	}
}

func TestCheckoutRejectsBadCarts(t *testing.T) {
	tests := []struct {
		name        string
		rawCart     string
		wantMessage string
	}{
		{"malformed", `not-json{`, "invalid cart format"},
		{"object", `{"product":"x"}`, "invalid cart format"},
		{"empty", `[]`, "cart is empty"},
		{"zero quantity", `[{"product":"Widget","quantity":0,"price":10}]`, "quantity must be positive"},
		{"negative price", `[{"product":"Widget","quantity":1,"price":-1}]`, "price must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, deps := newTestService(t, false)

			in := validInput()
			in.RawCart = tt.rawCart

			_, err := svc.Checkout(context.Background(), in)
			if err == nil {
				t.Fatal("Checkout() accepted an invalid cart")
			}

			appErr := errorbank.From(err)
			if appErr.StatusCode() != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", appErr.StatusCode())
			}
			if !strings.Contains(appErr.Message(), tt.wantMessage) {
				t.Errorf("message = %q, want it to contain %q", appErr.Message(), tt.wantMessage)
			}
			if deps.store.count() != 0 {
				t.Errorf("store holds %d orders after rejected cart, want 0", deps.store.count())
			}
		})
	}
}

func TestCheckoutRejectsMissingCustomerFields(t *testing.T) {
	mutations := map[string]func(*CheckoutInput){
		"name":           func(in *CheckoutInput) { in.Name = " " },
		"contact":        func(in *CheckoutInput) { in.Contact = "" },
		"address":        func(in *CheckoutInput) { in.Address = "" },
		"payment method": func(in *CheckoutInput) { in.PaymentMethod = "crypto" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			svc, deps := newTestService(t, false)

			in := validInput()
			mutate(&in)

			_, err := svc.Checkout(context.Background(), in)
			if err == nil {
				t.Fatal("Checkout() accepted an invalid submission")
			}
			if errorbank.From(err).StatusCode() != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", errorbank.From(err).StatusCode())
			}
			if deps.store.count() != 0 {
				t.Errorf("store holds %d orders, want 0", deps.store.count())
			}
		})
	}
}

func TestCheckoutPublishesEventWhenMessagingEnabled(t *testing.T) {
	svc, deps := newTestService(t, true)

	order, err := svc.Checkout(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Checkout() unexpected error = %v", err)
	}

	msgs := deps.bus.Messages()
	if len(msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(msgs))
	}

	var event OrderPlacedEvent
	if err := json.Unmarshal(msgs[0].Value, &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.Type != EventOrderPlaced {
		t.Errorf("event type = %q, want %q", event.Type, EventOrderPlaced)
	}
	if event.Order.ID != order.ID {
		t.Errorf("event order id = %s, want %s", event.Order.ID.Hex(), order.ID.Hex())
	}

	// Direct mail must not fire when the bus carries the event.
	svc.notifyWG.Wait()
	if len(deps.mailer.Orders) != 0 {
		t.Errorf("mailer invoked %d times, want 0", len(deps.mailer.Orders))
	}
}

func TestCheckoutMailsDirectlyWithoutMessaging(t *testing.T) {
	svc, deps := newTestService(t, false)

	if _, err := svc.Checkout(context.Background(), validInput()); err != nil {
		t.Fatalf("Checkout() unexpected error = %v", err)
	}

	svc.notifyWG.Wait()
	if len(deps.mailer.Orders) != 1 {
		t.Fatalf("mailer invoked %d times, want 1", len(deps.mailer.Orders))
	}
	if len(deps.bus.Messages()) != 0 {
		t.Errorf("bus received %d messages, want 0", len(deps.bus.Messages()))
	}
}

func TestCheckoutSwallowsMailFailure(t *testing.T) {
	svc, deps := newTestService(t, false)
	deps.mailer.Err = context.DeadlineExceeded

	order, err := svc.Checkout(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Checkout() failed because of the mailer: %v", err)
	}
	svc.notifyWG.Wait()

	if deps.store.count() != 1 {
		t.Errorf("order was not kept after mail failure")
	}
	if order.ID.IsZero() {
		t.Errorf("order id missing after mail failure")
	}
}

func TestListNewestFirst(t *testing.T) {
	svc, _ := newTestService(t, false)

	first := validInput()
	second := validInput()
	second.Name = "Bilal"

	if _, err := svc.Checkout(context.Background(), first); err != nil {
		t.Fatalf("Checkout() unexpected error = %v", err)
	}
	if _, err := svc.Checkout(context.Background(), second); err != nil {
		t.Fatalf("Checkout() unexpected error = %v", err)
	}

	orders, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() unexpected error = %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("List() returned %d orders, want 2", len(orders))
	}
	if orders[0].Name != "Bilal" {
		t.Errorf("newest order first: got %q, want %q", orders[0].Name, "Bilal")
	}
	if !orders[0].CreatedAt.After(orders[1].CreatedAt) {
		t.Error("orders are not sorted by creation time descending")
	}
}

func TestListUsesCache(t *testing.T) {
	svc, deps := newTestService(t, false)

	if _, err := svc.Checkout(context.Background(), validInput()); err != nil {
		t.Fatalf("Checkout() unexpected error = %v", err)
	}
	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("List() unexpected error = %v", err)
	}

	// The second read must come from the cache even if the store breaks.
	deps.store.fail = true
	orders, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() after caching unexpected error = %v", err)
	}
	if len(orders) != 1 {
		t.Errorf("cached List() returned %d orders, want 1", len(orders))
	}
}

func TestDelete(t *testing.T) {
	svc, deps := newTestService(t, false)

	order, err := svc.Checkout(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Checkout() unexpected error = %v", err)
	}

	if err := svc.Delete(context.Background(), order.ID.Hex()); err != nil {
		t.Fatalf("Delete() unexpected error = %v", err)
	}
	if deps.store.count() != 0 {
		t.Errorf("store holds %d orders after delete, want 0", deps.store.count())
	}

	err = svc.Delete(context.Background(), order.ID.Hex())
	if errorbank.From(err).StatusCode() != http.StatusNotFound {
		t.Errorf("deleting a missing order: status = %d, want 404", errorbank.From(err).StatusCode())
	}

	err = svc.Delete(context.Background(), "not-a-hex-id")
	if errorbank.From(err).StatusCode() != http.StatusBadRequest {
		t.Errorf("deleting with a malformed id: status = %d, want 400", errorbank.From(err).StatusCode())
	}
}

func TestDeleteRemovesOnlyTargetOrder(t *testing.T) {
	svc, deps := newTestService(t, false)

	a, _ := svc.Checkout(context.Background(), validInput())
	b, _ := svc.Checkout(context.Background(), validInput())

	if err := svc.Delete(context.Background(), a.ID.Hex()); err != nil {
		t.Fatalf("Delete() unexpected error = %v", err)
	}

	orders, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() unexpected error = %v", err)
	}
	if deps.store.count() != 1 || len(orders) != 1 {
		t.Fatalf("store holds %d orders, want 1", deps.store.count())
	}
	if orders[0].ID != b.ID {
		t.Errorf("surviving order = %s, want %s", orders[0].ID.Hex(), b.ID.Hex())
	}
}
