// Package notifier emails a fixed admin address about new orders and contact
// messages. Delivery is best-effort: callers log failures and never let them
// affect an already-persisted record or an already-sent response.
package notifier

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/craftmart/storefront/internal/config"
	"github.com/craftmart/storefront/internal/entity"
)

// Mailer delivers admin notifications.
type Mailer interface {
	OrderCreated(ctx context.Context, order *entity.Order) error
	ContactReceived(ctx context.Context, msg *entity.ContactMessage) error
}

// Module provides the configured Mailer to Fx.
var Module = fx.Provide(NewMailer)

// NewMailer returns an SMTP mailer, or a noop one when mail is disabled.
func NewMailer(cfg config.Config, logger *zap.Logger) Mailer {
	if !cfg.Mail.Enabled {
		logger.Info("mail disabled; using noop mailer")
		return NoopMailer{}
	}
	return NewSMTPMailer(cfg)
}

// SMTPMailer sends notifications through an SMTP relay via gomail.
type SMTPMailer struct {
	dialer    *gomail.Dialer
	from      string
	adminTo   string
	uploadURL string
}

// NewSMTPMailer builds a mailer from the mail and upload configuration.
func NewSMTPMailer(cfg config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer:    gomail.NewDialer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password),
		from:      cfg.Mail.From,
		adminTo:   cfg.Mail.AdminTo,
		uploadURL: cfg.Uploads.PublicBaseURL + cfg.Uploads.PublicPath,
	}
}

// OrderCreated emails a human-readable order summary to the admin address.
func (m *SMTPMailer) OrderCreated(ctx context.Context, order *entity.Order) error {
	subject := fmt.Sprintf("New order from %s", order.Name)
	return m.send(ctx, subject, OrderSummary(order, m.uploadURL))
}

// ContactReceived emails the contact message to the admin address.
func (m *SMTPMailer) ContactReceived(ctx context.Context, msg *entity.ContactMessage) error {
	subject := fmt.Sprintf("New contact message from %s", msg.Name)
	return m.send(ctx, subject, ContactSummary(msg))
}

func (m *SMTPMailer) send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.adminTo)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	// gomail has no context support; run the dial in a goroutine so a stalled
	// relay cannot outlive the caller's deadline.
	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OrderSummary renders the plain-text admin summary for an order.
func OrderSummary(order *entity.Order, uploadURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Customer: %s\n", order.Name)
	fmt.Fprintf(&b, "Contact: %s\n", order.Contact)
	fmt.Fprintf(&b, "Address: %s\n", order.Address)
	if order.City != "" {
		fmt.Fprintf(&b, "City: %s\n", order.City)
	}
	fmt.Fprintf(&b, "Payment method: %s\n", order.PaymentMethod)
	if order.PaymentReference != "" {
		fmt.Fprintf(&b, "Payment reference: %s\n", order.PaymentReference)
	}

	b.WriteString("\nItems:\n")
	for _, item := range order.Items {
		if item.Size != "" {
			fmt.Fprintf(&b, "  - %s (%s) x%d @ %.2f\n", item.Product, item.Size, item.Quantity, item.Price)
		} else {
			fmt.Fprintf(&b, "  - %s x%d @ %.2f\n", item.Product, item.Quantity, item.Price)
		}
	}
	fmt.Fprintf(&b, "Total: %.2f\n", order.Total())

	if order.Screenshot != "" {
		fmt.Fprintf(&b, "\nPayment screenshot: %s/%s\n", strings.TrimRight(uploadURL, "/"), order.Screenshot)
	}
	return b.String()
}

// ContactSummary renders the plain-text admin summary for a contact message.
func ContactSummary(msg *entity.ContactMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", msg.Name)
	fmt.Fprintf(&b, "Phone: %s\n", msg.Phone)
	if msg.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", msg.Email)
	}
	fmt.Fprintf(&b, "\n%s\n", msg.Message)
	return b.String()
}

// NoopMailer drops all notifications.
type NoopMailer struct{}

func (NoopMailer) OrderCreated(context.Context, *entity.Order) error { return nil }
func (NoopMailer) ContactReceived(context.Context, *entity.ContactMessage) error { return nil }

// RecorderMailer captures notifications in memory. Used by tests.
type RecorderMailer struct {
	mu       sync.Mutex
	Orders   []*entity.Order
	Contacts []*entity.ContactMessage
	Err      error
}

func (r *RecorderMailer) OrderCreated(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Orders = append(r.Orders, order)
	return nil
}

func (r *RecorderMailer) ContactReceived(_ context.Context, msg *entity.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Contacts = append(r.Contacts, msg)
	return nil
}
