package contact

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/craftmart/storefront/internal/dto"
	"github.com/craftmart/storefront/internal/presentation/http/response"
	service "github.com/craftmart/storefront/internal/service/contact"
	"github.com/craftmart/storefront/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/craftmart/storefront/transport/http/contact")

// Handler exposes the contact form over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a contact Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.POST("/contact", h.submit)
}

func (h *Handler) submit(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		Name    string `json:"name" form:"name"`
		Phone   string `json:"phone" form:"phone"`
		Email   string `json:"email" form:"email"`
		Message string `json:"message" form:"message"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "contact.submit")
	defer span.End()

	msg, err := h.svc.Submit(ctx, service.Input{
		Name:    payload.Name,
		Phone:   payload.Phone,
		Email:   payload.Email,
		Message: payload.Message,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromContactMessage(msg)).
		WithMeta("confirmation", "Message received! Our team will contact you soon.").
		Build()
}
