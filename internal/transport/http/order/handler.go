package order

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/craftmart/storefront/internal/dto"
	"github.com/craftmart/storefront/internal/presentation/http/response"
	service "github.com/craftmart/storefront/internal/service/order"
	"github.com/craftmart/storefront/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/craftmart/storefront/transport/http/order")

// Handler exposes checkout and order administration over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.POST("/checkout", h.checkout)
	g := e.Group("/orders")
	g.GET("", h.list)
	g.DELETE("/:id", h.delete)
}

// checkout accepts the multipart order submission: customer form fields, the
// serialized cart, and an optional screenshot file part.
func (h *Handler) checkout(c echo.Context) error {
	b := response.New(c)

	in := service.CheckoutInput{
		Name:             c.FormValue("name"),
		Contact:          c.FormValue("contact"),
		Address:          c.FormValue("address"),
		City:             c.FormValue("city"),
		PaymentMethod:    c.FormValue("paymentMethod"),
		PaymentReference: c.FormValue("paymentReference"),
		RawCart:          c.FormValue("cart"),
	}

	fh, err := c.FormFile("screenshot")
	switch {
	case err == nil:
		f, openErr := fh.Open()
		if openErr != nil {
			return b.WithError(errorbank.BadRequest("unreadable screenshot upload", errorbank.WithCause(openErr))).Build()
		}
		defer f.Close()
		in.Screenshot = &service.Upload{Name: fh.Filename, Content: f}
	case errors.Is(err, http.ErrMissingFile):
		// screenshot is optional
	default:
		return b.WithError(errorbank.BadRequest("invalid screenshot upload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.checkout")
	defer span.End()

	order, err := h.svc.Checkout(ctx, in)
	if err != nil {
		return b.WithError(err).Build()
	}

	span.SetAttributes(attribute.String("order.id", order.ID.Hex()))
	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	orders, err := h.svc.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromOrders(orders)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	id := c.Param("id")
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.delete", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, id); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithMeta("deleted", id).Build()
}
