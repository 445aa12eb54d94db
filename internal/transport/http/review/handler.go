package review

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/craftmart/storefront/internal/dto"
	"github.com/craftmart/storefront/internal/presentation/http/response"
	service "github.com/craftmart/storefront/internal/service/review"
	"github.com/craftmart/storefront/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/craftmart/storefront/transport/http/review")

// Handler exposes review submission and listing over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a review Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/reviews")
	g.POST("", h.submit)
	g.GET("", h.list)
}

func (h *Handler) submit(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		Name    string `json:"name" form:"name"`
		Rating  int    `json:"rating" form:"rating"`
		Comment string `json:"comment" form:"comment"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "reviews.submit")
	defer span.End()

	review, err := h.svc.Submit(ctx, service.Input{
		Name:    payload.Name,
		Rating:  payload.Rating,
		Comment: payload.Comment,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromReview(review)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "reviews.list")
	defer span.End()

	reviews, err := h.svc.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromReviews(reviews)).Build()
}
