package dto

import (
	"time"

	"github.com/craftmart/storefront/internal/entity"
)

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Contact          string            `json:"contact"`
	Address          string            `json:"address"`
	City             string            `json:"city,omitempty"`
	PaymentMethod    string            `json:"paymentMethod"`
	PaymentReference string            `json:"paymentReference,omitempty"`
	Screenshot       string            `json:"screenshot,omitempty"`
	Items            []entity.LineItem `json:"items"`
	Total            float64           `json:"total"`
	CreatedAt        time.Time         `json:"createdAt"`
}

// FromOrder converts an order entity into its transport representation.
func FromOrder(order *entity.Order) OrderResponse {
	return OrderResponse{
		ID:               order.ID.Hex(),
		Name:             order.Name,
		Contact:          order.Contact,
		Address:          order.Address,
		City:             order.City,
		PaymentMethod:    string(order.PaymentMethod),
		PaymentReference: order.PaymentReference,
		Screenshot:       order.Screenshot,
		Items:            order.Items,
		Total:            order.Total(),
		CreatedAt:        order.CreatedAt,
	}
}

// FromOrders converts a list of order entities, preserving order.
func FromOrders(orders []entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, FromOrder(&orders[i]))
	}
	return out
}
