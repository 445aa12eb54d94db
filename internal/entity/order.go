package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentMethod enumerates the accepted payment channels.
type PaymentMethod string

const (
	PaymentCash      PaymentMethod = "cash"
	PaymentEasypaisa PaymentMethod = "easypaisa"
	PaymentBank      PaymentMethod = "bank"
)

// LineItem is one product entry within an order's cart.
type LineItem struct {
	Product  string  `bson:"product" json:"product"`
	Size     string  `bson:"size,omitempty" json:"size,omitempty"`
	Quantity int     `bson:"quantity" json:"quantity"`
	Price    float64 `bson:"price" json:"price"`
}

// Order is one checkout submission with its full cart embedded.
type Order struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Contact          string             `bson:"contact" json:"contact"`
	Address          string             `bson:"address" json:"address"`
	City             string             `bson:"city,omitempty" json:"city,omitempty"`
	PaymentMethod    PaymentMethod      `bson:"payment_method" json:"paymentMethod"`
	PaymentReference string             `bson:"payment_reference,omitempty" json:"paymentReference,omitempty"`
	Screenshot       string             `bson:"screenshot,omitempty" json:"screenshot,omitempty"`
	Items            []LineItem         `bson:"items" json:"items"`
	CreatedAt        time.Time          `bson:"created_at" json:"createdAt"`
}

// Total sums quantity times price across all line items.
func (o *Order) Total() float64 {
	var total float64
	for _, item := range o.Items {
		total += float64(item.Quantity) * item.Price
	}
	return total
}
