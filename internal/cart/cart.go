// Package cart decodes and validates the serialized line-item list submitted
// with a checkout. Validation is all-or-nothing: any failing gate rejects the
// whole cart and nothing downstream runs.
package cart

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/craftmart/storefront/internal/entity"
)

var (
	ErrInvalidFormat   = errors.New("invalid cart format")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrMissingProduct  = errors.New("cart item is missing a product")
	ErrInvalidQuantity = errors.New("cart item quantity must be positive")
	ErrInvalidPrice    = errors.New("cart item price must not be negative")
)

// Parse decodes a JSON-encoded line-item list and validates every element.
// The gates run in order: decode (a non-list value fails here too), non-empty,
// then per-item field checks.
func Parse(raw string) ([]entity.LineItem, error) {
	var items []entity.LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, ErrInvalidFormat
	}

	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	for _, item := range items {
		if strings.TrimSpace(item.Product) == "" {
			return nil, ErrMissingProduct
		}
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if item.Price < 0 {
			return nil, ErrInvalidPrice
		}
	}

	return items, nil
}
