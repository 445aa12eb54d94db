package dto

import (
	"time"

	"github.com/craftmart/storefront/internal/entity"
)

// ContactMessageResponse represents a contact message as exposed over HTTP.
type ContactMessageResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromContactMessage converts a contact message entity.
func FromContactMessage(msg *entity.ContactMessage) ContactMessageResponse {
	return ContactMessageResponse{
		ID:        msg.ID.Hex(),
		Name:      msg.Name,
		Phone:     msg.Phone,
		Email:     msg.Email,
		Message:   msg.Message,
		CreatedAt: msg.CreatedAt,
	}
}
