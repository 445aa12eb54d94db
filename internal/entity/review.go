package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a customer product review. Rating is constrained to [1,5] at submission time.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
