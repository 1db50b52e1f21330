package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Route is a fixed, ordered sequence of stops with a flat boarding cost.
type Route struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
	// Cost charged per boarding passenger, in the operator's currency unit.
	Cost int `bson:"cost" json:"cost"`
}
