package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bus is a vehicle in the fleet. PassengerCount is only ever mutated through
// the passenger ledger and stays within [0, MaxPassengerCount].
type Bus struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlateNum          string             `bson:"plate_num" json:"plate_num"`
	DriverID          string             `bson:"driver_id" json:"driver_id"`
	RouteID           string             `bson:"route_id" json:"route_id"`
	PassengerCount    int                `bson:"passenger_count" json:"passenger_count"`
	MaxPassengerCount int                `bson:"max_passenger_count" json:"max_passenger_count"`
}

// AvailableSeats reports how many more passengers the bus can take.
func (b *Bus) AvailableSeats() int {
	return b.MaxPassengerCount - b.PassengerCount
}
