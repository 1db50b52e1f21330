package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JourneyStatus is the lifecycle state of a journey. InProgress is the only
// non-terminal state.
type JourneyStatus string

const (
	JourneyInProgress JourneyStatus = "in_progress"
	JourneyCompleted  JourneyStatus = "completed"
	JourneyCancelled  JourneyStatus = "cancelled"
)

// Terminal reports whether no further status transitions are allowed.
func (s JourneyStatus) Terminal() bool {
	return s == JourneyCompleted || s == JourneyCancelled
}

// Journey is one execution of a bus traversing a route. It is created
// in-progress, mutated only through the journey service, and never deleted.
type Journey struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DriverID         string             `bson:"driver_id" json:"driver_id"`
	RouteID          string             `bson:"route_id" json:"route_id"`
	BusID            string             `bson:"bus_id" json:"bus_id"`
	Status           JourneyStatus      `bson:"status" json:"status"`
	CurrentStopIndex int                `bson:"current_stop_index" json:"current_stop_index"`
	StartTime        time.Time          `bson:"start_time" json:"start_time"`
	EndTime          *time.Time         `bson:"end_time,omitempty" json:"end_time,omitempty"`
}
