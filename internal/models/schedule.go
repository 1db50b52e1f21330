package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Schedule is the planned arrival/departure baseline for a (route, stop)
// pair. Only the time-of-day components are meaningful for delay reporting;
// journey activity never mutates a schedule.
type Schedule struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RouteID       string             `bson:"route_id" json:"route_id"`
	StopID        string             `bson:"stop_id" json:"stop_id"`
	ArrivalTime   time.Time          `bson:"arrival_time" json:"arrival_time"`
	DepartureTime time.Time          `bson:"departure_time" json:"departure_time"`
}
