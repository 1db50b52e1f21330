package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BoardKind is the direction of a passenger movement at a stop.
type BoardKind string

const (
	BoardEnter BoardKind = "Enter"
	BoardExit  BoardKind = "Exit"
)

// ParseBoardKind parses the wire representation of a board kind.
// Unrecognized values are rejected rather than defaulted.
func ParseBoardKind(s string) (BoardKind, error) {
	switch BoardKind(s) {
	case BoardEnter, BoardExit:
		return BoardKind(s), nil
	default:
		return "", fmt.Errorf("unknown board event type %q", s)
	}
}

// BoardEvent records passengers entering or leaving a bus at a stop during a
// journey. Append-only; each successful creation side-effects the bus's
// passenger count.
type BoardEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	JourneyID string             `bson:"journey_id" json:"journey_id"`
	BusID     string             `bson:"bus_id" json:"bus_id"`
	StopID    string             `bson:"stop_id" json:"stop_id"`
	Kind      BoardKind          `bson:"kind" json:"type"`
	Qty       int                `bson:"qty" json:"qty"`
	Time      time.Time          `bson:"time" json:"time"`
}

// LocationEvent is an append-only position sample for a journey. The latest
// one is the vehicle's current position.
type LocationEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	JourneyID string             `bson:"journey_id" json:"journey_id"`
	Location  Location           `bson:"location" json:"location"`
	Time      time.Time          `bson:"time" json:"time"`
}
