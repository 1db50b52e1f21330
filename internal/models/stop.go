package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StopKind distinguishes ordinary stops from route terminals.
type StopKind string

const (
	StopKindStop     StopKind = "Stop"
	StopKindTerminal StopKind = "Terminal"
)

// ParseStopKind parses a stop kind received at the boundary.
func ParseStopKind(s string) (StopKind, error) {
	switch StopKind(s) {
	case StopKindStop, StopKindTerminal:
		return StopKind(s), nil
	default:
		return "", fmt.Errorf("unknown stop kind %q", s)
	}
}

// Stop is a named physical location buses can serve.
type Stop struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Location Location           `bson:"location" json:"location"`
	Kind     StopKind           `bson:"kind" json:"kind"`
}

// RouteStop places a stop at a fixed position on a route. Stop indexes are
// unique and contiguous from 0 within a route.
type RouteStop struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RouteID   string             `bson:"route_id" json:"route_id"`
	StopID    string             `bson:"stop_id" json:"stop_id"`
	StopIndex int                `bson:"stop_index" json:"stop_index"`
}
