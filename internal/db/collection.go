package db

import (
	"context"
	"errors"
	"time"

	"github.com/transitpulse/bustracker/internal/models"
)

// ErrNotFound is returned when a lookup matches no record. Callers treat it
// as an empty result, never as a hard failure.
var ErrNotFound = errors.New("record not found")

// RouteCollection defines read operations on routes.
type RouteCollection interface {
	FindRouteByID(ctx context.Context, id string) (*models.Route, error)
}

// StopCollection defines read operations on stops.
type StopCollection interface {
	FindStopByID(ctx context.Context, id string) (*models.Stop, error)
}

// RouteStopCollection defines read operations on the ordered stop sequence
// of a route.
type RouteStopCollection interface {
	FindRouteStopByID(ctx context.Context, id string) (*models.RouteStop, error)
	// FindRouteStops returns the stops of a route ordered by stop index.
	FindRouteStops(ctx context.Context, routeID string) ([]models.RouteStop, error)
	FindRouteStopAt(ctx context.Context, routeID string, stopIndex int) (*models.RouteStop, error)
}

// BusCollection defines operations on buses. UpdateBusPassengerCount is the
// only write; it stores the count as computed under the ledger's lock.
type BusCollection interface {
	FindBusByID(ctx context.Context, id string) (*models.Bus, error)
	UpdateBusPassengerCount(ctx context.Context, id string, count int) error
}

// JourneyCollection defines operations on journeys.
type JourneyCollection interface {
	InsertJourney(ctx context.Context, journey *models.Journey) error
	FindJourneyByID(ctx context.Context, id string) (*models.Journey, error)
	UpdateJourney(ctx context.Context, journey *models.Journey) error
	// FindJourneysInProgress returns journeys on a route that have not
	// reached a terminal status.
	FindJourneysInProgress(ctx context.Context, routeID string) ([]models.Journey, error)
}

// BoardEventCollection defines operations on the append-only board event log.
type BoardEventCollection interface {
	InsertBoardEvent(ctx context.Context, event *models.BoardEvent) error
	// FindBoardEvents returns all board events for a journey within
	// [from, to], oldest first.
	FindBoardEvents(ctx context.Context, journeyID string, from, to time.Time) ([]models.BoardEvent, error)
	// FindLatestBoardEvent returns the newest board event for a journey at a
	// stop, or ErrNotFound.
	FindLatestBoardEvent(ctx context.Context, journeyID, stopID string) (*models.BoardEvent, error)
}

// LocationEventCollection defines operations on the append-only position log.
type LocationEventCollection interface {
	InsertLocationEvent(ctx context.Context, event *models.LocationEvent) error
	// FindLatestLocationEvent returns the newest position sample for a
	// journey, or ErrNotFound.
	FindLatestLocationEvent(ctx context.Context, journeyID string) (*models.LocationEvent, error)
}

// ScheduleCollection defines read operations on schedule baselines.
type ScheduleCollection interface {
	FindSchedule(ctx context.Context, routeID, stopID string) (*models.Schedule, error)
}

// UserCollection defines read operations on user records.
type UserCollection interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store aggregates every collection the tracker core consumes.
type Store interface {
	RouteCollection
	StopCollection
	RouteStopCollection
	BusCollection
	JourneyCollection
	BoardEventCollection
	LocationEventCollection
	ScheduleCollection
	UserCollection
}
