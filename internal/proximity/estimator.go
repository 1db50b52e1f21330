// Package proximity ranks in-progress buses by estimated time and distance
// to a stop.
package proximity

import (
	"context"
	"errors"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/transitpulse/bustracker/internal/db"
	"github.com/transitpulse/bustracker/internal/metrics"
	"github.com/transitpulse/bustracker/internal/models"
)

// maxResults caps the number of buses returned per query.
const maxResults = 3

// BusProximity describes one approaching bus.
type BusProximity struct {
	JourneyID        string          `json:"journey_id"`
	BusID            string          `json:"bus_id"`
	Position         models.Location `json:"position"`
	LastUpdated      time.Time       `json:"last_updated"`
	DistanceMeters   float64         `json:"distance_meters"`
	DurationSeconds  float64         `json:"duration_seconds"`
	EstimatedArrival string          `json:"estimated_arrival"`
}

// Estimator finds buses currently between the previous and a given stop and
// ranks them by estimated arrival. The routing service gets a single bounded
// attempt per query; any failure falls back to the haversine estimate and is
// never surfaced to the caller.
type Estimator struct {
	store   db.Store
	matrix  MatrixClient
	metrics *metrics.Collector
	timeout time.Duration
	now     func() time.Time
}

// NewEstimator creates an estimator. The collector may be nil; timeout
// bounds the matrix call.
func NewEstimator(store db.Store, matrix MatrixClient, collector *metrics.Collector, timeout time.Duration) *Estimator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Estimator{
		store:   store,
		matrix:  matrix,
		metrics: collector,
		timeout: timeout,
		now:     time.Now,
	}
}

// ApproachingBuses returns at most three buses approaching the route stop,
// nearest first. The result is empty when the stop is not on the route, is
// the route's first stop, or no in-progress journey sits between the
// previous stop and it.
func (e *Estimator) ApproachingBuses(ctx context.Context, stopID, routeID string) ([]BusProximity, error) {
	if e.metrics != nil {
		e.metrics.ProximityQueries.Inc()
	}

	current, err := e.store.FindRouteStopByID(ctx, stopID)
	if err != nil || current.RouteID != routeID {
		return nil, nil
	}
	previous, err := e.store.FindRouteStopAt(ctx, routeID, current.StopIndex-1)
	if err != nil {
		return nil, nil // first stop of the route, or not found
	}
	target, err := e.store.FindStopByID(ctx, current.StopID)
	if err != nil {
		return nil, nil
	}

	journeys, err := e.store.FindJourneysInProgress(ctx, routeID)
	if err != nil {
		return nil, err
	}

	var candidates []BusProximity
	for _, journey := range journeys {
		if !e.betweenStops(ctx, journey.ID.Hex(), previous.ID.Hex(), current.ID.Hex()) {
			continue
		}
		position, err := e.store.FindLatestLocationEvent(ctx, journey.ID.Hex())
		if err != nil {
			continue // no position sample yet
		}
		candidates = append(candidates, BusProximity{
			JourneyID:   journey.ID.Hex(),
			BusID:       journey.BusID,
			Position:    position.Location,
			LastUpdated: position.Time,
		})
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	e.estimate(ctx, target.Location, candidates)

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].DistanceMeters < candidates[j].DistanceMeters
	})
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	return candidates, nil
}

// betweenStops implements the "boarded at the stop before, not yet processed
// at this one" rule: a board event exists at the previous stop and either
// none exists at the current stop or the previous one is strictly newer.
func (e *Estimator) betweenStops(ctx context.Context, journeyID, previousStopID, currentStopID string) bool {
	prevEvent, err := e.store.FindLatestBoardEvent(ctx, journeyID, previousStopID)
	if err != nil {
		return false
	}
	currEvent, err := e.store.FindLatestBoardEvent(ctx, journeyID, currentStopID)
	if errors.Is(err, db.ErrNotFound) {
		return true
	}
	if err != nil {
		return false
	}
	return prevEvent.Time.After(currEvent.Time)
}

// estimate fills in distance, duration and arrival estimates for every
// candidate, preferring the routing service and falling back to the local
// haversine computation.
func (e *Estimator) estimate(ctx context.Context, target models.Location, candidates []BusProximity) {
	if e.matrix != nil && e.matrix.Configured() {
		locations := make([]models.Location, 0, len(candidates)+1)
		locations = append(locations, target)
		for _, c := range candidates {
			locations = append(locations, c.Position)
		}

		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()
		started := e.now()
		distances, durations, err := e.matrix.Matrix(callCtx, locations)
		if e.metrics != nil {
			e.metrics.MatrixDuration.Observe(e.now().Sub(started).Seconds())
		}
		if err == nil {
			now := e.now().UTC()
			for i := range candidates {
				candidates[i].DistanceMeters = distances[i]
				candidates[i].DurationSeconds = durations[i]
				candidates[i].EstimatedArrival = now.Add(time.Duration(durations[i] * float64(time.Second))).Format("15:04:05")
			}
			return
		}
		log.WithError(err).Warn("Distance matrix call failed, using haversine fallback")
	}

	if e.metrics != nil {
		e.metrics.MatrixFallbacks.Inc()
	}
	now := e.now().UTC()
	for i := range candidates {
		distance := Haversine(target, candidates[i].Position)
		duration := distance * roadFactor / avgSpeedMS
		candidates[i].DistanceMeters = distance
		candidates[i].DurationSeconds = duration
		candidates[i].EstimatedArrival = now.Add(time.Duration(duration * float64(time.Second))).Format("15:04:05")
	}
}
