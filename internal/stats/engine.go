// Package stats aggregates a journey's event log into a performance report.
package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/transitpulse/bustracker/internal/db"
	"github.com/transitpulse/bustracker/internal/models"
)

// StopDelay compares the first recorded arrival at a stop with its schedule
// baseline.
type StopDelay struct {
	StopName      string  `json:"stop_name"`
	ScheduledTime string  `json:"scheduled_time"`
	ActualTime    string  `json:"actual_time"`
	DelayMinutes  float64 `json:"delay_minutes"`
}

// Report is a best-effort summary of a journey's performance.
type Report struct {
	JourneyID       string               `json:"journey_id"`
	RouteName       string               `json:"route_name,omitempty"`
	Status          models.JourneyStatus `json:"status"`
	StartTime       time.Time            `json:"start_time"`
	EndTime         *time.Time           `json:"end_time,omitempty"`
	Duration        string               `json:"duration"`
	TotalPassengers int                  `json:"total_passengers"`
	Revenue         int                  `json:"revenue"`
	StopDelays      []StopDelay          `json:"stop_delays"`
	// Note carries a diagnostic when the report was degraded by an internal
	// failure.
	Note string `json:"note,omitempty"`
}

// Engine computes journey reports from the entity store. It is a pure
// read-side consumer of the event log.
type Engine struct {
	store db.Store
	now   func() time.Time
}

// NewEngine creates a stats engine.
func NewEngine(store db.Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// Report aggregates the journey's board events within its active window.
// A missing journey yields db.ErrNotFound; any other failure degrades to a
// minimal report rather than an error, and individual stops with missing
// schedule or location data are skipped.
func (e *Engine) Report(ctx context.Context, journeyID string) (*Report, error) {
	journey, err := e.store.FindJourneyByID(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	end := e.now().UTC()
	if journey.EndTime != nil {
		end = *journey.EndTime
	}

	report := &Report{
		JourneyID: journeyID,
		Status:    journey.Status,
		StartTime: journey.StartTime,
		EndTime:   journey.EndTime,
		Duration:  formatDuration(end.Sub(journey.StartTime)),
	}

	events, err := e.store.FindBoardEvents(ctx, journeyID, journey.StartTime, end)
	if err != nil {
		log.WithError(err).WithField("journey_id", journeyID).Error("Failed to load board events for report")
		report.Note = fmt.Sprintf("statistics unavailable: %v", err)
		return report, nil
	}

	for _, event := range events {
		if event.Kind == models.BoardEnter {
			report.TotalPassengers += event.Qty
		}
	}

	route, err := e.store.FindRouteByID(ctx, journey.RouteID)
	if err == nil {
		report.RouteName = route.Name
		report.Revenue = report.TotalPassengers * route.Cost
	} else {
		log.WithField("route_id", journey.RouteID).Warn("Route missing, reporting zero revenue")
	}

	report.StopDelays = e.stopDelays(ctx, journey, events)
	return report, nil
}

// stopDelays compares the earliest board event per route stop against the
// schedule baseline. Stops without events, schedule or location data are
// skipped; one bad stop never aborts the rest.
func (e *Engine) stopDelays(ctx context.Context, journey *models.Journey, events []models.BoardEvent) []StopDelay {
	routeStops, err := e.store.FindRouteStops(ctx, journey.RouteID)
	if err != nil {
		log.WithError(err).WithField("route_id", journey.RouteID).Warn("Failed to load route stops for delay report")
		return nil
	}

	var delays []StopDelay
	for _, rs := range routeStops {
		arrival, ok := earliestAt(events, rs.ID.Hex())
		if !ok {
			continue
		}
		schedule, err := e.store.FindSchedule(ctx, journey.RouteID, rs.StopID)
		if err != nil {
			continue
		}
		stop, err := e.store.FindStopByID(ctx, rs.StopID)
		if err != nil {
			continue
		}
		delays = append(delays, StopDelay{
			StopName:      stop.Name,
			ScheduledTime: schedule.ArrivalTime.Format(time.RFC3339),
			ActualTime:    arrival.Format(time.RFC3339),
			DelayMinutes:  DelayMinutes(schedule.ArrivalTime, arrival),
		})
	}
	return delays
}

func earliestAt(events []models.BoardEvent, routeStopID string) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, event := range events {
		if event.StopID != routeStopID {
			continue
		}
		if !found || event.Time.Before(earliest) {
			earliest = event.Time
			found = true
		}
	}
	return earliest, found
}

// DelayMinutes compares only the time-of-day components of the scheduled and
// actual arrival, so a report generated on a different notional day than the
// schedule baseline still works. An actual time-of-day earlier than the
// scheduled one is treated as an arrival on the following day.
func DelayMinutes(scheduled, actual time.Time) float64 {
	schedSec := secondOfDay(scheduled)
	actualSec := secondOfDay(actual)
	if actualSec < schedSec {
		actualSec += 24 * 3600
	}
	minutes := float64(actualSec-schedSec) / 60
	return math.Round(minutes*100) / 100
}

func secondOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}
