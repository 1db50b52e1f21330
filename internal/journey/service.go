package journey

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/transitpulse/bustracker/internal/db"
	"github.com/transitpulse/bustracker/internal/metrics"
	"github.com/transitpulse/bustracker/internal/models"
)

// Service is the journey lifecycle state machine plus the passenger ledger.
// Status/stop-index updates are serialized per journey and passenger-count
// updates per bus, so concurrent requests against the same entity never lose
// an update. Authorization of the acting user happens in the dispatcher; the
// actor ID is taken for the audit log only.
type Service struct {
	store   db.Store
	locks   *keyedMutex
	metrics *metrics.Collector
	now     func() time.Time
}

// NewService creates a journey service. The collector may be nil.
func NewService(store db.Store, collector *metrics.Collector) *Service {
	return &Service{
		store:   store,
		locks:   newKeyedMutex(),
		metrics: collector,
		now:     time.Now,
	}
}

// Start creates an in-progress journey at stop index 0. The route and bus
// must exist.
func (s *Service) Start(ctx context.Context, actor, routeID, busID string) (*models.Journey, error) {
	if _, err := s.store.FindRouteByID(ctx, routeID); err != nil {
		return nil, err
	}
	if _, err := s.store.FindBusByID(ctx, busID); err != nil {
		return nil, err
	}

	journey := &models.Journey{
		DriverID:         actor,
		RouteID:          routeID,
		BusID:            busID,
		Status:           models.JourneyInProgress,
		CurrentStopIndex: 0,
		StartTime:        s.now().UTC(),
	}
	if err := s.store.InsertJourney(ctx, journey); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.JourneysStarted.Inc()
	}
	fields := log.Fields{
		"journey_id": journey.ID.Hex(),
		"route_id":   routeID,
		"bus_id":     busID,
		"actor":      actor,
	}
	// Actor IDs come from dispatcher tokens; resolve the username for the
	// audit log when the record is known here.
	if user, err := s.store.FindUserByID(ctx, actor); err == nil {
		fields["username"] = user.Username
	}
	log.WithFields(fields).Info("Journey started")
	return journey, nil
}

// MoveToNextStop advances the stop pointer and records a location event at
// the new stop's coordinates. Returns nil without error when the journey is
// not in progress or is already at the last stop.
func (s *Service) MoveToNextStop(ctx context.Context, actor, journeyID string) (*models.RouteStop, error) {
	unlock := s.locks.Lock("journey:" + journeyID)
	defer unlock()

	journey, err := s.store.FindJourneyByID(ctx, journeyID)
	if err != nil {
		return nil, err
	}
	if journey.Status != models.JourneyInProgress {
		return nil, nil
	}

	next, err := s.store.FindRouteStopAt(ctx, journey.RouteID, journey.CurrentStopIndex+1)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil // already at the last stop
	}
	if err != nil {
		return nil, err
	}

	journey.CurrentStopIndex++
	if err := s.store.UpdateJourney(ctx, journey); err != nil {
		return nil, err
	}

	if stop, err := s.store.FindStopByID(ctx, next.StopID); err == nil {
		event := &models.LocationEvent{
			JourneyID: journeyID,
			Location:  stop.Location,
			Time:      s.now().UTC(),
		}
		if err := s.store.InsertLocationEvent(ctx, event); err != nil {
			log.WithError(err).WithField("journey_id", journeyID).Warn("Failed to record stop arrival position")
		}
	} else {
		log.WithField("stop_id", next.StopID).Warn("Stop record missing, skipping arrival position")
	}

	if s.metrics != nil {
		s.metrics.StopMoves.WithLabelValues("next").Inc()
	}
	log.WithFields(log.Fields{
		"journey_id": journeyID,
		"stop_index": journey.CurrentStopIndex,
		"actor":      actor,
	}).Info("Moved to next stop")
	return next, nil
}

// MoveToPreviousStop decrements the stop pointer. Returns nil without error
// at index 0 or when the journey is not in progress.
func (s *Service) MoveToPreviousStop(ctx context.Context, actor, journeyID string) (*models.RouteStop, error) {
	unlock := s.locks.Lock("journey:" + journeyID)
	defer unlock()

	journey, err := s.store.FindJourneyByID(ctx, journeyID)
	if err != nil {
		return nil, err
	}
	if journey.Status != models.JourneyInProgress || journey.CurrentStopIndex == 0 {
		return nil, nil
	}

	prev, err := s.store.FindRouteStopAt(ctx, journey.RouteID, journey.CurrentStopIndex-1)
	if err != nil {
		return nil, err
	}

	journey.CurrentStopIndex--
	if err := s.store.UpdateJourney(ctx, journey); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.StopMoves.WithLabelValues("previous").Inc()
	}
	log.WithFields(log.Fields{
		"journey_id": journeyID,
		"stop_index": journey.CurrentStopIndex,
		"actor":      actor,
	}).Info("Moved to previous stop")
	return prev, nil
}

// Complete terminates an in-progress journey as completed.
func (s *Service) Complete(ctx context.Context, actor, journeyID string) (*models.Journey, error) {
	return s.terminate(ctx, actor, journeyID, models.JourneyCompleted)
}

// Cancel terminates an in-progress journey as cancelled.
func (s *Service) Cancel(ctx context.Context, actor, journeyID string) (*models.Journey, error) {
	return s.terminate(ctx, actor, journeyID, models.JourneyCancelled)
}

func (s *Service) terminate(ctx context.Context, actor, journeyID string, status models.JourneyStatus) (*models.Journey, error) {
	unlock := s.locks.Lock("journey:" + journeyID)
	defer unlock()

	journey, err := s.store.FindJourneyByID(ctx, journeyID)
	if err != nil {
		return nil, err
	}
	if journey.Status.Terminal() {
		return nil, ErrJourneyNotActive
	}

	end := s.now().UTC()
	journey.Status = status
	journey.EndTime = &end
	if err := s.store.UpdateJourney(ctx, journey); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		switch status {
		case models.JourneyCompleted:
			s.metrics.JourneysCompleted.Inc()
		case models.JourneyCancelled:
			s.metrics.JourneysCancelled.Inc()
		}
	}
	log.WithFields(log.Fields{
		"journey_id": journeyID,
		"status":     status,
		"actor":      actor,
	}).Info("Journey terminated")
	return journey, nil
}

// Progress returns the journey's position along its route as a truncated
// percentage. Routes with no stops report 0; single-stop routes report 100.
func (s *Service) Progress(ctx context.Context, journeyID string) (int, error) {
	journey, err := s.store.FindJourneyByID(ctx, journeyID)
	if err != nil {
		return 0, err
	}
	stops, err := s.store.FindRouteStops(ctx, journey.RouteID)
	if err != nil {
		return 0, err
	}
	switch len(stops) {
	case 0:
		return 0, nil
	case 1:
		return 100, nil
	}
	return journey.CurrentStopIndex * 100 / (len(stops) - 1), nil
}

// TrackEvent appends a position sample for an in-progress journey.
func (s *Service) TrackEvent(ctx context.Context, journeyID string, lat, lng float64) (*models.LocationEvent, error) {
	journey, err := s.store.FindJourneyByID(ctx, journeyID)
	if err != nil {
		return nil, err
	}
	if journey.Status != models.JourneyInProgress {
		return nil, ErrJourneyNotActive
	}

	event := &models.LocationEvent{
		JourneyID: journeyID,
		Location:  models.Location{Lat: lat, Lng: lng},
		Time:      s.now().UTC(),
	}
	if err := s.store.InsertLocationEvent(ctx, event); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.TrackEvents.Inc()
	}
	return event, nil
}
