package journey

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/transitpulse/bustracker/internal/models"
)

// Board records a passenger movement at a stop and adjusts the bus's
// passenger count. The count update and the event insert happen under the
// bus lock; a rejected or failed event leaves both the count and the event
// log unchanged.
func (s *Service) Board(ctx context.Context, actor, journeyID string, kind models.BoardKind, qty int, stopID string) (*models.BoardEvent, error) {
	if qty <= 0 {
		return nil, ErrNonPositiveQty
	}

	journey, err := s.store.FindJourneyByID(ctx, journeyID)
	if err != nil {
		return nil, err
	}
	if journey.Status != models.JourneyInProgress {
		return nil, ErrJourneyNotActive
	}
	if _, err := s.store.FindRouteStopByID(ctx, stopID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock("bus:" + journey.BusID)
	defer unlock()

	bus, err := s.store.FindBusByID(ctx, journey.BusID)
	if err != nil {
		return nil, err
	}

	var newCount int
	switch kind {
	case models.BoardEnter:
		newCount = bus.PassengerCount + qty
		if newCount > bus.MaxPassengerCount {
			s.rejectBoard(journeyID, kind, qty, bus)
			return nil, &CapacityError{Kind: kind, Qty: qty, Count: bus.PassengerCount, Max: bus.MaxPassengerCount}
		}
	case models.BoardExit:
		newCount = bus.PassengerCount - qty
		if newCount < 0 {
			s.rejectBoard(journeyID, kind, qty, bus)
			return nil, &CapacityError{Kind: kind, Qty: qty, Count: bus.PassengerCount, Max: bus.MaxPassengerCount}
		}
	default:
		return nil, ErrNonPositiveQty
	}

	if err := s.store.UpdateBusPassengerCount(ctx, journey.BusID, newCount); err != nil {
		return nil, err
	}

	event := &models.BoardEvent{
		JourneyID: journeyID,
		BusID:     journey.BusID,
		StopID:    stopID,
		Kind:      kind,
		Qty:       qty,
		Time:      s.now().UTC(),
	}
	if err := s.store.InsertBoardEvent(ctx, event); err != nil {
		// Restore the count so a failed insert has no partial effect.
		if rbErr := s.store.UpdateBusPassengerCount(ctx, journey.BusID, bus.PassengerCount); rbErr != nil {
			log.WithError(rbErr).WithField("bus_id", journey.BusID).Error("Failed to restore passenger count")
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BoardEvents.WithLabelValues(string(kind)).Inc()
	}
	log.WithFields(log.Fields{
		"journey_id": journeyID,
		"stop_id":    stopID,
		"kind":       kind,
		"qty":        qty,
		"count":      newCount,
		"actor":      actor,
	}).Info("Board event recorded")
	return event, nil
}

func (s *Service) rejectBoard(journeyID string, kind models.BoardKind, qty int, bus *models.Bus) {
	if s.metrics != nil {
		s.metrics.CapacityRejections.Inc()
	}
	log.WithFields(log.Fields{
		"journey_id": journeyID,
		"kind":       kind,
		"qty":        qty,
		"count":      bus.PassengerCount,
		"max":        bus.MaxPassengerCount,
	}).Warn("Board event rejected by capacity ledger")
}

// AvailableSeats reports the free capacity of the bus serving a journey.
func (s *Service) AvailableSeats(ctx context.Context, journeyID string) (int, error) {
	journey, err := s.store.FindJourneyByID(ctx, journeyID)
	if err != nil {
		return 0, err
	}
	bus, err := s.store.FindBusByID(ctx, journey.BusID)
	if err != nil {
		return 0, err
	}
	return bus.AvailableSeats(), nil
}
