package journey

import (
	"errors"
	"fmt"

	"github.com/transitpulse/bustracker/internal/models"
)

var (
	// ErrJourneyNotActive is returned when an operation requires an
	// in-progress journey but the journey has reached a terminal status.
	ErrJourneyNotActive = errors.New("journey is not in progress")

	// ErrNonPositiveQty is returned for board events with qty <= 0.
	ErrNonPositiveQty = errors.New("board quantity must be positive")
)

// CapacityError reports a board event that would push a bus's passenger
// count outside [0, max]. The ledger records nothing when it is returned.
type CapacityError struct {
	Kind  models.BoardKind
	Qty   int
	Count int
	Max   int
}

func (e *CapacityError) Error() string {
	if e.Kind == models.BoardEnter {
		return fmt.Sprintf("cannot board %d passengers: %d of %d seats in use", e.Qty, e.Count, e.Max)
	}
	return fmt.Sprintf("cannot alight %d passengers: only %d on board", e.Qty, e.Count)
}
