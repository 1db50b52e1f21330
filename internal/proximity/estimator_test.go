package proximity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitpulse/bustracker/internal/db"
	"github.com/transitpulse/bustracker/internal/models"
)

type fakeMatrix struct {
	distances  []float64
	durations  []float64
	err        error
	configured bool
	calls      int
}

func (f *fakeMatrix) Matrix(ctx context.Context, locations []models.Location) ([]float64, []float64, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.distances, f.durations, nil
}

func (f *fakeMatrix) Configured() bool { return f.configured }

// fixture is a three-stop route with seed helpers for journeys positioned
// between stops.
type fixture struct {
	store   *db.MemoryStore
	routeID string
	rsIDs   []string
	base    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := db.NewMemoryStore()
	routeID := store.AddRoute(models.Route{Name: "Coast Road", Cost: 4})
	rsIDs := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		stopID := store.AddStop(models.Stop{
			Name:     "Stop " + string(rune('A'+i)),
			Location: models.Location{Lat: 10.60 + float64(i)*0.01, Lng: -61.30},
		})
		rsIDs = append(rsIDs, store.AddRouteStop(models.RouteStop{RouteID: routeID, StopID: stopID, StopIndex: i}))
	}
	return &fixture{
		store:   store,
		routeID: routeID,
		rsIDs:   rsIDs,
		base:    time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
}

// addJourney seeds an in-progress journey with a board event at each of the
// given route stop IDs (in order, one minute apart) and a position sample.
func (f *fixture) addJourney(t *testing.T, position *models.Location, boardedAt ...string) string {
	t.Helper()
	journey := &models.Journey{
		RouteID:   f.routeID,
		BusID:     "bus-" + string(rune('a'+len(boardedAt))),
		Status:    models.JourneyInProgress,
		StartTime: f.base,
	}
	require.NoError(t, f.store.InsertJourney(context.Background(), journey))
	for i, rsID := range boardedAt {
		require.NoError(t, f.store.InsertBoardEvent(context.Background(), &models.BoardEvent{
			JourneyID: journey.ID.Hex(),
			BusID:     journey.BusID,
			StopID:    rsID,
			Kind:      models.BoardEnter,
			Qty:       1,
			Time:      f.base.Add(time.Duration(i) * time.Minute),
		}))
	}
	if position != nil {
		require.NoError(t, f.store.InsertLocationEvent(context.Background(), &models.LocationEvent{
			JourneyID: journey.ID.Hex(),
			Location:  *position,
			Time:      f.base.Add(10 * time.Minute),
		}))
	}
	return journey.ID.Hex()
}

func TestApproachingBuses_DegenerateQueries(t *testing.T) {
	f := newFixture(t)
	estimator := NewEstimator(f.store, nil, nil, 0)

	// Unknown stop.
	buses, err := estimator.ApproachingBuses(context.Background(), "no-such-stop", f.routeID)
	require.NoError(t, err)
	assert.Empty(t, buses)

	// Stop belongs to a different route.
	otherRouteID := f.store.AddRoute(models.Route{Name: "Other", Cost: 1})
	buses, err = estimator.ApproachingBuses(context.Background(), f.rsIDs[1], otherRouteID)
	require.NoError(t, err)
	assert.Empty(t, buses)

	// First stop of the route has no previous stop.
	buses, err = estimator.ApproachingBuses(context.Background(), f.rsIDs[0], f.routeID)
	require.NoError(t, err)
	assert.Empty(t, buses)
}

func TestApproachingBuses_BetweenStopsRule(t *testing.T) {
	f := newFixture(t)
	pos := &models.Location{Lat: 10.605, Lng: -61.30}

	// Boarded at the previous stop, nothing at the queried one: included.
	approaching := f.addJourney(t, pos, f.rsIDs[0])
	// Already processed at the queried stop: excluded.
	f.addJourney(t, pos, f.rsIDs[0], f.rsIDs[1])
	// No event at the previous stop: excluded.
	f.addJourney(t, pos, f.rsIDs[2])
	// Between the right stops but no position sample yet: excluded.
	f.addJourney(t, nil, f.rsIDs[0])

	estimator := NewEstimator(f.store, nil, nil, 0)
	buses, err := estimator.ApproachingBuses(context.Background(), f.rsIDs[1], f.routeID)
	require.NoError(t, err)
	require.Len(t, buses, 1)
	assert.Equal(t, approaching, buses[0].JourneyID)
	assert.Equal(t, *pos, buses[0].Position)
}

func TestApproachingBuses_HaversineFallback(t *testing.T) {
	f := newFixture(t)
	pos := &models.Location{Lat: 10.605, Lng: -61.30}
	f.addJourney(t, pos, f.rsIDs[0])

	matrix := &fakeMatrix{err: errors.New("service down"), configured: true}
	estimator := NewEstimator(f.store, matrix, nil, time.Second)

	buses, err := estimator.ApproachingBuses(context.Background(), f.rsIDs[1], f.routeID)
	require.NoError(t, err)
	require.Len(t, buses, 1)
	assert.Equal(t, 1, matrix.calls)

	target := models.Location{Lat: 10.61, Lng: -61.30}
	wantDistance := Haversine(target, *pos)
	assert.InDelta(t, wantDistance, buses[0].DistanceMeters, 1e-6)
	assert.InDelta(t, wantDistance*1.3/8.33, buses[0].DurationSeconds, 1e-6)
	assert.Len(t, buses[0].EstimatedArrival, 8) // HH:MM:SS
}

func TestApproachingBuses_MatrixRanking(t *testing.T) {
	f := newFixture(t)
	positions := []models.Location{
		{Lat: 10.601, Lng: -61.30},
		{Lat: 10.602, Lng: -61.30},
		{Lat: 10.603, Lng: -61.30},
		{Lat: 10.604, Lng: -61.30},
	}
	for _, pos := range positions {
		p := pos
		f.addJourney(t, &p, f.rsIDs[0])
	}

	// Journeys are visited in ID order; distances are deliberately unsorted.
	matrix := &fakeMatrix{
		configured: true,
		distances:  []float64{900, 100, 700, 300},
		durations:  []float64{90, 10, 70, 30},
	}
	estimator := NewEstimator(f.store, matrix, nil, time.Second)

	buses, err := estimator.ApproachingBuses(context.Background(), f.rsIDs[1], f.routeID)
	require.NoError(t, err)
	require.Len(t, buses, 3)
	assert.Equal(t, []float64{100, 300, 700}, []float64{
		buses[0].DistanceMeters, buses[1].DistanceMeters, buses[2].DistanceMeters,
	})
	assert.Equal(t, 10.0, buses[0].DurationSeconds)
}

func TestApproachingBuses_UnconfiguredMatrixSkipsCall(t *testing.T) {
	f := newFixture(t)
	pos := &models.Location{Lat: 10.605, Lng: -61.30}
	f.addJourney(t, pos, f.rsIDs[0])

	matrix := &fakeMatrix{configured: false}
	estimator := NewEstimator(f.store, matrix, nil, time.Second)

	buses, err := estimator.ApproachingBuses(context.Background(), f.rsIDs[1], f.routeID)
	require.NoError(t, err)
	require.Len(t, buses, 1)
	assert.Zero(t, matrix.calls)
	assert.Greater(t, buses[0].DistanceMeters, 0.0)
}
