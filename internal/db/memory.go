package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/transitpulse/bustracker/internal/models"
)

// MemoryStore is an in-memory Store used by the test suite and the demo
// mode. All collections are identity-keyed maps guarded by one RWMutex;
// entity relationships stay foreign-key style, exactly as in the MongoDB
// implementation.
type MemoryStore struct {
	mu             sync.RWMutex
	routes         map[string]models.Route
	stops          map[string]models.Stop
	routeStops     map[string]models.RouteStop
	buses          map[string]models.Bus
	journeys       map[string]models.Journey
	boardEvents    []models.BoardEvent
	locationEvents []models.LocationEvent
	schedules      map[string]models.Schedule
	users          map[string]models.User
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		routes:     make(map[string]models.Route),
		stops:      make(map[string]models.Stop),
		routeStops: make(map[string]models.RouteStop),
		buses:      make(map[string]models.Bus),
		journeys:   make(map[string]models.Journey),
		schedules:  make(map[string]models.Schedule),
		users:      make(map[string]models.User),
	}
}

// AddRoute stores a route, assigning an ID when missing, and returns its hex ID.
func (s *MemoryStore) AddRoute(route models.Route) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if route.ID.IsZero() {
		route.ID = primitive.NewObjectID()
	}
	s.routes[route.ID.Hex()] = route
	return route.ID.Hex()
}

// AddStop stores a stop and returns its hex ID.
func (s *MemoryStore) AddStop(stop models.Stop) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stop.ID.IsZero() {
		stop.ID = primitive.NewObjectID()
	}
	s.stops[stop.ID.Hex()] = stop
	return stop.ID.Hex()
}

// AddRouteStop stores a route stop and returns its hex ID.
func (s *MemoryStore) AddRouteStop(rs models.RouteStop) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rs.ID.IsZero() {
		rs.ID = primitive.NewObjectID()
	}
	s.routeStops[rs.ID.Hex()] = rs
	return rs.ID.Hex()
}

// AddBus stores a bus and returns its hex ID.
func (s *MemoryStore) AddBus(bus models.Bus) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bus.ID.IsZero() {
		bus.ID = primitive.NewObjectID()
	}
	s.buses[bus.ID.Hex()] = bus
	return bus.ID.Hex()
}

// AddSchedule stores a schedule baseline and returns its hex ID.
func (s *MemoryStore) AddSchedule(schedule models.Schedule) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if schedule.ID.IsZero() {
		schedule.ID = primitive.NewObjectID()
	}
	s.schedules[schedule.ID.Hex()] = schedule
	return schedule.ID.Hex()
}

// AddUser stores a user and returns its hex ID.
func (s *MemoryStore) AddUser(user models.User) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID.Hex()] = user
	return user.ID.Hex()
}

func (s *MemoryStore) FindRouteByID(ctx context.Context, id string) (*models.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	route, ok := s.routes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &route, nil
}

func (s *MemoryStore) FindStopByID(ctx context.Context, id string) (*models.Stop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stop, ok := s.stops[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &stop, nil
}

func (s *MemoryStore) FindRouteStopByID(ctx context.Context, id string) (*models.RouteStop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs, ok := s.routeStops[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rs, nil
}

func (s *MemoryStore) FindRouteStops(ctx context.Context, routeID string) ([]models.RouteStop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stops []models.RouteStop
	for _, rs := range s.routeStops {
		if rs.RouteID == routeID {
			stops = append(stops, rs)
		}
	}
	sort.Slice(stops, func(i, j int) bool { return stops[i].StopIndex < stops[j].StopIndex })
	return stops, nil
}

func (s *MemoryStore) FindRouteStopAt(ctx context.Context, routeID string, stopIndex int) (*models.RouteStop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rs := range s.routeStops {
		if rs.RouteID == routeID && rs.StopIndex == stopIndex {
			found := rs
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindBusByID(ctx context.Context, id string) (*models.Bus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bus, ok := s.buses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &bus, nil
}

func (s *MemoryStore) UpdateBusPassengerCount(ctx context.Context, id string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bus, ok := s.buses[id]
	if !ok {
		return ErrNotFound
	}
	bus.PassengerCount = count
	s.buses[id] = bus
	return nil
}

func (s *MemoryStore) InsertJourney(ctx context.Context, journey *models.Journey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if journey.ID.IsZero() {
		journey.ID = primitive.NewObjectID()
	}
	s.journeys[journey.ID.Hex()] = *journey
	return nil
}

func (s *MemoryStore) FindJourneyByID(ctx context.Context, id string) (*models.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	journey, ok := s.journeys[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &journey, nil
}

func (s *MemoryStore) UpdateJourney(ctx context.Context, journey *models.Journey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.journeys[journey.ID.Hex()]; !ok {
		return ErrNotFound
	}
	s.journeys[journey.ID.Hex()] = *journey
	return nil
}

func (s *MemoryStore) FindJourneysInProgress(ctx context.Context, routeID string) ([]models.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var journeys []models.Journey
	for _, journey := range s.journeys {
		if journey.RouteID == routeID && journey.Status == models.JourneyInProgress {
			journeys = append(journeys, journey)
		}
	}
	sort.Slice(journeys, func(i, j int) bool { return journeys[i].ID.Hex() < journeys[j].ID.Hex() })
	return journeys, nil
}

func (s *MemoryStore) InsertBoardEvent(ctx context.Context, event *models.BoardEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	s.boardEvents = append(s.boardEvents, *event)
	return nil
}

func (s *MemoryStore) FindBoardEvents(ctx context.Context, journeyID string, from, to time.Time) ([]models.BoardEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var events []models.BoardEvent
	for _, event := range s.boardEvents {
		if event.JourneyID != journeyID {
			continue
		}
		if event.Time.Before(from) || event.Time.After(to) {
			continue
		}
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Time.Before(events[j].Time) })
	return events, nil
}

func (s *MemoryStore) FindLatestBoardEvent(ctx context.Context, journeyID, stopID string) (*models.BoardEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.BoardEvent
	for i := range s.boardEvents {
		event := s.boardEvents[i]
		if event.JourneyID != journeyID || event.StopID != stopID {
			continue
		}
		if latest == nil || event.Time.After(latest.Time) {
			found := event
			latest = &found
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (s *MemoryStore) InsertLocationEvent(ctx context.Context, event *models.LocationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	s.locationEvents = append(s.locationEvents, *event)
	return nil
}

func (s *MemoryStore) FindLatestLocationEvent(ctx context.Context, journeyID string) (*models.LocationEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.LocationEvent
	for i := range s.locationEvents {
		event := s.locationEvents[i]
		if event.JourneyID != journeyID {
			continue
		}
		if latest == nil || !event.Time.Before(latest.Time) {
			found := event
			latest = &found
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (s *MemoryStore) FindSchedule(ctx context.Context, routeID, stopID string) (*models.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, schedule := range s.schedules {
		if schedule.RouteID == routeID && schedule.StopID == stopID {
			found := schedule
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}
