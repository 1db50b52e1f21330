package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/transitpulse/bustracker/internal/models"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoStore implements Store on top of a MongoDB database.
type MongoStore struct {
	Routes         *mongo.Collection
	Stops          *mongo.Collection
	RouteStops     *mongo.Collection
	Buses          *mongo.Collection
	Journeys       *mongo.Collection
	BoardEvents    *mongo.Collection
	LocationEvents *mongo.Collection
	Schedules      *mongo.Collection
	Users          *mongo.Collection
}

// NewMongoStore wires a MongoStore against the named collections of database.
func NewMongoStore(database *mongo.Database) *MongoStore {
	return &MongoStore{
		Routes:         database.Collection("routes"),
		Stops:          database.Collection("stops"),
		RouteStops:     database.Collection("route_stops"),
		Buses:          database.Collection("buses"),
		Journeys:       database.Collection("journeys"),
		BoardEvents:    database.Collection("board_events"),
		LocationEvents: database.Collection("location_events"),
		Schedules:      database.Collection("schedules"),
		Users:          database.Collection("users"),
	}
}

// objectID parses a hex entity reference. An unparseable reference can never
// match a record, so it maps to ErrNotFound.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func mapErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (s *MongoStore) FindRouteByID(ctx context.Context, id string) (*models.Route, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var route models.Route
	if err := s.Routes.FindOne(ctx, bson.M{"_id": oid}).Decode(&route); err != nil {
		return nil, mapErr(err)
	}
	return &route, nil
}

func (s *MongoStore) FindStopByID(ctx context.Context, id string) (*models.Stop, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var stop models.Stop
	if err := s.Stops.FindOne(ctx, bson.M{"_id": oid}).Decode(&stop); err != nil {
		return nil, mapErr(err)
	}
	return &stop, nil
}

func (s *MongoStore) FindRouteStopByID(ctx context.Context, id string) (*models.RouteStop, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var rs models.RouteStop
	if err := s.RouteStops.FindOne(ctx, bson.M{"_id": oid}).Decode(&rs); err != nil {
		return nil, mapErr(err)
	}
	return &rs, nil
}

func (s *MongoStore) FindRouteStops(ctx context.Context, routeID string) ([]models.RouteStop, error) {
	opts := options.Find().SetSort(bson.D{{Key: "stop_index", Value: 1}})
	cursor, err := s.RouteStops.Find(ctx, bson.M{"route_id": routeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var stops []models.RouteStop
	if err := cursor.All(ctx, &stops); err != nil {
		return nil, err
	}
	return stops, nil
}

func (s *MongoStore) FindRouteStopAt(ctx context.Context, routeID string, stopIndex int) (*models.RouteStop, error) {
	var rs models.RouteStop
	filter := bson.M{"route_id": routeID, "stop_index": stopIndex}
	if err := s.RouteStops.FindOne(ctx, filter).Decode(&rs); err != nil {
		return nil, mapErr(err)
	}
	return &rs, nil
}

func (s *MongoStore) FindBusByID(ctx context.Context, id string) (*models.Bus, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var bus models.Bus
	if err := s.Buses.FindOne(ctx, bson.M{"_id": oid}).Decode(&bus); err != nil {
		return nil, mapErr(err)
	}
	return &bus, nil
}

func (s *MongoStore) UpdateBusPassengerCount(ctx context.Context, id string, count int) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := s.Buses.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"passenger_count": count}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) InsertJourney(ctx context.Context, journey *models.Journey) error {
	if journey.ID.IsZero() {
		journey.ID = primitive.NewObjectID()
	}
	_, err := s.Journeys.InsertOne(ctx, journey)
	return err
}

func (s *MongoStore) FindJourneyByID(ctx context.Context, id string) (*models.Journey, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var journey models.Journey
	if err := s.Journeys.FindOne(ctx, bson.M{"_id": oid}).Decode(&journey); err != nil {
		return nil, mapErr(err)
	}
	return &journey, nil
}

func (s *MongoStore) UpdateJourney(ctx context.Context, journey *models.Journey) error {
	result, err := s.Journeys.ReplaceOne(ctx, bson.M{"_id": journey.ID}, journey)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) FindJourneysInProgress(ctx context.Context, routeID string) ([]models.Journey, error) {
	filter := bson.M{"route_id": routeID, "status": models.JourneyInProgress}
	cursor, err := s.Journeys.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var journeys []models.Journey
	if err := cursor.All(ctx, &journeys); err != nil {
		return nil, err
	}
	return journeys, nil
}

func (s *MongoStore) InsertBoardEvent(ctx context.Context, event *models.BoardEvent) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	_, err := s.BoardEvents.InsertOne(ctx, event)
	return err
}

func (s *MongoStore) FindBoardEvents(ctx context.Context, journeyID string, from, to time.Time) ([]models.BoardEvent, error) {
	filter := bson.M{
		"journey_id": journeyID,
		"time":       bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: 1}})
	cursor, err := s.BoardEvents.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var events []models.BoardEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *MongoStore) FindLatestBoardEvent(ctx context.Context, journeyID, stopID string) (*models.BoardEvent, error) {
	filter := bson.M{"journey_id": journeyID, "stop_id": stopID}
	opts := options.FindOne().SetSort(bson.D{{Key: "time", Value: -1}})
	var event models.BoardEvent
	if err := s.BoardEvents.FindOne(ctx, filter, opts).Decode(&event); err != nil {
		return nil, mapErr(err)
	}
	return &event, nil
}

func (s *MongoStore) InsertLocationEvent(ctx context.Context, event *models.LocationEvent) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	_, err := s.LocationEvents.InsertOne(ctx, event)
	return err
}

func (s *MongoStore) FindLatestLocationEvent(ctx context.Context, journeyID string) (*models.LocationEvent, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "time", Value: -1}})
	var event models.LocationEvent
	if err := s.LocationEvents.FindOne(ctx, bson.M{"journey_id": journeyID}, opts).Decode(&event); err != nil {
		return nil, mapErr(err)
	}
	return &event, nil
}

func (s *MongoStore) FindSchedule(ctx context.Context, routeID, stopID string) (*models.Schedule, error) {
	filter := bson.M{"route_id": routeID, "stop_id": stopID}
	var schedule models.Schedule
	if err := s.Schedules.FindOne(ctx, filter).Decode(&schedule); err != nil {
		return nil, mapErr(err)
	}
	return &schedule, nil
}

func (s *MongoStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := s.Users.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}
