// Package ingest records live vehicle positions published over MQTT as
// journey location events.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/transitpulse/bustracker/internal/db"
	"github.com/transitpulse/bustracker/internal/journey"
)

// positionMessage is the payload vehicles publish on bus/{journeyID}/position.
type positionMessage struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Subscriber feeds MQTT position samples into the journey service.
type Subscriber struct {
	client   mqtt.Client
	journeys *journey.Service
	topic    string
}

// NewSubscriber connects to the broker and returns a subscriber for topic,
// which must carry the journey ID in its second segment.
func NewSubscriber(brokerURL, topic string, journeys *journey.Service) (*Subscriber, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID("bustracker-ingest").
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Subscriber{client: client, journeys: journeys, topic: topic}, nil
}

// Start subscribes and processes messages until Stop is called.
func (s *Subscriber) Start() error {
	token := s.client.Subscribe(s.topic, 1, s.handleMessage)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.WithField("topic", s.topic).Info("Position ingest subscribed")
	return nil
}

// Stop unsubscribes and disconnects from the broker.
func (s *Subscriber) Stop() {
	s.client.Unsubscribe(s.topic)
	s.client.Disconnect(250)
}

func (s *Subscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	journeyID := journeyIDFromTopic(msg.Topic())
	if journeyID == "" {
		log.WithField("topic", msg.Topic()).Warn("Position message on unexpected topic")
		return
	}

	var position positionMessage
	if err := json.Unmarshal(msg.Payload(), &position); err != nil {
		log.WithError(err).WithField("topic", msg.Topic()).Warn("Invalid position payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.journeys.TrackEvent(ctx, journeyID, position.Lat, position.Lng)
	switch {
	case err == nil:
	case errors.Is(err, db.ErrNotFound), errors.Is(err, journey.ErrJourneyNotActive):
		log.WithField("journey_id", journeyID).Debug("Dropping position for inactive journey")
	default:
		log.WithError(err).WithField("journey_id", journeyID).Error("Failed to record position")
	}
}

// journeyIDFromTopic extracts the ID from bus/{journeyID}/position.
func journeyIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[2] != "position" {
		return ""
	}
	return parts[1]
}
