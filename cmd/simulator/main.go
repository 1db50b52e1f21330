package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Location mirrors the tracker's position payload.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type journeyResponse struct {
	ID string `json:"id"`
}

type stopResponse struct {
	Stop *struct {
		ID        string `json:"id"`
		StopIndex int    `json:"stop_index"`
	} `json:"stop"`
}

var authToken string

func authorizedRequest(method, url string, body *bytes.Buffer) (*http.Response, error) {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func startJourney(apiURL, routeID, busID string) (string, error) {
	payload, _ := json.Marshal(map[string]string{"route_id": routeID, "bus_id": busID})
	resp, err := authorizedRequest(http.MethodPost, apiURL+"/journeys", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to start journey: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("journey start failed with status: %d", resp.StatusCode)
	}
	var created journeyResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return created.ID, nil
}

func sendTrack(apiURL, journeyID string, position Location) {
	payload, _ := json.Marshal(position)
	resp, err := authorizedRequest(http.MethodPost, apiURL+"/journeys/"+journeyID+"/track", bytes.NewBuffer(payload))
	if err != nil {
		log.WithError(err).Error("Failed to send track event")
		return
	}
	resp.Body.Close()
}

func sendBoard(apiURL, journeyID, stopID, kind string, qty int) {
	payload, _ := json.Marshal(map[string]interface{}{"type": kind, "qty": qty, "stop_id": stopID})
	resp, err := authorizedRequest(http.MethodPost, apiURL+"/journeys/"+journeyID+"/board", bytes.NewBuffer(payload))
	if err != nil {
		log.WithError(err).Error("Failed to send board event")
		return
	}
	defer resp.Body.Close()
	log.WithFields(log.Fields{
		"journey_id": journeyID,
		"stop_id":    stopID,
		"kind":       kind,
		"qty":        qty,
		"status":     resp.Status,
	}).Info("Sent board event")
}

// nextStop advances the journey and reports the new stop, or nil at the end
// of the route.
func nextStop(apiURL, journeyID string) (*stopResponse, error) {
	resp, err := authorizedRequest(http.MethodPost, apiURL+"/journeys/"+journeyID+"/next-stop", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var moved stopResponse
	if err := json.NewDecoder(resp.Body).Decode(&moved); err != nil {
		return nil, err
	}
	return &moved, nil
}

func completeJourney(apiURL, journeyID string) {
	resp, err := authorizedRequest(http.MethodPost, apiURL+"/journeys/"+journeyID+"/complete", nil)
	if err != nil {
		log.WithError(err).Error("Failed to complete journey")
		return
	}
	resp.Body.Close()
	log.WithField("journey_id", journeyID).Info("Journey completed")
}

func jitter(base Location, meters float64) Location {
	latMetersPerDeg := 111320.0
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLng := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	return Location{Lat: base.Lat + dLat, Lng: base.Lng + dLng}
}

// simulateJourney drives one journey end to end: advance stop by stop,
// record boardings at each stop and emit position samples in between, then
// complete the journey when the route is exhausted.
func simulateJourney(apiURL, routeID, busID string, interval time.Duration, position Location) {
	journeyID, err := startJourney(apiURL, routeID, busID)
	if err != nil {
		log.WithError(err).Error("Failed to start journey")
		return
	}
	log.WithFields(log.Fields{"journey_id": journeyID, "route_id": routeID}).Info("Journey started")

	for {
		moved, err := nextStop(apiURL, journeyID)
		if err != nil {
			log.WithError(err).Error("Failed to advance journey")
			return
		}
		if moved.Stop == nil {
			break
		}

		sendBoard(apiURL, journeyID, moved.Stop.ID, "Enter", 1+rand.Intn(8))
		if rand.Intn(2) == 0 {
			sendBoard(apiURL, journeyID, moved.Stop.ID, "Exit", 1+rand.Intn(3))
		}

		// drift between stops, reporting positions
		for i := 0; i < 3; i++ {
			position = jitter(position, 200)
			sendTrack(apiURL, journeyID, position)
			time.Sleep(interval)
		}
	}

	completeJourney(apiURL, journeyID)
}

func main() {
	authToken = os.Getenv("SIM_AUTH_TOKEN")

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	interval := 2 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	// SIM_JOURNEYS is a comma-separated list of routeID:busID pairs that
	// already exist in the store.
	pairs := strings.Split(os.Getenv("SIM_JOURNEYS"), ",")
	started := 0
	for _, pair := range pairs {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		start := jitter(Location{Lat: 10.6418, Lng: -61.2832}, 2000)
		go simulateJourney(apiURL, parts[0], parts[1], interval, start)
		started++
	}

	if started == 0 {
		log.Error("No journeys configured. Set SIM_JOURNEYS=routeID:busID[,routeID:busID...]. Exiting.")
		return
	}

	log.WithFields(log.Fields{
		"journeys": started,
		"api_url":  apiURL,
		"interval": interval,
	}).Info("Journey simulation started")
	select {} // Block forever
}
