package proximity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/transitpulse/bustracker/internal/models"
)

// ErrMatrixNotConfigured is returned when no routing-service credential is
// available. It triggers the haversine fallback like any other matrix error.
var ErrMatrixNotConfigured = errors.New("distance matrix service not configured")

// MatrixClient answers a distance-matrix query: distances (meters) and
// durations (seconds) from the first location to each of the remaining ones.
type MatrixClient interface {
	Matrix(ctx context.Context, locations []models.Location) (distances, durations []float64, err error)
	Configured() bool
}

// DefaultMatrixURL is the OpenRouteService matrix endpoint for the driving
// profile.
const DefaultMatrixURL = "https://api.openrouteservice.org/v2/matrix/driving-car"

// ORSClient is a MatrixClient backed by the OpenRouteService matrix API.
type ORSClient struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewORSClient creates a client for the given credential. An empty key is
// allowed; calls then fail with ErrMatrixNotConfigured.
func NewORSClient(apiKey string) *ORSClient {
	return &ORSClient{
		APIKey:     apiKey,
		BaseURL:    DefaultMatrixURL,
		HTTPClient: http.DefaultClient,
	}
}

// Configured reports whether a service credential is present.
func (c *ORSClient) Configured() bool {
	return c.APIKey != ""
}

type orsMatrixRequest struct {
	Locations [][2]float64 `json:"locations"`
	Metrics   []string     `json:"metrics"`
	Units     string       `json:"units"`
}

type orsMatrixResponse struct {
	Distances [][]float64 `json:"distances"`
	Durations [][]float64 `json:"durations"`
}

// Matrix performs a single matrix call. The first location is the origin;
// the returned slices hold one entry per destination, in order.
func (c *ORSClient) Matrix(ctx context.Context, locations []models.Location) ([]float64, []float64, error) {
	if !c.Configured() {
		return nil, nil, ErrMatrixNotConfigured
	}

	// ORS expects [lng, lat] pairs.
	coords := make([][2]float64, len(locations))
	for i, loc := range locations {
		coords[i] = [2]float64{loc.Lng, loc.Lat}
	}
	payload, err := json.Marshal(orsMatrixRequest{
		Locations: coords,
		Metrics:   []string{"distance", "duration"},
		Units:     "m",
	})
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, nil, fmt.Errorf("matrix service returned %s: %s", resp.Status, body)
	}

	var matrix orsMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&matrix); err != nil {
		return nil, nil, err
	}
	if len(matrix.Distances) == 0 || len(matrix.Durations) == 0 {
		return nil, nil, errors.New("matrix service returned empty result")
	}

	// Row 0 holds the values from the origin; entry 0 is the origin itself.
	distances := matrix.Distances[0]
	durations := matrix.Durations[0]
	if len(distances) != len(locations) || len(durations) != len(locations) {
		return nil, nil, errors.New("matrix service returned mismatched result")
	}
	return distances[1:], durations[1:], nil
}
