package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/transitpulse/bustracker/internal/db"
	"github.com/transitpulse/bustracker/internal/journey"
	"github.com/transitpulse/bustracker/internal/middleware"
	"github.com/transitpulse/bustracker/internal/models"
	"github.com/transitpulse/bustracker/internal/stats"
)

// JourneyHandler exposes the journey lifecycle, passenger ledger and stats
// operations to the action dispatcher.
type JourneyHandler struct {
	journeys *journey.Service
	stats    *stats.Engine
}

// NewJourneyHandler creates a new journey handler
func NewJourneyHandler(journeys *journey.Service, statsEngine *stats.Engine) *JourneyHandler {
	return &JourneyHandler{
		journeys: journeys,
		stats:    statsEngine,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto the dispatcher-facing taxonomy:
// not-found yields a 404 null, capacity and state violations a typed 409,
// bad input a 400.
func writeError(w http.ResponseWriter, err error) {
	var capErr *journey.CapacityError
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeJSON(w, http.StatusNotFound, nil)
	case errors.As(err, &capErr):
		writeJSON(w, http.StatusConflict, map[string]string{"error": capErr.Error()})
	case errors.Is(err, journey.ErrJourneyNotActive):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, journey.ErrNonPositiveQty):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func actor(r *http.Request) string {
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		return claims.UserID
	}
	return ""
}

type startJourneyRequest struct {
	RouteID string `json:"route_id"`
	BusID   string `json:"bus_id"`
}

// Start handles POST /api/journeys.
func (h *JourneyHandler) Start(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var req startJourneyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.RouteID == "" || req.BusID == "" {
		http.Error(w, "route_id and bus_id are required", http.StatusBadRequest)
		return
	}

	created, err := h.journeys.Start(r.Context(), actor(r), req.RouteID, req.BusID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type boardRequest struct {
	Type   string `json:"type"`
	Qty    int    `json:"qty"`
	StopID string `json:"stop_id"`
}

// Board handles POST /api/journeys/{id}/board.
func (h *JourneyHandler) Board(w http.ResponseWriter, r *http.Request) {
	var req boardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	kind, err := models.ParseBoardKind(req.Type)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	event, err := h.journeys.Board(r.Context(), actor(r), r.PathValue("id"), kind, req.Qty, req.StopID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

type trackRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Track handles POST /api/journeys/{id}/track.
func (h *JourneyHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	event, err := h.journeys.TrackEvent(r.Context(), r.PathValue("id"), req.Lat, req.Lng)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// Complete handles POST /api/journeys/{id}/complete.
func (h *JourneyHandler) Complete(w http.ResponseWriter, r *http.Request) {
	updated, err := h.journeys.Complete(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Cancel handles POST /api/journeys/{id}/cancel.
func (h *JourneyHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	updated, err := h.journeys.Cancel(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// NextStop handles POST /api/journeys/{id}/next-stop. A null stop in the
// response means the pointer could not move.
func (h *JourneyHandler) NextStop(w http.ResponseWriter, r *http.Request) {
	stop, err := h.journeys.MoveToNextStop(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"stop": stop})
}

// PreviousStop handles POST /api/journeys/{id}/previous-stop.
func (h *JourneyHandler) PreviousStop(w http.ResponseWriter, r *http.Request) {
	stop, err := h.journeys.MoveToPreviousStop(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"stop": stop})
}

// Progress handles GET /api/journeys/{id}/progress.
func (h *JourneyHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	progress, err := h.journeys.Progress(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	seats, err := h.journeys.AvailableSeats(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"progress":        progress,
		"available_seats": seats,
	})
}

// Stats handles GET /api/journeys/{id}/stats.
func (h *JourneyHandler) Stats(w http.ResponseWriter, r *http.Request) {
	report, err := h.stats.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
