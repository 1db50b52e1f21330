package handlers

import (
	"net/http"

	"github.com/transitpulse/bustracker/internal/proximity"
)

// ProximityHandler exposes the approaching-bus query.
type ProximityHandler struct {
	estimator *proximity.Estimator
}

// NewProximityHandler creates a new proximity handler
func NewProximityHandler(estimator *proximity.Estimator) *ProximityHandler {
	return &ProximityHandler{estimator: estimator}
}

// Approaching handles GET /api/stops/{id}/approaching?route=R. The response
// is always a list, empty when nothing qualifies; estimator-internal
// failures never surface as an error.
func (h *ProximityHandler) Approaching(w http.ResponseWriter, r *http.Request) {
	routeID := r.URL.Query().Get("route")
	if routeID == "" {
		http.Error(w, "route query parameter is required", http.StatusBadRequest)
		return
	}

	buses, err := h.estimator.ApproachingBuses(r.Context(), r.PathValue("id"), routeID)
	if err != nil || buses == nil {
		buses = []proximity.BusProximity{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"buses": buses})
}
