package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/atollhop/ops-api/models"
)

// RouteStore defines the interface for route data operations
type RouteStore interface {
	SearchRoutes(ctx context.Context, f models.RouteFilter) ([]models.RouteData, int, error)
	AddRoute(ctx context.Context, in models.NewRouteInput) error
}

// RouteHandler handles HTTP requests for route search and creation.
type RouteHandler struct {
	store RouteStore
}

// NewRouteHandler creates a new handler with the given store.
func NewRouteHandler(store RouteStore) *RouteHandler {
	return &RouteHandler{store: store}
}

// SearchRoutesResponse is the JSON response structure for POST /api/routes
type SearchRoutesResponse struct {
	Data  []models.RouteData `json:"data"`
	Total int                `json:"total"`
}

// Search handles POST /api/routes. The first result of an exact
// origin+destination search is the "direct route" used when composite
// schedules are built.
func (h *RouteHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var filter models.RouteFilter
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid route search body"})
		return
	}

	routes, total, err := h.store.SearchRoutes(ctx, filter)
	if err != nil {
		log.Printf("route search failed: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to retrieve routes"})
		return
	}

	if routes == nil {
		routes = []models.RouteData{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(SearchRoutesResponse{Data: routes, Total: total})
}

// Add handles POST /api/routes/add.
func (h *RouteHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in models.NewRouteInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid route body"})
		return
	}
	if in.Origin == "" || in.Destination == "" || in.TransportType == "" || in.OperatorID == 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error: "origin, destination, transportType and operatorId are required",
		})
		return
	}

	if err := h.store.AddRoute(ctx, in); err != nil {
		log.Printf("route create failed: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to create route"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
