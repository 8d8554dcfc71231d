package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/atollhop/ops-api/models"
)

// IslandStore defines the interface for island and lookup-table reads
type IslandStore interface {
	SearchIslands(ctx context.Context, query string) ([]models.Island, error)
	GetLocations(ctx context.Context) ([]string, error)
	GetTransportTypes(ctx context.Context) ([]string, error)
}

// IslandHandler handles HTTP requests for islands and dropdown data.
type IslandHandler struct {
	store IslandStore
}

// NewIslandHandler creates a new handler with the given store.
func NewIslandHandler(store IslandStore) *IslandHandler {
	return &IslandHandler{store: store}
}

// SearchIslandsResponse is the JSON response structure for GET /api/islands
type SearchIslandsResponse struct {
	Data []models.Island `json:"data"`
}

// Search handles GET /api/islands?name=. An empty query returns an
// empty result rather than an error.
func (h *IslandHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.URL.Query().Get("name")

	islands, err := h.store.SearchIslands(ctx, name)
	if err != nil {
		log.Printf("island search failed: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to retrieve islands"})
		return
	}

	if islands == nil {
		islands = []models.Island{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(SearchIslandsResponse{Data: islands})
}

// Locations handles GET /api/locations.
func (h *IslandHandler) Locations(w http.ResponseWriter, r *http.Request) {
	h.stringList(w, r, h.store.GetLocations, "Failed to retrieve locations")
}

// TransportTypes handles GET /api/transport-types.
func (h *IslandHandler) TransportTypes(w http.ResponseWriter, r *http.Request) {
	h.stringList(w, r, h.store.GetTransportTypes, "Failed to retrieve transport types")
}

func (h *IslandHandler) stringList(w http.ResponseWriter, r *http.Request, fetch func(context.Context) ([]string, error), errMsg string) {
	values, err := fetch(r.Context())
	if err != nil {
		log.Printf("%s: %v", errMsg, err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ErrorResponse{Error: errMsg})
		return
	}

	if values == nil {
		values = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string][]string{"data": values})
}
