package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/atollhop/ops-api/models"
	"github.com/atollhop/ops-api/schedule"
)

// ScheduleStore defines the interface for schedule data operations
type ScheduleStore interface {
	InsertSchedulesBatch(ctx context.Context, raws []models.RawSchedule) (models.BatchInsertResult, error)
	ListSchedules(ctx context.Context, f models.ScheduleFilter) ([]models.ScheduleData, int, error)
}

// ScheduleHandler handles HTTP requests for schedule creation and the
// schedules list view.
type ScheduleHandler struct {
	store   ScheduleStore
	lookups schedule.Lookups
}

// NewScheduleHandler creates a new handler with the given store and the
// lookups used by the preview builder.
func NewScheduleHandler(store ScheduleStore, lookups schedule.Lookups) *ScheduleHandler {
	return &ScheduleHandler{store: store, lookups: lookups}
}

// ErrorResponse is the JSON error response structure
type ErrorResponse struct {
	Error string `json:"error"`
}

// BatchInsertResponse is the JSON response structure for POST /api/schedules/batch
type BatchInsertResponse struct {
	Status string `json:"status"`
	models.BatchInsertResult
}

// ListSchedulesResponse is the JSON response structure for GET /api/schedules
type ListSchedulesResponse struct {
	Data  []models.ScheduleData `json:"data"`
	Total int                   `json:"total"`
}

// PreviewResponse is the JSON response structure for POST /api/schedules/preview
type PreviewResponse struct {
	Schedules []models.RawSchedule `json:"schedules"`
	Count     int                  `json:"count"`
}

// BatchInsert handles POST /api/schedules/batch.
// The body must be a non-empty JSON array of raw schedules; the whole
// batch is persisted in one transaction or not at all.
func (h *ScheduleHandler) BatchInsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var raws []models.RawSchedule
	if err := json.NewDecoder(r.Body).Decode(&raws); err != nil || len(raws) == 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error: "Body must be a non-empty array of schedules",
		})
		return
	}

	for i := range raws {
		if err := raws[i].Validate(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
			return
		}
	}

	result, err := h.store.InsertSchedulesBatch(ctx, raws)
	if err != nil {
		log.Printf("schedule batch insert failed: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "Internal error"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(BatchInsertResponse{
		Status:            "ok",
		BatchInsertResult: result,
	})
}

// Preview handles POST /api/schedules/preview.
// Runs the segment deriver and raw-schedule builder server-side so the
// dashboard can show exactly what a batch submission would persist.
func (h *ScheduleHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in schedule.BuildInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid preview request body"})
		return
	}

	schedules, err := schedule.BuildRawSchedules(ctx, h.lookups, in)
	if err != nil {
		// Build failures are input problems: lookup misses never fail
		// the build, only malformed times and legs do.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
		return
	}

	if schedules == nil {
		schedules = []models.RawSchedule{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(PreviewResponse{
		Schedules: schedules,
		Count:     len(schedules),
	})
}

// List handles GET /api/schedules with the dashboard's filter, sort and
// paging query parameters.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := models.ScheduleFilter{
		StartDate:     q.Get("startDate"),
		EndDate:       q.Get("endDate"),
		TransportType: q.Get("transportType"),
		Location:      q.Get("location"),
		Search:        q.Get("search"),
		Sort:          q.Get("sort"),
	}
	if v := q.Get("routeId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "routeId must be an integer"})
			return
		}
		filter.RouteID = &id
	}
	if v := q.Get("page"); v != "" {
		filter.Page, _ = strconv.Atoi(v)
	}
	if v := q.Get("pageSize"); v != "" {
		filter.PageSize, _ = strconv.Atoi(v)
	}

	schedules, total, err := h.store.ListSchedules(ctx, filter)
	if err != nil {
		log.Printf("schedule list failed: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to retrieve schedules"})
		return
	}

	if schedules == nil {
		schedules = []models.ScheduleData{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ListSchedulesResponse{Data: schedules, Total: total})
}
