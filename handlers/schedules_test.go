package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atollhop/ops-api/models"
)

type fakeScheduleStore struct {
	insertErr error
	listErr   error

	gotRaws   []models.RawSchedule
	gotFilter models.ScheduleFilter

	result    models.BatchInsertResult
	schedules []models.ScheduleData
	total     int
}

func (f *fakeScheduleStore) InsertSchedulesBatch(ctx context.Context, raws []models.RawSchedule) (models.BatchInsertResult, error) {
	f.gotRaws = raws
	if f.insertErr != nil {
		return models.BatchInsertResult{}, f.insertErr
	}
	return f.result, nil
}

func (f *fakeScheduleStore) ListSchedules(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleData, int, error) {
	f.gotFilter = filter
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.schedules, f.total, nil
}

type fakeLookups struct{}

func (fakeLookups) FindIslandID(ctx context.Context, name string) (*int64, error) {
	return nil, nil
}

func (fakeLookups) FindDirectRouteID(ctx context.Context, origin, destination string) (*int64, error) {
	return nil, nil
}

const validScheduleJSON = `[{
	"origin": "Male",
	"destination": "Maafushi",
	"routeId": 5,
	"scheduleDays": [0, 2],
	"departureTime": "09:00:00",
	"arrivalTime": "10:00:00",
	"prices": {"localAdult": 30}
}]`

func TestBatchInsertSuccess(t *testing.T) {
	store := &fakeScheduleStore{
		result: models.BatchInsertResult{InsertedAtomic: 1, InsertedPrices: 1},
	}
	h := NewScheduleHandler(store, fakeLookups{})

	req := httptest.NewRequest(http.MethodPost, "/api/schedules/batch", strings.NewReader(validScheduleJSON))
	w := httptest.NewRecorder()
	h.BatchInsert(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp BatchInsertResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.InsertedAtomic != 1 || resp.InsertedPrices != 1 {
		t.Errorf("unexpected counts %+v", resp.BatchInsertResult)
	}
	if len(store.gotRaws) != 1 || store.gotRaws[0].Origin != "Male" {
		t.Errorf("store received wrong batch: %+v", store.gotRaws)
	}
}

func TestBatchInsertRejectsBadBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty array", `[]`},
		{"not an array", `{"origin": "Male"}`},
		{"malformed json", `[{`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeScheduleStore{}
			h := NewScheduleHandler(store, fakeLookups{})

			req := httptest.NewRequest(http.MethodPost, "/api/schedules/batch", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.BatchInsert(w, req)

			if w.Code != http.StatusUnprocessableEntity {
				t.Errorf("expected 422, got %d", w.Code)
			}
			if store.gotRaws != nil {
				t.Error("store must not be called for an invalid body")
			}
		})
	}
}

func TestBatchInsertRejectsInvalidSchedule(t *testing.T) {
	body := `[{
		"origin": "Male",
		"destination": "Maafushi",
		"scheduleDays": [9],
		"departureTime": "09:00:00",
		"arrivalTime": "10:00:00"
	}]`

	store := &fakeScheduleStore{}
	h := NewScheduleHandler(store, fakeLookups{})

	req := httptest.NewRequest(http.MethodPost, "/api/schedules/batch", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.BatchInsert(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if !strings.Contains(resp.Error, "schedule day") {
		t.Errorf("error should name the invalid day, got %q", resp.Error)
	}
	if store.gotRaws != nil {
		t.Error("store must not be called for an invalid schedule")
	}
}

func TestBatchInsertStoreErrorIsOpaque(t *testing.T) {
	store := &fakeScheduleStore{insertErr: errors.New("missing atomic schedule for \"Male\"→\"Maafushi\"")}
	h := NewScheduleHandler(store, fakeLookups{})

	req := httptest.NewRequest(http.MethodPost, "/api/schedules/batch", strings.NewReader(validScheduleJSON))
	w := httptest.NewRecorder()
	h.BatchInsert(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error != "Internal error" {
		t.Errorf("store errors must not leak to clients, got %q", resp.Error)
	}
}

func TestPreview(t *testing.T) {
	body := `{
		"legs": [{
			"origin": "Male",
			"destination": "Maafushi",
			"departureTime": "09:00",
			"departureMeridiem": "AM",
			"arrivalTime": "10:00",
			"arrivalMeridiem": "AM",
			"selectedRouteId": 5
		}],
		"scheduleDays": [0]
	}`

	h := NewScheduleHandler(&fakeScheduleStore{}, fakeLookups{})

	req := httptest.NewRequest(http.MethodPost, "/api/schedules/preview", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Preview(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp PreviewResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Schedules) != 1 {
		t.Fatalf("expected one previewed schedule, got %+v", resp)
	}
	if resp.Schedules[0].DepartureTime != "09:00:00" {
		t.Errorf("departure = %q, want 09:00:00", resp.Schedules[0].DepartureTime)
	}
}

func TestPreviewRejectsBadTimes(t *testing.T) {
	body := `{
		"legs": [{
			"origin": "Male",
			"destination": "Maafushi",
			"departureTime": "13:00",
			"departureMeridiem": "AM",
			"arrivalTime": "10:00",
			"arrivalMeridiem": "AM",
			"selectedRouteId": 5
		}]
	}`

	h := NewScheduleHandler(&fakeScheduleStore{}, fakeLookups{})

	req := httptest.NewRequest(http.MethodPost, "/api/schedules/preview", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Preview(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
}

func TestListPassesFilter(t *testing.T) {
	store := &fakeScheduleStore{
		schedules: []models.ScheduleData{{ID: 1, OriginName: "Male"}},
		total:     1,
	}
	h := NewScheduleHandler(store, fakeLookups{})

	req := httptest.NewRequest(http.MethodGet,
		"/api/schedules?routeId=5&transportType=Ferry&sort=oldest&page=2&pageSize=25", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	f := store.gotFilter
	if f.RouteID == nil || *f.RouteID != 5 {
		t.Errorf("routeId not passed: %v", f.RouteID)
	}
	if f.TransportType != "Ferry" || f.Sort != "oldest" || f.Page != 2 || f.PageSize != 25 {
		t.Errorf("filter not passed through: %+v", f)
	}

	var resp ListSchedulesResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestListRejectsBadRouteID(t *testing.T) {
	h := NewScheduleHandler(&fakeScheduleStore{}, fakeLookups{})

	req := httptest.NewRequest(http.MethodGet, "/api/schedules?routeId=abc", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestListEmptyResultIsEmptyArray(t *testing.T) {
	h := NewScheduleHandler(&fakeScheduleStore{}, fakeLookups{})

	req := httptest.NewRequest(http.MethodGet, "/api/schedules", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"data":[]`) {
		t.Errorf("empty list should serialize as [], got %s", w.Body.String())
	}
}
