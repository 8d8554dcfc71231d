package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"
)

var timeOfDayRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d:[0-5]\d$`)

// Stop is one intermediate call on a composite schedule, stored verbatim
// in the stop_details JSON column.
type Stop struct {
	IslandID      *int64 `json:"islandId"`
	IslandName    string `json:"islandName"`
	ArrivalTime   string `json:"arrivalTime"`
	WaitMinutes   int    `json:"waitMinutes"`
	DepartureTime string `json:"departureTime"`
}

// RawSchedule is the persistence-ready shape of one atomic leg or one
// composite segment, as posted to /api/schedules/batch.
type RawSchedule struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`

	// Nullable: composite segments with no direct route keep a NULL route.
	RouteID   *int64  `json:"routeId"`
	RouteCode *string `json:"routeCode"`

	// Monday-first weekday indexes, 0-6.
	ScheduleDays []int `json:"scheduleDays"`

	// 24-hour HH:MM:SS strings.
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`

	MaxCapacity *int `json:"maxCapacity"`

	// Absent bounds mean "always available": the row gets NOW() through
	// NOW() + 1 year at the database boundary.
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`

	Prices PriceMap `json:"prices"`

	// Empty for atomic legs.
	Stops []Stop `json:"stops"`

	// Recomputed inside the insert transaction; any client-sent value is
	// ignored.
	StopScheduleIDs []int64 `json:"stop_schedule_ids"`
}

// Composite reports whether the schedule carries intermediate stops.
func (s *RawSchedule) Composite() bool {
	return len(s.Stops) > 0
}

// PathKey identifies the origin→destination hop for stop-id resolution.
func (s *RawSchedule) PathKey() string {
	return s.Origin + "→" + s.Destination
}

// Validate checks ingress invariants before any transaction is opened.
func (s *RawSchedule) Validate() error {
	if s.Origin == "" {
		return errors.New("origin is required")
	}
	if s.Destination == "" {
		return errors.New("destination is required")
	}
	if !timeOfDayRe.MatchString(s.DepartureTime) {
		return fmt.Errorf("departureTime %q is not a HH:MM:SS time", s.DepartureTime)
	}
	if !timeOfDayRe.MatchString(s.ArrivalTime) {
		return fmt.Errorf("arrivalTime %q is not a HH:MM:SS time", s.ArrivalTime)
	}
	for _, d := range s.ScheduleDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("invalid schedule day %d for %s", d, s.PathKey())
		}
	}
	for _, st := range s.Stops {
		if st.IslandName == "" {
			return fmt.Errorf("stop without island name on %s", s.PathKey())
		}
	}
	return nil
}

// BatchInsertResult reports what one transactional batch call persisted.
type BatchInsertResult struct {
	InsertedAtomic    int `json:"insertedAtomic"`
	InsertedComposite int `json:"insertedComposite"`
	InsertedPrices    int `json:"insertedPrices"`
}

// ScheduleData is one row of the schedules list view, joined through the
// route to its endpoints and transport type.
type ScheduleData struct {
	ID              int64           `json:"id"`
	RouteID         int64           `json:"routeId"`
	OriginName      string          `json:"originName"`
	DestinationName string          `json:"destinationName"`
	TransportType   string          `json:"transportType"`
	DepartureTime   string          `json:"departureTime"`
	ArrivalTime     string          `json:"arrivalTime"`
	ScheduleDays    []string        `json:"scheduleDays"`
	RouteCode       *string         `json:"routeCode,omitempty"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	MaxCapacity     *int            `json:"maxCapacity,omitempty"`
	StopDetails     json.RawMessage `json:"stopDetails"`
}

// ScheduleFilter narrows the schedules list view.
type ScheduleFilter struct {
	RouteID       *int64 `json:"routeId"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	TransportType string `json:"transportType"`
	Location      string `json:"location"`
	Search        string `json:"search"`
	Sort          string `json:"sort"` // newest | oldest | start | end
	Page          int    `json:"page"`
	PageSize      int    `json:"pageSize"`
}
