package schedule

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/atollhop/ops-api/models"
)

// Lookups resolves external identifiers while raw schedules are built.
// Implementations return (nil, nil) when nothing matches; a non-nil
// error is treated the same way by the builder, which degrades the
// field to null instead of failing the build.
type Lookups interface {
	FindIslandID(ctx context.Context, name string) (*int64, error)
	FindDirectRouteID(ctx context.Context, origin, destination string) (*int64, error)
}

// BuildInput is one schedule-creation session: the ordered legs plus
// the session-wide metadata shared by every emitted schedule.
type BuildInput struct {
	Legs []Leg `json:"legs"`

	ScheduleCode string     `json:"scheduleCode"`
	ScheduleDays []int      `json:"scheduleDays"`
	MaxCapacity  *int       `json:"maxCapacity"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`

	// Prices applies to every segment; SegmentPrices overrides single
	// fields per segment key.
	Prices        models.PriceMap            `json:"prices"`
	SegmentPrices map[string]models.PriceMap `json:"segmentPrices"`
}

// BuildRawSchedules turns a session's legs into the flat RawSchedule
// list the batch persister consumes: one atomic schedule per leg with a
// selected route, one composite schedule per valid multi-leg segment.
// Island and direct-route lookups run before any persistence; misses
// and lookup failures leave the field null rather than aborting.
func BuildRawSchedules(ctx context.Context, lk Lookups, in BuildInput) ([]models.RawSchedule, error) {
	legs := NormalizeTransport(in.Legs)
	segments := ValidSegments(legs, DeriveSegments(legs))

	out := make([]models.RawSchedule, 0, len(segments))
	for _, seg := range segments {
		raw, err := buildSegment(ctx, lk, legs, seg, in)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func buildSegment(ctx context.Context, lk Lookups, legs []Leg, seg Segment, in BuildInput) (models.RawSchedule, error) {
	dep, err := To24Hour(seg.DepartureTime, seg.DepartureMeridiem)
	if err != nil {
		return models.RawSchedule{}, fmt.Errorf("segment %s: %w", seg.Key(), err)
	}
	arr, err := To24Hour(seg.ArrivalTime, seg.ArrivalMeridiem)
	if err != nil {
		return models.RawSchedule{}, fmt.Errorf("segment %s: %w", seg.Key(), err)
	}

	raw := models.RawSchedule{
		Origin:        seg.Origin,
		Destination:   seg.Destination,
		ScheduleDays:  in.ScheduleDays,
		DepartureTime: dep,
		ArrivalTime:   arr,
		MaxCapacity:   in.MaxCapacity,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Prices:        in.Prices.Merge(in.SegmentPrices[seg.Key()]),
		Stops:         []models.Stop{},
	}
	if in.ScheduleCode != "" {
		code := in.ScheduleCode
		raw.RouteCode = &code
	}

	if seg.Atomic() {
		raw.RouteID = legs[seg.StartIdx].SelectedRouteID
		return raw, nil
	}

	stops, err := buildStops(ctx, lk, legs, seg.StartIdx, seg.EndIdx)
	if err != nil {
		return models.RawSchedule{}, err
	}
	raw.Stops = stops

	routeID, err := lk.FindDirectRouteID(ctx, seg.Origin, seg.Destination)
	if err != nil {
		log.Printf("direct route lookup failed for %s→%s: %v", seg.Origin, seg.Destination, err)
		routeID = nil
	}
	raw.RouteID = routeID
	return raw, nil
}

// buildStops resolves one stop per leg boundary of the span [i..j]:
// the incoming leg's destination island, its arrival, the outgoing
// leg's departure and the wait between them.
func buildStops(ctx context.Context, lk Lookups, legs []Leg, i, j int) ([]models.Stop, error) {
	stops := make([]models.Stop, 0, j-i)
	for p := i; p < j; p++ {
		cur, next := legs[p], legs[p+1]

		arr, err := To24Hour(cur.ArrivalTime, cur.ArrivalMeridiem)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", p, err)
		}
		dep, err := To24Hour(next.DepartureTime, next.DepartureMeridiem)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", p+1, err)
		}
		wait, err := WaitMinutes(arr, dep)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", p, err)
		}

		islandID, err := lk.FindIslandID(ctx, cur.Destination)
		if err != nil {
			log.Printf("island lookup failed for %q: %v", cur.Destination, err)
			islandID = nil
		}

		stops = append(stops, models.Stop{
			IslandID:      islandID,
			IslandName:    cur.Destination,
			ArrivalTime:   arr,
			WaitMinutes:   wait,
			DepartureTime: dep,
		})
	}
	return stops, nil
}
