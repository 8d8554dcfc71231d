package schedule

import "fmt"

// TransportType tags a route with its mode.
type TransportType string

const (
	Ferry     TransportType = "Ferry"
	Speedboat TransportType = "Speedboat"
	Flight    TransportType = "Flight"
)

// RouteOption is one candidate route retrieved for a leg's
// origin/destination pair.
type RouteOption struct {
	ID              int64         `json:"id"`
	OriginName      string        `json:"originName"`
	DestinationName string        `json:"destinationName"`
	Duration        int           `json:"duration"`
	Price           float64       `json:"price"`
	TransportType   TransportType `json:"transportType"`
}

// Leg is one user-specified origin→destination hop with 12-hour times
// and a chosen route. SelectedRouteID stays nil until a candidate from
// RouteOptions is picked.
type Leg struct {
	Origin            string        `json:"origin"`
	Destination       string        `json:"destination"`
	DepartureTime     string        `json:"departureTime"`
	DepartureMeridiem Meridiem      `json:"departureMeridiem"`
	ArrivalTime       string        `json:"arrivalTime"`
	ArrivalMeridiem   Meridiem      `json:"arrivalMeridiem"`
	SelectedRouteID   *int64        `json:"selectedRouteId"`
	RouteOptions      []RouteOption `json:"routeResults"`
}

// selectedRoute returns the chosen candidate, or nil.
func (l *Leg) selectedRoute() *RouteOption {
	if l.SelectedRouteID == nil {
		return nil
	}
	for i := range l.RouteOptions {
		if l.RouteOptions[i].ID == *l.SelectedRouteID {
			return &l.RouteOptions[i]
		}
	}
	return nil
}

// Segment is a derived contiguous span of legs [StartIdx..EndIdx].
// StartIdx == EndIdx is an atomic segment; a larger span is composite
// and carries one intermediate stop per leg boundary.
type Segment struct {
	Origin            string        `json:"origin"`
	Destination       string        `json:"destination"`
	DepartureTime     string        `json:"departureTime"`
	DepartureMeridiem Meridiem      `json:"departureMeridiem"`
	ArrivalTime       string        `json:"arrivalTime"`
	ArrivalMeridiem   Meridiem      `json:"arrivalMeridiem"`
	Transport         TransportType `json:"transport"`
	StartIdx          int           `json:"startIdx"`
	EndIdx            int           `json:"endIdx"`
}

// Key is the segment's stable identity, used for deduplication and as
// the price-override lookup key. Two spans with equal endpoints but
// different indexes are distinct on purpose.
func (s Segment) Key() string {
	return fmt.Sprintf("%s-%s-%d-%d", s.Origin, s.Destination, s.StartIdx, s.EndIdx)
}

// Atomic reports whether the segment spans a single leg.
func (s Segment) Atomic() bool {
	return s.StartIdx == s.EndIdx
}

// NormalizeTransport clears the route selection of any leg whose chosen
// route's mode differs from the first leg's mode. All legs of one
// session travel by the same mode.
func NormalizeTransport(legs []Leg) []Leg {
	if len(legs) == 0 {
		return legs
	}
	first := legs[0].selectedRoute()
	if first == nil {
		return legs
	}
	out := make([]Leg, len(legs))
	copy(out, legs)
	for i := 1; i < len(out); i++ {
		if r := out[i].selectedRoute(); r != nil && r.TransportType != first.TransportType {
			out[i].SelectedRouteID = nil
		}
	}
	return out
}

// DeriveSegments computes every unique contiguous span of the leg list.
// For each start index the walk extends while each next leg departs
// from the running destination; the first break ends extension for that
// start. Each emitted segment takes its departure from the first leg,
// its arrival from the last leg reached, and its transport tag from the
// first leg's selected route (Ferry when unresolved).
func DeriveSegments(legs []Leg) []Segment {
	var out []Segment
	seen := make(map[string]struct{})

	for i := 0; i < len(legs); i++ {
		first := legs[i]
		curDest := first.Origin
		curArr, curArrMer := first.ArrivalTime, first.ArrivalMeridiem

		transport := Ferry
		if r := first.selectedRoute(); r != nil {
			transport = r.TransportType
		}

		for j := i; j < len(legs); j++ {
			leg := legs[j]
			if j > i && leg.Origin != curDest {
				break
			}
			curDest = leg.Destination
			curArr, curArrMer = leg.ArrivalTime, leg.ArrivalMeridiem

			seg := Segment{
				Origin:            first.Origin,
				Destination:       curDest,
				DepartureTime:     first.DepartureTime,
				DepartureMeridiem: first.DepartureMeridiem,
				ArrivalTime:       curArr,
				ArrivalMeridiem:   curArrMer,
				Transport:         transport,
				StartIdx:          i,
				EndIdx:            j,
			}
			if _, ok := seen[seg.Key()]; !ok {
				seen[seg.Key()] = struct{}{}
				out = append(out, seg)
			}
		}
	}
	return out
}

// ValidSegments keeps the segments whose every constituent leg has a
// selected route. Only valid segments are priced and persisted.
func ValidSegments(legs []Leg, segments []Segment) []Segment {
	var out []Segment
	for _, seg := range segments {
		valid := true
		for k := seg.StartIdx; k <= seg.EndIdx; k++ {
			if legs[k].SelectedRouteID == nil {
				valid = false
				break
			}
		}
		if valid {
			out = append(out, seg)
		}
	}
	return out
}
