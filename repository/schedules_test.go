package repository

import (
	"strings"
	"testing"

	"github.com/atollhop/ops-api/models"
)

func int64Ptr(v int64) *int64 { return &v }

func float64Ptr(v float64) *float64 { return &v }

func TestScheduleDayNames(t *testing.T) {
	s := models.RawSchedule{
		Origin:       "Male",
		Destination:  "Maafushi",
		ScheduleDays: []int{0, 4, 6},
	}
	names, err := scheduleDayNames(&s)
	if err != nil {
		t.Fatalf("scheduleDayNames failed: %v", err)
	}
	want := []string{"monday", "friday", "sunday"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	s.ScheduleDays = []int{7}
	if _, err := scheduleDayNames(&s); err == nil {
		t.Error("day 7 should be rejected")
	}
	s.ScheduleDays = []int{-1}
	if _, err := scheduleDayNames(&s); err == nil {
		t.Error("day -1 should be rejected")
	}
}

func TestResolveStopIDs(t *testing.T) {
	composite := models.RawSchedule{
		Origin:      "Male",
		Destination: "Guraidhoo",
		Stops: []models.Stop{
			{IslandName: "Maafushi"},
			{IslandName: "Gulhi"},
		},
	}
	idByPath := map[string]int64{
		"Male→Maafushi":   11,
		"Maafushi→Gulhi":  12,
		"Gulhi→Guraidhoo": 13,
		"Male→Guraidhoo":  99, // the composite itself; must not be used
	}

	ids, err := resolveStopIDs(&composite, idByPath)
	if err != nil {
		t.Fatalf("resolveStopIDs failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != 11 || ids[1] != 12 {
		t.Errorf("got %v, want [11 12]", ids)
	}
}

func TestResolveStopIDsMissingAtomic(t *testing.T) {
	composite := models.RawSchedule{
		Origin:      "Male",
		Destination: "Guraidhoo",
		Stops:       []models.Stop{{IslandName: "Maafushi"}},
	}

	_, err := resolveStopIDs(&composite, map[string]int64{})
	if err == nil {
		t.Fatal("missing atomic schedule should be a consistency error")
	}
	if !strings.Contains(err.Error(), "Male") || !strings.Contains(err.Error(), "Maafushi") {
		t.Errorf("error should name the missing hop, got %q", err)
	}
}

func TestResolveStopIDsNoStops(t *testing.T) {
	s := models.RawSchedule{Origin: "Male", Destination: "Maafushi"}
	ids, err := resolveStopIDs(&s, map[string]int64{})
	if err != nil {
		t.Fatalf("resolveStopIDs failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no stop ids, got %v", ids)
	}
}

func TestCollectRouteIDs(t *testing.T) {
	atomic := []insertedSchedule{
		{ID: 1, RouteID: int64Ptr(5)},
		{ID: 2, RouteID: nil},
		{ID: 3, RouteID: int64Ptr(6)},
	}
	composite := []insertedSchedule{
		{ID: 4, RouteID: int64Ptr(5)}, // duplicate
		{ID: 5, RouteID: int64Ptr(7)},
	}

	ids := collectRouteIDs(atomic, composite)
	if len(ids) != 3 || ids[0] != 5 || ids[1] != 6 || ids[2] != 7 {
		t.Errorf("got %v, want [5 6 7]", ids)
	}

	if ids := collectRouteIDs(nil, nil); len(ids) != 0 {
		t.Errorf("expected no ids for empty input, got %v", ids)
	}
}

func TestBuildPriceRows(t *testing.T) {
	raws := []models.RawSchedule{
		{
			Origin: "Male", Destination: "Maafushi",
			Prices: models.PriceMap{
				LocalAdult:   float64Ptr(30),
				TouristAdult: float64Ptr(25),
			},
		},
		{
			Origin: "Maafushi", Destination: "Guraidhoo",
			// no prices defined
		},
	}
	inserted := []insertedSchedule{
		{ID: 101, RouteID: int64Ptr(5)},
		{ID: 102, RouteID: nil},
	}
	opByRoute := map[int64]int64{5: 9}

	rows, err := buildPriceRows(opByRoute, inserted, raws)
	if err != nil {
		t.Fatalf("buildPriceRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 price rows, got %d", len(rows))
	}

	local := rows[0]
	if local.OperatorID != 9 || local.ScheduleID != 101 || local.Value != 30 {
		t.Errorf("unexpected local row %+v", local)
	}
	if local.CurrencyID != 1 || local.FareCategoryID != 1 || local.FareTypeID != 1 {
		t.Errorf("local adult taxonomy wrong: %+v", local)
	}

	tourist := rows[1]
	if tourist.CurrencyID != 2 || tourist.FareCategoryID != 3 || tourist.FareTypeID != 1 {
		t.Errorf("tourist adult taxonomy wrong: %+v", tourist)
	}
	if tourist.Value != 25 {
		t.Errorf("tourist value = %v, want 25", tourist.Value)
	}
}

func TestBuildPriceRowsZeroFare(t *testing.T) {
	raws := []models.RawSchedule{{
		Origin: "Male", Destination: "Maafushi",
		Prices: models.PriceMap{LocalInfant: float64Ptr(0)},
	}}
	inserted := []insertedSchedule{{ID: 101, RouteID: int64Ptr(5)}}

	rows, err := buildPriceRows(map[int64]int64{5: 9}, inserted, raws)
	if err != nil {
		t.Fatalf("buildPriceRows failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Value != 0 {
		t.Fatalf("a zero fare must produce a row, got %v", rows)
	}
}

func TestBuildPriceRowsPricedScheduleWithoutRoute(t *testing.T) {
	raws := []models.RawSchedule{{
		Origin: "Male", Destination: "Guraidhoo",
		Prices: models.PriceMap{LocalAdult: float64Ptr(30)},
	}}
	inserted := []insertedSchedule{{ID: 101, RouteID: nil}}

	if _, err := buildPriceRows(map[int64]int64{}, inserted, raws); err == nil {
		t.Fatal("a priced schedule with no route must abort the batch")
	}
}

func TestBuildPriceRowsUnknownOperator(t *testing.T) {
	raws := []models.RawSchedule{{
		Origin: "Male", Destination: "Maafushi",
		Prices: models.PriceMap{LocalAdult: float64Ptr(30)},
	}}
	inserted := []insertedSchedule{{ID: 101, RouteID: int64Ptr(5)}}

	if _, err := buildPriceRows(map[int64]int64{}, inserted, raws); err == nil {
		t.Fatal("a priced schedule whose route has no operator must abort the batch")
	}
}
