package stats

import (
	"context"
	"testing"
	"time"

	"flightpulse/delaydash/internal/common"
	"flightpulse/delaydash/internal/config"
	"flightpulse/delaydash/internal/dataset"
)

func testService() *Service {
	store := &dataset.Store{
		Flights: testRows(),
		Airports: []dataset.Airport{
			{Code: "EWR", Name: "Newark Liberty International", Latitude: 40.6925, Longitude: -74.1687, HasCoords: true},
			{Code: "JFK", Name: "John F. Kennedy International", Latitude: 40.6413, Longitude: -73.7781, HasCoords: true},
			{Code: "LGA", Name: "LaGuardia"},
		},
		Airlines: []dataset.Airline{
			{ID: "DL", Name: "Delta Air Lines Inc."},
			{ID: "UA", Name: "United Air Lines Inc."},
		},
		MinDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		MaxDate: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
	}
	return NewService(
		store,
		common.NewCacheService(60, 120),
		time.Minute,
		config.Default().Thresholds,
		nil,
	)
}

func TestServiceQueryCachesResult(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	spec := FilterSpec{Airports: []string{"EWR"}}
	first, err := svc.Query(ctx, spec)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	second, err := svc.Query(ctx, spec)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	// The in-memory cache hands back the stored pointer
	if first != second {
		t.Error("expected second query to be served from cache")
	}
	if first.Summary.TotalFlights != 3 {
		t.Errorf("expected 3 EWR flights, got %d", first.Summary.TotalFlights)
	}
}

func TestServiceNormalizeDefaults(t *testing.T) {
	svc := testService()

	spec := svc.Normalize(FilterSpec{})
	if spec.OnTimeThreshold != 15 {
		t.Errorf("default on-time threshold: want 15, got %v", spec.OnTimeThreshold)
	}
	if spec.SevereThreshold != 60 {
		t.Errorf("default severe threshold: want 60, got %v", spec.SevereThreshold)
	}

	clamped := svc.Normalize(FilterSpec{OnTimeThreshold: 500})
	if clamped.OnTimeThreshold != 90 {
		t.Errorf("threshold not clamped to slider max: %v", clamped.OnTimeThreshold)
	}
}

func TestServiceNormalizeKeepsExplicitZeroThreshold(t *testing.T) {
	svc := testService()

	spec := svc.Normalize(FilterSpec{OnTimeThreshold: 0, HasOnTimeThreshold: true})
	if spec.OnTimeThreshold != 0 {
		t.Errorf("explicit zero threshold replaced by %v", spec.OnTimeThreshold)
	}
}

func TestServiceQueryZeroThreshold(t *testing.T) {
	svc := testService()

	// EWR delays are 0, 10 and 50; at threshold 0 only the exact-on-time
	// departure qualifies
	res, err := svc.Query(context.Background(), FilterSpec{
		Airports:           []string{"EWR"},
		OnTimeThreshold:    0,
		HasOnTimeThreshold: true,
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Spec.OnTimeThreshold != 0 {
		t.Errorf("threshold rewritten to %v", res.Spec.OnTimeThreshold)
	}
	if !almostEqual(res.Summary.OnTimePct, 100.0/3.0) {
		t.Errorf("on-time pct at threshold 0: want 33.3, got %v", res.Summary.OnTimePct)
	}
}

func TestServiceQueryEmptyResult(t *testing.T) {
	svc := testService()

	res, err := svc.Query(context.Background(), FilterSpec{Airports: []string{"SWF"}})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Summary.TotalFlights != 0 {
		t.Errorf("expected empty result, got %d", res.Summary.TotalFlights)
	}
	if res.Summary.AvgDelay != 0 || res.Summary.OnTimePct != 0 {
		t.Errorf("empty result KPIs must be zeros: %+v", res.Summary)
	}
	if len(res.ByWeekday) != 7 {
		t.Errorf("weekday buckets missing for empty result: %d", len(res.ByWeekday))
	}
}

func TestServiceOptions(t *testing.T) {
	svc := testService()

	opts := svc.Options()
	if len(opts.Airports) != 3 {
		t.Errorf("expected 3 airports, got %d", len(opts.Airports))
	}
	if len(opts.Airlines) != 2 || opts.Airlines[0] != "Delta Air Lines Inc." {
		t.Errorf("airlines wrong: %v", opts.Airlines)
	}
	if opts.MinDate != "2024-03-04" || opts.MaxDate != "2024-03-09" {
		t.Errorf("date bounds wrong: %s .. %s", opts.MinDate, opts.MaxDate)
	}
}

func TestDecodeCachedFromJSONMap(t *testing.T) {
	// Simulates a result read back from the Redis backend, which loses
	// the concrete type
	res := Aggregate(testRows(), FilterSpec{OnTimeThreshold: 15, SevereThreshold: 60})

	generic := map[string]interface{}{
		"summary": map[string]interface{}{
			"total_flights": res.Summary.TotalFlights,
			"avg_delay":     res.Summary.AvgDelay,
		},
	}
	decoded, err := decodeCached(generic)
	if err != nil {
		t.Fatalf("decodeCached: %v", err)
	}
	if decoded.Summary.TotalFlights != res.Summary.TotalFlights {
		t.Errorf("round-trip lost total: %d", decoded.Summary.TotalFlights)
	}
}
