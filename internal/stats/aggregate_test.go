package stats

import (
	"math"
	"testing"
	"time"

	"flightpulse/delaydash/internal/dataset"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummarizeWorkedExample(t *testing.T) {
	// Three EWR flights with delays 0, 10, 50 and an on-time threshold
	// of 15: two are on time, one exceeds a severe threshold of 45.
	rows := []dataset.Row{
		mkRow("F1", "EWR", "A", time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), mins(0)),
		mkRow("F2", "EWR", "A", time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), mins(10)),
		mkRow("F3", "EWR", "A", time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC), mins(50)),
	}
	spec := FilterSpec{OnTimeThreshold: 15, SevereThreshold: 45}

	s := summarize(rows, spec)

	if s.TotalFlights != 3 || s.DelaySamples != 3 {
		t.Fatalf("counts wrong: %+v", s)
	}
	if !almostEqual(s.AvgDelay, 20) {
		t.Errorf("avg delay: want 20, got %v", s.AvgDelay)
	}
	if math.Abs(s.OnTimePct-66.666666) > 0.001 {
		t.Errorf("on-time pct: want 66.67, got %v", s.OnTimePct)
	}
	if s.SevereCount != 1 {
		t.Errorf("severe count: want 1, got %d", s.SevereCount)
	}
	if !almostEqual(s.MedianDelay, 10) {
		t.Errorf("median: want 10, got %v", s.MedianDelay)
	}
	if !almostEqual(s.MaxDelay, 50) {
		t.Errorf("max: want 50, got %v", s.MaxDelay)
	}
}

func TestSummarizeEmptySet(t *testing.T) {
	s := summarize(nil, FilterSpec{OnTimeThreshold: 15, SevereThreshold: 60})

	if s.TotalFlights != 0 || s.DelaySamples != 0 {
		t.Fatalf("expected zero counts: %+v", s)
	}
	// Defined zeros, never NaN or a panic
	for name, v := range map[string]float64{
		"avg": s.AvgDelay, "median": s.MedianDelay, "max": s.MaxDelay,
		"on_time": s.OnTimePct, "delayed": s.DelayedPct, "severe": s.SeverePct,
	} {
		if v != 0 || math.IsNaN(v) {
			t.Errorf("%s should be 0 for empty set, got %v", name, v)
		}
	}
}

func TestSummarizeNullDelaysExcluded(t *testing.T) {
	rows := []dataset.Row{
		mkRow("F1", "EWR", "A", time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), mins(30)),
		mkRow("F2", "EWR", "A", time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), nil),
		mkRow("F3", "EWR", "A", time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC), nil),
	}
	s := summarize(rows, FilterSpec{OnTimeThreshold: 15, SevereThreshold: 60})

	if s.TotalFlights != 3 {
		t.Errorf("total should count null-delay rows: %d", s.TotalFlights)
	}
	if s.DelaySamples != 1 {
		t.Errorf("delay samples: want 1, got %d", s.DelaySamples)
	}
	// A null delay must not be averaged in as zero
	if !almostEqual(s.AvgDelay, 30) {
		t.Errorf("avg delay: want 30, got %v", s.AvgDelay)
	}
}

func TestSummarizeAllEarlyDepartures(t *testing.T) {
	rows := []dataset.Row{
		mkRow("F1", "EWR", "A", time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), mins(-5)),
		mkRow("F2", "EWR", "A", time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), mins(-10)),
	}
	s := summarize(rows, FilterSpec{OnTimeThreshold: 15, SevereThreshold: 60})

	// The maximum is the least-early departure, not a delay no flight had
	if !almostEqual(s.MaxDelay, -5) {
		t.Errorf("max delay: want -5, got %v", s.MaxDelay)
	}
	if !almostEqual(s.AvgDelay, -7.5) {
		t.Errorf("avg delay: want -7.5, got %v", s.AvgDelay)
	}
	if !almostEqual(s.OnTimePct, 100) {
		t.Errorf("on-time pct: want 100, got %v", s.OnTimePct)
	}
	if s.TotalDelayMinutes != 0 {
		t.Errorf("no positive delays, total should be 0: %v", s.TotalDelayMinutes)
	}
}

func TestOnTimePctBounds(t *testing.T) {
	specs := []FilterSpec{
		{OnTimeThreshold: 0.0001, SevereThreshold: 60},
		{OnTimeThreshold: 15, SevereThreshold: 60},
		{OnTimeThreshold: 90, SevereThreshold: 91},
	}
	for _, spec := range specs {
		s := summarize(testRows(), spec)
		if s.OnTimePct < 0 || s.OnTimePct > 100 {
			t.Errorf("on-time pct out of range for %q: %v", spec.Key(), s.OnTimePct)
		}
	}
}

func TestGroupByAirportRecombines(t *testing.T) {
	rows := testRows()
	spec := FilterSpec{OnTimeThreshold: 15, SevereThreshold: 60}
	res := Aggregate(rows, spec)

	// Count-weighted recombination of per-airport averages must equal
	// the ungrouped average.
	var weighted float64
	var samples int
	for _, b := range res.ByAirport {
		weighted += b.AvgDelay * float64(b.DelaySamples)
		samples += b.DelaySamples
	}
	if samples != res.Summary.DelaySamples {
		t.Fatalf("group sample counts disagree: %d vs %d", samples, res.Summary.DelaySamples)
	}
	recombined := weighted / float64(samples)
	if !almostEqual(recombined, res.Summary.AvgDelay) {
		t.Errorf("recombined avg %v != overall avg %v", recombined, res.Summary.AvgDelay)
	}
}

func TestGroupByWeekdayAlwaysSeven(t *testing.T) {
	res := Aggregate(testRows(), FilterSpec{OnTimeThreshold: 15, SevereThreshold: 60})

	if len(res.ByWeekday) != 7 {
		t.Fatalf("expected 7 weekday buckets, got %d", len(res.ByWeekday))
	}
	if res.ByWeekday[0].Key != "Monday" || res.ByWeekday[6].Key != "Sunday" {
		t.Errorf("weekday order wrong: %s .. %s", res.ByWeekday[0].Key, res.ByWeekday[6].Key)
	}
	// 2024-03-08 (Friday) has no flights in the fixture
	for _, b := range res.ByWeekday {
		if b.Key == "Friday" && (b.Flights != 0 || b.AvgDelay != 0) {
			t.Errorf("empty weekday should be zeros: %+v", b)
		}
	}
}

func TestGroupByDateSorted(t *testing.T) {
	res := Aggregate(testRows(), FilterSpec{OnTimeThreshold: 15, SevereThreshold: 60})

	for i := 1; i < len(res.ByDate); i++ {
		if res.ByDate[i-1].Key >= res.ByDate[i].Key {
			t.Fatalf("date buckets not sorted: %s before %s", res.ByDate[i-1].Key, res.ByDate[i].Key)
		}
	}
}

func TestTopAirlines(t *testing.T) {
	rows := append(testRows(),
		mkRow("??1", "EWR", "", time.Date(2024, 3, 4, 11, 0, 0, 0, time.UTC), mins(200)))

	top := topAirlines(rows, 5)

	// Unjoinable airline codes never reach the table
	for _, a := range top {
		if a.Name == "" {
			t.Fatal("unjoined airline appeared in top airlines")
		}
	}

	// United: delays 50, 90 -> avg 70; Delta: 0, 10 -> avg 5
	if top[0].Name != "United Air Lines Inc." || !almostEqual(top[0].AvgDelay, 70) {
		t.Errorf("wrong leader: %+v", top[0])
	}
	wantAirports := []string{"EWR", "JFK", "LGA"}
	if len(top[0].Airports) != len(wantAirports) {
		t.Fatalf("airports served: %v", top[0].Airports)
	}
	for i, code := range wantAirports {
		if top[0].Airports[i] != code {
			t.Errorf("airports served: want %v, got %v", wantAirports, top[0].Airports)
		}
	}

	if got := topAirlines(rows, 1); len(got) != 1 {
		t.Errorf("limit not applied: %d", len(got))
	}
}

func TestHistogramCountsMatchSamples(t *testing.T) {
	res := Aggregate(testRows(), FilterSpec{OnTimeThreshold: 15, SevereThreshold: 60})

	total := 0
	for _, bin := range res.Histogram {
		total += bin.Count
	}
	if total != res.Summary.DelaySamples {
		t.Errorf("histogram total %d != delay samples %d", total, res.Summary.DelaySamples)
	}
}

func TestHeatmapOnlyOccupiedCells(t *testing.T) {
	res := Aggregate(testRows(), FilterSpec{OnTimeThreshold: 15, SevereThreshold: 60})

	if len(res.Heatmap) == 0 {
		t.Fatal("expected heatmap cells")
	}
	for _, c := range res.Heatmap {
		if c.Flights == 0 {
			t.Errorf("empty heatmap cell emitted: %+v", c)
		}
	}
}
