package stats

import (
	"math"
	"sort"
	"strconv"
	"time"

	"flightpulse/delaydash/internal/dataset"
)

// Summary holds the KPI card values for a filtered subset. All values are
// defined for an empty subset: counts and sums are 0, averages and
// percentages report 0.
type Summary struct {
	TotalFlights int `json:"total_flights"`
	// DelaySamples is the number of flights with a known delay. Averages
	// and percentages are computed over these; rows with a missing delay
	// count toward TotalFlights only.
	DelaySamples int     `json:"delay_samples"`
	AvgDelay     float64 `json:"avg_delay"`
	MedianDelay  float64 `json:"median_delay"`
	MaxDelay     float64 `json:"max_delay"`

	OnTimePct  float64 `json:"on_time_pct"`
	DelayedPct float64 `json:"delayed_pct"`

	SevereCount int     `json:"severe_count"`
	SeverePct   float64 `json:"severe_pct"`

	// TotalDelayMinutes sums the delay of all delayed flights
	TotalDelayMinutes float64 `json:"total_delay_minutes"`
	CancelledCount    int     `json:"cancelled_count"`
}

// Bucket is a generic group-by cell: average delay and flight count
type Bucket struct {
	Key          string  `json:"key"`
	Label        string  `json:"label"`
	AvgDelay     float64 `json:"avg_delay"`
	Flights      int     `json:"flights"`
	DelaySamples int     `json:"delay_samples"`
}

// AirportBucket is the per-airport aggregation behind the map markers and
// the airport bar chart
type AirportBucket struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	HasCoords    bool    `json:"has_coords"`
	AvgDelay     float64 `json:"avg_delay"`
	Flights      int     `json:"flights"`
	DelaySamples int     `json:"delay_samples"`
}

// AirlineBucket is one row of the top-airlines table
type AirlineBucket struct {
	Name         string   `json:"name"`
	AvgDelay     float64  `json:"avg_delay"`
	Flights      int      `json:"flights"`
	DelaySamples int      `json:"delay_samples"`
	Airports     []string `json:"airports"`
}

// HeatmapCell is the average delay for one weekday/hour combination.
// Only combinations with at least one flight are emitted.
type HeatmapCell struct {
	Weekday  string  `json:"weekday"`
	Hour     int     `json:"hour"`
	AvgDelay float64 `json:"avg_delay"`
	Flights  int     `json:"flights"`
}

// HistogramBin counts flights whose delay falls in [From, To)
type HistogramBin struct {
	Label string  `json:"label"`
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Count int     `json:"count"`
}

// Result is everything one dashboard render needs, computed in a single
// pass chain over the filtered subset
type Result struct {
	Spec    FilterSpec `json:"spec"`
	Summary Summary    `json:"summary"`

	ByAirport   []AirportBucket `json:"by_airport"`
	ByDate      []Bucket        `json:"by_date"`
	ByWeekday   []Bucket        `json:"by_weekday"`
	TopAirlines []AirlineBucket `json:"top_airlines"`
	Heatmap     []HeatmapCell   `json:"heatmap"`
	Histogram   []HistogramBin  `json:"histogram"`
}

// weekdayOrder fixes the Monday-first ordering the dashboard renders
var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// TopAirlinesLimit caps the top-airlines table
const TopAirlinesLimit = 5

// Aggregate filters the rows and computes every summary the dashboard
// shows. spec thresholds must already be resolved to concrete values.
func Aggregate(rows []dataset.Row, spec FilterSpec) *Result {
	filtered := Apply(rows, spec)

	res := &Result{
		Spec:      spec,
		Summary:   summarize(filtered, spec),
		ByAirport: groupByAirport(filtered),
		ByDate:    groupByDate(filtered),
		ByWeekday: groupByWeekday(filtered),
		Heatmap:   heatmap(filtered),
		Histogram: histogram(filtered),
	}
	res.TopAirlines = topAirlines(filtered, TopAirlinesLimit)
	return res
}

func summarize(rows []dataset.Row, spec FilterSpec) Summary {
	s := Summary{TotalFlights: len(rows)}

	delays := make([]float64, 0, len(rows))
	var sum float64
	onTime, delayed := 0, 0

	for _, r := range rows {
		if r.Cancelled {
			s.CancelledCount++
		}
		if r.Delay == nil {
			continue
		}
		d := *r.Delay
		delays = append(delays, d)
		sum += d
		// Seed from the first sample so an all-early subset reports its
		// true (negative) maximum instead of 0
		if len(delays) == 1 || d > s.MaxDelay {
			s.MaxDelay = d
		}
		if d > spec.SevereThreshold {
			s.SevereCount++
		}
		if d <= spec.OnTimeThreshold {
			onTime++
		}
		if d > 0 {
			delayed++
			s.TotalDelayMinutes += d
		}
	}

	s.DelaySamples = len(delays)
	if s.DelaySamples == 0 {
		return s
	}

	s.AvgDelay = sum / float64(s.DelaySamples)
	s.MedianDelay = median(delays)
	s.OnTimePct = 100 * float64(onTime) / float64(s.DelaySamples)
	s.DelayedPct = 100 * float64(delayed) / float64(s.DelaySamples)
	s.SeverePct = 100 * float64(s.SevereCount) / float64(s.DelaySamples)
	return s
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// accumulator tracks one group-by cell
type accumulator struct {
	sum     float64
	samples int
	flights int
}

func (a *accumulator) add(r dataset.Row) {
	a.flights++
	if r.Delay != nil {
		a.sum += *r.Delay
		a.samples++
	}
}

func (a *accumulator) avg() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.sum / float64(a.samples)
}

func groupByAirport(rows []dataset.Row) []AirportBucket {
	accs := make(map[string]*accumulator)
	airports := make(map[string]*dataset.Airport)
	for _, r := range rows {
		acc, ok := accs[r.Origin]
		if !ok {
			acc = &accumulator{}
			accs[r.Origin] = acc
			airports[r.Origin] = r.Airport
		}
		acc.add(r)
	}

	out := make([]AirportBucket, 0, len(accs))
	for code, acc := range accs {
		b := AirportBucket{
			Code:         code,
			AvgDelay:     acc.avg(),
			Flights:      acc.flights,
			DelaySamples: acc.samples,
		}
		if a := airports[code]; a != nil {
			b.Name = a.Name
			b.Latitude = a.Latitude
			b.Longitude = a.Longitude
			b.HasCoords = a.HasCoords
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func groupByDate(rows []dataset.Row) []Bucket {
	accs := make(map[time.Time]*accumulator)
	for _, r := range rows {
		acc, ok := accs[r.Date]
		if !ok {
			acc = &accumulator{}
			accs[r.Date] = acc
		}
		acc.add(r)
	}

	dates := make([]time.Time, 0, len(accs))
	for d := range accs {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]Bucket, 0, len(dates))
	for _, d := range dates {
		acc := accs[d]
		key := d.Format("2006-01-02")
		out = append(out, Bucket{
			Key:          key,
			Label:        key,
			AvgDelay:     acc.avg(),
			Flights:      acc.flights,
			DelaySamples: acc.samples,
		})
	}
	return out
}

func groupByWeekday(rows []dataset.Row) []Bucket {
	accs := make(map[time.Weekday]*accumulator, 7)
	for _, r := range rows {
		acc, ok := accs[r.Weekday]
		if !ok {
			acc = &accumulator{}
			accs[r.Weekday] = acc
		}
		acc.add(r)
	}

	// Always emit all seven days, Monday first, zeros for empty days
	out := make([]Bucket, 0, 7)
	for _, wd := range weekdayOrder {
		b := Bucket{Key: wd.String(), Label: wd.String()}
		if acc, ok := accs[wd]; ok {
			b.AvgDelay = acc.avg()
			b.Flights = acc.flights
			b.DelaySamples = acc.samples
		}
		out = append(out, b)
	}
	return out
}

func topAirlines(rows []dataset.Row, limit int) []AirlineBucket {
	accs := make(map[string]*accumulator)
	airportSets := make(map[string]map[string]bool)
	for _, r := range rows {
		if r.AirlineName == "" {
			// unjoinable airline codes are not displayable
			continue
		}
		acc, ok := accs[r.AirlineName]
		if !ok {
			acc = &accumulator{}
			accs[r.AirlineName] = acc
			airportSets[r.AirlineName] = make(map[string]bool)
		}
		acc.add(r)
		airportSets[r.AirlineName][r.Origin] = true
	}

	out := make([]AirlineBucket, 0, len(accs))
	for name, acc := range accs {
		codes := make([]string, 0, len(airportSets[name]))
		for code := range airportSets[name] {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		out = append(out, AirlineBucket{
			Name:         name,
			AvgDelay:     acc.avg(),
			Flights:      acc.flights,
			DelaySamples: acc.samples,
			Airports:     codes,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgDelay != out[j].AvgDelay {
			return out[i].AvgDelay > out[j].AvgDelay
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func heatmap(rows []dataset.Row) []HeatmapCell {
	type cellKey struct {
		wd   time.Weekday
		hour int
	}
	accs := make(map[cellKey]*accumulator)
	for _, r := range rows {
		k := cellKey{r.Weekday, r.Hour}
		acc, ok := accs[k]
		if !ok {
			acc = &accumulator{}
			accs[k] = acc
		}
		acc.add(r)
	}

	out := make([]HeatmapCell, 0, len(accs))
	for _, wd := range weekdayOrder {
		for hour := 0; hour < 24; hour++ {
			if acc, ok := accs[cellKey{wd, hour}]; ok {
				out = append(out, HeatmapCell{
					Weekday:  wd.String(),
					Hour:     hour,
					AvgDelay: acc.avg(),
					Flights:  acc.flights,
				})
			}
		}
	}
	return out
}

// histogramEdges are the fixed bin boundaries of the delay distribution
// chart, minutes
var histogramEdges = []float64{-15, 0, 15, 30, 45, 60, 90, 120}

func histogram(rows []dataset.Row) []HistogramBin {
	bins := make([]HistogramBin, 0, len(histogramEdges)+1)

	lower := math.Inf(-1)
	for _, edge := range histogramEdges {
		bins = append(bins, HistogramBin{
			Label: binLabel(lower, edge),
			From:  lower,
			To:    edge,
		})
		lower = edge
	}
	bins = append(bins, HistogramBin{
		Label: binLabel(lower, math.Inf(1)),
		From:  lower,
		To:    math.Inf(1),
	})

	for _, r := range rows {
		if r.Delay == nil {
			continue
		}
		d := *r.Delay
		for i := range bins {
			if d >= bins[i].From && d < bins[i].To {
				bins[i].Count++
				break
			}
		}
	}
	return bins
}

func binLabel(from, to float64) string {
	switch {
	case math.IsInf(from, -1):
		return "< " + strconv.FormatFloat(to, 'f', -1, 64)
	case math.IsInf(to, 1):
		return ">= " + strconv.FormatFloat(from, 'f', -1, 64)
	default:
		return strconv.FormatFloat(from, 'f', -1, 64) + " to " + strconv.FormatFloat(to, 'f', -1, 64)
	}
}
