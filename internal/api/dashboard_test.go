package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flightpulse/delaydash/internal/common"
	"flightpulse/delaydash/internal/config"
	"flightpulse/delaydash/internal/dataset"
	"flightpulse/delaydash/internal/stats"
)

func mins(v float64) *float64 { return &v }

func row(num, origin, airline string, sched time.Time, delay *float64, airport *dataset.Airport) dataset.Row {
	return dataset.Row{
		FlightNumber:       num,
		Origin:             origin,
		AirlineName:        airline,
		ScheduledDeparture: sched,
		Delay:              delay,
		Airport:            airport,
		Date:               time.Date(sched.Year(), sched.Month(), sched.Day(), 0, 0, 0, 0, time.UTC),
		Weekday:            sched.Weekday(),
		Hour:               sched.Hour(),
		Month:              sched.Month(),
		Category:           dataset.Categorize(delay),
	}
}

func testStatsService() *stats.Service {
	ewr := &dataset.Airport{Code: "EWR", Name: "Newark Liberty International", Latitude: 40.6925, Longitude: -74.1687, HasCoords: true}
	lga := &dataset.Airport{Code: "LGA", Name: "LaGuardia"} // no coords

	store := &dataset.Store{
		Flights: []dataset.Row{
			row("DL100", "EWR", "Delta Air Lines Inc.", time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), mins(0), ewr),
			row("DL101", "EWR", "Delta Air Lines Inc.", time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), mins(10), ewr),
			row("UA200", "EWR", "United Air Lines Inc.", time.Date(2024, 3, 6, 18, 0, 0, 0, time.UTC), mins(50), ewr),
			row("UA202", "LGA", "United Air Lines Inc.", time.Date(2024, 3, 9, 16, 0, 0, 0, time.UTC), mins(90), lga),
		},
		Airports: []dataset.Airport{*ewr, *lga},
		Airlines: []dataset.Airline{
			{ID: "DL", Name: "Delta Air Lines Inc."},
			{ID: "UA", Name: "United Air Lines Inc."},
		},
		MinDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		MaxDate: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
	}
	return stats.NewService(store, common.NewCacheService(60, 120), time.Minute, config.Default().Thresholds, nil)
}

func TestParseFilterSpec(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet,
		"/api/v1/dashboard/summary?airport=EWR,jfk&airport=LGA&airline=Delta+Air+Lines+Inc.&from=2024-03-04&to=2024-03-09&threshold=30", nil)

	spec, err := ParseFilterSpec(r)
	if err != nil {
		t.Fatalf("ParseFilterSpec: %v", err)
	}

	if len(spec.Airports) != 3 || spec.Airports[1] != "JFK" {
		t.Errorf("airports not parsed: %v", spec.Airports)
	}
	if len(spec.Airlines) != 1 || spec.Airlines[0] != "Delta Air Lines Inc." {
		t.Errorf("airlines not parsed: %v", spec.Airlines)
	}
	if spec.From.Format("2006-01-02") != "2024-03-04" {
		t.Errorf("from not parsed: %v", spec.From)
	}
	if spec.OnTimeThreshold != 30 {
		t.Errorf("threshold not parsed: %v", spec.OnTimeThreshold)
	}
}

func TestParseFilterSpecZeroThreshold(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary?threshold=0", nil)

	spec, err := ParseFilterSpec(r)
	if err != nil {
		t.Fatalf("ParseFilterSpec: %v", err)
	}
	// threshold=0 is a deliberate slider position, not an absent value
	if spec.OnTimeThreshold != 0 || !spec.HasOnTimeThreshold {
		t.Errorf("explicit zero threshold lost: %+v", spec)
	}

	absent, err := ParseFilterSpec(httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary", nil))
	if err != nil {
		t.Fatalf("ParseFilterSpec: %v", err)
	}
	if absent.HasOnTimeThreshold {
		t.Error("missing threshold param should leave the spec unset")
	}
}

func TestParseFilterSpecRejectsBadInput(t *testing.T) {
	cases := []string{
		"/x?from=yesterday",
		"/x?to=03-04-2024",
		"/x?from=2024-03-09&to=2024-03-04",
		"/x?threshold=-5",
		"/x?threshold=lots",
	}
	for _, url := range cases {
		r := httptest.NewRequest(http.MethodGet, url, nil)
		if _, err := ParseFilterSpec(r); err == nil {
			t.Errorf("expected error for %s", url)
		}
	}
}

type envelope[T any] struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Data   T      `json:"data"`
}

func TestSummaryHandler(t *testing.T) {
	handler := SummaryHandler(testStatsService())

	r := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary?airport=EWR", nil)
	w := httptest.NewRecorder()
	handler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	var resp envelope[stats.Summary]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("status: %s", resp.Status)
	}
	if resp.Data.TotalFlights != 3 {
		t.Errorf("expected 3 EWR flights, got %d", resp.Data.TotalFlights)
	}
	if resp.Data.AvgDelay != 20 {
		t.Errorf("avg delay: want 20, got %v", resp.Data.AvgDelay)
	}
}

func TestSummaryHandlerBadRequest(t *testing.T) {
	handler := SummaryHandler(testStatsService())

	r := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary?from=bogus", nil)
	w := httptest.NewRecorder()
	handler(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp envelope[any]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "error" || resp.Error == "" {
		t.Errorf("error envelope wrong: %+v", resp)
	}
}

func TestMapHandlerSuppressesMissingCoords(t *testing.T) {
	handler := MapHandler(testStatsService())

	r := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/map", nil)
	w := httptest.NewRecorder()
	handler(w, r)

	var resp envelope[[]MapMarker]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// LGA has no usable coordinates, so only EWR gets a marker
	if len(resp.Data) != 1 || resp.Data[0].Code != "EWR" {
		t.Errorf("markers wrong: %+v", resp.Data)
	}
	if resp.Data[0].Flights != 3 {
		t.Errorf("marker flight count: %d", resp.Data[0].Flights)
	}
}

func TestFilterOptionsHandler(t *testing.T) {
	handler := FilterOptionsHandler(testStatsService())

	r := httptest.NewRequest(http.MethodGet, "/api/v1/filters/options", nil)
	w := httptest.NewRecorder()
	handler(w, r)

	var resp envelope[stats.Options]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.Airports) != 2 || len(resp.Data.Airlines) != 2 {
		t.Errorf("options wrong: %+v", resp.Data)
	}
	if resp.Data.DefaultOnTimeThreshold != 15 || resp.Data.MaxOnTimeThreshold != 90 {
		t.Errorf("thresholds wrong: %+v", resp.Data)
	}
}

func TestHealthCheckHandler(t *testing.T) {
	svc := testStatsService()
	handler := HealthCheckHandler(svc.Store(), common.NewCacheService(60, 120), time.Now().Add(-time.Minute))

	r := httptest.NewRequest(http.MethodGet, "/healthCheck", nil)
	w := httptest.NewRecorder()
	handler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var body struct {
		Status   string `json:"status"`
		Services map[string]struct {
			Status string `json:"status"`
		} `json:"services"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("overall status: %s", body.Status)
	}
	if body.Services["dataset"].Status != "ok" || body.Services["cache"].Status != "ok" {
		t.Errorf("service statuses: %+v", body.Services)
	}
}
