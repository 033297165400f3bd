package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"flightpulse/delaydash/internal/stats"
)

// ParseFilterSpec builds a filter spec from request query parameters.
// Airports and airlines accept repeated parameters; airports also accept
// a comma-separated list. Dates are inclusive YYYY-MM-DD.
func ParseFilterSpec(r *http.Request) (stats.FilterSpec, error) {
	q := r.URL.Query()
	var spec stats.FilterSpec

	for _, v := range q["airport"] {
		for _, code := range strings.Split(v, ",") {
			if code = strings.TrimSpace(code); code != "" {
				spec.Airports = append(spec.Airports, strings.ToUpper(code))
			}
		}
	}
	// Airline names may contain commas, so only repeated params are split
	for _, v := range q["airline"] {
		if v = strings.TrimSpace(v); v != "" {
			spec.Airlines = append(spec.Airlines, v)
		}
	}

	if v := q.Get("from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
		if err != nil {
			return spec, fmt.Errorf("invalid from date %q", v)
		}
		spec.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
		if err != nil {
			return spec, fmt.Errorf("invalid to date %q", v)
		}
		spec.To = t
	}
	if !spec.From.IsZero() && !spec.To.IsZero() && spec.To.Before(spec.From) {
		return spec, fmt.Errorf("date range ends before it starts")
	}

	if v := q.Get("threshold"); v != "" {
		th, err := strconv.ParseFloat(v, 64)
		if err != nil || th < 0 {
			return spec, fmt.Errorf("invalid threshold %q", v)
		}
		spec.OnTimeThreshold = th
		spec.HasOnTimeThreshold = true
	}

	return spec, nil
}

// FilterOptionsHandler handles GET /api/v1/options
func FilterOptionsHandler(svc *stats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := svc.Options()
		respondWithSuccess(w, http.StatusOK, &opts)
	}
}

// DashboardHandler handles GET /api/v1/dashboard and returns the full
// aggregation result for one render
func DashboardHandler(svc *stats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := query(w, r, svc)
		if !ok {
			return
		}
		respondWithSuccess(w, http.StatusOK, res)
	}
}

// SummaryHandler handles GET /api/v1/dashboard/summary (KPI cards)
func SummaryHandler(svc *stats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := query(w, r, svc)
		if !ok {
			return
		}
		respondWithSuccess(w, http.StatusOK, &res.Summary)
	}
}

// MapMarker is one airport bubble on the dashboard map
type MapMarker struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	AvgDelay  float64 `json:"avg_delay"`
	Flights   int     `json:"flights"`
}

// MapHandler handles GET /api/v1/dashboard/map. Airports without usable
// coordinates produce no marker.
func MapHandler(svc *stats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := query(w, r, svc)
		if !ok {
			return
		}

		markers := make([]MapMarker, 0, len(res.ByAirport))
		for _, b := range res.ByAirport {
			if !b.HasCoords {
				continue
			}
			markers = append(markers, MapMarker{
				Code:      b.Code,
				Name:      b.Name,
				Latitude:  b.Latitude,
				Longitude: b.Longitude,
				AvgDelay:  b.AvgDelay,
				Flights:   b.Flights,
			})
		}
		respondWithSuccess(w, http.StatusOK, &markers)
	}
}

// ByAirportHandler handles GET /api/v1/dashboard/airports (bar chart)
func ByAirportHandler(svc *stats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := query(w, r, svc)
		if !ok {
			return
		}
		respondWithSuccess(w, http.StatusOK, &res.ByAirport)
	}
}

// ByDateHandler handles GET /api/v1/dashboard/dates (trend line)
func ByDateHandler(svc *stats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := query(w, r, svc)
		if !ok {
			return
		}
		respondWithSuccess(w, http.StatusOK, &res.ByDate)
	}
}

// ByWeekdayHandler handles GET /api/v1/dashboard/weekdays
func ByWeekdayHandler(svc *stats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := query(w, r, svc)
		if !ok {
			return
		}
		respondWithSuccess(w, http.StatusOK, &res.ByWeekday)
	}
}

// HeatmapHandler handles GET /api/v1/dashboard/heatmap
func HeatmapHandler(svc *stats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := query(w, r, svc)
		if !ok {
			return
		}
		respondWithSuccess(w, http.StatusOK, &res.Heatmap)
	}
}

// HistogramHandler handles GET /api/v1/dashboard/histogram
func HistogramHandler(svc *stats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := query(w, r, svc)
		if !ok {
			return
		}
		respondWithSuccess(w, http.StatusOK, &res.Histogram)
	}
}

// TopAirlinesHandler handles GET /api/v1/dashboard/airlines
func TopAirlinesHandler(svc *stats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := query(w, r, svc)
		if !ok {
			return
		}
		respondWithSuccess(w, http.StatusOK, &res.TopAirlines)
	}
}

// query parses the filter spec and runs the aggregation, writing the
// error response itself when either step fails
func query(w http.ResponseWriter, r *http.Request, svc *stats.Service) (*stats.Result, bool) {
	spec, err := ParseFilterSpec(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	res, err := svc.Query(r.Context(), spec)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to aggregate flights: "+err.Error())
		return nil, false
	}
	return res, true
}
