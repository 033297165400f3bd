package dataset

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"flightpulse/delaydash/internal/logging"
)

// Sheet names the workbook must contain
const (
	SheetFlights  = "flights"
	SheetAirports = "airports"
	SheetAirlines = "airlines"
	SheetAircraft = "aircrafts"
)

// Load opens the workbook at path and builds the in-memory dataset.
// allowList restricts flights and airports to the given origin codes.
func Load(path string, allowList []string) (*Store, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	return loadWorkbook(f, allowList)
}

// LoadReader builds the dataset from an already-open workbook stream
func LoadReader(r io.Reader, allowList []string) (*Store, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return loadWorkbook(f, allowList)
}

func loadWorkbook(f *excelize.File, allowList []string) (*Store, error) {
	allowed := make(map[string]bool, len(allowList))
	for _, code := range allowList {
		allowed[strings.ToUpper(strings.TrimSpace(code))] = true
	}

	airports, err := loadAirports(f, allowed)
	if err != nil {
		return nil, err
	}
	airlines, err := loadAirlines(f)
	if err != nil {
		return nil, err
	}
	aircraft, err := loadAircraft(f)
	if err != nil {
		return nil, err
	}

	store := &Store{
		Airports: airports,
		Airlines: airlines,
		Aircraft: aircraft,
		LoadedAt: time.Now(),
	}

	if err := loadFlights(f, allowed, store); err != nil {
		return nil, err
	}

	logging.Info("Workbook loaded",
		"flights", len(store.Flights),
		"airports", len(store.Airports),
		"airlines", len(store.Airlines),
		"aircraft", len(store.Aircraft),
	)

	return store, nil
}

// sheetTable reads a sheet into a header index plus the remaining rows.
// Header names are matched case-insensitively.
func sheetTable(f *excelize.File, sheet string, required []string) (map[string]int, [][]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("missing sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := header[name]; !ok {
			return nil, nil, fmt.Errorf("sheet %q is missing column %q", sheet, name)
		}
	}
	return header, rows[1:], nil
}

// cell returns the trimmed value at column idx, or "" past the row end.
// excelize truncates trailing empty cells per row.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func loadAirports(f *excelize.File, allowed map[string]bool) ([]Airport, error) {
	header, rows, err := sheetTable(f, SheetAirports, []string{"airport_code", "name", "latitude", "longitude"})
	if err != nil {
		return nil, err
	}

	airports := make([]Airport, 0, len(rows))
	for _, row := range rows {
		code := strings.ToUpper(cell(row, header["airport_code"]))
		if code == "" || !allowed[code] {
			continue
		}

		a := Airport{
			Code: code,
			Name: cell(row, header["name"]),
		}

		lat, latErr := strconv.ParseFloat(cell(row, header["latitude"]), 64)
		lon, lonErr := strconv.ParseFloat(cell(row, header["longitude"]), 64)
		if latErr == nil && lonErr == nil && validCoords(lat, lon) {
			a.Latitude = lat
			a.Longitude = lon
			a.HasCoords = true
		} else {
			logging.Warn("Airport has invalid coordinates, map marker suppressed", "airport", code)
		}

		airports = append(airports, a)
	}

	if len(airports) == 0 {
		return nil, fmt.Errorf("sheet %q has no allow-listed airports", SheetAirports)
	}
	return airports, nil
}

func validCoords(lat, lon float64) bool {
	if lat == 0 && lon == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func loadAirlines(f *excelize.File) ([]Airline, error) {
	header, rows, err := sheetTable(f, SheetAirlines, []string{"airline_id", "airline"})
	if err != nil {
		return nil, err
	}

	airlines := make([]Airline, 0, len(rows))
	for _, row := range rows {
		id := cell(row, header["airline_id"])
		name := cell(row, header["airline"])
		if id == "" || name == "" {
			continue
		}
		airlines = append(airlines, Airline{ID: id, Name: name})
	}
	return airlines, nil
}

func loadAircraft(f *excelize.File) (map[string]Aircraft, error) {
	header, rows, err := sheetTable(f, SheetAircraft, []string{"aircraft_id"})
	if err != nil {
		return nil, err
	}

	aircraft := make(map[string]Aircraft, len(rows))
	for _, row := range rows {
		id := cell(row, header["aircraft_id"])
		if id == "" {
			continue
		}
		seats, _ := strconv.Atoi(cell(row, header["seats"]))
		aircraft[id] = Aircraft{
			ID:           id,
			Manufacturer: cell(row, header["manufacturer"]),
			Model:        cell(row, header["model"]),
			Seats:        seats,
		}
	}
	return aircraft, nil
}

func loadFlights(f *excelize.File, allowed map[string]bool, store *Store) error {
	header, rows, err := sheetTable(f, SheetFlights,
		[]string{"flight", "origin", "airline_id", "aircraft_id", "scheduled_departure", "departure_delay"})
	if err != nil {
		return err
	}

	airlinesByID := make(map[string]string, len(store.Airlines))
	for _, a := range store.Airlines {
		airlinesByID[a.ID] = a.Name
	}
	airportsByCode := make(map[string]*Airport, len(store.Airports))
	for i := range store.Airports {
		airportsByCode[store.Airports[i].Code] = &store.Airports[i]
	}

	cancelledIdx, hasCancelled := header["cancelled"]
	departureIdx, hasDeparture := header["departure"]

	skipped := 0
	for _, row := range rows {
		origin := strings.ToUpper(cell(row, header["origin"]))
		if origin == "" || !allowed[origin] {
			skipped++
			continue
		}

		sched, err := parseTimestamp(cell(row, header["scheduled_departure"]))
		if err != nil {
			skipped++
			continue
		}

		r := Row{
			FlightNumber:       cell(row, header["flight"]),
			Origin:             origin,
			AirlineID:          cell(row, header["airline_id"]),
			AircraftID:         cell(row, header["aircraft_id"]),
			ScheduledDeparture: sched,
			Delay:              parseDelay(cell(row, header["departure_delay"])),
		}

		if hasDeparture {
			if dep, err := parseTimestamp(cell(row, departureIdx)); err == nil {
				r.ActualDeparture = dep
			}
		}
		if hasCancelled {
			r.Cancelled = parseBool(cell(row, cancelledIdx))
		}

		// Joins are best-effort: unmatched codes leave zero values
		r.AirlineName = airlinesByID[r.AirlineID]
		r.Airport = airportsByCode[origin]
		if ac, ok := store.Aircraft[r.AircraftID]; ok {
			acCopy := ac
			r.Aircraft = &acCopy
		}

		r.Date = time.Date(sched.Year(), sched.Month(), sched.Day(), 0, 0, 0, 0, time.UTC)
		r.Weekday = sched.Weekday()
		r.Hour = sched.Hour()
		r.Month = sched.Month()
		r.Category = Categorize(r.Delay)

		if store.MinDate.IsZero() || r.Date.Before(store.MinDate) {
			store.MinDate = r.Date
		}
		if r.Date.After(store.MaxDate) {
			store.MaxDate = r.Date
		}

		store.Flights = append(store.Flights, r)
	}

	if skipped > 0 {
		logging.Warn("Skipped flight rows during load", "skipped", skipped)
	}
	if len(store.Flights) == 0 {
		return fmt.Errorf("sheet %q has no loadable flights", SheetFlights)
	}
	return nil
}

// timestampLayouts covers the formats excelize renders datetime cells in,
// plus ISO strings for workbooks exported from other tools
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04",
	"01-02-06 15:04",
	"1/2/06 15:04",
	"1/2/2006 15:04",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	// Numeric cells come through as an Excel serial date
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// parseDelay returns nil for missing or non-numeric delay cells
func parseDelay(s string) *float64 {
	if s == "" {
		return nil
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &d
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}
