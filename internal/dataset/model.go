package dataset

import (
	"sort"
	"time"
)

// Airport is one row of the airports sheet. Code is the unique key the
// flights sheet references as origin.
type Airport struct {
	Code      string  `json:"airport_code"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// HasCoords is false when latitude/longitude were missing or invalid.
	// Such airports never produce a map marker.
	HasCoords bool `json:"has_coords"`
}

// Airline is one row of the airlines sheet
type Airline struct {
	ID   string `json:"airline_id"`
	Name string `json:"airline"`
}

// Aircraft is one row of the aircrafts sheet
type Aircraft struct {
	ID           string `json:"aircraft_id"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Seats        int    `json:"seats"`
}

// DelayCategory bins a departure delay the way the dashboard legend does
type DelayCategory string

const (
	CategoryOnTimeEarly DelayCategory = "On Time/Early"
	CategoryMinor       DelayCategory = "Minor (1-15 min)"
	CategoryModerate    DelayCategory = "Moderate (16-60 min)"
	CategoryMajor       DelayCategory = "Major (>60 min)"
	CategoryUnknown     DelayCategory = "Unknown"
)

// Categorize returns the delay category for a delay in minutes.
// A nil delay is Unknown.
func Categorize(delay *float64) DelayCategory {
	if delay == nil {
		return CategoryUnknown
	}
	switch d := *delay; {
	case d <= 0:
		return CategoryOnTimeEarly
	case d <= 15:
		return CategoryMinor
	case d <= 60:
		return CategoryModerate
	default:
		return CategoryMajor
	}
}

// Row is one flight record joined with its airline, airport, and aircraft,
// plus the derived fields every aggregation pass uses. Rows are immutable
// once loaded.
type Row struct {
	FlightNumber       string
	Origin             string
	AirlineID          string
	AircraftID         string
	ScheduledDeparture time.Time
	ActualDeparture    time.Time // zero when the cell was empty

	// Delay is the departure delay in minutes. Nil means the cell was
	// missing or unparseable; such rows count toward totals but never
	// toward averages or threshold classifications.
	Delay     *float64
	Cancelled bool

	// Joined fields. Zero values mean the foreign code had no match.
	AirlineName string
	Airport     *Airport
	Aircraft    *Aircraft

	// Derived from ScheduledDeparture
	Date     time.Time // midnight UTC of the scheduled departure day
	Weekday  time.Weekday
	Hour     int
	Month    time.Month
	Category DelayCategory
}

// Store holds the full dataset read-only in memory for the lifetime of
// the process.
type Store struct {
	Flights  []Row
	Airports []Airport
	Airlines []Airline
	Aircraft map[string]Aircraft

	MinDate  time.Time
	MaxDate  time.Time
	LoadedAt time.Time
}

// AirportCodes returns the allow-listed airport codes in sorted order
func (s *Store) AirportCodes() []string {
	codes := make([]string, 0, len(s.Airports))
	for _, a := range s.Airports {
		codes = append(codes, a.Code)
	}
	sort.Strings(codes)
	return codes
}

// AirlineNames returns the distinct airline names in sorted order.
// Codeshare carriers can share a display name across airline IDs.
func (s *Store) AirlineNames() []string {
	names := make([]string, 0, len(s.Airlines))
	seen := make(map[string]bool, len(s.Airlines))
	for _, a := range s.Airlines {
		if seen[a.Name] {
			continue
		}
		seen[a.Name] = true
		names = append(names, a.Name)
	}
	sort.Strings(names)
	return names
}

// AirportByCode returns the airport for a code, or nil
func (s *Store) AirportByCode(code string) *Airport {
	for i := range s.Airports {
		if s.Airports[i].Code == code {
			return &s.Airports[i]
		}
	}
	return nil
}
