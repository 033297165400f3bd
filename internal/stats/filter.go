package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"flightpulse/delaydash/internal/dataset"
)

// FilterSpec is a user-selected slice of the flights table. Empty airport
// or airline sets mean "no restriction"; zero From/To leave that side of
// the date range open. Dates are inclusive calendar days.
type FilterSpec struct {
	Airports []string  `json:"airports"`
	Airlines []string  `json:"airlines"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`

	// OnTimeThreshold is the delay in minutes at or below which a flight
	// counts as on time. Zero is a real threshold when HasOnTimeThreshold
	// is set; otherwise the configured default applies.
	OnTimeThreshold float64 `json:"on_time_threshold"`
	// HasOnTimeThreshold records that OnTimeThreshold was given
	// explicitly, so an explicit zero survives normalization.
	HasOnTimeThreshold bool `json:"-"`
	// SevereThreshold is the delay in minutes above which a flight counts
	// as severely delayed. Zero means "use the configured default".
	SevereThreshold float64 `json:"severe_threshold"`
}

// Key returns a canonical cache key for the spec. Order of the selected
// sets does not matter.
func (f FilterSpec) Key() string {
	airports := normalizeSet(f.Airports, strings.ToUpper)
	airlines := normalizeSet(f.Airlines, nil)

	from, to := "", ""
	if !f.From.IsZero() {
		from = f.From.Format("2006-01-02")
	}
	if !f.To.IsZero() {
		to = f.To.Format("2006-01-02")
	}

	return fmt.Sprintf("ap=%s|al=%s|from=%s|to=%s|ot=%g|sv=%g",
		strings.Join(airports, ","),
		strings.Join(airlines, ","),
		from, to,
		f.OnTimeThreshold, f.SevereThreshold,
	)
}

func normalizeSet(values []string, mapFn func(string) string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if mapFn != nil {
			v = mapFn(v)
		}
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Matches reports whether a row passes the filter
func (f FilterSpec) Matches(r dataset.Row) bool {
	if len(f.Airports) > 0 && !containsFold(f.Airports, r.Origin) {
		return false
	}
	if len(f.Airlines) > 0 && !containsFold(f.Airlines, r.AirlineName) {
		return false
	}
	if !f.From.IsZero() && r.Date.Before(day(f.From)) {
		return false
	}
	if !f.To.IsZero() && r.Date.After(day(f.To)) {
		return false
	}
	return true
}

// Apply returns the subset of rows passing the filter. The result is a
// new slice; the input is never mutated.
func Apply(rows []dataset.Row, f FilterSpec) []dataset.Row {
	out := make([]dataset.Row, 0, len(rows))
	for _, r := range rows {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
