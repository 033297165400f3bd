package ui

import (
	"fmt"
	"net/http"
	"strings"

	"flightpulse/delaydash/internal/api"
	"flightpulse/delaydash/internal/logging"
)

// KPIFragmentHandler renders the KPI card grid for the current filter
// selection. Served as an HTMX fragment so the sidebar form can refresh
// the cards without a full page reload.
func (h *UIHandler) KPIFragmentHandler(w http.ResponseWriter, r *http.Request) {
	spec, err := api.ParseFilterSpec(r)
	if err != nil {
		writeFragmentError(w, "Invalid filter selection", err.Error())
		return
	}

	result, err := h.svc.Query(r.Context(), spec)
	if err != nil {
		logging.Error("KPI fragment aggregation failed", "error", err.Error())
		writeFragmentError(w, "Failed to compute KPIs", "Try adjusting the filters or reload the page.")
		return
	}

	s := result.Summary
	cards := []struct {
		Label string
		Value string
		Sub   string
	}{
		{"Total Flights", fmt.Sprintf("%d", s.TotalFlights), fmt.Sprintf("%d with delay data", s.DelaySamples)},
		{"Avg Delay", fmt.Sprintf("%.1f min", s.AvgDelay), fmt.Sprintf("median %.1f min", s.MedianDelay)},
		{"On-Time Rate", fmt.Sprintf("%.1f%%", s.OnTimePct), fmt.Sprintf("&le; %g min threshold", result.Spec.OnTimeThreshold)},
		{"Delayed", fmt.Sprintf("%.1f%%", s.DelayedPct), fmt.Sprintf("%.1f%% severe (&gt; %g min)", s.SeverePct, result.Spec.SevereThreshold)},
		{"Total Delay", fmt.Sprintf("%.0f min", s.TotalDelayMinutes), fmt.Sprintf("max %.0f min", s.MaxDelay)},
		{"Cancelled", fmt.Sprintf("%d", s.CancelledCount), "excluded from delay stats"},
	}

	var html strings.Builder
	for _, c := range cards {
		html.WriteString(fmt.Sprintf(`
        <div class="bg-white dark:bg-gray-800 rounded-lg border border-gray-200 dark:border-gray-700 shadow-md p-4">
            <p class="text-xs font-semibold text-gray-500 dark:text-gray-400 uppercase tracking-wide">%s</p>
            <p class="text-2xl font-bold text-gray-900 dark:text-white mt-1">%s</p>
            <p class="text-xs text-gray-400 dark:text-gray-500 mt-1">%s</p>
        </div>`, c.Label, c.Value, c.Sub))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html.String()))
}

// TopAirlinesFragmentHandler renders the top-airlines table for the
// current filter selection.
func (h *UIHandler) TopAirlinesFragmentHandler(w http.ResponseWriter, r *http.Request) {
	spec, err := api.ParseFilterSpec(r)
	if err != nil {
		writeFragmentError(w, "Invalid filter selection", err.Error())
		return
	}

	result, err := h.svc.Query(r.Context(), spec)
	if err != nil {
		logging.Error("Airlines fragment aggregation failed", "error", err.Error())
		writeFragmentError(w, "Failed to load airline rankings", "Try adjusting the filters or reload the page.")
		return
	}

	if len(result.TopAirlines) == 0 {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`
        <div class="text-center py-8 text-gray-500 dark:text-gray-400">
            <p class="text-sm">No airline data matches the current filters.</p>
        </div>`))
		return
	}

	var rows strings.Builder
	for i, a := range result.TopAirlines {
		rows.WriteString(fmt.Sprintf(`
            <tr class="border-b border-gray-100 dark:border-gray-700 hover:bg-gray-50 dark:hover:bg-gray-700/50">
                <td class="py-2 px-3 text-sm text-gray-500 dark:text-gray-400">%d</td>
                <td class="py-2 px-3 text-sm font-medium text-gray-900 dark:text-white">%s</td>
                <td class="py-2 px-3 text-sm text-right text-gray-700 dark:text-gray-300">%.1f</td>
                <td class="py-2 px-3 text-sm text-right text-gray-700 dark:text-gray-300">%d</td>
                <td class="py-2 px-3 text-sm text-gray-500 dark:text-gray-400">%s</td>
            </tr>`, i+1, htmlEscape(a.Name), a.AvgDelay, a.Flights, strings.Join(a.Airports, ", ")))
	}

	html := fmt.Sprintf(`
    <table class="w-full">
        <thead>
            <tr class="border-b border-gray-200 dark:border-gray-600">
                <th class="py-2 px-3 text-left text-xs font-semibold text-gray-500 dark:text-gray-400 uppercase">#</th>
                <th class="py-2 px-3 text-left text-xs font-semibold text-gray-500 dark:text-gray-400 uppercase">Airline</th>
                <th class="py-2 px-3 text-right text-xs font-semibold text-gray-500 dark:text-gray-400 uppercase">Avg Delay (min)</th>
                <th class="py-2 px-3 text-right text-xs font-semibold text-gray-500 dark:text-gray-400 uppercase">Flights</th>
                <th class="py-2 px-3 text-left text-xs font-semibold text-gray-500 dark:text-gray-400 uppercase">Airports</th>
            </tr>
        </thead>
        <tbody>%s</tbody>
    </table>`, rows.String())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func writeFragmentError(w http.ResponseWriter, title, detail string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `
    <div class="col-span-full bg-red-50 dark:bg-red-900/20 border border-red-200 dark:border-red-800 rounded-lg p-4">
        <p class="text-sm font-semibold text-red-700 dark:text-red-400">%s</p>
        <p class="text-xs text-red-600 dark:text-red-500 mt-1">%s</p>
    </div>`, htmlEscape(title), htmlEscape(detail))
}
