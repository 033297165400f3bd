package ui

import (
	"fmt"
	"net/http"
	"strings"
)

// DashboardHandler renders the main dashboard page: filter sidebar, KPI
// cards, map, and chart panels. The KPI cards and the top-airlines table
// load as HTMX fragments; the charts render client-side from the JSON API.
func (h *UIHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	opts := h.svc.Options()

	var airportInputs strings.Builder
	for _, a := range opts.Airports {
		airportInputs.WriteString(fmt.Sprintf(`
            <label class="flex items-center gap-2 cursor-pointer py-1">
                <input type="checkbox" name="airport" value="%s" checked class="w-4 h-4 filter-input" />
                <span class="text-sm text-gray-700 dark:text-gray-300">%s <span class="text-gray-400">%s</span></span>
            </label>`, a.Code, a.Code, htmlEscape(a.Name)))
	}

	var airlineOptions strings.Builder
	for _, name := range opts.Airlines {
		airlineOptions.WriteString(fmt.Sprintf(
			`<option value="%s" selected>%s</option>`, htmlEscape(name), htmlEscape(name)))
	}

	content := fmt.Sprintf(`
<div class="flex gap-6 h-full w-full">
    <!-- Filter Sidebar -->
    <aside class="w-72 shrink-0 bg-gray-50 dark:bg-gray-900 rounded-lg border border-gray-200 dark:border-gray-700 p-4 overflow-y-auto">
        <h2 class="text-sm font-semibold text-gray-900 dark:text-white uppercase tracking-wide mb-4">Filters</h2>
        <form id="filter-form"
              hx-get="/dashboard/fragments/kpis"
              hx-target="#kpi-cards"
              hx-swap="innerHTML"
              hx-trigger="load, change delay:300ms, input delay:500ms from:#threshold-slider">

            <div class="mb-5">
                <h3 class="text-xs font-semibold text-gray-600 dark:text-gray-400 uppercase mb-2">Airports</h3>
                %s
            </div>

            <div class="mb-5">
                <h3 class="text-xs font-semibold text-gray-600 dark:text-gray-400 uppercase mb-2">Airlines</h3>
                <select name="airline" multiple size="8" class="w-full text-sm rounded border-gray-300 dark:border-gray-600 dark:bg-gray-800 filter-input">
                    %s
                </select>
            </div>

            <div class="mb-5">
                <h3 class="text-xs font-semibold text-gray-600 dark:text-gray-400 uppercase mb-2">Date Range</h3>
                <input type="date" name="from" value="%s" min="%s" max="%s" class="w-full text-sm mb-2 filter-input" />
                <input type="date" name="to" value="%s" min="%s" max="%s" class="w-full text-sm filter-input" />
            </div>

            <div class="mb-2">
                <h3 class="text-xs font-semibold text-gray-600 dark:text-gray-400 uppercase mb-2">
                    On-Time Threshold: <span id="threshold-value">%g</span> min
                </h3>
                <input id="threshold-slider" type="range" name="threshold" value="%g" min="0" max="%g" step="5"
                       class="w-full filter-input"
                       oninput="document.getElementById('threshold-value').textContent = this.value" />
            </div>
        </form>
    </aside>

    <!-- Main Panels -->
    <div class="flex-1 flex flex-col gap-6 overflow-y-auto">
        <!-- KPI Cards -->
        <div id="kpi-cards" class="grid grid-cols-2 md:grid-cols-4 gap-4">
            <div class="text-center py-8 text-gray-500 dark:text-gray-400 col-span-4">
                <p class="text-sm">Loading KPIs...</p>
            </div>
        </div>

        <div class="grid grid-cols-1 xl:grid-cols-2 gap-6">
            <!-- Map -->
            <div class="bg-white dark:bg-gray-800 rounded-lg border border-gray-200 dark:border-gray-700 shadow-md p-4">
                <h2 class="text-sm font-semibold text-gray-900 dark:text-white uppercase tracking-wide mb-3">Airport Locations &amp; Delay Performance</h2>
                <div id="airport-map" class="w-full rounded" style="height: 420px;"></div>
            </div>

            <!-- Bar chart -->
            <div class="bg-white dark:bg-gray-800 rounded-lg border border-gray-200 dark:border-gray-700 shadow-md p-4">
                <h2 class="text-sm font-semibold text-gray-900 dark:text-white uppercase tracking-wide mb-3">Average Delay by Airport</h2>
                <canvas id="airport-bar-chart" height="360"></canvas>
            </div>
        </div>

        <!-- Trend line -->
        <div class="bg-white dark:bg-gray-800 rounded-lg border border-gray-200 dark:border-gray-700 shadow-md p-4">
            <h2 class="text-sm font-semibold text-gray-900 dark:text-white uppercase tracking-wide mb-3">Delay Trends Over Time</h2>
            <canvas id="date-line-chart" height="120"></canvas>
        </div>

        <div class="grid grid-cols-1 xl:grid-cols-2 gap-6">
            <!-- Top airlines table fragment -->
            <div class="bg-white dark:bg-gray-800 rounded-lg border border-gray-200 dark:border-gray-700 shadow-md p-4">
                <h2 class="text-sm font-semibold text-gray-900 dark:text-white uppercase tracking-wide mb-3">Top Airlines by Delay</h2>
                <div id="top-airlines"
                     hx-get="/dashboard/fragments/airlines"
                     hx-include="#filter-form"
                     hx-trigger="load, change from:#filter-form delay:300ms"
                     hx-swap="innerHTML">
                    <p class="text-sm text-gray-500 dark:text-gray-400">Loading...</p>
                </div>
            </div>

            <!-- Weekday chart -->
            <div class="bg-white dark:bg-gray-800 rounded-lg border border-gray-200 dark:border-gray-700 shadow-md p-4">
                <h2 class="text-sm font-semibold text-gray-900 dark:text-white uppercase tracking-wide mb-3">Delays by Day of Week</h2>
                <canvas id="weekday-bar-chart" height="220"></canvas>
            </div>
        </div>

        <div class="grid grid-cols-1 xl:grid-cols-2 gap-6">
            <!-- Histogram -->
            <div class="bg-white dark:bg-gray-800 rounded-lg border border-gray-200 dark:border-gray-700 shadow-md p-4">
                <h2 class="text-sm font-semibold text-gray-900 dark:text-white uppercase tracking-wide mb-3">Delay Distribution</h2>
                <canvas id="histogram-chart" height="220"></canvas>
            </div>

            <!-- Heatmap -->
            <div class="bg-white dark:bg-gray-800 rounded-lg border border-gray-200 dark:border-gray-700 shadow-md p-4">
                <h2 class="text-sm font-semibold text-gray-900 dark:text-white uppercase tracking-wide mb-3">Avg Delay by Day &amp; Hour</h2>
                <div id="delay-heatmap" class="overflow-x-auto"></div>
            </div>
        </div>

        <p class="text-xs text-gray-400 dark:text-gray-500 pb-4">Data source: Bureau of Transportation Statistics (BTS) 2024</p>
    </div>
</div>

<script src="/static/js/dashboard.js"></script>
`,
		airportInputs.String(),
		airlineOptions.String(),
		opts.MinDate, opts.MinDate, opts.MaxDate,
		opts.MaxDate, opts.MinDate, opts.MaxDate,
		opts.DefaultOnTimeThreshold,
		opts.DefaultOnTimeThreshold, opts.MaxOnTimeThreshold,
	)

	data := map[string]interface{}{
		"Title":   "NY/NJ Flight Delays",
		"Content": content,
		"Theme":   getThemeFromRequest(r),
	}
	RenderTemplate(w, "layouts/sidebar.html", data)
}

func htmlEscape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}
