package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"flightpulse/delaydash/internal/config"
	"flightpulse/delaydash/internal/dataset"
	"flightpulse/delaydash/internal/stats"
)

// datacheck validates a flight workbook without starting the server:
// loads it, runs one unfiltered aggregation pass, and prints the headline
// numbers. Exits non-zero when the workbook cannot be loaded.
func main() {
	cfg := config.Default()

	workbook := flag.String("workbook", cfg.Data.WorkbookPath, "path to the flight workbook")
	flag.Parse()

	store, err := dataset.Load(*workbook, cfg.Data.AirportAllowList)
	if err != nil {
		log.Printf("workbook check failed: %v", err)
		os.Exit(1)
	}

	spec := stats.FilterSpec{
		OnTimeThreshold: cfg.Thresholds.OnTimeMinutes,
		SevereThreshold: cfg.Thresholds.SevereMinutes,
	}
	result := stats.Aggregate(store.Flights, spec)
	s := result.Summary

	fmt.Printf("Workbook:       %s\n", *workbook)
	fmt.Printf("Flights:        %d (%d with delay data, %d cancelled)\n", s.TotalFlights, s.DelaySamples, s.CancelledCount)
	fmt.Printf("Airports:       %d\n", len(store.Airports))
	fmt.Printf("Airlines:       %d\n", len(store.Airlines))
	fmt.Printf("Aircraft:       %d\n", len(store.Aircraft))
	fmt.Printf("Date range:     %s to %s\n", store.MinDate.Format("2006-01-02"), store.MaxDate.Format("2006-01-02"))
	fmt.Printf("Avg delay:      %.1f min (median %.1f, max %.0f)\n", s.AvgDelay, s.MedianDelay, s.MaxDelay)
	fmt.Printf("On-time rate:   %.1f%% at %g min threshold\n", s.OnTimePct, spec.OnTimeThreshold)
	fmt.Printf("Severe delays:  %d (%.1f%% over %g min)\n", s.SevereCount, s.SeverePct, spec.SevereThreshold)
}
