package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"flightpulse/delaydash/internal/common"
	"flightpulse/delaydash/internal/dataset"
	"flightpulse/delaydash/internal/models/entities"
)

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(store *dataset.Store, cache common.CacheInterface, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		services := make(map[string]entities.ServiceStatus)

		// Check dataset
		dsStatus := "ok"
		dsDetails := fmt.Sprintf("%d flights loaded at %s",
			len(store.Flights), store.LoadedAt.UTC().Format(time.RFC3339))
		if len(store.Flights) == 0 {
			dsStatus = "down"
			dsDetails = "no flights loaded"
		}
		services["dataset"] = entities.ServiceStatus{
			Status:  dsStatus,
			Details: dsDetails,
		}

		// Check cache backend. Only the Redis backend has a connection
		// worth pinging.
		cacheStatus := "ok"
		cacheDetails := "in-memory cache"
		if pinger, ok := cache.(interface{ Ping() error }); ok {
			cacheDetails = "Redis connected"
			if err := pinger.Ping(); err != nil {
				cacheStatus = "down"
				cacheDetails = err.Error()
			}
		}
		services["cache"] = entities.ServiceStatus{
			Status:  cacheStatus,
			Details: cacheDetails,
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		now := time.Now()
		uptime := now.Sub(upSince).Round(time.Second).String()

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			Uptime:   uptime,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
