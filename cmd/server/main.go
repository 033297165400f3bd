package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flightpulse/delaydash/internal/common"
	"flightpulse/delaydash/internal/config"
	"flightpulse/delaydash/internal/dataset"
	"flightpulse/delaydash/internal/logging"
	"flightpulse/delaydash/internal/metrics"
	"flightpulse/delaydash/internal/routes"
	"flightpulse/delaydash/internal/stats"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", os.Getenv("DELAYDASH_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	if err := logging.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("DelayDash starting up",
		"environment", cfg.Server.Environment,
		"workbook", cfg.Data.WorkbookPath,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	// Load the flight workbook into memory. The dataset is immutable for
	// the lifetime of the process.
	store, err := dataset.Load(cfg.Data.WorkbookPath, cfg.Data.AirportAllowList)
	if err != nil {
		logging.Error("Failed to load flight workbook", "error", err.Error())
		log.Fatalf("Failed to load flight workbook: %v", err)
	}
	logging.Info("Flight workbook loaded",
		"flights", len(store.Flights),
		"airports", len(store.Airports),
		"airlines", len(store.Airlines),
		"min_date", store.MinDate.Format("2006-01-02"),
		"max_date", store.MaxDate.Format("2006-01-02"),
	)

	// Pick the cache backend
	var cache common.CacheInterface
	switch cfg.Cache.Backend {
	case "redis":
		redisCache, err := common.NewRedisCacheService(cfg.Cache.Redis.Addr(), cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
		if err != nil {
			logging.Error("Failed to connect to Redis", "error", err.Error())
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		cache = redisCache
		logging.Info("Using Redis cache backend", "addr", cfg.Cache.Redis.Addr())
	default:
		cache = common.NewCacheService(cfg.Cache.TTLSeconds, 2*cfg.Cache.TTLSeconds)
		logging.Info("Using in-memory cache backend", "ttl_seconds", cfg.Cache.TTLSeconds)
	}
	defer cache.Close()

	metricsReg := metrics.NewMetricsRegistry()
	metricsReg.RecordDatasetLoad(store)

	svc := stats.NewService(store, cache, time.Duration(cfg.Cache.TTLSeconds)*time.Second, cfg.Thresholds, metricsReg)

	upSince := time.Now()
	router := routes.RegisterRoutes(upSince, svc, cache, metricsReg)

	// Metrics endpoint lives outside the Chi router
	mux := http.NewServeMux()
	mux.Handle(cfg.Server.MetricsPath, promhttp.Handler())
	mux.Handle("/", router)
	logging.Info("Prometheus metrics endpoint registered", "path", cfg.Server.MetricsPath)

	logging.Info("Server starting",
		"addr", cfg.Server.Addr,
		"environment", cfg.Server.Environment,
	)

	log.Printf("Starting server on %s", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, mux))
}
