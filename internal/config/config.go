package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for the dashboard service.
// Values come from defaults, then an optional YAML file, then environment
// variables (highest precedence).
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Data       DataConfig       `yaml:"data"`
	Cache      CacheConfig      `yaml:"cache"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MetricsPath string `yaml:"metrics_path"`
	Environment string `yaml:"environment"`
}

type DataConfig struct {
	WorkbookPath string `yaml:"workbook_path"`
	// AirportAllowList restricts the dashboard to the NY/NJ departures
	// the dataset covers. Flights from other origins are dropped at load.
	AirportAllowList []string `yaml:"airport_allow_list"`
}

type CacheConfig struct {
	// Backend is "memory" or "redis"
	Backend    string      `yaml:"backend"`
	TTLSeconds int         `yaml:"ttl_seconds"`
	Redis      RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type ThresholdsConfig struct {
	// OnTimeMinutes is the default delay at or below which a flight counts
	// as on time. The dashboard slider may override it per request.
	OnTimeMinutes float64 `yaml:"on_time_minutes"`
	// SevereMinutes is the delay above which a flight counts as severely
	// delayed.
	SevereMinutes float64 `yaml:"severe_minutes"`
	// MaxOnTimeMinutes caps the dashboard threshold slider.
	MaxOnTimeMinutes float64 `yaml:"max_on_time_minutes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			MetricsPath: "/metrics",
			Environment: "development",
		},
		Data: DataConfig{
			WorkbookPath:     "data/flight_data.xlsx",
			AirportAllowList: []string{"EWR", "JFK", "LGA", "SWF"},
		},
		Cache: CacheConfig{
			Backend:    "memory",
			TTLSeconds: 300,
			Redis: RedisConfig{
				Host: "localhost",
				Port: "6379",
			},
		},
		Thresholds: ThresholdsConfig{
			OnTimeMinutes:    15,
			SevereMinutes:    60,
			MaxOnTimeMinutes: 90,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply. A missing file at an explicit
// path is an error; a missing file at the default path is not.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DELAYDASH_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Server.Environment = v
	}
	if v := os.Getenv("DELAYDASH_WORKBOOK"); v != "" {
		c.Data.WorkbookPath = v
	}
	if v := os.Getenv("DELAYDASH_AIRPORTS"); v != "" {
		parts := strings.Split(v, ",")
		codes := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
				codes = append(codes, p)
			}
		}
		if len(codes) > 0 {
			c.Data.AirportAllowList = codes
		}
	}
	if v := os.Getenv("DELAYDASH_CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("DELAYDASH_CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Cache.TTLSeconds = n
		}
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		c.Cache.Redis.Port = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.Redis.DB = n
		}
	}
}

func (c *Config) validate() error {
	if c.Data.WorkbookPath == "" {
		return fmt.Errorf("config: workbook path must not be empty")
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown cache backend %q", c.Cache.Backend)
	}
	if c.Thresholds.OnTimeMinutes < 0 || c.Thresholds.OnTimeMinutes > c.Thresholds.MaxOnTimeMinutes {
		return fmt.Errorf("config: on-time threshold %v outside [0, %v]",
			c.Thresholds.OnTimeMinutes, c.Thresholds.MaxOnTimeMinutes)
	}
	if c.Thresholds.SevereMinutes < c.Thresholds.OnTimeMinutes {
		return fmt.Errorf("config: severe threshold %v below on-time threshold %v",
			c.Thresholds.SevereMinutes, c.Thresholds.OnTimeMinutes)
	}
	return nil
}
