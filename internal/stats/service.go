package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"flightpulse/delaydash/internal/common"
	"flightpulse/delaydash/internal/config"
	"flightpulse/delaydash/internal/dataset"
	"flightpulse/delaydash/internal/metrics"
)

const cacheKeyPrefix = "stats:"

// Service runs filter/aggregate passes over the loaded dataset, caching
// results per canonical filter key. Concurrent identical queries are
// collapsed with singleflight so one recomputation serves them all.
type Service struct {
	store      *dataset.Store
	cache      common.CacheInterface
	ttl        time.Duration
	thresholds config.ThresholdsConfig
	metricsReg *metrics.MetricsRegistry
	group      singleflight.Group
}

func NewService(
	store *dataset.Store,
	cache common.CacheInterface,
	ttl time.Duration,
	thresholds config.ThresholdsConfig,
	metricsReg *metrics.MetricsRegistry,
) *Service {
	return &Service{
		store:      store,
		cache:      cache,
		ttl:        ttl,
		thresholds: thresholds,
		metricsReg: metricsReg,
	}
}

// Store exposes the read-only dataset for handlers that need filter
// options or health details
func (s *Service) Store() *dataset.Store {
	return s.store
}

// Normalize resolves absent thresholds to the configured defaults and
// clamps the on-time threshold to the slider range. An explicit zero
// threshold is kept: only every early-or-exact departure counts as on
// time then.
func (s *Service) Normalize(spec FilterSpec) FilterSpec {
	if spec.OnTimeThreshold < 0 || (spec.OnTimeThreshold == 0 && !spec.HasOnTimeThreshold) {
		spec.OnTimeThreshold = s.thresholds.OnTimeMinutes
	}
	if spec.OnTimeThreshold > s.thresholds.MaxOnTimeMinutes {
		spec.OnTimeThreshold = s.thresholds.MaxOnTimeMinutes
	}
	spec.HasOnTimeThreshold = true
	if spec.SevereThreshold <= 0 {
		spec.SevereThreshold = s.thresholds.SevereMinutes
	}
	return spec
}

// Query returns the full aggregation result for a filter spec, from cache
// when possible
func (s *Service) Query(ctx context.Context, spec FilterSpec) (*Result, error) {
	spec = s.Normalize(spec)
	key := cacheKeyPrefix + spec.Key()

	val, err, _ := s.group.Do(key, func() (interface{}, error) {
		computed := false
		val, err := s.cache.GetOrSet(key, s.ttl, func() (any, error) {
			computed = true
			return s.aggregate(spec), nil
		})
		if err != nil {
			return nil, err
		}
		if s.metricsReg != nil {
			if computed {
				s.metricsReg.CacheMissesTotal.WithLabelValues(cacheKeyPrefix).Inc()
			} else {
				s.metricsReg.CacheHitsTotal.WithLabelValues(cacheKeyPrefix).Inc()
			}
		}

		res, decErr := decodeCached(val)
		if decErr != nil {
			// Undecodable entry; recompute and overwrite
			s.cache.Delete(key)
			res = s.aggregate(spec)
			s.cache.Set(key, res, s.ttl)
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*Result), nil
}

// aggregate runs one timed filter/aggregate pass
func (s *Service) aggregate(spec FilterSpec) *Result {
	start := time.Now()
	res := Aggregate(s.store.Flights, spec)
	if s.metricsReg != nil {
		s.metricsReg.AggregationsTotal.Inc()
		s.metricsReg.AggregationDuration.Observe(time.Since(start).Seconds())
	}
	return res
}

// decodeCached recovers a Result from whatever the cache backend returned.
// The in-memory backend hands the stored pointer back; the Redis backend
// round-trips through JSON and yields a generic map.
func decodeCached(val interface{}) (*Result, error) {
	switch v := val.(type) {
	case *Result:
		return v, nil
	case Result:
		return &v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("cache entry not re-encodable: %w", err)
		}
		var res Result
		if err := json.Unmarshal(data, &res); err != nil {
			return nil, fmt.Errorf("cache entry not a stats result: %w", err)
		}
		return &res, nil
	}
}

// Options describes what the filter widgets can offer
type Options struct {
	Airports []dataset.Airport `json:"airports"`
	Airlines []string          `json:"airlines"`
	MinDate  string            `json:"min_date"`
	MaxDate  string            `json:"max_date"`

	DefaultOnTimeThreshold float64 `json:"default_on_time_threshold"`
	MaxOnTimeThreshold     float64 `json:"max_on_time_threshold"`
	SevereThreshold        float64 `json:"severe_threshold"`
}

// Options returns the filter widget metadata for the loaded dataset
func (s *Service) Options() Options {
	return Options{
		Airports:               s.store.Airports,
		Airlines:               s.store.AirlineNames(),
		MinDate:                s.store.MinDate.Format("2006-01-02"),
		MaxDate:                s.store.MaxDate.Format("2006-01-02"),
		DefaultOnTimeThreshold: s.thresholds.OnTimeMinutes,
		MaxOnTimeThreshold:     s.thresholds.MaxOnTimeMinutes,
		SevereThreshold:        s.thresholds.SevereMinutes,
	}
}
