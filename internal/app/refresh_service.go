// internal/app/refresh_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"geoguard/internal/domain/observation"
	"geoguard/internal/domain/risk"
	"geoguard/internal/domain/zone"
	"geoguard/internal/infra/observability"
	"geoguard/internal/infra/openweather"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// ErrRefreshFailed is returned when a scan could not store a single zone.
var ErrRefreshFailed = fmt.Errorf("weather refresh stored no observations")

// WeatherSource fetches current conditions by coordinates.
type WeatherSource interface {
	CurrentWeather(ctx context.Context, lat, lon float64) (openweather.Current, error)
}

// RefreshSummary describes one completed scan.
type RefreshSummary struct {
	Stored int
	Failed int
	Alerts []Alert
}

// RefreshService is the only writer of the observation store.
type RefreshService struct {
	registry *zone.Registry
	source   WeatherSource
	store    observation.Writer
	notifier AlertNotifier // nil disables broadcasts
	clock    clockwork.Clock
	metrics  *observability.Metrics
	log      *logrus.Entry
}

func NewRefreshService(
	registry *zone.Registry,
	source WeatherSource,
	store observation.Writer,
	notifier AlertNotifier,
	clock clockwork.Clock,
	metrics *observability.Metrics,
	log *logrus.Entry,
) *RefreshService {
	return &RefreshService{
		registry: registry,
		source:   source,
		store:    store,
		notifier: notifier,
		clock:    clock,
		metrics:  metrics,
		log:      log,
	}
}

// Run fetches and stores a reading for every registered zone. A failing zone is
// logged and skipped; the scan carries on with the rest.
func (s *RefreshService) Run(ctx context.Context) (RefreshSummary, error) {
	start := s.clock.Now()
	zones := s.registry.Zones()
	s.log.WithField("zones", len(zones)).Info("Starting weather scan")

	var summary RefreshSummary
	for _, z := range zones {
		if err := ctx.Err(); err != nil {
			s.log.WithError(err).Warn("Weather scan interrupted")
			s.finish(start, summary)
			return summary, err
		}
		logCtx := s.log.WithField("zone", z.ID)

		cur, err := s.source.CurrentWeather(ctx, z.Lat, z.Lon)
		if err != nil {
			summary.Failed++
			s.countError()
			logCtx.WithError(err).Warn("Failed to fetch weather")
			continue
		}

		obs := &observation.Observation{
			Zone:         z.DisplayName,
			TemperatureC: cur.TemperatureC,
			Rainfall1hMm: cur.Rainfall1hMm,
			HumidityPct:  cur.HumidityPct,
			Lat:          z.Lat,
			Lon:          z.Lon,
			ObservedAt:   s.clock.Now().UTC(),
		}
		if err := s.store.Save(ctx, obs); err != nil {
			summary.Failed++
			s.countError()
			logCtx.WithError(err).Error("Failed to store observation")
			continue
		}
		summary.Stored++

		c := risk.Classify(*obs, z.PrimaryHazard())
		logCtx.WithFields(logrus.Fields{
			"temperature": obs.TemperatureC,
			"rain_1h":     obs.Rainfall1hMm,
			"label":       c.Label,
		}).Debug("Observation stored")
		if c.Label.IsAlert() {
			summary.Alerts = append(summary.Alerts, Alert{Zone: z, Observation: *obs, Classification: c})
		}
	}

	if s.notifier != nil && len(summary.Alerts) > 0 {
		if err := s.notifier.Broadcast(ctx, summary.Alerts); err != nil {
			s.log.WithError(err).Error("Alert broadcast incomplete")
		}
	}

	s.finish(start, summary)
	s.log.WithFields(logrus.Fields{
		"stored": summary.Stored,
		"failed": summary.Failed,
		"alerts": len(summary.Alerts),
	}).Info("Weather scan complete")

	if summary.Stored == 0 && summary.Failed > 0 {
		return summary, ErrRefreshFailed
	}
	return summary, nil
}

func (s *RefreshService) finish(start time.Time, summary RefreshSummary) {
	if s.metrics == nil {
		return
	}
	s.metrics.RefreshRuns.Inc()
	s.metrics.RefreshDuration.Observe(s.clock.Since(start).Seconds())
	s.metrics.ZonesObserved.Set(float64(summary.Stored))
}

func (s *RefreshService) countError() {
	if s.metrics != nil {
		s.metrics.RefreshErrors.Inc()
	}
}
