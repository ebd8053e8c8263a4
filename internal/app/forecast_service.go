// internal/app/forecast_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"geoguard/internal/domain/observation"
	"geoguard/internal/domain/risk"
	"geoguard/internal/domain/zone"
	idb "geoguard/internal/infra/database"
	"geoguard/internal/infra/observability"

	"github.com/sirupsen/logrus"
)

// ErrObservationUnavailable covers every way a live reading can be missing:
// no row yet, a store error or the lookup timing out.
var ErrObservationUnavailable = fmt.Errorf("no live observation available")

// Forecast is a classified live reading for one zone.
type Forecast struct {
	Zone           zone.Zone
	Hazard         zone.Hazard
	Observation    observation.Observation
	Classification risk.Classification
}

// ForecastService is the lookup both the USSD and chat flows go through.
type ForecastService struct {
	observations observation.Reader
	timeout      time.Duration
	metrics      *observability.Metrics
	log          *logrus.Entry
}

func NewForecastService(observations observation.Reader, timeout time.Duration, metrics *observability.Metrics, log *logrus.Entry) *ForecastService {
	return &ForecastService{
		observations: observations,
		timeout:      timeout,
		metrics:      metrics,
		log:          log,
	}
}

// Lookup reads the latest observation for z under the configured timeout and classifies it for hazard.
func (s *ForecastService) Lookup(ctx context.Context, z zone.Zone, hazard zone.Hazard) (*Forecast, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	obs, err := s.observations.Latest(ctx, z.DisplayName)
	if err == nil && obs == nil {
		err = idb.ErrObservationNotFound
	}
	if err != nil {
		logCtx := s.log.WithFields(logrus.Fields{"zone": z.ID, "zone_name": z.DisplayName})
		if errors.Is(err, idb.ErrObservationNotFound) {
			s.count("missing")
			logCtx.Warn("No observation stored for zone")
		} else {
			s.count("error")
			logCtx.WithError(err).Warn("Observation lookup failed")
		}
		return nil, fmt.Errorf("%w: %w", ErrObservationUnavailable, err)
	}

	s.count("found")
	reading := *obs
	// Replies print the same rainfall the classifier judged.
	if math.IsNaN(reading.Rainfall1hMm) || math.IsInf(reading.Rainfall1hMm, 0) {
		s.log.WithField("zone", z.ID).Warn("Stored rainfall is not a finite number, reading it as 0")
		reading.Rainfall1hMm = 0
	}
	return &Forecast{
		Zone:           z,
		Hazard:         hazard,
		Observation:    reading,
		Classification: risk.Classify(reading, hazard),
	}, nil
}

func (s *ForecastService) count(outcome string) {
	if s.metrics != nil {
		s.metrics.ObservationLookups.WithLabelValues(outcome).Inc()
	}
}
