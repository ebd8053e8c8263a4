package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// USSD and chat traffic.
	USSDRequests *prometheus.CounterVec // labels: outcome={screen,forecast,report,invalid_input,invalid_selection}
	ChatMessages *prometheus.CounterVec // labels: route={media,greeting,zone,sign,menu,help}

	// Observation store.
	ObservationLookups *prometheus.CounterVec // labels: outcome={found,missing,error}
	ObservationCache   *prometheus.CounterVec // labels: result={hit,miss,error}
	ReportsStored      *prometheus.CounterVec // labels: outcome={success,error}

	// Vision analysis.
	VisionRequests *prometheus.CounterVec // labels: outcome={success,error}

	// Refresh job.
	RefreshRuns     prometheus.Counter
	RefreshErrors   prometheus.Counter
	RefreshDuration prometheus.Histogram
	ZonesObserved   prometheus.Gauge
	AlertsSent      *prometheus.CounterVec // labels: label
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		USSDRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geoguard",
			Name:      "ussd_requests_total",
			Help:      "USSD callbacks by resolved outcome.",
		}, []string{"outcome"}),
		ChatMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geoguard",
			Name:      "chat_messages_total",
			Help:      "Inbound chat messages by route taken.",
		}, []string{"route"}),
		ObservationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geoguard",
			Name:      "observation_lookups_total",
			Help:      "Latest-observation reads by outcome.",
		}, []string{"outcome"}),
		ObservationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geoguard",
			Name:      "observation_cache_total",
			Help:      "Observation cache lookups by result.",
		}, []string{"result"}),
		ReportsStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geoguard",
			Name:      "reports_stored_total",
			Help:      "Sign reports persisted by outcome.",
		}, []string{"outcome"}),
		VisionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geoguard",
			Name:      "vision_requests_total",
			Help:      "Image analysis requests by outcome.",
		}, []string{"outcome"}),
		RefreshRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geoguard",
			Name:      "refresh_runs_total",
			Help:      "Completed weather refresh scans.",
		}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geoguard",
			Name:      "refresh_errors_total",
			Help:      "Zones that failed to fetch or store during a refresh.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "geoguard",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete weather refresh scan.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		ZonesObserved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "geoguard",
			Name:      "zones_observed",
			Help:      "Zones stored successfully in the last refresh scan.",
		}),
		AlertsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geoguard",
			Name:      "alerts_sent_total",
			Help:      "Alert broadcasts by risk label.",
		}, []string{"label"}),
	}

	prometheus.MustRegister(
		m.USSDRequests,
		m.ChatMessages,
		m.ObservationLookups,
		m.ObservationCache,
		m.ReportsStored,
		m.VisionRequests,
		m.RefreshRuns,
		m.RefreshErrors,
		m.RefreshDuration,
		m.ZonesObserved,
		m.AlertsSent,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		USSDRequests:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "geoguard", Name: "ussd_requests_total"}, []string{"outcome"}),
		ChatMessages:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "geoguard", Name: "chat_messages_total"}, []string{"route"}),
		ObservationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "geoguard", Name: "observation_lookups_total"}, []string{"outcome"}),
		ObservationCache:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "geoguard", Name: "observation_cache_total"}, []string{"result"}),
		ReportsStored:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "geoguard", Name: "reports_stored_total"}, []string{"outcome"}),
		VisionRequests:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "geoguard", Name: "vision_requests_total"}, []string{"outcome"}),
		RefreshRuns:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "geoguard", Name: "refresh_runs_total"}),
		RefreshErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "geoguard", Name: "refresh_errors_total"}),
		RefreshDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "geoguard", Name: "refresh_duration_seconds"}),
		ZonesObserved:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "geoguard", Name: "zones_observed"}),
		AlertsSent:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "geoguard", Name: "alerts_sent_total"}, []string{"label"}),
	}
}
