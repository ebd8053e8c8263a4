package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"geoguard/internal/app"
	"geoguard/internal/domain/observation"
	"geoguard/internal/domain/report"
	"geoguard/internal/infra/logger"
	"geoguard/internal/infra/observability"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var observedAt = time.Date(2026, 3, 10, 6, 30, 0, 0, time.UTC) // 09:30AM in Nairobi

type sessionFixture struct {
	svc     *app.SessionService
	obs     *fakeObservations
	metrics *observability.Metrics
	clock   *clockwork.FakeClock
}

func newSessionFixture(t *testing.T, reports report.Repository, obs ...observation.Observation) sessionFixture {
	t.Helper()
	cat := testCatalog(t)
	store := newFakeObservations(obs...)
	metrics := observability.NewMetricsForTesting()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC))
	forecasts := app.NewForecastService(store, time.Second, metrics, logger.Discard())
	svc := app.NewSessionService(cat.Resolver, cat.Registry, forecasts, reports, clock, nairobi, metrics, logger.Discard())
	return sessionFixture{svc: svc, obs: store, metrics: metrics, clock: clock}
}

func (f sessionFixture) handle(text string) string {
	return f.svc.Handle(context.Background(), app.SessionRequest{SessionID: "s1", PhoneNumber: "+254711000111", Text: text})
}

func TestSession_RootScreen(t *testing.T) {
	f := newSessionFixture(t, nil)

	reply := f.handle("")
	require.True(t, strings.HasPrefix(reply, "CON "))
	lines := strings.Split(strings.TrimPrefix(reply, "CON "), "\n")
	assert.Equal(t, []string{"Welcome to GeoGuard Kenya", "1. Report Sign (Asili Smart)", "2. Get Weather Forecast"}, lines)
}

func TestSession_ForecastWithFreshObservation(t *testing.T) {
	f := newSessionFixture(t, nil, observation.Observation{
		Zone: "Mathare Settlements", TemperatureC: 24, Rainfall1hMm: 0.2, ObservedAt: observedAt,
	})

	reply := f.handle("2*1*1")
	assert.Equal(t, "END Forecast for Mathare Settlements (09:30AM):\nTemp: 24C\nRain: 0.2mm\nStatus: Normal", reply)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.USSDRequests.WithLabelValues("forecast")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ObservationLookups.WithLabelValues("found")))
}

func TestSession_ForecastWithoutObservation(t *testing.T) {
	f := newSessionFixture(t, nil)

	reply := f.handle("2*1*1")
	assert.Equal(t, "END No live data yet for Mathare Settlements. Please try again later.", reply)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ObservationLookups.WithLabelValues("missing")))
}

func TestSession_ForecastStoreFailureIsNoData(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.obs.err = errors.New("connection refused")

	reply := f.handle("2*1*1")
	assert.True(t, strings.HasPrefix(reply, "END No live data yet"))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ObservationLookups.WithLabelValues("error")))
}

func TestSession_ForecastLookupTimesOut(t *testing.T) {
	cat := testCatalog(t)
	store := newFakeObservations(observation.Observation{Zone: "Mathare Settlements", TemperatureC: 24})
	store.delay = 5 * time.Second
	forecasts := app.NewForecastService(store, 20*time.Millisecond, nil, logger.Discard())
	svc := app.NewSessionService(cat.Resolver, cat.Registry, forecasts, nil, clockwork.NewFakeClock(), nairobi, nil, logger.Discard())

	start := time.Now()
	reply := svc.Handle(context.Background(), app.SessionRequest{Text: "2*1*1"})
	assert.True(t, strings.HasPrefix(reply, "END No live data yet"))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSession_ForecastLabels(t *testing.T) {
	tests := []struct {
		name string
		path string
		obs  observation.Observation
		want string
	}{
		{
			name: "drought zone hot and dry",
			path: "2*4*1",
			obs:  observation.Observation{Zone: "Turkana North (Kibish)", TemperatureC: 36, Rainfall1hMm: 0, ObservedAt: observedAt},
			want: "END Forecast for Turkana North (Kibish) (09:30AM):\nTemp: 36C\nRain: 0mm\nStatus: Heat/Drought Risk\nHot and dry, conserve water and protect livestock.",
		},
		{
			name: "landslide slope saturated",
			path: "2*3*1",
			obs:  observation.Observation{Zone: "Chesongoch", TemperatureC: 19, Rainfall1hMm: 20, ObservedAt: observedAt},
			want: "END Forecast for Chesongoch (09:30AM):\nTemp: 19C\nRain: 20mm\nStatus: Landslide Risk\nSaturated slopes, avoid steep ground and river banks.",
		},
		{
			name: "critical flood anywhere",
			path: "2*1*3",
			obs:  observation.Observation{Zone: "South C", TemperatureC: 21.5, Rainfall1hMm: 62.4, ObservedAt: observedAt},
			want: "END Forecast for South C (09:30AM):\nTemp: 21.5C\nRain: 62.4mm\nStatus: CRITICAL: Flood\n62.4mm of rain in the last hour, move to higher ground.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(t, nil, tt.obs)
			assert.Equal(t, tt.want, f.handle(tt.path))
		})
	}
}

func TestSession_Screens(t *testing.T) {
	f := newSessionFixture(t, nil)

	assert.True(t, strings.HasPrefix(f.handle("2"), "CON Select Location for Forecast:\n1. Nairobi\n2. Lake Region\n3. Rift Valley Slopes\n4. Northern ASAL"))
	assert.Equal(t, "CON Select Zone in Nairobi:\n1. Mathare\n2. Eastlands\n3. South C", f.handle("2*1"))
	assert.Equal(t, "CON Select Observed Sign:\n1. Safari Ants (Rain)\n2. Frogs Croaking (Rain)\n3. Goat Intestines (Drought)", f.handle("1"))
	assert.Equal(t, "CON Select Your Region:\n1. Nairobi (Mathare)\n2. Kisumu\n3. Turkana", f.handle("1*3"))
}

func TestSession_ReportAcknowledgeOnly(t *testing.T) {
	f := newSessionFixture(t, nil)

	reply := f.handle("1*1*1")
	assert.Equal(t, "END Thank you. We have received your report of 'Safari Ants' in Nairobi.\nValidation via satellite is in progress.", reply)

	reply = f.handle("1*3*3")
	assert.Equal(t, "END Thank you. We have received your report of 'Goat Intestines' in Turkana.\nValidation via satellite is in progress.", reply)
}

func TestSession_ReportPersisted(t *testing.T) {
	reports := &fakeReports{}
	f := newSessionFixture(t, reports)

	reply := f.handle("1*2*2")
	assert.Contains(t, reply, "'Frogs' in Kisumu")
	require.Len(t, reports.created, 1)

	got := reports.created[0]
	assert.Equal(t, "Frogs", got.Sign)
	assert.Equal(t, "Kisumu", got.Region)
	assert.Equal(t, "kisumu-central", string(got.ZoneID))
	assert.Equal(t, "flood", string(got.Hazard))
	assert.Equal(t, "+254711000111", got.Sender)
	assert.Equal(t, f.clock.Now().UTC(), got.SubmittedAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ReportsStored.WithLabelValues("success")))
}

func TestSession_ReportStoreFailureKeepsAcknowledgment(t *testing.T) {
	reports := &fakeReports{err: errors.New("disk full")}
	f := newSessionFixture(t, reports)

	withStore := f.handle("1*1*1")
	without := newSessionFixture(t, nil).handle("1*1*1")
	assert.Equal(t, without, withStore)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ReportsStored.WithLabelValues("error")))
}

func TestSession_InvalidInput(t *testing.T) {
	f := newSessionFixture(t, nil)

	for _, text := range []string{"3", "0", "*", "abc", "2*", "2*0", "2*7", "2*1*9", "1*4", "1*1*0", "01", "2*01*1"} {
		t.Run(text, func(t *testing.T) {
			assert.Equal(t, "END Invalid input. Please dial again.", f.handle(text))
		})
	}
}

func TestSession_TrailingTokensIgnored(t *testing.T) {
	f := newSessionFixture(t, nil, observation.Observation{Zone: "Mathare Settlements", TemperatureC: 24, Rainfall1hMm: 0.2, ObservedAt: observedAt})

	assert.Equal(t, f.handle("2*1*1"), f.handle("2*1*1*5*garbage"))
	assert.Equal(t, f.handle("1*1*1"), f.handle("1*1*1*1"))
}

// Every reply, for any input, begins with exactly one protocol marker.
func TestSession_ProtocolMarkerInvariant(t *testing.T) {
	f := newSessionFixture(t, &fakeReports{}, observation.Observation{Zone: "Mathare Settlements", TemperatureC: 24, ObservedAt: observedAt})
	tokens := []string{"", "1", "2", "3", "4", "9", "x", "-1", "10"}

	var inputs []string
	for _, a := range tokens {
		inputs = append(inputs, a)
		for _, b := range tokens {
			inputs = append(inputs, a+"*"+b)
			for _, c := range tokens {
				inputs = append(inputs, a+"*"+b+"*"+c)
			}
		}
	}

	for _, in := range inputs {
		reply := f.handle(in)
		con := strings.HasPrefix(reply, app.MarkerContinue)
		end := strings.HasPrefix(reply, app.MarkerEnd)
		assert.True(t, con != end, "input %q gave %q", in, reply)
		assert.False(t, strings.HasPrefix(reply[4:], "CON ") || strings.HasPrefix(reply[4:], "END "), "input %q doubled the marker", in)
	}
}
