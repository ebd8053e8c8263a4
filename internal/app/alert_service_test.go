package app_test

import (
	"context"
	"testing"

	"geoguard/internal/app"
	"geoguard/internal/domain/observation"
	"geoguard/internal/domain/risk"
	"geoguard/internal/domain/zone"
	"geoguard/internal/infra/logger"
	"geoguard/internal/infra/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

func testAlert(id zone.ID, name, county string, hazard zone.Hazard, temp, rain float64) app.Alert {
	obs := observation.Observation{Zone: name, TemperatureC: temp, Rainfall1hMm: rain}
	return app.Alert{
		Zone:           zone.Zone{ID: id, DisplayName: name, County: county, Hazards: []zone.Hazard{hazard}},
		Observation:    obs,
		Classification: risk.Classify(obs, hazard),
	}
}

func TestFormatAlert(t *testing.T) {
	flood := testAlert("mathare", "Mathare Settlements", "Nairobi", zone.HazardFlood, 21, 55)
	assert.Equal(t,
		"⚠️ *GeoGuard Alert: CRITICAL: Flood*\nMathare Settlements (Nairobi County)\nTemp: 21C | Rain: 55mm\n"+
			"55mm of rain in the last hour, move to higher ground.",
		app.FormatAlert(flood))

	// A saturated slope also crosses the heavy-rain threshold.
	slope := testAlert("chesongoch", "Chesongoch", "Elgeyo Marakwet", zone.HazardLandslide, 17, 18)
	assert.Equal(t,
		"⚠️ *GeoGuard Alert: Landslide Risk*\nChesongoch (Elgeyo Marakwet County)\nTemp: 17C | Rain: 18mm\n"+
			"Saturated slopes, avoid steep ground and river banks.\n"+
			"Triggers: rainfall above 10mm/h; landslide rainfall above 15mm/h",
		app.FormatAlert(slope))
}

func TestAlertService_Broadcast(t *testing.T) {
	client := &fakeTelegram{}
	metrics := observability.NewMetricsForTesting()
	svc := app.NewAlertService(client, -100123, metrics, logger.Discard())

	alerts := []app.Alert{
		testAlert("mathare", "Mathare Settlements", "Nairobi", zone.HazardFlood, 21, 55),
		testAlert("mandera-east", "Mandera East", "Mandera", zone.HazardDrought, 36, 0),
	}
	require.NoError(t, svc.Broadcast(context.Background(), alerts))

	require.Len(t, client.sent, 2)
	assert.Equal(t, int64(-100123), client.sent[0].chatID)
	assert.Equal(t, telebot.ModeMarkdown, client.sent[0].parseMode)
	assert.Contains(t, client.sent[1].text, "Mandera East (Mandera County)")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AlertsSent.WithLabelValues(string(risk.LabelCriticalFlood))))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AlertsSent.WithLabelValues(string(risk.LabelDroughtRisk))))
}

func TestAlertService_BroadcastContinuesPastFailures(t *testing.T) {
	client := &fakeTelegram{failFor: "Mathare"}
	svc := app.NewAlertService(client, 42, nil, logger.Discard())

	err := svc.Broadcast(context.Background(), []app.Alert{
		testAlert("mathare", "Mathare Settlements", "Nairobi", zone.HazardFlood, 21, 55),
		testAlert("mandera-east", "Mandera East", "Mandera", zone.HazardDrought, 36, 0),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alert for mathare")
	require.Len(t, client.sent, 1)
	assert.Contains(t, client.sent[0].text, "Mandera East")
}

func TestAlertService_BroadcastStopsOnCanceledContext(t *testing.T) {
	client := &fakeTelegram{}
	svc := app.NewAlertService(client, 42, nil, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.Broadcast(ctx, []app.Alert{testAlert("mathare", "Mathare Settlements", "Nairobi", zone.HazardFlood, 21, 55)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, client.sent)
}
