// internal/app/alert_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"geoguard/internal/domain/observation"
	"geoguard/internal/domain/risk"
	"geoguard/internal/domain/telegram"
	"geoguard/internal/domain/zone"
	"geoguard/internal/infra/observability"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Alert is a non-Normal classification found by a refresh scan.
type Alert struct {
	Zone           zone.Zone
	Observation    observation.Observation
	Classification risk.Classification
}

// AlertNotifier delivers alerts somewhere people will see them.
type AlertNotifier interface {
	Broadcast(ctx context.Context, alerts []Alert) error
}

// AlertService posts alerts to one Telegram chat (a channel or an operators' group).
type AlertService struct {
	client  telegram.Client
	chatID  int64
	metrics *observability.Metrics
	log     *logrus.Entry
}

func NewAlertService(client telegram.Client, chatID int64, metrics *observability.Metrics, log *logrus.Entry) *AlertService {
	return &AlertService{client: client, chatID: chatID, metrics: metrics, log: log}
}

// Broadcast sends one message per alert. It keeps going after a failed send and
// returns every failure joined.
func (s *AlertService) Broadcast(ctx context.Context, alerts []Alert) error {
	var errs []error
	for _, a := range alerts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		logCtx := s.log.WithFields(logrus.Fields{"zone": a.Zone.ID, "label": a.Classification.Label})
		err := s.client.SendMessage(s.chatID, FormatAlert(a), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		if err != nil {
			logCtx.WithError(err).Error("Failed to send alert")
			errs = append(errs, fmt.Errorf("alert for %s: %w", a.Zone.ID, err))
			continue
		}
		if s.metrics != nil {
			s.metrics.AlertsSent.WithLabelValues(string(a.Classification.Label)).Inc()
		}
		logCtx.Info("Alert sent")
	}
	return errors.Join(errs...)
}

// FormatAlert renders the broadcast text for a.
func FormatAlert(a Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ *GeoGuard Alert: %s*\n", a.Classification.Label.Text())
	fmt.Fprintf(&b, "%s (%s County)\n", a.Zone.DisplayName, a.Zone.County)
	fmt.Fprintf(&b, "Temp: %sC | Rain: %smm\n",
		risk.FormatNumber(a.Observation.TemperatureC),
		risk.FormatNumber(a.Observation.Rainfall1hMm))
	b.WriteString(a.Classification.Reason)
	if len(a.Classification.Alerts) > 1 {
		b.WriteString("\nTriggers: ")
		b.WriteString(strings.Join(a.Classification.Alerts, "; "))
	}
	return b.String()
}
