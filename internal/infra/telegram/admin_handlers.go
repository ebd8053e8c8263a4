package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"geoguard/internal/app"
	"geoguard/internal/domain/zone"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const manualRefreshTimeout = 5 * time.Minute

// Refresher runs one weather scan on demand.
type Refresher interface {
	Run(ctx context.Context) (app.RefreshSummary, error)
}

// RegisterAdminHandlers registers operator commands. They answer only the configured admin Telegram ID.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, refresher Refresher, registry *zone.Registry, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle("/refresh", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/refresh",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to run this command.")
		}

		if err := c.Send("Starting weather scan..."); err != nil {
			return err
		}
		runCtx, cancel := context.WithTimeout(ctx, manualRefreshTimeout)
		defer cancel()
		summary, err := refresher.Run(runCtx)
		if err != nil {
			handlerLogger.WithError(err).Error("Manual refresh failed")
			return c.Send(fmt.Sprintf("Scan failed: %v (stored %d, failed %d)", err, summary.Stored, summary.Failed))
		}
		return c.Send(FormatRefreshSummary(summary))
	})

	b.Handle("/zones", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/zones",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to run this command.")
		}
		return c.Send(FormatZoneList(registry.Zones()))
	})
}

// FormatRefreshSummary is the operator-facing result of a manual scan.
func FormatRefreshSummary(s app.RefreshSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scan complete. Stored %d, failed %d.", s.Stored, s.Failed)
	if len(s.Alerts) == 0 {
		b.WriteString("\nNo zone above a warning threshold.")
		return b.String()
	}
	for _, a := range s.Alerts {
		fmt.Fprintf(&b, "\n- %s: %s", a.Zone.DisplayName, a.Classification.Label.Text())
	}
	return b.String()
}

// FormatZoneList lists monitored zones in catalog order.
func FormatZoneList(zones []zone.Zone) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Monitored zones (%d):", len(zones))
	for _, z := range zones {
		hazards := make([]string, len(z.Hazards))
		for i, h := range z.Hazards {
			hazards[i] = string(h)
		}
		fmt.Fprintf(&b, "\n- %s [%s] %s, %s", z.ID, z.County, z.DisplayName, strings.Join(hazards, "/"))
	}
	return b.String()
}
