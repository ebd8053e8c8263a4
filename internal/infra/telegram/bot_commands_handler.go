// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"strings"
	"time"

	"geoguard/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const replyTimeout = 30 * time.Second

// ChatResponder is the part of the chat service the bot uses.
type ChatResponder interface {
	Reply(ctx context.Context, msg app.InboundMessage) string
	ForecastFor(ctx context.Context, query string) string
}

const helpText = "GeoGuard Kenya early warnings.\n\n" +
	"`/forecast <place>` - live weather status for a monitored zone, e.g. `/forecast Kisumu`.\n" +
	"`/help` - show this message.\n\n" +
	"You can also just write to me: name a place, mention a sign like safari ants, or send a photo of a river, farm or slope."

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	chat ChatResponder,
	baseLogger *logrus.Entry, // For contextual logging
) {
	cmdLogger := baseLogger.WithField("handler_group", "commands")

	b.Handle("/start", func(c telebot.Context) error {
		logCtx := cmdLogger.WithField("command", "/start").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing /start command")

		reqCtx, cancel := context.WithTimeout(ctx, replyTimeout)
		defer cancel()
		return sendMarkdown(c, chat.Reply(reqCtx, app.InboundMessage{Body: "start", Sender: senderName(c)}))
	})

	b.Handle("/help", func(c telebot.Context) error {
		cmdLogger.WithField("command", "/help").WithField("sender_id", c.Sender().ID).Info("Processing /help command")
		return c.Send(helpText, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	b.Handle("/forecast", func(c telebot.Context) error {
		query := strings.TrimSpace(c.Message().Payload)
		logCtx := cmdLogger.WithFields(logrus.Fields{
			"command":   "/forecast",
			"sender_id": c.Sender().ID,
			"query":     query,
		})
		logCtx.Info("Processing /forecast command")

		reqCtx, cancel := context.WithTimeout(ctx, replyTimeout)
		defer cancel()
		return sendMarkdown(c, chat.ForecastFor(reqCtx, query))
	})
}

func senderName(c telebot.Context) string {
	if c.Sender() == nil {
		return ""
	}
	if c.Sender().Username != "" {
		return "tg:@" + c.Sender().Username
	}
	return "tg:" + c.Sender().Recipient()
}
