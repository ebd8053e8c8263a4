// internal/infra/telegram/message_handlers.go
package telegram

import (
	"context"
	"fmt"
	"io"
	"strings"

	"geoguard/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const maxPhotoBytes = 10 << 20

// FileFetcher downloads a file from the Bot API; *telebot.Bot satisfies it.
type FileFetcher interface {
	File(file *telebot.File) (io.ReadCloser, error)
}

// RegisterMessageHandlers routes free text and photos through the chat service.
func RegisterMessageHandlers(ctx context.Context, b *telebot.Bot, chat ChatResponder, baseLogger *logrus.Entry) {
	msgLogger := baseLogger.WithField("handler_group", "messages")

	b.Handle(telebot.OnText, func(c telebot.Context) error {
		msgLogger.WithField("sender_id", c.Sender().ID).Debug("Text message received")

		reqCtx, cancel := context.WithTimeout(ctx, replyTimeout)
		defer cancel()
		return sendMarkdown(c, chat.Reply(reqCtx, app.InboundMessage{Body: c.Text(), Sender: senderName(c)}))
	})

	b.Handle(telebot.OnPhoto, func(c telebot.Context) error {
		photo := c.Message().Photo
		msgLogger.WithField("sender_id", c.Sender().ID).Info("Photo received, analyzing")

		reqCtx, cancel := context.WithTimeout(ctx, replyTimeout)
		defer cancel()
		reply := chat.Reply(reqCtx, app.InboundMessage{
			Body:   c.Message().Caption,
			Sender: senderName(c),
			Media:  PhotoLoader(b, photo),
		})
		return sendMarkdown(c, reply)
	})
}

// sendMarkdown sends text as Markdown and falls back to plain text when
// Telegram rejects the entities (model output and echoed user text can be unbalanced).
func sendMarkdown(c telebot.Context, text string) error {
	err := c.Send(text, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	if err != nil && strings.Contains(err.Error(), "can't parse entities") {
		return c.Send(text)
	}
	return err
}

// PhotoLoader defers the Bot API download until the chat service asks for the image.
func PhotoLoader(files FileFetcher, photo *telebot.Photo) app.MediaLoader {
	return func(ctx context.Context) ([]byte, string, error) {
		if photo == nil {
			return nil, "", fmt.Errorf("message has no photo")
		}
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		rc, err := files.File(&photo.File)
		if err != nil {
			return nil, "", fmt.Errorf("failed to fetch photo: %w", err)
		}
		defer rc.Close()

		data, err := io.ReadAll(io.LimitReader(rc, maxPhotoBytes+1))
		if err != nil {
			return nil, "", fmt.Errorf("failed to read photo: %w", err)
		}
		if len(data) > maxPhotoBytes {
			return nil, "", fmt.Errorf("photo larger than %d bytes", maxPhotoBytes)
		}
		// Telegram re-encodes every photo as JPEG.
		return data, "image/jpeg", nil
	}
}
