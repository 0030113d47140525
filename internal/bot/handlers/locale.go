package handlers

import (
	"context"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/bot/keyboard"
	"github.com/nutritrack/nutrition-bot/internal/i18n"
	"github.com/nutritrack/nutrition-bot/internal/user"
)

// Localizer resolves the translator for an incoming update. The stored
// profile language wins; the Telegram client language is the fallback
// for users whose profile cannot be loaded.
type Localizer struct {
	users   *user.Service
	catalog *i18n.Manager
	log     *slog.Logger
}

// NewLocalizer builds a Localizer over the user service and catalog.
func NewLocalizer(users *user.Service, catalog *i18n.Manager, log *slog.Logger) *Localizer {
	if log == nil {
		log = slog.Default()
	}

	return &Localizer{users: users, catalog: catalog, log: log}
}

// For returns the translator matching the sender's language.
func (l *Localizer) For(c telebot.Context) i18n.Translator {
	lang := ""

	if c != nil && c.Sender() != nil {
		lang = c.Sender().LanguageCode

		if l.users != nil {
			profile, err := l.users.GetOrCreate(context.Background(), c.Sender())
			if err != nil {
				l.log.Warn("failed to resolve profile language",
					slog.Int64("telegram_id", c.Sender().ID), slog.Any("error", err))
			} else if profile != nil && profile.Language != "" {
				lang = profile.Language
			}
		}
	}

	return l.catalog.Translator(lang)
}

// respondCallback answers an inline callback with a toast or alert.
func respondCallback(c telebot.Context, text string, alert bool) error {
	if c == nil {
		return nil
	}
	return c.Respond(&telebot.CallbackResponse{
		Text:      text,
		ShowAlert: alert,
	})
}

// callbackPayload extracts the payload part of the pressed button's data.
func callbackPayload(c telebot.Context) string {
	if c == nil {
		return ""
	}

	cb := c.Callback()
	if cb == nil {
		return ""
	}

	_, payload, err := keyboard.DecodeCallback(strings.TrimPrefix(cb.Data, "\f"))
	if err != nil {
		return ""
	}

	return payload
}
