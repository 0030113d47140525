package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/bot/keyboard"
	"github.com/nutritrack/nutrition-bot/internal/i18n"
	"github.com/nutritrack/nutrition-bot/internal/user"
)

// NewSettingsHandler returns the /settings command handler.
func NewSettingsHandler(users *user.Service, kb *keyboard.Builder, loc *Localizer, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		t := loc.For(c)

		sender := c.Sender()
		if sender == nil {
			return c.Send(t.T("common.error"))
		}

		settings, err := users.GetSettings(context.Background(), sender.ID)
		if err != nil {
			if log != nil {
				log.Error("failed to load settings",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return c.Send(t.T("settings.load_failed"))
		}

		return c.Send(settingsText(t, settings.Notify, settings.Language), kb.SettingsMenu(t, settings.Notify))
	}
}

// HandleToggleNotifications returns the callback handler flipping the
// daily digest preference.
func HandleToggleNotifications(users *user.Service, kb *keyboard.Builder, loc *Localizer, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		t := loc.For(c)

		sender := c.Sender()
		if sender == nil {
			return respondCallback(c, t.T("common.error"), true)
		}

		ctx := context.Background()

		settings, err := users.GetSettings(ctx, sender.ID)
		if err != nil {
			if log != nil {
				log.Error("toggle notifications: failed to load settings",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return respondCallback(c, t.T("settings.update_failed"), true)
		}

		settings.Notify = !settings.Notify
		if err := users.UpdateSettings(ctx, sender.ID, settings); err != nil {
			if log != nil {
				log.Error("toggle notifications: failed to save settings",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return respondCallback(c, t.T("settings.update_failed"), true)
		}

		toast := t.T("settings.notifications_disabled")
		if settings.Notify {
			toast = t.T("settings.notifications_enabled")
		}

		if err := respondCallback(c, toast, false); err != nil && log != nil {
			log.Warn("toggle notifications: failed to answer callback", slog.Any("error", err))
		}

		return c.Edit(settingsText(t, settings.Notify, settings.Language), kb.SettingsMenu(t, settings.Notify))
	}
}

// HandleSetLanguage returns the callback handler switching the catalog
// language.
func HandleSetLanguage(users *user.Service, kb *keyboard.Builder, loc *Localizer, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return respondCallback(c, loc.For(c).T("common.error"), true)
		}

		lang := callbackPayload(c)
		if !loc.catalog.Has(lang) {
			return respondCallback(c, loc.For(c).T("common.unknown_action"), true)
		}

		ctx := context.Background()

		settings, err := users.GetSettings(ctx, sender.ID)
		if err != nil {
			if log != nil {
				log.Error("set language: failed to load settings",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return respondCallback(c, loc.For(c).T("settings.update_failed"), true)
		}

		settings.Language = lang
		if err := users.UpdateSettings(ctx, sender.ID, settings); err != nil {
			if log != nil {
				log.Error("set language: failed to save settings",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return respondCallback(c, loc.For(c).T("settings.update_failed"), true)
		}

		// Re-resolve after the save so the confirmation already speaks
		// the newly chosen language.
		t := loc.For(c)

		if err := respondCallback(c, fmt.Sprintf(t.T("settings.language_set"), strings.ToUpper(lang)), false); err != nil && log != nil {
			log.Warn("set language: failed to answer callback", slog.Any("error", err))
		}

		return c.Edit(settingsText(t, settings.Notify, settings.Language), kb.SettingsMenu(t, settings.Notify))
	}
}

func settingsText(t i18n.Translator, notify bool, language string) string {
	notifyLabel := t.T("settings.notifications_off")
	if notify {
		notifyLabel = t.T("settings.notifications_on")
	}

	return fmt.Sprintf(t.T("settings.title"), notifyLabel, strings.ToUpper(language))
}
