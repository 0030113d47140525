package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"
)

// NewMenuCallback returns the handler for main-menu button taps. Each
// payload maps to the same handler the matching slash command uses, so
// tapping a button and typing the command behave identically.
func NewMenuCallback(routes map[string]Handler, loc *Localizer, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		payload := callbackPayload(c)

		handler, ok := routes[payload]
		if !ok {
			if log != nil {
				log.Warn("menu callback with unknown entry", slog.String("entry", payload))
			}
			return respondCallback(c, loc.For(c).T("common.unknown_action"), false)
		}

		if err := respondCallback(c, "", false); err != nil && log != nil {
			log.Warn("menu callback: failed to answer", slog.Any("error", err))
		}

		return handler(c)
	}
}

// NewUnknownCallback returns the handler answering callbacks outside
// the known action set. Stale keyboards from older bot versions land
// here; the tap is acknowledged so the client stops its spinner.
func NewUnknownCallback(loc *Localizer, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		if log != nil && c != nil && c.Callback() != nil {
			log.Warn("unknown callback answered", slog.String("data", c.Callback().Data))
		}

		return respondCallback(c, loc.For(c).T("common.unknown_action"), false)
	}
}
