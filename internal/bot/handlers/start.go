package handlers

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/bot/keyboard"
	"github.com/nutritrack/nutrition-bot/internal/state"
	"github.com/nutritrack/nutrition-bot/internal/user"
)

// NewStartHandler returns the /start handler. It ensures a profile row
// exists, resets the dialogue to idle, and shows the main menu.
func NewStartHandler(users *user.Service, fsm state.StateMachine, kb *keyboard.Builder, loc *Localizer, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		t := loc.For(c)

		if sender == nil {
			return c.Send(t.T("common.error"))
		}

		ctx := context.Background()

		profile, err := users.GetOrCreate(ctx, sender)
		if err != nil {
			if log != nil {
				log.Error("start: failed to ensure profile",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return c.Send(t.T("common.error"))
		}

		if err := fsm.SetState(ctx, sender.ID, state.StateIdle, nil); err != nil {
			if log != nil {
				log.Error("start: failed to reset state",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return c.Send(t.T("common.error"))
		}

		name := profile.FirstName
		if name == "" {
			name = profile.Username
		}

		return c.Send(fmt.Sprintf(t.T("start.welcome"), name), kb.MainMenu(t))
	}
}

// NewHelpHandler returns the /help handler.
func NewHelpHandler(kb *keyboard.Builder, loc *Localizer) Handler {
	return func(c telebot.Context) error {
		t := loc.For(c)
		return c.Send(t.T("help.text"), kb.MainMenu(t))
	}
}
