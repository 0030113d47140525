package handlers

import (
	"context"
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/bot/keyboard"
	"github.com/nutritrack/nutrition-bot/internal/state"
)

// NewCancelHandler returns the /cancel handler aborting any waiting
// dialogue step. Running it while idle is harmless.
func NewCancelHandler(fsm state.StateMachine, kb *keyboard.Builder, loc *Localizer, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		t := loc.For(c)

		sender := c.Sender()
		if sender == nil {
			return c.Send(t.T("common.error"))
		}

		cancelled, err := resetDialogue(context.Background(), fsm, sender.ID)
		if err != nil {
			if log != nil {
				log.Error("cancel: failed to reset state",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return c.Send(t.T("common.error"))
		}

		key := "cancel.nothing"
		if cancelled {
			key = "cancel.done"
		}

		return c.Send(t.T(key), kb.MainMenu(t))
	}
}

// HandleFlowCancel returns the callback handler for the inline cancel
// button shown during dialogue steps.
func HandleFlowCancel(fsm state.StateMachine, kb *keyboard.Builder, loc *Localizer, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		t := loc.For(c)

		sender := c.Sender()
		if sender == nil {
			return respondCallback(c, t.T("common.error"), true)
		}

		if _, err := resetDialogue(context.Background(), fsm, sender.ID); err != nil {
			if log != nil {
				log.Error("flow cancel: failed to reset state",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return respondCallback(c, t.T("common.error"), true)
		}

		if err := respondCallback(c, t.T("cancel.done"), false); err != nil && log != nil {
			log.Warn("flow cancel: failed to answer callback", slog.Any("error", err))
		}

		return c.Send(t.T("cancel.done"), kb.MainMenu(t))
	}
}

// NewErrorRecoveryHandler returns the handler for the error state. Any
// message moves the dialogue back to idle.
func NewErrorRecoveryHandler(fsm state.StateMachine, kb *keyboard.Builder, loc *Localizer, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		t := loc.For(c)

		sender := c.Sender()
		if sender == nil {
			return c.Send(t.T("common.error"))
		}

		if _, err := resetDialogue(context.Background(), fsm, sender.ID); err != nil {
			if log != nil {
				log.Error("error recovery: failed to reset state",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return c.Send(t.T("common.error"))
		}

		return c.Send(t.T("common.recovered"), kb.MainMenu(t))
	}
}

// resetDialogue moves the user back to idle, dropping scratch context.
// Reports whether a non-idle state was actually abandoned.
func resetDialogue(ctx context.Context, fsm state.StateMachine, userID int64) (bool, error) {
	current := state.StateIdle

	userState, err := fsm.GetState(ctx, userID)
	if err != nil && !errors.Is(err, state.ErrStateNotFound) {
		return false, err
	}
	if userState != nil {
		current = userState.CurrentState
	}

	if err := fsm.SetState(ctx, userID, state.StateIdle, nil); err != nil {
		return false, err
	}

	return current != state.StateIdle, nil
}
