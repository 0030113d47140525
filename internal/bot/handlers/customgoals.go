package handlers

import (
	"context"
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/bot/keyboard"
	"github.com/nutritrack/nutrition-bot/internal/goals"
	"github.com/nutritrack/nutrition-bot/internal/repository"
	"github.com/nutritrack/nutrition-bot/internal/state"
)

// NewCustomGoalsStateHandler returns the handler for text received in
// the awaiting_custom_goals state. Malformed input re-prompts and keeps
// the state; valid input saves the goals and returns the dialogue to
// idle.
func NewCustomGoalsStateHandler(fsm state.StateMachine, goalRepo repository.GoalRepository, kb *keyboard.Builder, loc *Localizer, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		t := loc.For(c)

		sender := c.Sender()
		if sender == nil {
			return c.Send(t.T("common.error"))
		}

		targets, err := goals.ParseCustomGoals(c.Text())
		if err != nil {
			key := "goals.invalid_custom"
			if errors.Is(err, goals.ErrGoalOutOfRange) {
				key = "goals.custom_out_of_range"
			}
			return c.Send(t.T(key), kb.CancelButton(t))
		}

		ctx := context.Background()

		if err := goalRepo.Upsert(ctx, sender.ID, targets); err != nil {
			if log != nil {
				log.Error("failed to save custom goals",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			// A failed save still ends the dialogue; the user retries
			// from idle rather than from a stale waiting state.
			if resetErr := fsm.SetState(ctx, sender.ID, state.StateIdle, nil); resetErr != nil && log != nil {
				log.Error("failed to reset custom goal state after save error",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", resetErr))
			}
			return c.Send(t.T("goals.save_failed"))
		}

		if err := fsm.TransitionTo(ctx, sender.ID, state.StateIdle); err != nil {
			if log != nil {
				log.Error("failed to close custom goal state",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
		}

		return c.Send(t.T("goals.saved")+"\n\n"+formatTargets(t, targets), kb.MainMenu(t))
	}
}
