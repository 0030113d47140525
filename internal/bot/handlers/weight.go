package handlers

import (
	"context"
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/bot/keyboard"
	"github.com/nutritrack/nutrition-bot/internal/goals"
	"github.com/nutritrack/nutrition-bot/internal/state"
)

// NewWeightStateHandler returns the handler for text received in the
// awaiting_weight_info state. A valid weight pair is carried as scratch
// context into the activity-level step.
func NewWeightStateHandler(fsm state.StateMachine, kb *keyboard.Builder, loc *Localizer, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		t := loc.For(c)

		sender := c.Sender()
		if sender == nil {
			return c.Send(t.T("common.error"))
		}

		current, target, err := goals.ParseWeights(c.Text())
		if err != nil {
			key := "goals.invalid_weight"
			switch {
			case errors.Is(err, goals.ErrWeightOutOfRange):
				key = "goals.weight_out_of_range"
			case errors.Is(err, goals.ErrWeightsEqual):
				key = "goals.weights_equal"
			}
			return c.Send(t.T(key), kb.CancelButton(t))
		}

		scratch := map[string]interface{}{
			state.ContextKeyCurrentWeight: current,
			state.ContextKeyTargetWeight:  target,
		}

		if err := fsm.TransitionWith(context.Background(), sender.ID, state.StateAwaitingActivityLevel, scratch); err != nil {
			if log != nil {
				log.Error("failed to advance weight flow",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return c.Send(t.T("common.busy"))
		}

		return c.Send(t.T("goals.pick_activity"), kb.ActivityMenu(t))
	}
}
