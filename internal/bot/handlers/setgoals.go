package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/bot/keyboard"
	"github.com/nutritrack/nutrition-bot/internal/goals"
	"github.com/nutritrack/nutrition-bot/internal/repository"
	"github.com/nutritrack/nutrition-bot/internal/state"
)

// NewSetGoalsHandler returns the /set_goals handler presenting the
// archetype menu. The command itself does not change dialogue state;
// only the custom and weight buttons open a waiting state.
func NewSetGoalsHandler(kb *keyboard.Builder, loc *Localizer) Handler {
	return func(c telebot.Context) error {
		t := loc.For(c)
		return c.Send(t.T("goals.choose"), kb.GoalMenu(t))
	}
}

// HandleGoalPreset returns the callback handler for archetype buttons.
// The preset is written immediately, replacing any previous goals.
func HandleGoalPreset(goalRepo repository.GoalRepository, loc *Localizer, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		t := loc.For(c)

		sender := c.Sender()
		if sender == nil {
			return respondCallback(c, t.T("common.error"), true)
		}

		archetype := goals.Archetype(callbackPayload(c))
		targets, ok := goals.Predefined(archetype)
		if !ok {
			if log != nil {
				log.Warn("goal preset callback with unknown archetype", slog.String("archetype", string(archetype)))
			}
			return respondCallback(c, t.T("common.unknown_action"), true)
		}

		if err := goalRepo.Upsert(context.Background(), sender.ID, targets); err != nil {
			if log != nil {
				log.Error("failed to save preset goals",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return respondCallback(c, t.T("goals.save_failed"), true)
		}

		if err := respondCallback(c, t.T("goals.saved_toast"), false); err != nil && log != nil {
			log.Warn("goal preset: failed to answer callback", slog.Any("error", err))
		}

		return c.Send(t.T("goals.saved") + "\n\n" + formatTargets(t, targets))
	}
}

// HandleGoalCustom returns the callback handler opening the custom-goal
// input step.
func HandleGoalCustom(fsm state.StateMachine, kb *keyboard.Builder, loc *Localizer, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		return openGoalInputState(c, fsm, state.StateAwaitingCustomGoals, "goals.custom_prompt", kb, loc, log)
	}
}

// HandleGoalWeight returns the callback handler opening the weight-based
// goal flow.
func HandleGoalWeight(fsm state.StateMachine, kb *keyboard.Builder, loc *Localizer, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		return openGoalInputState(c, fsm, state.StateAwaitingWeightInfo, "goals.weight_prompt", kb, loc, log)
	}
}

func openGoalInputState(c telebot.Context, fsm state.StateMachine, target state.State, promptKey string, kb *keyboard.Builder, loc *Localizer, log *slog.Logger) error {
	t := loc.For(c)

	sender := c.Sender()
	if sender == nil {
		return respondCallback(c, t.T("common.error"), true)
	}

	if err := fsm.TransitionTo(context.Background(), sender.ID, target); err != nil {
		if log != nil {
			log.Error("failed to open goal input state",
				slog.Int64("telegram_id", sender.ID),
				slog.String("state", string(target)),
				slog.Any("error", err))
		}
		return respondCallback(c, t.T("common.busy"), true)
	}

	if err := respondCallback(c, "", false); err != nil && log != nil {
		log.Warn("goal input: failed to answer callback", slog.Any("error", err))
	}

	return c.Send(t.T(promptKey), kb.CancelButton(t))
}
