package handlers

import (
	"context"
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/bot/keyboard"
	"github.com/nutritrack/nutrition-bot/internal/goals"
	"github.com/nutritrack/nutrition-bot/internal/nutrition"
	"github.com/nutritrack/nutrition-bot/internal/repository"
	"github.com/nutritrack/nutrition-bot/internal/state"
	"github.com/nutritrack/nutrition-bot/pkg/metrics"
)

// NewActivityNudgeHandler returns the handler for text received while
// an activity-level choice is pending. The step is button-only, so the
// keyboard is shown again.
func NewActivityNudgeHandler(kb *keyboard.Builder, loc *Localizer) Handler {
	return func(c telebot.Context) error {
		t := loc.For(c)
		return c.Send(t.T("goals.pick_activity"), kb.ActivityMenu(t))
	}
}

// HandleActivity returns the callback handler closing the weight-based
// goal flow. The estimator proposes targets with explanations; when it
// is unavailable the formula-based calculation stands in, so the flow
// always completes.
func HandleActivity(fsm state.StateMachine, estimator nutrition.Estimator, goalRepo repository.GoalRepository, kb *keyboard.Builder, loc *Localizer, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		t := loc.For(c)

		sender := c.Sender()
		if sender == nil {
			return respondCallback(c, t.T("common.error"), true)
		}

		ctx := context.Background()

		userState, err := fsm.GetState(ctx, sender.ID)
		if err != nil && !errors.Is(err, state.ErrStateNotFound) {
			if log != nil {
				log.Error("activity: failed to load state",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return respondCallback(c, t.T("common.error"), true)
		}

		current, target, ok := userState.Weights()
		if !ok {
			if err := respondCallback(c, "", false); err != nil && log != nil {
				log.Warn("activity: failed to answer callback", slog.Any("error", err))
			}
			return c.Send(t.T("goals.weight_flow_expired"))
		}

		level := goals.ActivityLevel(callbackPayload(c))

		suggestion, err := estimator.SuggestGoals(ctx, current, target, level)
		if err != nil {
			metrics.RecordEstimatorRequest("suggest_goals", "error")
			if log != nil {
				log.Warn("goal suggestion unavailable, using formula",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}

			targets, calcErr := goals.Calculate(current, target, level)
			if calcErr != nil {
				return respondCallback(c, t.T("common.unknown_action"), true)
			}

			suggestion = nutrition.GoalSuggestion{
				Goals: targets,
				Explanation: nutrition.Explanation{
					Calories: t.T("goals.formula_calories"),
					Protein:  t.T("goals.formula_protein"),
					Fat:      t.T("goals.formula_fat"),
					Carbs:    t.T("goals.formula_carbs"),
				},
			}
		} else {
			metrics.RecordEstimatorRequest("suggest_goals", "ok")
		}

		if err := goalRepo.Upsert(ctx, sender.ID, suggestion.Goals); err != nil {
			if log != nil {
				log.Error("failed to save suggested goals",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			// The dialogue ends either way; scratch weights must not
			// survive a failed save.
			if resetErr := fsm.SetState(ctx, sender.ID, state.StateIdle, nil); resetErr != nil && log != nil {
				log.Error("failed to reset weight flow after save error",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", resetErr))
			}
			return respondCallback(c, t.T("goals.save_failed"), true)
		}

		if err := fsm.TransitionTo(ctx, sender.ID, state.StateIdle); err != nil && log != nil {
			log.Error("failed to close weight flow",
				slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
		}

		if err := respondCallback(c, t.T("goals.saved_toast"), false); err != nil && log != nil {
			log.Warn("activity: failed to answer callback", slog.Any("error", err))
		}

		return c.Send(formatSuggestion(t, suggestion), kb.MainMenu(t))
	}
}
