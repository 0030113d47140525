package handlers

import (
	"context"
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/domain"
	"github.com/nutritrack/nutrition-bot/internal/nutrition"
	"github.com/nutritrack/nutrition-bot/internal/progress"
	"github.com/nutritrack/nutrition-bot/internal/repository"
	"github.com/nutritrack/nutrition-bot/pkg/metrics"
)

// NewAddMealHandler returns the /add_meal handler. Logging works from
// plain text in the idle state too; the command just explains that.
func NewAddMealHandler(loc *Localizer) Handler {
	return func(c telebot.Context) error {
		return c.Send(loc.For(c).T("meal.prompt"))
	}
}

// NewMealHandler returns the default free-text handler treating the
// message as a meal description. An estimator failure still records the
// meal with zeroed nutrients so the food diary stays complete; the user
// is told the estimate is missing.
func NewMealHandler(estimator nutrition.Estimator, meals repository.MealRepository, progressSvc *progress.Service, loc *Localizer, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		t := loc.For(c)

		sender := c.Sender()
		if sender == nil {
			return c.Send(t.T("common.error"))
		}

		description, err := nutrition.SanitizeDescription(c.Text())
		if err != nil {
			key := "meal.empty"
			if errors.Is(err, nutrition.ErrDescriptionTooLong) {
				key = "meal.too_long"
			}
			return c.Send(t.T(key))
		}

		ctx := context.Background()

		estimate, err := estimator.AnalyzeMeal(ctx, description)
		estimated := err == nil
		if estimated {
			metrics.RecordEstimatorRequest("analyze_meal", "ok")
		} else {
			metrics.RecordEstimatorRequest("analyze_meal", "error")
			if log != nil {
				log.Warn("meal estimate unavailable, logging zeroed entry",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			estimate = domain.Nutrients{}
		}

		meal := &domain.Meal{
			UserID:      sender.ID,
			Description: description,
			Calories:    estimate.Calories,
			Protein:     estimate.Protein,
			Fat:         estimate.Fat,
			Carbs:       estimate.Carbs,
		}

		if err := meals.Create(ctx, meal); err != nil {
			if log != nil {
				log.Error("failed to save meal",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return c.Send(t.T("meal.save_failed"))
		}

		if !estimated {
			metrics.RecordMealLogged("fallback")
			return c.Send(t.T("meal.estimate_failed"))
		}

		metrics.RecordMealLogged("estimated")

		reply := t.T("meal.logged") + "\n" + formatMealEstimate(t, estimate)

		if today, err := progressSvc.Today(ctx, sender.ID); err == nil && today != nil {
			reply += "\n\n" + formatProgress(t, today)
		} else if err != nil && log != nil {
			log.Warn("failed to load progress after meal",
				slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
		}

		if err := c.Send(reply); err != nil {
			return err
		}

		feedback, err := estimator.MealFeedback(ctx, description, estimate)
		if err != nil {
			metrics.RecordEstimatorRequest("meal_feedback", "error")
			if log != nil {
				log.Warn("meal feedback unavailable",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			feedback = t.T("meal.feedback_fallback")
		} else {
			metrics.RecordEstimatorRequest("meal_feedback", "ok")
		}

		return c.Send(feedback)
	}
}
