package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/bot/keyboard"
	"github.com/nutritrack/nutrition-bot/internal/domain"
	"github.com/nutritrack/nutrition-bot/internal/i18n"
	"github.com/nutritrack/nutrition-bot/internal/progress"
)

// todayPageSize is how many meals one /today page shows.
const todayPageSize = 5

// NewTodayHandler returns the /today handler listing the day's meals,
// oldest first, with pagination past todayPageSize entries.
func NewTodayHandler(progressSvc *progress.Service, kb *keyboard.Builder, loc *Localizer, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		t := loc.For(c)

		sender := c.Sender()
		if sender == nil {
			return c.Send(t.T("common.error"))
		}

		meals, err := progressSvc.TodayMeals(context.Background(), sender.ID)
		if err != nil {
			if log != nil {
				log.Error("failed to list today's meals",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return c.Send(t.T("common.error"))
		}

		if len(meals) == 0 {
			return c.Send(t.T("today.empty"))
		}

		text, markup := renderTodayPage(t, kb, meals, 1)
		if markup == nil {
			return c.Send(text)
		}
		return c.Send(text, markup)
	}
}

// HandleTodayPage returns the callback handler for /today pagination
// taps. The original message is edited in place.
func HandleTodayPage(progressSvc *progress.Service, kb *keyboard.Builder, loc *Localizer, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		t := loc.For(c)

		sender := c.Sender()
		if sender == nil {
			return respondCallback(c, t.T("common.error"), true)
		}

		page, err := strconv.Atoi(callbackPayload(c))
		if err != nil || page < 1 {
			return respondCallback(c, t.T("common.unknown_action"), false)
		}

		meals, err := progressSvc.TodayMeals(context.Background(), sender.ID)
		if err != nil {
			if log != nil {
				log.Error("failed to list today's meals for page",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return respondCallback(c, t.T("common.error"), true)
		}

		if len(meals) == 0 {
			if err := respondCallback(c, "", false); err != nil && log != nil {
				log.Warn("today page: failed to answer callback", slog.Any("error", err))
			}
			return c.Edit(t.T("today.empty"))
		}

		if err := respondCallback(c, "", false); err != nil && log != nil {
			log.Warn("today page: failed to answer callback", slog.Any("error", err))
		}

		text, markup := renderTodayPage(t, kb, meals, page)
		if markup == nil {
			return c.Edit(text)
		}
		return c.Edit(text, markup)
	}
}

func renderTodayPage(t i18n.Translator, kb *keyboard.Builder, meals []domain.Meal, page int) (string, *telebot.ReplyMarkup) {
	totalPages := (len(meals) + todayPageSize - 1) / todayPageSize
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * todayPageSize
	end := start + todayPageSize
	if end > len(meals) {
		end = len(meals)
	}

	var b strings.Builder
	b.WriteString(t.T("today.header"))

	var totals domain.Nutrients
	for _, meal := range meals {
		totals.Add(meal.Nutrients())
	}

	for _, meal := range meals[start:end] {
		b.WriteByte('\n')
		b.WriteString(formatMealLine(t, meal))
	}

	b.WriteString("\n\n")
	fmt.Fprintf(&b, t.T("today.totals"), totals.Calories, totals.Protein, totals.Fat, totals.Carbs)

	if totalPages <= 1 {
		return b.String(), nil
	}

	b.WriteByte('\n')
	fmt.Fprintf(&b, t.T("today.page"), page, totalPages)

	return b.String(), kb.TodayPagination(t, page, totalPages)
}
