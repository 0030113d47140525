package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/bot/keyboard"
	"github.com/nutritrack/nutrition-bot/internal/progress"
)

// NewProgressHandler returns the /progress handler showing today's
// intake against goals. Without configured goals there is nothing to
// compare against, so the user is pointed at /set_goals instead.
func NewProgressHandler(progressSvc *progress.Service, kb *keyboard.Builder, loc *Localizer, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		t := loc.For(c)

		sender := c.Sender()
		if sender == nil {
			return c.Send(t.T("common.error"))
		}

		today, err := progressSvc.Today(context.Background(), sender.ID)
		if err != nil {
			if log != nil {
				log.Error("failed to load daily progress",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return c.Send(t.T("common.error"))
		}

		if today == nil {
			return c.Send(t.T("progress.no_goals"), kb.GoalMenu(t))
		}

		return c.Send(formatProgress(t, today))
	}
}

// NewSummaryHandler returns the /summary handler with the trailing-week
// report.
func NewSummaryHandler(progressSvc *progress.Service, kb *keyboard.Builder, loc *Localizer, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		t := loc.For(c)

		sender := c.Sender()
		if sender == nil {
			return c.Send(t.T("common.error"))
		}

		summary, err := progressSvc.Weekly(context.Background(), sender.ID)
		if err != nil {
			if log != nil {
				log.Error("failed to load weekly summary",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return c.Send(t.T("common.error"))
		}

		if summary == nil {
			return c.Send(t.T("summary.no_data"), kb.MainMenu(t))
		}

		return c.Send(formatWeekly(t, summary))
	}
}
