// Package handlers contains asynq task handlers for background jobs.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/domain"
	"github.com/nutritrack/nutrition-bot/internal/i18n"
	"github.com/nutritrack/nutrition-bot/internal/jobs"
	"github.com/nutritrack/nutrition-bot/internal/repository"
	"github.com/nutritrack/nutrition-bot/internal/user"
)

// Messenger is the slice of telebot.Bot the digest needs.
type Messenger interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// DailyDigestHandler sends every opted-in user a recap of the previous
// day's intake against their goals. Users without goals or without
// meals on that day are skipped.
type DailyDigestHandler struct {
	users     *user.Service
	goals     repository.GoalRepository
	meals     repository.MealRepository
	messenger Messenger
	catalog   *i18n.Manager
	log       *slog.Logger
}

// NewDailyDigestHandler wires the digest dependencies.
func NewDailyDigestHandler(
	users *user.Service,
	goals repository.GoalRepository,
	meals repository.MealRepository,
	messenger Messenger,
	catalog *i18n.Manager,
	log *slog.Logger,
) *DailyDigestHandler {
	if log == nil {
		log = slog.Default()
	}

	return &DailyDigestHandler{
		users:     users,
		goals:     goals,
		meals:     meals,
		messenger: messenger,
		catalog:   catalog,
		log:       log,
	}
}

// ProcessTask implements asynq.Handler.
func (h *DailyDigestHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.DailyDigestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.log.ErrorContext(ctx, "daily digest: failed to decode payload",
			slog.String("task_type", t.Type()), slog.Any("error", err))
		return err
	}

	day, err := h.resolveDay(payload.Date)
	if err != nil {
		return err
	}

	recipients, err := h.users.ListNotifiable(ctx)
	if err != nil {
		return fmt.Errorf("list digest recipients: %w", err)
	}

	sent := 0
	for _, recipient := range recipients {
		ok, err := h.sendDigest(ctx, recipient, day)
		if err != nil {
			h.log.WarnContext(ctx, "daily digest: delivery failed",
				slog.Int64("telegram_id", recipient.TelegramID), slog.Any("error", err))
			continue
		}
		if ok {
			sent++
		}
	}

	h.log.InfoContext(ctx, "daily digest processed",
		slog.String("day", day.Format("2006-01-02")),
		slog.Int("recipients", len(recipients)),
		slog.Int("sent", sent),
	)

	return nil
}

func (h *DailyDigestHandler) resolveDay(date string) (time.Time, error) {
	if date == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1), nil
	}

	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse digest date %q: %w", date, err)
	}

	return day, nil
}

func (h *DailyDigestHandler) sendDigest(ctx context.Context, recipient domain.User, day time.Time) (bool, error) {
	goals, err := h.goals.FindByUserID(ctx, recipient.TelegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNoGoals) {
			return false, nil
		}
		return false, err
	}

	totals, err := h.meals.TotalsForDay(ctx, recipient.TelegramID, day)
	if err != nil {
		return false, err
	}

	if totals == (domain.Nutrients{}) {
		return false, nil
	}

	t := h.catalog.Translator(recipient.Language)
	message := h.renderDigest(t, day, totals, goals.Targets())

	if _, err := h.messenger.Send(&telebot.User{ID: recipient.TelegramID}, message); err != nil {
		return false, err
	}

	return true, nil
}

func (h *DailyDigestHandler) renderDigest(t i18n.Translator, day time.Time, totals, targets domain.Nutrients) string {
	var b strings.Builder

	fmt.Fprintf(&b, t.T("digest.header"), day.Format("Mon 02 Jan"))
	b.WriteByte('\n')
	fmt.Fprintf(&b, t.T("digest.calories"), totals.Calories, targets.Calories)
	b.WriteByte('\n')
	fmt.Fprintf(&b, t.T("digest.protein"), totals.Protein, targets.Protein)
	b.WriteByte('\n')
	fmt.Fprintf(&b, t.T("digest.fat"), totals.Fat, targets.Fat)
	b.WriteByte('\n')
	fmt.Fprintf(&b, t.T("digest.carbs"), totals.Carbs, targets.Carbs)

	return b.String()
}
