package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/repository"
	"github.com/nutritrack/nutrition-bot/internal/user"
)

// NewProfileHandler returns the /profile handler showing the stored
// account details and the active goals, when set.
func NewProfileHandler(users *user.Service, goalRepo repository.GoalRepository, loc *Localizer, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		t := loc.For(c)

		sender := c.Sender()
		if sender == nil {
			return c.Send(t.T("common.error"))
		}

		ctx := context.Background()

		profile, err := users.GetOrCreate(ctx, sender)
		if err != nil {
			if log != nil {
				log.Error("profile: failed to load user",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
			return c.Send(t.T("common.error"))
		}

		var b strings.Builder
		fmt.Fprintf(&b, t.T("profile.name"), profile.FirstName)
		if profile.Username != "" {
			b.WriteByte('\n')
			fmt.Fprintf(&b, t.T("profile.username"), profile.Username)
		}
		b.WriteByte('\n')
		fmt.Fprintf(&b, t.T("profile.language"), strings.ToUpper(profile.Language))
		b.WriteByte('\n')
		fmt.Fprintf(&b, t.T("profile.joined"), profile.CreatedAt.Format("02 Jan 2006"))

		goals, err := goalRepo.FindByUserID(ctx, sender.ID)
		switch {
		case err == nil:
			b.WriteString("\n\n")
			b.WriteString(t.T("profile.goals"))
			b.WriteByte('\n')
			b.WriteString(formatTargets(t, goals.Targets()))
		case errors.Is(err, repository.ErrNoGoals):
			b.WriteString("\n\n")
			b.WriteString(t.T("profile.no_goals"))
		default:
			if log != nil {
				log.Error("profile: failed to load goals",
					slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
			}
		}

		return c.Send(b.String())
	}
}
