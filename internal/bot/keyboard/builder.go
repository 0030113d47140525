// Package keyboard renders the bot's inline keyboards and owns the
// callback data codec shared with the router.
package keyboard

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/goals"
	"github.com/nutritrack/nutrition-bot/internal/i18n"
)

// Builder creates localized inline keyboards.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}

	return &Builder{log: log}
}

// MainMenu builds the idle-state menu of bot actions.
func (b *Builder) MainMenu(t i18n.Translator) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard().
		AddRow(
			InlineButton{Text: translated(t, "menu.set_goals", "🎯 Set goals"), Unique: CallbackMenu, Data: "set_goals"},
			InlineButton{Text: translated(t, "menu.add_meal", "🍽 Log a meal"), Unique: CallbackMenu, Data: "add_meal"},
		).
		AddRow(
			InlineButton{Text: translated(t, "menu.today", "📋 Today"), Unique: CallbackMenu, Data: "today"},
			InlineButton{Text: translated(t, "menu.progress", "📊 Progress"), Unique: CallbackMenu, Data: "progress"},
		).
		AddRow(
			InlineButton{Text: translated(t, "menu.summary", "🗓 Weekly summary"), Unique: CallbackMenu, Data: "summary"},
			InlineButton{Text: translated(t, "menu.settings", "⚙️ Settings"), Unique: CallbackMenu, Data: "settings"},
		)

	return b.mustBuild(kb)
}

// GoalMenu builds the goal-setting entry menu: the four preset
// archetypes plus the custom and weight-based flows.
func (b *Builder) GoalMenu(t i18n.Translator) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()

	var row []InlineButton
	for _, archetype := range goals.Archetypes() {
		row = append(row, InlineButton{
			Text:   translated(t, "goals.archetype."+string(archetype), string(archetype)),
			Unique: CallbackGoalPreset,
			Data:   string(archetype),
		})

		if len(row) == 2 {
			kb.AddRow(row...)
			row = nil
		}
	}
	if len(row) > 0 {
		kb.AddRow(row...)
	}

	kb.AddRow(
		InlineButton{Text: translated(t, "goals.custom_button", "✍️ Custom goals"), Unique: CallbackGoalCustom},
		InlineButton{Text: translated(t, "goals.weight_button", "⚖️ From my weight"), Unique: CallbackGoalWeight},
	)

	return b.mustBuild(kb)
}

// ActivityMenu builds the activity level selection for the weight flow.
func (b *Builder) ActivityMenu(t i18n.Translator) *telebot.ReplyMarkup {
	levels := []goals.ActivityLevel{
		goals.ActivitySedentary,
		goals.ActivityLight,
		goals.ActivityModerate,
		goals.ActivityActive,
		goals.ActivityVeryActive,
	}

	kb := NewInlineKeyboard()
	for _, level := range levels {
		kb.AddRow(InlineButton{
			Text:   translated(t, "activity."+string(level), string(level)),
			Unique: CallbackActivity,
			Data:   string(level),
		})
	}

	kb.AddRow(b.cancelInlineButton(t))

	return b.mustBuild(kb)
}

// SettingsMenu builds the settings controls for the given preferences.
func (b *Builder) SettingsMenu(t i18n.Translator, notificationsEnabled bool) *telebot.ReplyMarkup {
	toggleKey := "settings.enable_notifications"
	toggleFallback := "🔔 Enable notifications"
	if notificationsEnabled {
		toggleKey = "settings.disable_notifications"
		toggleFallback = "🔕 Disable notifications"
	}

	kb := NewInlineKeyboard().
		AddRow(InlineButton{Text: translated(t, toggleKey, toggleFallback), Unique: CallbackSettingsNotify}).
		AddRow(
			InlineButton{Text: "English 🇬🇧", Unique: CallbackSettingsLang, Data: "en"},
			InlineButton{Text: "Русский 🇷🇺", Unique: CallbackSettingsLang, Data: "ru"},
		)

	return b.mustBuild(kb)
}

// CancelButton builds a single cancel button for dialogue flows.
func (b *Builder) CancelButton(t i18n.Translator) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard().AddRow(b.cancelInlineButton(t))
	return b.mustBuild(kb)
}

// TodayPagination builds prev/next navigation for the /today list.
func (b *Builder) TodayPagination(t i18n.Translator, page, totalPages int) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard().
		AddRow(PaginationButtons(t, CallbackTodayPage, page, totalPages)...)

	return b.mustBuild(kb)
}

func (b *Builder) cancelInlineButton(t i18n.Translator) InlineButton {
	return InlineButton{
		Text:   translated(t, "common.cancel", "❌ Cancel"),
		Unique: CallbackFlowCancel,
	}
}

// mustBuild renders the markup; the builder only emits fixed uniques and
// short payloads, so an encoding failure is a programming error worth a
// log line, not a user-facing one.
func (b *Builder) mustBuild(kb *InlineKeyboardBuilder) *telebot.ReplyMarkup {
	markup, err := kb.Build()
	if err != nil {
		b.log.Error("failed to build inline keyboard", slog.Any("error", err))
		return &telebot.ReplyMarkup{}
	}

	return markup
}
