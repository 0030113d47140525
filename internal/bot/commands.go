package bot

import (
	"errors"
	"fmt"

	"github.com/nutritrack/nutrition-bot/internal/bot/keyboard"
)

// Command constants for Telegram bot commands.
const (
	CommandStart    = "/start"
	CommandHelp     = "/help"
	CommandSetGoals = "/set_goals"
	CommandAddMeal  = "/add_meal"
	CommandToday    = "/today"
	CommandProgress = "/progress"
	CommandSummary  = "/summary"
	CommandSettings = "/settings"
	CommandProfile  = "/profile"
	CommandCancel   = "/cancel"
)

// CallbackAction is a parsed inline callback identifier. The set is
// closed; ParseCallback rejects anything it does not know.
type CallbackAction string

const (
	ActionMenu           CallbackAction = keyboard.CallbackMenu
	ActionGoalPreset     CallbackAction = keyboard.CallbackGoalPreset
	ActionGoalCustom     CallbackAction = keyboard.CallbackGoalCustom
	ActionGoalWeight     CallbackAction = keyboard.CallbackGoalWeight
	ActionActivity       CallbackAction = keyboard.CallbackActivity
	ActionTodayPage      CallbackAction = keyboard.CallbackTodayPage
	ActionSettingsNotify CallbackAction = keyboard.CallbackSettingsNotify
	ActionSettingsLang   CallbackAction = keyboard.CallbackSettingsLang
	ActionFlowCancel     CallbackAction = keyboard.CallbackFlowCancel
)

// ErrUnknownCallback indicates callback data outside the known action set.
var ErrUnknownCallback = errors.New("unknown callback action")

// ParseCallback decodes raw callback data into a typed action and its
// payload. Unknown uniques are an error so the router can answer the
// user instead of dropping the tap.
func ParseCallback(data string) (CallbackAction, string, error) {
	unique, payload, err := keyboard.DecodeCallback(data)
	if err != nil {
		return "", "", fmt.Errorf("decode callback: %w", err)
	}

	switch CallbackAction(unique) {
	case ActionMenu,
		ActionGoalPreset,
		ActionGoalCustom,
		ActionGoalWeight,
		ActionActivity,
		ActionTodayPage,
		ActionSettingsNotify,
		ActionSettingsLang,
		ActionFlowCancel:
		return CallbackAction(unique), payload, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownCallback, unique)
	}
}
