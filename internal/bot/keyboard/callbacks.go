package keyboard

// Callback uniques form the closed set of inline actions the bot emits.
// Anything else arriving in a callback update is answered as
// unrecognized rather than silently dropped.
const (
	CallbackMenu           = "menu"
	CallbackGoalPreset     = "goal"
	CallbackGoalCustom     = "goal_custom"
	CallbackGoalWeight     = "goal_weight"
	CallbackActivity       = "activity"
	CallbackTodayPage      = "today_page"
	CallbackSettingsNotify = "settings_notify"
	CallbackSettingsLang   = "settings_lang"
	CallbackFlowCancel     = "flow_cancel"
)
