package state

import "time"

// State represents a dialogue finite-state machine state.
type State string

const (
	// StateIdle indicates that the bot is waiting for the next user
	// command; free text in this state is treated as a meal description.
	StateIdle State = "idle"
	// StateAwaitingCustomGoals indicates that the next text message is a
	// four-number custom goal specification.
	StateAwaitingCustomGoals State = "awaiting_custom_goals"
	// StateAwaitingWeightInfo indicates that the next text message is a
	// current/target weight pair.
	StateAwaitingWeightInfo State = "awaiting_weight_info"
	// StateAwaitingActivityLevel indicates that the user is choosing an
	// activity level button to finish the weight-based goal flow.
	StateAwaitingActivityLevel State = "awaiting_activity_level"
	// StateError indicates that the dialogue is in an error state and
	// requires recovery.
	StateError State = "error"
)

// Context keys for scratch data carried between weight-flow states. The
// scratch values are discarded whenever the flow reaches a terminal
// transition.
const (
	ContextKeyCurrentWeight = "current_weight"
	ContextKeyTargetWeight  = "target_weight"
)

// UserState captures the current dialogue state for a Telegram user.
type UserState struct {
	UserID       int64                  `json:"user_id"`
	CurrentState State                  `json:"current_state"`
	Context      map[string]interface{} `json:"context"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// Weights extracts the scratch weight pair stored during the weight-based
// goal flow. The second return value is false when either value is absent
// or not numeric.
func (s *UserState) Weights() (current, target float64, ok bool) {
	if s == nil || s.Context == nil {
		return 0, 0, false
	}

	current, okCurrent := toFloat(s.Context[ContextKeyCurrentWeight])
	target, okTarget := toFloat(s.Context[ContextKeyTargetWeight])
	if !okCurrent || !okTarget {
		return 0, 0, false
	}

	return current, target, true
}

func toFloat(v interface{}) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	}
	return 0, false
}
