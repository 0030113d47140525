// Package nutrition talks to the LLM estimation service: free-text meal
// analysis, weight-based goal suggestions and short meal feedback. All
// responses are strictly decoded and bounds-checked before they are
// allowed anywhere near the store.
package nutrition

import (
	"context"

	"github.com/nutritrack/nutrition-bot/internal/domain"
	"github.com/nutritrack/nutrition-bot/internal/goals"
)

// Explanation carries the per-nutrient reasoning of a goal suggestion.
type Explanation struct {
	Calories string `json:"calories"`
	Protein  string `json:"protein"`
	Fat      string `json:"fat"`
	Carbs    string `json:"carbs"`
}

// GoalSuggestion is a validated LLM goal proposal.
type GoalSuggestion struct {
	Goals       domain.Nutrients
	Explanation Explanation
}

// Estimator is the nutrition estimation collaborator. Implementations
// must return an error rather than fabricated values; degradation
// decisions belong to the caller.
type Estimator interface {
	// AnalyzeMeal estimates nutrients for a free-text meal description.
	AnalyzeMeal(ctx context.Context, description string) (domain.Nutrients, error)
	// SuggestGoals proposes daily targets for a weight pair and activity
	// level, with a per-nutrient explanation.
	SuggestGoals(ctx context.Context, currentWeight, targetWeight float64, level goals.ActivityLevel) (GoalSuggestion, error)
	// MealFeedback produces one short comment about a just-logged meal.
	MealFeedback(ctx context.Context, description string, meal domain.Nutrients) (string, error)
}

// Bounds for a single analyzed meal. Values outside are treated as a
// failed estimate.
const (
	MaxMealCalories = 10000
	MaxMealProtein  = 500
	MaxMealFat      = 200
	MaxMealCarbs    = 1000
)

func withinMealBounds(n domain.Nutrients) bool {
	if n.Calories < 0 || n.Calories > MaxMealCalories {
		return false
	}
	if n.Protein < 0 || n.Protein > MaxMealProtein {
		return false
	}
	if n.Fat < 0 || n.Fat > MaxMealFat {
		return false
	}
	if n.Carbs < 0 || n.Carbs > MaxMealCarbs {
		return false
	}
	return true
}

func withinGoalBounds(n domain.Nutrients) bool {
	if n.Calories <= 0 || n.Calories > goals.MaxCalories {
		return false
	}
	if n.Protein <= 0 || n.Protein > goals.MaxProtein {
		return false
	}
	if n.Fat <= 0 || n.Fat > goals.MaxFat {
		return false
	}
	if n.Carbs <= 0 || n.Carbs > goals.MaxCarbs {
		return false
	}
	return true
}
