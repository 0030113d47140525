package goals

import (
	"errors"
	"strconv"
	"strings"

	"github.com/nutritrack/nutrition-bot/internal/domain"
)

// Caps for custom goal values. Anything above is treated as input error
// rather than clamped.
const (
	MaxCalories = 10000
	MaxProtein  = 500
	MaxFat      = 200
	MaxCarbs    = 1000
)

// Weight bounds in kilograms for the weight-based flow.
const (
	MinWeightKg = 30
	MaxWeightKg = 150
)

var (
	// ErrInvalidGoalFormat indicates the custom goal text is not four
	// whitespace-separated integers.
	ErrInvalidGoalFormat = errors.New("custom goals must be four whole numbers")
	// ErrGoalOutOfRange indicates a custom goal value is non-positive or
	// above its cap.
	ErrGoalOutOfRange = errors.New("custom goal value out of range")
	// ErrInvalidWeightFormat indicates the weight text is not two numbers.
	ErrInvalidWeightFormat = errors.New("weights must be two numbers")
	// ErrWeightOutOfRange indicates a weight outside [30, 150] kg.
	ErrWeightOutOfRange = errors.New("weight out of supported range")
	// ErrWeightsEqual indicates current and target weights match, leaving
	// no direction for the calorie adjustment.
	ErrWeightsEqual = errors.New("current and target weights are equal")
)

// ParseCustomGoals parses "calories protein fat carbs" as four positive
// integers. Invalid input is an error, never a default profile.
func ParseCustomGoals(text string) (domain.Nutrients, error) {
	parts := strings.Fields(text)
	if len(parts) != 4 {
		return domain.Nutrients{}, ErrInvalidGoalFormat
	}

	values := make([]int, 4)
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return domain.Nutrients{}, ErrInvalidGoalFormat
		}
		values[i] = v
	}

	caps := [4]int{MaxCalories, MaxProtein, MaxFat, MaxCarbs}
	for i, v := range values {
		if v <= 0 || v > caps[i] {
			return domain.Nutrients{}, ErrGoalOutOfRange
		}
	}

	return domain.Nutrients{
		Calories: values[0],
		Protein:  float64(values[1]),
		Fat:      float64(values[2]),
		Carbs:    float64(values[3]),
	}, nil
}

// ParseWeights parses "current target" in kilograms. Both values must fall
// within [30, 150] and differ from each other.
func ParseWeights(text string) (current, target float64, err error) {
	parts := strings.Fields(text)
	if len(parts) != 2 {
		return 0, 0, ErrInvalidWeightFormat
	}

	current, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, ErrInvalidWeightFormat
	}

	target, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, ErrInvalidWeightFormat
	}

	if current < MinWeightKg || current > MaxWeightKg || target < MinWeightKg || target > MaxWeightKg {
		return 0, 0, ErrWeightOutOfRange
	}

	if current == target {
		return 0, 0, ErrWeightsEqual
	}

	return current, target, nil
}
