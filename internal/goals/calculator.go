package goals

import (
	"errors"

	"github.com/nutritrack/nutrition-bot/internal/domain"
)

// ActivityLevel selects the TDEE multiplier in the weight-based flow.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

// Mifflin-St Jeor inputs the bot does not ask the user for.
const (
	assumedHeightCm = 170
	assumedAgeYears = 30
)

const (
	calorieAdjustment = 500
	proteinGramsPerKg = 2.0
	fatCalorieShare   = 0.25
	kcalPerGramFat    = 9
	kcalPerGramOther  = 4
)

// ErrUnknownActivityLevel indicates an activity level outside the
// supported set.
var ErrUnknownActivityLevel = errors.New("unknown activity level")

// Calculate derives daily targets from a current/target weight pair using
// Mifflin-St Jeor with the fixed age and height assumptions. The calorie
// target moves 500 kcal toward the target weight; equal weights leave the
// TDEE unadjusted. All results truncate to whole units.
func Calculate(currentWeight, targetWeight float64, level ActivityLevel) (domain.Nutrients, error) {
	multiplier, ok := activityMultipliers[level]
	if !ok {
		return domain.Nutrients{}, ErrUnknownActivityLevel
	}

	bmr := 10*currentWeight + 6.25*assumedHeightCm - 5*assumedAgeYears + 5
	tdee := bmr * multiplier

	switch {
	case targetWeight < currentWeight:
		tdee -= calorieAdjustment
	case targetWeight > currentWeight:
		tdee += calorieAdjustment
	}

	calories := int(tdee)
	protein := int(proteinGramsPerKg * targetWeight)
	fat := int(float64(calories) * fatCalorieShare / kcalPerGramFat)

	carbs := (calories - (protein*kcalPerGramOther + fat*kcalPerGramFat)) / kcalPerGramOther
	if carbs < 0 {
		carbs = 0
	}

	return domain.Nutrients{
		Calories: calories,
		Protein:  float64(protein),
		Fat:      float64(fat),
		Carbs:    float64(carbs),
	}, nil
}
