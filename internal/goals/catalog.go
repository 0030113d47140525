// Package goals holds the goal catalog and the parsing/arithmetic used by
// the goal-setting dialogue: predefined archetypes, custom-goal and weight
// input parsing, and the formula-based calculator.
package goals

import "github.com/nutritrack/nutrition-bot/internal/domain"

// Archetype identifies a predefined goal profile.
type Archetype string

const (
	ArchetypeWeightLoss  Archetype = "weight_loss"
	ArchetypeMuscleGain  Archetype = "muscle_gain"
	ArchetypeMaintenance Archetype = "maintenance"
	ArchetypeKeto        Archetype = "keto"
)

var catalog = map[Archetype]domain.Nutrients{
	ArchetypeWeightLoss:  {Calories: 1500, Protein: 120, Fat: 50, Carbs: 150},
	ArchetypeMuscleGain:  {Calories: 2500, Protein: 180, Fat: 80, Carbs: 250},
	ArchetypeMaintenance: {Calories: 2000, Protein: 150, Fat: 65, Carbs: 200},
	ArchetypeKeto:        {Calories: 1800, Protein: 120, Fat: 120, Carbs: 30},
}

// archetypeOrder fixes the menu ordering.
var archetypeOrder = []Archetype{
	ArchetypeWeightLoss,
	ArchetypeMuscleGain,
	ArchetypeMaintenance,
	ArchetypeKeto,
}

// Predefined returns the catalog targets for the archetype. The second
// return value is false for unknown archetypes; there is no silent
// maintenance fallback.
func Predefined(a Archetype) (domain.Nutrients, bool) {
	targets, ok := catalog[a]
	return targets, ok
}

// Archetypes lists the catalog archetypes in menu order.
func Archetypes() []Archetype {
	out := make([]Archetype, len(archetypeOrder))
	copy(out, archetypeOrder)
	return out
}
