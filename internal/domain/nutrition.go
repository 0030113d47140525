package domain

import "time"

// Nutrients bundles the four tracked values. Calories are kcal, the
// macros are grams.
type Nutrients struct {
	Calories int
	Protein  float64
	Fat      float64
	Carbs    float64
}

// Add accumulates another set of nutrients into the receiver.
func (n *Nutrients) Add(other Nutrients) {
	n.Calories += other.Calories
	n.Protein += other.Protein
	n.Fat += other.Fat
	n.Carbs += other.Carbs
}

// Goals is a user's daily nutrition target, one active row per user.
type Goals struct {
	ID        int64
	UserID    int64
	Calories  int
	Protein   float64
	Fat       float64
	Carbs     float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Targets returns the goal values as a Nutrients bundle.
func (g Goals) Targets() Nutrients {
	return Nutrients{Calories: g.Calories, Protein: g.Protein, Fat: g.Fat, Carbs: g.Carbs}
}

// Meal is a single logged meal. Rows are immutable once created; the
// created_at timestamp buckets the meal into a UTC calendar day.
type Meal struct {
	ID          int64
	UserID      int64
	Description string
	Calories    int
	Protein     float64
	Fat         float64
	Carbs       float64
	CreatedAt   time.Time
}

// Nutrients returns the meal's nutrient values as a bundle.
func (m Meal) Nutrients() Nutrients {
	return Nutrients{Calories: m.Calories, Protein: m.Protein, Fat: m.Fat, Carbs: m.Carbs}
}

// DayTotals is one day's aggregated meal nutrients as returned by the
// meals repository.
type DayTotals struct {
	Date   time.Time
	Totals Nutrients
}
