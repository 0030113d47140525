package handlers

import (
	"fmt"
	"strings"

	"github.com/nutritrack/nutrition-bot/internal/domain"
	"github.com/nutritrack/nutrition-bot/internal/i18n"
	"github.com/nutritrack/nutrition-bot/internal/nutrition"
	"github.com/nutritrack/nutrition-bot/internal/progress"
)

// formatTargets renders a goal's four daily targets.
func formatTargets(t i18n.Translator, targets domain.Nutrients) string {
	var b strings.Builder

	fmt.Fprintf(&b, t.T("targets.calories"), targets.Calories)
	b.WriteByte('\n')
	fmt.Fprintf(&b, t.T("targets.protein"), targets.Protein)
	b.WriteByte('\n')
	fmt.Fprintf(&b, t.T("targets.fat"), targets.Fat)
	b.WriteByte('\n')
	fmt.Fprintf(&b, t.T("targets.carbs"), targets.Carbs)

	return b.String()
}

// formatProgress renders today's intake against the user's goals.
func formatProgress(t i18n.Translator, p *progress.Progress) string {
	targets := p.Goals.Targets()

	var b strings.Builder
	b.WriteString(t.T("progress.header"))
	b.WriteByte('\n')

	fmt.Fprintf(&b, t.T("progress.calories"),
		p.Totals.Calories, targets.Calories, sharePercent(float64(p.Totals.Calories), float64(targets.Calories)))
	b.WriteByte('\n')
	fmt.Fprintf(&b, t.T("progress.protein"),
		p.Totals.Protein, targets.Protein, sharePercent(p.Totals.Protein, targets.Protein))
	b.WriteByte('\n')
	fmt.Fprintf(&b, t.T("progress.fat"),
		p.Totals.Fat, targets.Fat, sharePercent(p.Totals.Fat, targets.Fat))
	b.WriteByte('\n')
	fmt.Fprintf(&b, t.T("progress.carbs"),
		p.Totals.Carbs, targets.Carbs, sharePercent(p.Totals.Carbs, targets.Carbs))

	return b.String()
}

// formatMealLine renders one meal entry for the /today listing.
func formatMealLine(t i18n.Translator, meal domain.Meal) string {
	return fmt.Sprintf(t.T("today.entry"),
		meal.Description, meal.Calories, meal.Protein, meal.Fat, meal.Carbs)
}

// formatMealEstimate renders the estimate echoed after logging a meal.
func formatMealEstimate(t i18n.Translator, meal domain.Nutrients) string {
	return fmt.Sprintf(t.T("meal.estimate"),
		meal.Calories, meal.Protein, meal.Fat, meal.Carbs)
}

// formatWeekly renders the trailing-week summary, newest day first.
func formatWeekly(t i18n.Translator, summary *progress.WeeklySummary) string {
	var b strings.Builder
	b.WriteString(t.T("summary.header"))
	b.WriteByte('\n')

	for _, day := range summary.Days {
		b.WriteByte('\n')
		fmt.Fprintf(&b, t.T("summary.day"),
			day.Date.Format("Mon 02 Jan"),
			day.Totals.Calories,
			day.Totals.Protein,
			day.Totals.Fat,
			day.Totals.Carbs,
		)

		if day.Exceeded {
			b.WriteByte(' ')
			b.WriteString(t.T("summary.exceeded"))
		}
	}

	b.WriteString("\n\n")
	fmt.Fprintf(&b, t.T("summary.averages"),
		summary.Averages.Calories,
		summary.Averages.Protein,
		summary.Averages.Fat,
		summary.Averages.Carbs,
	)
	b.WriteByte('\n')
	fmt.Fprintf(&b, t.T("summary.days_with_data"), summary.DaysWithData)

	return b.String()
}

// formatSuggestion renders suggested goals with the per-nutrient
// explanations returned by the estimator.
func formatSuggestion(t i18n.Translator, suggestion nutrition.GoalSuggestion) string {
	var b strings.Builder
	b.WriteString(t.T("goals.suggested_header"))
	b.WriteString("\n\n")
	b.WriteString(formatTargets(t, suggestion.Goals))
	b.WriteString("\n\n")
	b.WriteString(suggestion.Explanation.Calories)
	b.WriteByte('\n')
	b.WriteString(suggestion.Explanation.Protein)
	b.WriteByte('\n')
	b.WriteString(suggestion.Explanation.Fat)
	b.WriteByte('\n')
	b.WriteString(suggestion.Explanation.Carbs)

	return b.String()
}

func sharePercent(value, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return value / target * 100
}
