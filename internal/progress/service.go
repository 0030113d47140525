// Package progress computes daily progress and weekly summaries from
// logged meals and configured goals. Every aggregate buckets meals by
// the UTC calendar day they were logged on.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nutritrack/nutrition-bot/internal/domain"
	"github.com/nutritrack/nutrition-bot/internal/repository"
)

// exceededFactor marks a day as over-eaten when any nutrient passes
// 125% of its goal.
const exceededFactor = 1.25

// summaryWindowDays is the trailing window of a weekly summary,
// including today.
const summaryWindowDays = 7

// Progress is today's intake paired with the user's goals.
type Progress struct {
	Goals  domain.Goals
	Totals domain.Nutrients
}

// DaySummary describes one day inside a weekly summary.
type DaySummary struct {
	Date            time.Time
	Totals          domain.Nutrients
	CaloriesPercent float64
	ProteinPercent  float64
	FatPercent      float64
	CarbsPercent    float64
	CaloriesReached bool
	ProteinReached  bool
	FatReached      bool
	CarbsReached    bool
	Exceeded        bool
}

// Averages holds mean daily intake over the days that have data.
type Averages struct {
	Calories float64
	Protein  float64
	Fat      float64
	Carbs    float64
}

// WeeklySummary is the trailing-week report: per-day breakdowns newest
// first plus averages over logged days only.
type WeeklySummary struct {
	Goals        domain.Goals
	Days         []DaySummary
	Averages     Averages
	DaysWithData int
}

// Service aggregates meals against goals.
type Service struct {
	goals repository.GoalRepository
	meals repository.MealRepository
	log   *slog.Logger
	now   func() time.Time
}

// NewService constructs the aggregation service.
func NewService(goals repository.GoalRepository, meals repository.MealRepository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		goals: goals,
		meals: meals,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Today returns the user's progress for the current UTC day. Without a
// goals row there is no notion of progress and the result is nil even
// when meals exist.
func (s *Service) Today(ctx context.Context, userID int64) (*Progress, error) {
	goals, err := s.goals.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoGoals) {
			return nil, nil
		}
		return nil, fmt.Errorf("load goals: %w", err)
	}

	totals, err := s.meals.TotalsForDay(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("load today totals: %w", err)
	}

	return &Progress{Goals: *goals, Totals: totals}, nil
}

// TodayMeals lists the user's meals for the current UTC day, oldest
// first.
func (s *Service) TodayMeals(ctx context.Context, userID int64) ([]domain.Meal, error) {
	meals, err := s.meals.ListForDay(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("load today meals: %w", err)
	}

	return meals, nil
}

// Weekly builds the trailing 7-day summary, today included, newest day
// first. Returns nil when the user has no goals or no meals anywhere in
// the window. Averages divide by the number of days that have meals,
// not by seven.
func (s *Service) Weekly(ctx context.Context, userID int64) (*WeeklySummary, error) {
	goals, err := s.goals.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoGoals) {
			return nil, nil
		}
		return nil, fmt.Errorf("load goals: %w", err)
	}

	now := s.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := todayStart.AddDate(0, 0, -(summaryWindowDays - 1))
	to := todayStart.Add(24 * time.Hour)

	days, err := s.meals.DailyTotals(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load daily totals: %w", err)
	}

	if len(days) == 0 {
		return nil, nil
	}

	summary := &WeeklySummary{
		Goals:        *goals,
		Days:         make([]DaySummary, 0, len(days)),
		DaysWithData: len(days),
	}

	var sum domain.Nutrients
	for _, day := range days {
		summary.Days = append(summary.Days, s.summarizeDay(day, goals.Targets()))
		sum.Add(day.Totals)
	}

	n := float64(len(days))
	summary.Averages = Averages{
		Calories: float64(sum.Calories) / n,
		Protein:  sum.Protein / n,
		Fat:      sum.Fat / n,
		Carbs:    sum.Carbs / n,
	}

	return summary, nil
}

func (s *Service) summarizeDay(day domain.DayTotals, targets domain.Nutrients) DaySummary {
	out := DaySummary{
		Date:            day.Date,
		Totals:          day.Totals,
		CaloriesPercent: percent(float64(day.Totals.Calories), float64(targets.Calories)),
		ProteinPercent:  percent(day.Totals.Protein, targets.Protein),
		FatPercent:      percent(day.Totals.Fat, targets.Fat),
		CarbsPercent:    percent(day.Totals.Carbs, targets.Carbs),
	}

	out.CaloriesReached = day.Totals.Calories >= targets.Calories
	out.ProteinReached = day.Totals.Protein >= targets.Protein
	out.FatReached = day.Totals.Fat >= targets.Fat
	out.CarbsReached = day.Totals.Carbs >= targets.Carbs

	limit := exceededFactor * 100
	out.Exceeded = out.CaloriesPercent > limit ||
		out.ProteinPercent > limit ||
		out.FatPercent > limit ||
		out.CarbsPercent > limit

	return out
}

func percent(value, target float64) float64 {
	if target <= 0 {
		return 0
	}

	return value / target * 100
}
