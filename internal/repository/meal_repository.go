package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/nutritrack/nutrition-bot/internal/domain"
)

// MealRepository defines persistence for logged meals. Rows are
// immutable; every aggregate buckets by the UTC date of created_at.
type MealRepository interface {
	Create(ctx context.Context, meal *domain.Meal) error
	ListForDay(ctx context.Context, userID int64, day time.Time) ([]domain.Meal, error)
	TotalsForDay(ctx context.Context, userID int64, day time.Time) (domain.Nutrients, error)
	DailyTotals(ctx context.Context, userID int64, from, to time.Time) ([]domain.DayTotals, error)
}

type mealRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewMealRepository creates a new SQL-backed meal repository.
func NewMealRepository(db *sql.DB, log *slog.Logger) MealRepository {
	return &mealRepository{
		db:  db,
		log: log,
	}
}

// Create persists a new meal record.
func (r *mealRepository) Create(ctx context.Context, meal *domain.Meal) error {
	const query = `
		INSERT INTO meals (user_id, description, calories, protein, fat, carbs, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	if meal.CreatedAt.IsZero() {
		meal.CreatedAt = time.Now().UTC()
	}

	if err := r.db.QueryRowContext(
		ctx,
		query,
		meal.UserID,
		meal.Description,
		meal.Calories,
		meal.Protein,
		meal.Fat,
		meal.Carbs,
		meal.CreatedAt,
	).Scan(&meal.ID); err != nil {
		if r.log != nil {
			r.log.Error("failed to insert meal", slog.Int64("user_id", meal.UserID), slog.Any("error", err))
		}
		return fmt.Errorf("insert meal: %w", err)
	}

	return nil
}

// ListForDay returns the user's meals for the UTC day containing the
// given moment, oldest first.
func (r *mealRepository) ListForDay(ctx context.Context, userID int64, day time.Time) ([]domain.Meal, error) {
	start, end := utcDayBounds(day)

	const query = `
		SELECT id, user_id, description, calories, protein, fat, carbs, created_at
		FROM meals
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("select meals for day: %w", err)
	}
	defer rows.Close()

	var meals []domain.Meal
	for rows.Next() {
		var meal domain.Meal
		if err := rows.Scan(
			&meal.ID,
			&meal.UserID,
			&meal.Description,
			&meal.Calories,
			&meal.Protein,
			&meal.Fat,
			&meal.Carbs,
			&meal.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		meals = append(meals, meal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meals: %w", err)
	}

	return meals, nil
}

// TotalsForDay sums the user's nutrients for the UTC day containing the
// given moment. A day without meals sums to zero.
func (r *mealRepository) TotalsForDay(ctx context.Context, userID int64, day time.Time) (domain.Nutrients, error) {
	start, end := utcDayBounds(day)

	const query = `
		SELECT COALESCE(SUM(calories), 0),
		       COALESCE(SUM(protein), 0),
		       COALESCE(SUM(fat), 0),
		       COALESCE(SUM(carbs), 0)
		FROM meals
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
	`

	var totals domain.Nutrients
	if err := r.db.QueryRowContext(ctx, query, userID, start, end).Scan(
		&totals.Calories,
		&totals.Protein,
		&totals.Fat,
		&totals.Carbs,
	); err != nil {
		if r.log != nil {
			r.log.Error("failed to sum meals for day", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return domain.Nutrients{}, fmt.Errorf("sum meals for day: %w", err)
	}

	return totals, nil
}

// DailyTotals returns per-UTC-day sums in [from, to), newest day first.
// Days without meals are absent from the result.
func (r *mealRepository) DailyTotals(ctx context.Context, userID int64, from, to time.Time) ([]domain.DayTotals, error) {
	const query = `
		SELECT (created_at AT TIME ZONE 'UTC')::date AS day,
		       SUM(calories), SUM(protein), SUM(fat), SUM(carbs)
		FROM meals
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY day
		ORDER BY day DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("select daily totals: %w", err)
	}
	defer rows.Close()

	var days []domain.DayTotals
	for rows.Next() {
		var day domain.DayTotals
		if err := rows.Scan(
			&day.Date,
			&day.Totals.Calories,
			&day.Totals.Protein,
			&day.Totals.Fat,
			&day.Totals.Carbs,
		); err != nil {
			return nil, fmt.Errorf("scan daily totals: %w", err)
		}
		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily totals: %w", err)
	}

	return days, nil
}

func utcDayBounds(moment time.Time) (start, end time.Time) {
	t := moment.UTC()
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
