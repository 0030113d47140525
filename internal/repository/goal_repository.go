package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nutritrack/nutrition-bot/internal/domain"
)

// ErrNoGoals indicates the user has never configured goals. Progress and
// summaries are undefined without them.
var ErrNoGoals = errors.New("no goals configured for user")

// GoalRepository defines persistence for daily nutrition goals. One
// active row per user, replaced on each update.
type GoalRepository interface {
	Upsert(ctx context.Context, userID int64, targets domain.Nutrients) error
	FindByUserID(ctx context.Context, userID int64) (*domain.Goals, error)
}

type goalRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewGoalRepository creates a new SQL-backed goal repository.
func NewGoalRepository(db *sql.DB, log *slog.Logger) GoalRepository {
	return &goalRepository{
		db:  db,
		log: log,
	}
}

// Upsert inserts or replaces the user's goal row.
func (r *goalRepository) Upsert(ctx context.Context, userID int64, targets domain.Nutrients) error {
	const query = `
		INSERT INTO user_goals (user_id, calories, protein, fat, carbs, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET calories = EXCLUDED.calories,
		    protein = EXCLUDED.protein,
		    fat = EXCLUDED.fat,
		    carbs = EXCLUDED.carbs,
		    updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, userID, targets.Calories, targets.Protein, targets.Fat, targets.Carbs); err != nil {
		if r.log != nil {
			r.log.Error("failed to upsert goals", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return fmt.Errorf("upsert goals: %w", err)
	}

	return nil
}

// FindByUserID returns the user's goal row or ErrNoGoals.
func (r *goalRepository) FindByUserID(ctx context.Context, userID int64) (*domain.Goals, error) {
	const query = `
		SELECT id, user_id, calories, protein, fat, carbs, created_at, updated_at
		FROM user_goals
		WHERE user_id = $1
	`

	row := r.db.QueryRowContext(ctx, query, userID)

	var goals domain.Goals
	if err := row.Scan(
		&goals.ID,
		&goals.UserID,
		&goals.Calories,
		&goals.Protein,
		&goals.Fat,
		&goals.Carbs,
		&goals.CreatedAt,
		&goals.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoGoals
		}

		if r.log != nil {
			r.log.Error("failed to fetch goals", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("select goals: %w", err)
	}

	return &goals, nil
}
