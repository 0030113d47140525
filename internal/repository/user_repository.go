// Package repository implements Postgres persistence for users, goals
// and meals. All lookups key on the Telegram identifier; user_goals and
// meals reference users(telegram_id) so the chat layer never needs the
// surrogate primary key.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nutritrack/nutrition-bot/internal/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	GetSettings(ctx context.Context, telegramID int64) (*domain.UserSettings, error)
	UpdateSettings(ctx context.Context, telegramID int64, settings *domain.UserSettings) error
	UpdateLastActiveAt(ctx context.Context, telegramID int64) error
	ListNotifiable(ctx context.Context) ([]domain.User, error)
}

type userRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewUserRepository creates a new SQL-backed user repository.
func NewUserRepository(db *sql.DB, log *slog.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log,
	}
}

// FindByTelegramID retrieves a user by their Telegram identifier.
func (r *userRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	const query = `
		SELECT id, telegram_id, first_name, username, language, notifications_enabled, last_active_at, created_at
		FROM users
		WHERE telegram_id = $1
	`

	row := r.db.QueryRowContext(ctx, query, telegramID)

	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.FirstName,
		&user.Username,
		&user.Language,
		&user.Notify,
		&user.LastActiveAt,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}

		if r.log != nil {
			r.log.Error("failed to fetch user by telegram id", slog.Int64("telegram_id", telegramID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("select user by telegram id: %w", err)
	}

	return &user, nil
}

// Create persists a new user record.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (telegram_id, first_name, username, language, notifications_enabled, last_active_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.TelegramID,
		user.FirstName,
		user.Username,
		user.Language,
		user.Notify,
		user.LastActiveAt,
		user.CreatedAt,
	).Scan(&user.ID); err != nil {
		if r.log != nil {
			r.log.Error("failed to create user", slog.Int64("telegram_id", user.TelegramID), slog.Any("error", err))
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetSettings loads the user's preferences.
func (r *userRepository) GetSettings(ctx context.Context, telegramID int64) (*domain.UserSettings, error) {
	const query = `
		SELECT language, notifications_enabled
		FROM users
		WHERE telegram_id = $1
	`

	var settings domain.UserSettings
	if err := r.db.QueryRowContext(ctx, query, telegramID).Scan(&settings.Language, &settings.Notify); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}

		return nil, fmt.Errorf("select user settings: %w", err)
	}

	return &settings, nil
}

// UpdateSettings saves the user's preferences.
func (r *userRepository) UpdateSettings(ctx context.Context, telegramID int64, settings *domain.UserSettings) error {
	const query = `
		UPDATE users
		SET language = $2, notifications_enabled = $3
		WHERE telegram_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, telegramID, settings.Language, settings.Notify)
	if err != nil {
		return fmt.Errorf("update user settings: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user settings rows affected: %w", err)
	}

	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// UpdateLastActiveAt refreshes the activity timestamp.
func (r *userRepository) UpdateLastActiveAt(ctx context.Context, telegramID int64) error {
	const query = `
		UPDATE users
		SET last_active_at = NOW()
		WHERE telegram_id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, telegramID); err != nil {
		return fmt.Errorf("update last active: %w", err)
	}

	return nil
}

// ListNotifiable returns users who opted into notifications, for the
// daily digest job.
func (r *userRepository) ListNotifiable(ctx context.Context) ([]domain.User, error) {
	const query = `
		SELECT id, telegram_id, first_name, username, language, notifications_enabled, last_active_at, created_at
		FROM users
		WHERE notifications_enabled
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select notifiable users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.TelegramID,
			&user.FirstName,
			&user.Username,
			&user.Language,
			&user.Notify,
			&user.LastActiveAt,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notifiable user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifiable users: %w", err)
	}

	return users, nil
}
