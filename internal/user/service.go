package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/domain"
	"github.com/nutritrack/nutrition-bot/internal/repository"
	"github.com/nutritrack/nutrition-bot/internal/usercache"
)

const profileCacheTTL = 10 * time.Minute

const defaultLanguage = "en"

// Service provides business operations over users.
type Service struct {
	repo  repository.UserRepository
	cache *usercache.Cache
	log   *slog.Logger
}

// NewService constructs a new Service instance. The cache may be nil.
func NewService(repo repository.UserRepository, cache *usercache.Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// GetOrCreate fetches a user by telegram ID or creates a new profile when
// missing. New profiles inherit the Telegram client language when it is
// one of the supported catalogs.
func (s *Service) GetOrCreate(ctx context.Context, telegramUser *telebot.User) (*domain.User, error) {
	if telegramUser == nil {
		return nil, errors.New("telegram user is nil")
	}

	if cached, err := s.cache.Get(ctx, telegramUser.ID); err == nil && cached != nil {
		return cached, nil
	}

	user, err := s.repo.FindByTelegramID(ctx, telegramUser.ID)
	if err == nil {
		_ = s.cache.Set(ctx, user.TelegramID, user, profileCacheTTL)
		return user, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		s.logError("get_or_create.find", telegramUser.ID, err)
		return nil, fmt.Errorf("get user: %w", err)
	}

	now := time.Now().UTC()
	newUser := &domain.User{
		TelegramID:   telegramUser.ID,
		FirstName:    telegramUser.FirstName,
		Username:     telegramUser.Username,
		Language:     normalizeLanguage(telegramUser.LanguageCode),
		Notify:       true,
		LastActiveAt: now,
		CreatedAt:    now,
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		s.logError("get_or_create.create", telegramUser.ID, err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	_ = s.cache.Set(ctx, newUser.TelegramID, newUser, profileCacheTTL)

	return newUser, nil
}

// GetSettings returns persisted settings for the supplied user.
func (s *Service) GetSettings(ctx context.Context, telegramID int64) (*domain.UserSettings, error) {
	settings, err := s.repo.GetSettings(ctx, telegramID)
	if err != nil {
		s.logError("get_settings", telegramID, err)
		return nil, err
	}

	return settings, nil
}

// UpdateSettings saves user preferences and drops the cached profile.
func (s *Service) UpdateSettings(ctx context.Context, telegramID int64, settings *domain.UserSettings) error {
	if err := s.repo.UpdateSettings(ctx, telegramID, settings); err != nil {
		s.logError("update_settings", telegramID, err)
		return err
	}

	_ = s.cache.Invalidate(ctx, telegramID)

	return nil
}

// UpdateLastActive refreshes the last_active_at field for the user.
func (s *Service) UpdateLastActive(ctx context.Context, telegramID int64) error {
	if err := s.repo.UpdateLastActiveAt(ctx, telegramID); err != nil {
		s.logError("update_last_active", telegramID, err)
		return err
	}

	return nil
}

// ListNotifiable returns users who opted into the daily digest.
func (s *Service) ListNotifiable(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.ListNotifiable(ctx)
	if err != nil {
		s.logError("list_notifiable", 0, err)
		return nil, err
	}

	return users, nil
}

func normalizeLanguage(code string) string {
	switch code {
	case "ru":
		return "ru"
	case "", "en":
		return defaultLanguage
	default:
		return defaultLanguage
	}
}

func (s *Service) logError(operation string, telegramID int64, err error) {
	if s == nil || s.log == nil || err == nil {
		return
	}

	s.log.Error("user service operation failed",
		slog.String("operation", operation),
		slog.Int64("telegram_id", telegramID),
		slog.Any("error", err),
	)
}
