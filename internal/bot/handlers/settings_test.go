package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nutritrack/nutrition-bot/internal/bot/keyboard"
	"github.com/nutritrack/nutrition-bot/internal/domain"
	"github.com/nutritrack/nutrition-bot/internal/user"
)

type userRepoMock struct {
	mock.Mock
}

func (m *userRepoMock) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	args := m.Called(ctx, telegramID)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *userRepoMock) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *userRepoMock) GetSettings(ctx context.Context, telegramID int64) (*domain.UserSettings, error) {
	args := m.Called(ctx, telegramID)
	if s := args.Get(0); s != nil {
		return s.(*domain.UserSettings), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *userRepoMock) UpdateSettings(ctx context.Context, telegramID int64, settings *domain.UserSettings) error {
	return m.Called(ctx, telegramID, settings).Error(0)
}

func (m *userRepoMock) UpdateLastActiveAt(ctx context.Context, telegramID int64) error {
	return m.Called(ctx, telegramID).Error(0)
}

func (m *userRepoMock) ListNotifiable(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if users := args.Get(0); users != nil {
		return users.([]domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestHandleSetLanguage_RejectsUnknownLanguage(t *testing.T) {
	userID := int64(701)

	repo := &userRepoMock{}
	users := user.NewService(repo, nil, testLogger())

	loc, catalog := newTestLocalizer(t)
	handler := HandleSetLanguage(users, keyboard.NewBuilder(testLogger()), loc, testLogger())

	c := callbackContext(userID, "settings_lang:de")
	require.NoError(t, handler(c))

	require.Len(t, c.responses, 1)
	assert.Equal(t, catalog.Translator("en").T("common.unknown_action"), c.responses[0].Text)
	assert.True(t, c.responses[0].ShowAlert)
	assert.Empty(t, c.edited)

	repo.AssertNotCalled(t, "GetSettings", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateSettings", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleSetLanguage_SavesLoadedLanguage(t *testing.T) {
	userID := int64(702)

	repo := &userRepoMock{}
	repo.On("GetSettings", mock.Anything, userID).
		Return(&domain.UserSettings{Language: "en", Notify: true}, nil)
	repo.On("UpdateSettings", mock.Anything, userID, mock.MatchedBy(func(s *domain.UserSettings) bool {
		return s.Language == "ru"
	})).Return(nil)

	users := user.NewService(repo, nil, testLogger())

	loc, _ := newTestLocalizer(t)
	handler := HandleSetLanguage(users, keyboard.NewBuilder(testLogger()), loc, testLogger())

	c := callbackContext(userID, "settings_lang:ru")
	require.NoError(t, handler(c))

	require.Len(t, c.responses, 1)
	assert.False(t, c.responses[0].ShowAlert)
	require.Len(t, c.edited, 1)

	repo.AssertExpectations(t)
}
