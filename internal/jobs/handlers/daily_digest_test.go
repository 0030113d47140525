package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/domain"
	"github.com/nutritrack/nutrition-bot/internal/i18n"
	"github.com/nutritrack/nutrition-bot/internal/jobs"
	"github.com/nutritrack/nutrition-bot/internal/repository"
	"github.com/nutritrack/nutrition-bot/internal/user"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	args := m.Called(ctx, telegramID)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) GetSettings(ctx context.Context, telegramID int64) (*domain.UserSettings, error) {
	args := m.Called(ctx, telegramID)
	if s := args.Get(0); s != nil {
		return s.(*domain.UserSettings), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) UpdateSettings(ctx context.Context, telegramID int64, settings *domain.UserSettings) error {
	return m.Called(ctx, telegramID, settings).Error(0)
}

func (m *mockUserRepo) UpdateLastActiveAt(ctx context.Context, telegramID int64) error {
	return m.Called(ctx, telegramID).Error(0)
}

func (m *mockUserRepo) ListNotifiable(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if users := args.Get(0); users != nil {
		return users.([]domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockGoalRepo struct {
	mock.Mock
}

func (m *mockGoalRepo) Upsert(ctx context.Context, userID int64, targets domain.Nutrients) error {
	return m.Called(ctx, userID, targets).Error(0)
}

func (m *mockGoalRepo) FindByUserID(ctx context.Context, userID int64) (*domain.Goals, error) {
	args := m.Called(ctx, userID)
	if g := args.Get(0); g != nil {
		return g.(*domain.Goals), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMealRepo struct {
	mock.Mock
}

func (m *mockMealRepo) Create(ctx context.Context, meal *domain.Meal) error {
	return m.Called(ctx, meal).Error(0)
}

func (m *mockMealRepo) ListForDay(ctx context.Context, userID int64, day time.Time) ([]domain.Meal, error) {
	args := m.Called(ctx, userID, day)
	if meals := args.Get(0); meals != nil {
		return meals.([]domain.Meal), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMealRepo) TotalsForDay(ctx context.Context, userID int64, day time.Time) (domain.Nutrients, error) {
	args := m.Called(ctx, userID, day)
	return args.Get(0).(domain.Nutrients), args.Error(1)
}

func (m *mockMealRepo) DailyTotals(ctx context.Context, userID int64, from, to time.Time) ([]domain.DayTotals, error) {
	args := m.Called(ctx, userID, from, to)
	if days := args.Get(0); days != nil {
		return days.([]domain.DayTotals), args.Error(1)
	}
	return nil, args.Error(1)
}

type sentMessage struct {
	to   telebot.Recipient
	text string
}

type mockMessenger struct {
	sent []sentMessage
}

func (m *mockMessenger) Send(to telebot.Recipient, what interface{}, _ ...interface{}) (*telebot.Message, error) {
	text, _ := what.(string)
	m.sent = append(m.sent, sentMessage{to: to, text: text})
	return &telebot.Message{}, nil
}

func loadCatalog(t *testing.T) *i18n.Manager {
	t.Helper()

	catalog, err := i18n.LoadFromDir("../../i18n", "en")
	require.NoError(t, err)
	return catalog
}

func digestTask(t *testing.T, date string) *asynq.Task {
	t.Helper()

	task, err := jobs.NewDailyDigestTask(date)
	require.NoError(t, err)
	return task
}

func TestDailyDigest_SendsPerUserInTheirLanguage(t *testing.T) {
	userRepo := new(mockUserRepo)
	goalRepo := new(mockGoalRepo)
	mealRepo := new(mockMealRepo)
	messenger := &mockMessenger{}

	day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	userRepo.On("ListNotifiable", mock.Anything).Return([]domain.User{
		{TelegramID: 1, Language: "en"},
		{TelegramID: 2, Language: "ru"},
	}, nil)

	goalRepo.On("FindByUserID", mock.Anything, int64(1)).
		Return(&domain.Goals{UserID: 1, Calories: 2000, Protein: 100, Fat: 60, Carbs: 250}, nil)
	goalRepo.On("FindByUserID", mock.Anything, int64(2)).
		Return(&domain.Goals{UserID: 2, Calories: 1800, Protein: 90, Fat: 55, Carbs: 220}, nil)

	mealRepo.On("TotalsForDay", mock.Anything, int64(1), day).
		Return(domain.Nutrients{Calories: 1500, Protein: 80, Fat: 50, Carbs: 180}, nil)
	mealRepo.On("TotalsForDay", mock.Anything, int64(2), day).
		Return(domain.Nutrients{Calories: 1200, Protein: 70, Fat: 40, Carbs: 150}, nil)

	handler := NewDailyDigestHandler(
		user.NewService(userRepo, nil, nil),
		goalRepo,
		mealRepo,
		messenger,
		loadCatalog(t),
		nil,
	)

	err := handler.ProcessTask(context.Background(), digestTask(t, "2025-06-09"))
	require.NoError(t, err)

	require.Len(t, messenger.sent, 2)
	assert.Contains(t, messenger.sent[0].text, "Calories: 1500 / 2000 kcal")
	assert.Contains(t, messenger.sent[1].text, "Калории: 1200 / 1800 ккал")

	userRepo.AssertExpectations(t)
	goalRepo.AssertExpectations(t)
	mealRepo.AssertExpectations(t)
}

func TestDailyDigest_SkipsUsersWithoutGoalsOrMeals(t *testing.T) {
	userRepo := new(mockUserRepo)
	goalRepo := new(mockGoalRepo)
	mealRepo := new(mockMealRepo)
	messenger := &mockMessenger{}

	day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	userRepo.On("ListNotifiable", mock.Anything).Return([]domain.User{
		{TelegramID: 1, Language: "en"},
		{TelegramID: 2, Language: "en"},
	}, nil)

	goalRepo.On("FindByUserID", mock.Anything, int64(1)).
		Return(nil, repository.ErrNoGoals)
	goalRepo.On("FindByUserID", mock.Anything, int64(2)).
		Return(&domain.Goals{UserID: 2, Calories: 2000, Protein: 100, Fat: 60, Carbs: 250}, nil)

	mealRepo.On("TotalsForDay", mock.Anything, int64(2), day).
		Return(domain.Nutrients{}, nil)

	handler := NewDailyDigestHandler(
		user.NewService(userRepo, nil, nil),
		goalRepo,
		mealRepo,
		messenger,
		loadCatalog(t),
		nil,
	)

	err := handler.ProcessTask(context.Background(), digestTask(t, "2025-06-09"))
	require.NoError(t, err)

	assert.Empty(t, messenger.sent)
}

func TestDailyDigest_RejectsMalformedDate(t *testing.T) {
	userRepo := new(mockUserRepo)

	handler := NewDailyDigestHandler(
		user.NewService(userRepo, nil, nil),
		new(mockGoalRepo),
		new(mockMealRepo),
		&mockMessenger{},
		loadCatalog(t),
		nil,
	)

	err := handler.ProcessTask(context.Background(), digestTask(t, "09.06.2025"))
	assert.Error(t, err)
}
