package progress

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/nutritrack/nutrition-bot/internal/domain"
	"github.com/nutritrack/nutrition-bot/internal/repository"
)

type mockGoalRepo struct {
	mock.Mock
}

func (m *mockGoalRepo) Upsert(ctx context.Context, userID int64, targets domain.Nutrients) error {
	args := m.Called(ctx, userID, targets)
	return args.Error(0)
}

func (m *mockGoalRepo) FindByUserID(ctx context.Context, userID int64) (*domain.Goals, error) {
	args := m.Called(ctx, userID)
	goals, _ := args.Get(0).(*domain.Goals)
	return goals, args.Error(1)
}

type mockMealRepo struct {
	mock.Mock
}

func (m *mockMealRepo) Create(ctx context.Context, meal *domain.Meal) error {
	args := m.Called(ctx, meal)
	return args.Error(0)
}

func (m *mockMealRepo) ListForDay(ctx context.Context, userID int64, day time.Time) ([]domain.Meal, error) {
	args := m.Called(ctx, userID, day)
	meals, _ := args.Get(0).([]domain.Meal)
	return meals, args.Error(1)
}

func (m *mockMealRepo) TotalsForDay(ctx context.Context, userID int64, day time.Time) (domain.Nutrients, error) {
	args := m.Called(ctx, userID, day)
	totals, _ := args.Get(0).(domain.Nutrients)
	return totals, args.Error(1)
}

func (m *mockMealRepo) DailyTotals(ctx context.Context, userID int64, from, to time.Time) ([]domain.DayTotals, error) {
	args := m.Called(ctx, userID, from, to)
	days, _ := args.Get(0).([]domain.DayTotals)
	return days, args.Error(1)
}

func newTestService(goals *mockGoalRepo, meals *mockMealRepo, now time.Time) *Service {
	svc := NewService(goals, meals, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return now }
	return svc
}

var testGoals = domain.Goals{
	ID:       1,
	UserID:   42,
	Calories: 2000,
	Protein:  150,
	Fat:      65,
	Carbs:    200,
}

func TestToday_NilWithoutGoals(t *testing.T) {
	ctx := context.Background()
	goals := &mockGoalRepo{}
	meals := &mockMealRepo{}
	goals.On("FindByUserID", mock.Anything, int64(42)).Return((*domain.Goals)(nil), repository.ErrNoGoals).Once()

	svc := newTestService(goals, meals, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))

	progress, err := svc.Today(ctx, 42)
	assert.NoError(t, err)
	assert.Nil(t, progress)

	goals.AssertExpectations(t)
	meals.AssertNotCalled(t, "TotalsForDay", mock.Anything, mock.Anything, mock.Anything)
}

func TestToday_SumsCurrentDay(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	goals := &mockGoalRepo{}
	meals := &mockMealRepo{}
	goals.On("FindByUserID", mock.Anything, int64(42)).Return(&testGoals, nil).Once()
	meals.On("TotalsForDay", mock.Anything, int64(42), now).
		Return(domain.Nutrients{Calories: 1450, Protein: 98, Fat: 40, Carbs: 160}, nil).Once()

	svc := newTestService(goals, meals, now)

	progress, err := svc.Today(ctx, 42)
	assert.NoError(t, err)
	if assert.NotNil(t, progress) {
		assert.Equal(t, testGoals, progress.Goals)
		assert.Equal(t, 1450, progress.Totals.Calories)
		assert.Equal(t, 98.0, progress.Totals.Protein)
	}

	goals.AssertExpectations(t)
	meals.AssertExpectations(t)
}

func TestWeekly_NilWithoutGoals(t *testing.T) {
	ctx := context.Background()
	goals := &mockGoalRepo{}
	meals := &mockMealRepo{}
	goals.On("FindByUserID", mock.Anything, int64(42)).Return((*domain.Goals)(nil), repository.ErrNoGoals).Once()

	svc := newTestService(goals, meals, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))

	summary, err := svc.Weekly(ctx, 42)
	assert.NoError(t, err)
	assert.Nil(t, summary)
}

func TestWeekly_NilWithoutMeals(t *testing.T) {
	ctx := context.Background()
	goals := &mockGoalRepo{}
	meals := &mockMealRepo{}
	goals.On("FindByUserID", mock.Anything, int64(42)).Return(&testGoals, nil).Once()
	meals.On("DailyTotals", mock.Anything, int64(42), mock.Anything, mock.Anything).
		Return([]domain.DayTotals(nil), nil).Once()

	svc := newTestService(goals, meals, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))

	summary, err := svc.Weekly(ctx, 42)
	assert.NoError(t, err)
	assert.Nil(t, summary)
}

func TestWeekly_WindowBounds(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 18, 30, 0, 0, time.UTC)

	expectedFrom := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	expectedTo := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

	goals := &mockGoalRepo{}
	meals := &mockMealRepo{}
	goals.On("FindByUserID", mock.Anything, int64(42)).Return(&testGoals, nil).Once()
	meals.On("DailyTotals", mock.Anything, int64(42), expectedFrom, expectedTo).
		Return([]domain.DayTotals{
			{Date: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), Totals: domain.Nutrients{Calories: 2000, Protein: 150, Fat: 65, Carbs: 200}},
		}, nil).Once()

	svc := newTestService(goals, meals, now)

	summary, err := svc.Weekly(ctx, 42)
	assert.NoError(t, err)
	assert.NotNil(t, summary)

	meals.AssertExpectations(t)
}

func TestWeekly_SparseAveragesAndFlags(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	// Only 2 of the 7 window days carry meals; averages divide by 2.
	days := []domain.DayTotals{
		{
			Date:   time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			Totals: domain.Nutrients{Calories: 3000, Protein: 150, Fat: 50, Carbs: 180},
		},
		{
			Date:   time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC),
			Totals: domain.Nutrients{Calories: 1000, Protein: 50, Fat: 30, Carbs: 100},
		},
	}

	goals := &mockGoalRepo{}
	meals := &mockMealRepo{}
	goals.On("FindByUserID", mock.Anything, int64(42)).Return(&testGoals, nil).Once()
	meals.On("DailyTotals", mock.Anything, int64(42), mock.Anything, mock.Anything).
		Return(days, nil).Once()

	svc := newTestService(goals, meals, now)

	summary, err := svc.Weekly(ctx, 42)
	assert.NoError(t, err)
	if !assert.NotNil(t, summary) {
		return
	}

	assert.Equal(t, 2, summary.DaysWithData)
	assert.Len(t, summary.Days, 2)

	// Newest day first, as the repository returns them.
	first := summary.Days[0]
	assert.Equal(t, days[0].Date, first.Date)
	// 3000 / 2000 = 150% > 125% flips the exceeded flag.
	assert.True(t, first.Exceeded)
	assert.True(t, first.CaloriesReached)
	assert.True(t, first.ProteinReached)
	assert.False(t, first.FatReached)
	assert.InDelta(t, 150.0, first.CaloriesPercent, 0.001)
	assert.InDelta(t, 100.0, first.ProteinPercent, 0.001)

	second := summary.Days[1]
	assert.False(t, second.Exceeded)
	assert.False(t, second.CaloriesReached)
	assert.InDelta(t, 50.0, second.CaloriesPercent, 0.001)

	assert.InDelta(t, 2000.0, summary.Averages.Calories, 0.001)
	assert.InDelta(t, 100.0, summary.Averages.Protein, 0.001)
	assert.InDelta(t, 40.0, summary.Averages.Fat, 0.001)
	assert.InDelta(t, 140.0, summary.Averages.Carbs, 0.001)
}

func TestWeekly_ExceededOnSingleNutrient(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	days := []domain.DayTotals{
		{
			Date: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			// Calories fine, fat at 200% of the 65 g goal.
			Totals: domain.Nutrients{Calories: 1500, Protein: 100, Fat: 130, Carbs: 150},
		},
	}

	goals := &mockGoalRepo{}
	meals := &mockMealRepo{}
	goals.On("FindByUserID", mock.Anything, int64(42)).Return(&testGoals, nil).Once()
	meals.On("DailyTotals", mock.Anything, int64(42), mock.Anything, mock.Anything).
		Return(days, nil).Once()

	svc := newTestService(goals, meals, now)

	summary, err := svc.Weekly(ctx, 42)
	assert.NoError(t, err)
	if assert.NotNil(t, summary) {
		assert.True(t, summary.Days[0].Exceeded)
		assert.False(t, summary.Days[0].CaloriesReached)
	}
}

func TestTodayMeals(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 20, 0, 0, 0, time.UTC)

	expected := []domain.Meal{
		{ID: 1, UserID: 42, Description: "oatmeal", Calories: 350},
		{ID: 2, UserID: 42, Description: "chicken salad", Calories: 520},
	}

	goals := &mockGoalRepo{}
	meals := &mockMealRepo{}
	meals.On("ListForDay", mock.Anything, int64(42), now).Return(expected, nil).Once()

	svc := newTestService(goals, meals, now)

	result, err := svc.TodayMeals(ctx, 42)
	assert.NoError(t, err)
	assert.Equal(t, expected, result)
}
