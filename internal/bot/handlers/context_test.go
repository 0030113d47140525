package handlers

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/domain"
	"github.com/nutritrack/nutrition-bot/internal/goals"
	"github.com/nutritrack/nutrition-bot/internal/i18n"
	"github.com/nutritrack/nutrition-bot/internal/nutrition"
)

// recordingContext captures the outbound side of a handler invocation.
// Only the methods the handlers touch are implemented; anything else
// panics through the embedded nil interface, which is the point.
type recordingContext struct {
	telebot.Context

	sender   *telebot.User
	text     string
	callback *telebot.Callback

	sent      []string
	edited    []string
	responses []*telebot.CallbackResponse
}

func (c *recordingContext) Sender() *telebot.User { return c.sender }

func (c *recordingContext) Text() string { return c.text }

func (c *recordingContext) Callback() *telebot.Callback { return c.callback }

func (c *recordingContext) Send(what interface{}, _ ...interface{}) error {
	if text, ok := what.(string); ok {
		c.sent = append(c.sent, text)
	}
	return nil
}

func (c *recordingContext) Edit(what interface{}, _ ...interface{}) error {
	if text, ok := what.(string); ok {
		c.edited = append(c.edited, text)
	}
	return nil
}

func (c *recordingContext) Respond(resp ...*telebot.CallbackResponse) error {
	c.responses = append(c.responses, resp...)
	return nil
}

func textContext(userID int64, text string) *recordingContext {
	return &recordingContext{
		sender: &telebot.User{ID: userID},
		text:   text,
	}
}

func callbackContext(userID int64, data string) *recordingContext {
	return &recordingContext{
		sender:   &telebot.User{ID: userID},
		callback: &telebot.Callback{ID: "cb-1", Data: "\f" + data},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestLocalizer resolves language from the Telegram client only; the
// profile lookup is skipped without a user service.
func newTestLocalizer(t *testing.T) (*Localizer, *i18n.Manager) {
	t.Helper()

	catalog, err := i18n.LoadFromDir("../../i18n", "en")
	require.NoError(t, err)

	return NewLocalizer(nil, catalog, testLogger()), catalog
}

type goalRepoMock struct {
	mock.Mock
}

func (m *goalRepoMock) Upsert(ctx context.Context, userID int64, targets domain.Nutrients) error {
	return m.Called(ctx, userID, targets).Error(0)
}

func (m *goalRepoMock) FindByUserID(ctx context.Context, userID int64) (*domain.Goals, error) {
	args := m.Called(ctx, userID)
	if g := args.Get(0); g != nil {
		return g.(*domain.Goals), args.Error(1)
	}
	return nil, args.Error(1)
}

type mealRepoMock struct {
	mock.Mock
}

func (m *mealRepoMock) Create(ctx context.Context, meal *domain.Meal) error {
	return m.Called(ctx, meal).Error(0)
}

func (m *mealRepoMock) ListForDay(ctx context.Context, userID int64, day time.Time) ([]domain.Meal, error) {
	args := m.Called(ctx, userID, day)
	if meals := args.Get(0); meals != nil {
		return meals.([]domain.Meal), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mealRepoMock) TotalsForDay(ctx context.Context, userID int64, day time.Time) (domain.Nutrients, error) {
	args := m.Called(ctx, userID, day)
	return args.Get(0).(domain.Nutrients), args.Error(1)
}

func (m *mealRepoMock) DailyTotals(ctx context.Context, userID int64, from, to time.Time) ([]domain.DayTotals, error) {
	args := m.Called(ctx, userID, from, to)
	if days := args.Get(0); days != nil {
		return days.([]domain.DayTotals), args.Error(1)
	}
	return nil, args.Error(1)
}

type estimatorMock struct {
	mock.Mock
}

func (m *estimatorMock) AnalyzeMeal(ctx context.Context, description string) (domain.Nutrients, error) {
	args := m.Called(ctx, description)
	return args.Get(0).(domain.Nutrients), args.Error(1)
}

func (m *estimatorMock) SuggestGoals(ctx context.Context, currentWeight, targetWeight float64, level goals.ActivityLevel) (nutrition.GoalSuggestion, error) {
	args := m.Called(ctx, currentWeight, targetWeight, level)
	return args.Get(0).(nutrition.GoalSuggestion), args.Error(1)
}

func (m *estimatorMock) MealFeedback(ctx context.Context, description string, meal domain.Nutrients) (string, error) {
	args := m.Called(ctx, description, meal)
	return args.String(0), args.Error(1)
}
