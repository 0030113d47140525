package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nutritrack/nutrition-bot/internal/bot/keyboard"
	"github.com/nutritrack/nutrition-bot/internal/goals"
	"github.com/nutritrack/nutrition-bot/internal/nutrition"
	"github.com/nutritrack/nutrition-bot/internal/state"
)

func newTestStateMachine(t *testing.T) state.StateMachine {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	storage := state.NewRedisStorage(client, testLogger())
	return state.NewStateMachine(storage, testLogger(), client)
}

func seedWeightFlow(t *testing.T, fsm state.StateMachine, userID int64) {
	t.Helper()

	err := fsm.SetState(context.Background(), userID, state.StateAwaitingActivityLevel, map[string]interface{}{
		state.ContextKeyCurrentWeight: 80.0,
		state.ContextKeyTargetWeight:  75.0,
	})
	require.NoError(t, err)
}

func TestHandleActivity_FailedSaveEndsDialogue(t *testing.T) {
	ctx := context.Background()
	userID := int64(501)

	fsm := newTestStateMachine(t)
	seedWeightFlow(t, fsm, userID)

	estimator := &estimatorMock{}
	estimator.On("SuggestGoals", mock.Anything, 80.0, 75.0, goals.ActivityModerate).
		Return(nutrition.GoalSuggestion{}, errors.New("estimator unavailable"))

	goalRepo := &goalRepoMock{}
	goalRepo.On("Upsert", mock.Anything, userID, mock.Anything).
		Return(errors.New("connection refused"))

	loc, catalog := newTestLocalizer(t)
	handler := HandleActivity(fsm, estimator, goalRepo, keyboard.NewBuilder(testLogger()), loc, testLogger())

	c := callbackContext(userID, "activity:moderate")
	require.NoError(t, handler(c))

	require.Len(t, c.responses, 1)
	assert.Equal(t, catalog.Translator("en").T("goals.save_failed"), c.responses[0].Text)
	assert.True(t, c.responses[0].ShowAlert)

	userState, err := fsm.GetState(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, state.StateIdle, userState.CurrentState)

	_, _, ok := userState.Weights()
	assert.False(t, ok, "scratch weights must not survive a failed save")

	goalRepo.AssertExpectations(t)
}

func TestHandleActivity_FormulaFallbackSavesGoals(t *testing.T) {
	ctx := context.Background()
	userID := int64(502)

	fsm := newTestStateMachine(t)
	seedWeightFlow(t, fsm, userID)

	estimator := &estimatorMock{}
	estimator.On("SuggestGoals", mock.Anything, 80.0, 75.0, goals.ActivityModerate).
		Return(nutrition.GoalSuggestion{}, errors.New("estimator unavailable"))

	expected, err := goals.Calculate(80, 75, goals.ActivityModerate)
	require.NoError(t, err)

	goalRepo := &goalRepoMock{}
	goalRepo.On("Upsert", mock.Anything, userID, expected).Return(nil)

	loc, catalog := newTestLocalizer(t)
	handler := HandleActivity(fsm, estimator, goalRepo, keyboard.NewBuilder(testLogger()), loc, testLogger())

	c := callbackContext(userID, "activity:moderate")
	require.NoError(t, handler(c))

	require.Len(t, c.responses, 1)
	assert.Equal(t, catalog.Translator("en").T("goals.saved_toast"), c.responses[0].Text)
	require.Len(t, c.sent, 1)

	userState, err := fsm.GetState(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, state.StateIdle, userState.CurrentState)

	goalRepo.AssertExpectations(t)
}

func TestHandleActivity_ExpiredFlow(t *testing.T) {
	userID := int64(503)

	fsm := newTestStateMachine(t)

	estimator := &estimatorMock{}
	goalRepo := &goalRepoMock{}

	loc, catalog := newTestLocalizer(t)
	handler := HandleActivity(fsm, estimator, goalRepo, keyboard.NewBuilder(testLogger()), loc, testLogger())

	c := callbackContext(userID, "activity:moderate")
	require.NoError(t, handler(c))

	require.Len(t, c.sent, 1)
	assert.Equal(t, catalog.Translator("en").T("goals.weight_flow_expired"), c.sent[0])

	estimator.AssertNotCalled(t, "SuggestGoals", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	goalRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestCustomGoalsState_FailedSaveEndsDialogue(t *testing.T) {
	ctx := context.Background()
	userID := int64(504)

	fsm := newTestStateMachine(t)
	require.NoError(t, fsm.SetState(ctx, userID, state.StateAwaitingCustomGoals, nil))

	goalRepo := &goalRepoMock{}
	goalRepo.On("Upsert", mock.Anything, userID, mock.Anything).
		Return(errors.New("connection refused"))

	loc, catalog := newTestLocalizer(t)
	handler := NewCustomGoalsStateHandler(fsm, goalRepo, keyboard.NewBuilder(testLogger()), loc, testLogger())

	c := textContext(userID, "2000 150 65 200")
	require.NoError(t, handler(c))

	require.Len(t, c.sent, 1)
	assert.Equal(t, catalog.Translator("en").T("goals.save_failed"), c.sent[0])

	userState, err := fsm.GetState(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, state.StateIdle, userState.CurrentState)

	goalRepo.AssertExpectations(t)
}

func TestCustomGoalsState_InvalidInputKeepsState(t *testing.T) {
	ctx := context.Background()
	userID := int64(505)

	fsm := newTestStateMachine(t)
	require.NoError(t, fsm.SetState(ctx, userID, state.StateAwaitingCustomGoals, nil))

	goalRepo := &goalRepoMock{}

	loc, catalog := newTestLocalizer(t)
	handler := NewCustomGoalsStateHandler(fsm, goalRepo, keyboard.NewBuilder(testLogger()), loc, testLogger())

	c := textContext(userID, "a lot of food")
	require.NoError(t, handler(c))

	require.Len(t, c.sent, 1)
	assert.Equal(t, catalog.Translator("en").T("goals.invalid_custom"), c.sent[0])

	userState, err := fsm.GetState(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, state.StateAwaitingCustomGoals, userState.CurrentState)

	goalRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}
