package nutrition

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nutritrack/nutrition-bot/internal/domain"
)

func TestMealPayloadDecoding(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		expected  domain.Nutrients
		expectErr bool
	}{
		{
			name:     "complete payload",
			body:     `{"calories": 650, "protein": 42.5, "fat": 20, "carbs": 55}`,
			expected: domain.Nutrients{Calories: 650, Protein: 42.5, Fat: 20, Carbs: 55},
		},
		{
			name:     "zeroed refusal payload",
			body:     `{"calories": 0, "protein": 0, "fat": 0, "carbs": 0}`,
			expected: domain.Nutrients{},
		},
		{
			name:      "missing field",
			body:      `{"calories": 650, "protein": 42.5, "fat": 20}`,
			expectErr: true,
		},
		{
			name:      "null field",
			body:      `{"calories": 650, "protein": null, "fat": 20, "carbs": 55}`,
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var payload mealPayload
			err := json.Unmarshal([]byte(tc.body), &payload)
			assert.NoError(t, err)

			nutrients, err := payload.toNutrients()
			if tc.expectErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, nutrients)
		})
	}
}

func TestWithinMealBounds(t *testing.T) {
	testCases := []struct {
		name     string
		in       domain.Nutrients
		expected bool
	}{
		{name: "typical meal", in: domain.Nutrients{Calories: 650, Protein: 40, Fat: 20, Carbs: 60}, expected: true},
		{name: "zeroed estimate", in: domain.Nutrients{}, expected: true},
		{name: "at caps", in: domain.Nutrients{Calories: 10000, Protein: 500, Fat: 200, Carbs: 1000}, expected: true},
		{name: "calories over cap", in: domain.Nutrients{Calories: 10001}, expected: false},
		{name: "negative protein", in: domain.Nutrients{Calories: 100, Protein: -1}, expected: false},
		{name: "fat over cap", in: domain.Nutrients{Calories: 100, Fat: 201}, expected: false},
		{name: "carbs over cap", in: domain.Nutrients{Calories: 100, Carbs: 1001}, expected: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, withinMealBounds(tc.in))
		})
	}
}

func TestWithinGoalBounds(t *testing.T) {
	assert.True(t, withinGoalBounds(domain.Nutrients{Calories: 2000, Protein: 150, Fat: 65, Carbs: 200}))
	// Goals, unlike meal estimates, must be strictly positive.
	assert.False(t, withinGoalBounds(domain.Nutrients{Calories: 2000, Protein: 0, Fat: 65, Carbs: 200}))
	assert.False(t, withinGoalBounds(domain.Nutrients{Calories: 10001, Protein: 150, Fat: 65, Carbs: 200}))
}

func TestStripFences(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain json", input: `{"calories": 1}`, expected: `{"calories": 1}`},
		{name: "json fence", input: "```json\n{\"calories\": 1}\n```", expected: `{"calories": 1}`},
		{name: "bare fence", input: "```\n{\"calories\": 1}\n```", expected: `{"calories": 1}`},
		{name: "padded", input: "  {\"calories\": 1}\n", expected: `{"calories": 1}`},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stripFences(tc.input))
		})
	}
}

func TestSuggestionPayloadValidation(t *testing.T) {
	body := `{"goals": {"calories": 2200, "protein": 150, "fat": 61, "carbs": 260},
		"explanation": {"calories": "TDEE minus deficit", "protein": "2 g per kg", "fat": "25% of calories", "carbs": "remaining energy"}}`

	var payload suggestionPayload
	assert.NoError(t, json.Unmarshal([]byte(body), &payload))
	assert.NotNil(t, payload.Goals)
	assert.NotNil(t, payload.Explanation)

	targets, err := payload.Goals.toNutrients()
	assert.NoError(t, err)
	assert.True(t, withinGoalBounds(targets))
}
