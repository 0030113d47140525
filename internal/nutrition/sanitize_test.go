package nutrition

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeDescription(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expected    string
		expectedErr error
	}{
		{
			name:     "plain text untouched",
			input:    "grilled chicken with rice",
			expected: "grilled chicken with rice",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  oatmeal with berries \n",
			expected: "oatmeal with berries",
		},
		{
			name:     "html tags stripped",
			input:    "pasta <b>carbonara</b> <script>alert(1)</script>",
			expected: "pasta carbonara alert1",
		},
		{
			name:     "sql injection characters removed",
			input:    "chicken'; DROP TABLE meals; --",
			expected: "chicken DROP TABLE meals --",
		},
		{
			name:     "prompt injection characters removed",
			input:    "rice `with` {\"json\": 1} and $PATH | tricks",
			expected: "rice with json: 1 and PATH tricks",
		},
		{
			name:        "only denylist characters",
			input:       "`'\";{}()$#",
			expectedErr: ErrDescriptionEmpty,
		},
		{
			name:     "control characters removed",
			input:    "soup\x00 with\x1f bread",
			expected: "soup with bread",
		},
		{
			name:     "inner whitespace collapsed",
			input:    "eggs   and\t\tbacon",
			expected: "eggs and bacon",
		},
		{
			name:        "empty input",
			input:       "   ",
			expectedErr: ErrDescriptionEmpty,
		},
		{
			name:        "only tags",
			input:       "<i></i>",
			expectedErr: ErrDescriptionEmpty,
		},
		{
			name:        "too long",
			input:       strings.Repeat("a", MaxDescriptionLen+1),
			expectedErr: ErrDescriptionTooLong,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			result, err := SanitizeDescription(tc.input)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestValidateFeedback(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expected    string
		expectedErr error
	}{
		{
			name:     "valid feedback",
			input:    "Nice balanced meal, good protein for the day!",
			expected: "Nice balanced meal, good protein for the day!",
		},
		{
			name:     "trimmed before checks",
			input:    "  Great choice, plenty of fiber.  ",
			expected: "Great choice, plenty of fiber.",
		},
		{
			name:        "too short",
			input:       "Nice!",
			expectedErr: ErrFeedbackInvalid,
		},
		{
			name:        "too long",
			input:       strings.Repeat("x", MaxFeedbackLen+1),
			expectedErr: ErrFeedbackInvalid,
		},
		{
			name:        "markup rejected",
			input:       "Good meal <a href='x'>click here</a> for more",
			expectedErr: ErrFeedbackInvalid,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			result, err := ValidateFeedback(tc.input)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}
