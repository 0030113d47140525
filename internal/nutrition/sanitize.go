package nutrition

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxDescriptionLen caps a meal description after sanitization.
	MaxDescriptionLen = 500
	// Feedback length bounds for estimator-produced comments.
	MinFeedbackLen = 10
	MaxFeedbackLen = 1000
)

var (
	// ErrDescriptionEmpty indicates nothing usable remained after sanitization.
	ErrDescriptionEmpty = errors.New("meal description is empty")
	// ErrDescriptionTooLong indicates the description exceeds the cap.
	ErrDescriptionTooLong = errors.New("meal description is too long")
	// ErrFeedbackInvalid indicates estimator feedback outside the length
	// bounds or containing markup.
	ErrFeedbackInvalid = errors.New("estimator feedback rejected")
)

var (
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
	controlPattern = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	spacePattern   = regexp.MustCompile(`\s+`)
	// denyPattern removes characters usable for prompt or SQL injection
	// before the text reaches the estimator prompt.
	denyPattern = regexp.MustCompile("[`'\"{}\\[\\]();|\\\\$#]")
)

// SanitizeDescription normalizes user-provided meal text before it is
// sent to the estimator or stored: HTML-like tags, control characters
// and injection-prone punctuation are stripped, whitespace collapsed,
// length bounded.
func SanitizeDescription(text string) (string, error) {
	cleaned := tagPattern.ReplaceAllString(text, " ")
	cleaned = denyPattern.ReplaceAllString(cleaned, "")
	cleaned = controlPattern.ReplaceAllString(cleaned, "")
	cleaned = spacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return "", ErrDescriptionEmpty
	}

	if utf8.RuneCountInString(cleaned) > MaxDescriptionLen {
		return "", ErrDescriptionTooLong
	}

	return cleaned, nil
}

// ValidateFeedback checks an estimator-produced feedback line before it
// is shown to the user. Callers substitute a canned line on error.
func ValidateFeedback(text string) (string, error) {
	cleaned := strings.TrimSpace(text)

	length := utf8.RuneCountInString(cleaned)
	if length < MinFeedbackLen || length > MaxFeedbackLen {
		return "", ErrFeedbackInvalid
	}

	if tagPattern.MatchString(cleaned) || controlPattern.MatchString(cleaned) {
		return "", ErrFeedbackInvalid
	}

	return cleaned, nil
}
