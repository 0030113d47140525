package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nutritrack/nutrition-bot/internal/domain"
	apperrors "github.com/nutritrack/nutrition-bot/internal/errors"
	"github.com/nutritrack/nutrition-bot/internal/goals"
)

const (
	defaultModel   = "gpt-4-turbo-preview"
	defaultTimeout = 30 * time.Second
)

const analyzeSystemPrompt = `You are a nutrition expert. Analyze the meal description and estimate:
1. Total calories (kcal)
2. Protein in grams
3. Fat in grams
4. Carbohydrates in grams
Consider typical portion sizes and common ingredients.
Respond with JSON only, no other text: {"calories": number, "protein": number, "fat": number, "carbs": number}.
If the message is not a food description, respond with {"calories": 0, "protein": 0, "fat": 0, "carbs": 0}.`

const suggestSystemPrompt = `You are a nutrition expert. Given a person's current weight, target weight and activity level, propose daily targets for calories (kcal), protein, fat and carbohydrates (grams), and explain each number in one sentence.
Respond with JSON only: {"goals": {"calories": number, "protein": number, "fat": number, "carbs": number}, "explanation": {"calories": string, "protein": string, "fat": string, "carbs": string}}.`

const feedbackSystemPrompt = `You are a friendly nutrition coach. Given a meal and its estimated nutrients, reply with one short encouraging sentence about the meal. Plain text only, no markup.`

// Client implements Estimator on top of the OpenAI chat completion API.
// Calls run under a per-request timeout, retried with backoff and fused
// by a circuit breaker so a degraded estimator cannot stall the bot.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	breaker *apperrors.CircuitBreaker
	log     *slog.Logger
}

// Option customizes the Client.
type Option func(*Client)

// WithModel overrides the chat completion model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient builds an estimator client for the given API key.
func NewClient(apiKey string, log *slog.Logger, opts ...Option) *Client {
	if log == nil {
		log = slog.Default()
	}

	c := &Client{
		api:     openai.NewClient(apiKey),
		model:   defaultModel,
		timeout: defaultTimeout,
		breaker: apperrors.NewCircuitBreaker(),
		log:     log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type mealPayload struct {
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Fat      *float64 `json:"fat"`
	Carbs    *float64 `json:"carbs"`
}

type suggestionPayload struct {
	Goals       *mealPayload `json:"goals"`
	Explanation *Explanation `json:"explanation"`
}

// AnalyzeMeal estimates nutrients for a sanitized meal description.
func (c *Client) AnalyzeMeal(ctx context.Context, description string) (domain.Nutrients, error) {
	content, err := c.complete(ctx, analyzeSystemPrompt, fmt.Sprintf("Analyze this meal: %s", description))
	if err != nil {
		return domain.Nutrients{}, err
	}

	var payload mealPayload
	if err := json.Unmarshal([]byte(stripFences(content)), &payload); err != nil {
		c.log.Warn("estimator returned malformed meal json", slog.Any("error", err))
		return domain.Nutrients{}, apperrors.NewEstimatorError(fmt.Errorf("malformed response: %w", err))
	}

	nutrients, err := payload.toNutrients()
	if err != nil {
		return domain.Nutrients{}, apperrors.NewEstimatorError(err)
	}

	if !withinMealBounds(nutrients) {
		return domain.Nutrients{}, apperrors.NewEstimatorError(fmt.Errorf("meal estimate out of bounds: %+v", nutrients))
	}

	return nutrients, nil
}

// SuggestGoals asks the estimator for daily targets with explanations.
// The suggestion must carry all four goal values within the custom-goal
// caps and all four non-empty explanations; otherwise the caller falls
// back to the deterministic formula.
func (c *Client) SuggestGoals(ctx context.Context, currentWeight, targetWeight float64, level goals.ActivityLevel) (GoalSuggestion, error) {
	prompt := fmt.Sprintf(
		"Current weight: %.1f kg. Target weight: %.1f kg. Activity level: %s. Assume age 30 and height 170 cm.",
		currentWeight, targetWeight, level,
	)

	content, err := c.complete(ctx, suggestSystemPrompt, prompt)
	if err != nil {
		return GoalSuggestion{}, err
	}

	var payload suggestionPayload
	if err := json.Unmarshal([]byte(stripFences(content)), &payload); err != nil {
		c.log.Warn("estimator returned malformed suggestion json", slog.Any("error", err))
		return GoalSuggestion{}, apperrors.NewEstimatorError(fmt.Errorf("malformed response: %w", err))
	}

	if payload.Goals == nil || payload.Explanation == nil {
		return GoalSuggestion{}, apperrors.NewEstimatorError(fmt.Errorf("suggestion missing goals or explanation"))
	}

	targets, err := payload.Goals.toNutrients()
	if err != nil {
		return GoalSuggestion{}, apperrors.NewEstimatorError(err)
	}

	if !withinGoalBounds(targets) {
		return GoalSuggestion{}, apperrors.NewEstimatorError(fmt.Errorf("suggested goals out of bounds: %+v", targets))
	}

	explanation := *payload.Explanation
	for _, part := range []string{explanation.Calories, explanation.Protein, explanation.Fat, explanation.Carbs} {
		if strings.TrimSpace(part) == "" {
			return GoalSuggestion{}, apperrors.NewEstimatorError(fmt.Errorf("suggestion explanation incomplete"))
		}
	}

	return GoalSuggestion{Goals: targets, Explanation: explanation}, nil
}

// MealFeedback asks for one short line about a logged meal.
func (c *Client) MealFeedback(ctx context.Context, description string, meal domain.Nutrients) (string, error) {
	prompt := fmt.Sprintf(
		"Meal: %s. Estimated: %d kcal, %.0f g protein, %.0f g fat, %.0f g carbs.",
		description, meal.Calories, meal.Protein, meal.Fat, meal.Carbs,
	)

	content, err := c.complete(ctx, feedbackSystemPrompt, prompt)
	if err != nil {
		return "", err
	}

	feedback, err := ValidateFeedback(content)
	if err != nil {
		return "", apperrors.NewEstimatorError(err)
	}

	return feedback, nil
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var content string

	call := func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			Temperature: 0.2,
		})
		if err != nil {
			return apperrors.NewExternalAPIError("nutrition estimator", err)
		}

		if len(resp.Choices) == 0 {
			return apperrors.NewExternalAPIError("nutrition estimator", fmt.Errorf("empty completion"))
		}

		content = resp.Choices[0].Message.Content
		return nil
	}

	err := c.breaker.Call(func() error {
		return apperrors.WithRetry(ctx, call)
	})
	if err != nil {
		return "", err
	}

	return content, nil
}

func (p *mealPayload) toNutrients() (domain.Nutrients, error) {
	if p == nil || p.Calories == nil || p.Protein == nil || p.Fat == nil || p.Carbs == nil {
		return domain.Nutrients{}, fmt.Errorf("response missing nutrient fields")
	}

	return domain.Nutrients{
		Calories: int(*p.Calories),
		Protein:  *p.Protein,
		Fat:      *p.Fat,
		Carbs:    *p.Carbs,
	}, nil
}

// stripFences tolerates models that wrap JSON in a markdown code block
// despite the prompt.
func stripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
