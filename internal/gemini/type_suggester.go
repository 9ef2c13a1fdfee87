package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gitlab.com/yelinaung/billed/internal/logger"
	"gitlab.com/yelinaung/billed/internal/models"
	"google.golang.org/genai"
)

// MaxNameLength is the longest bill name embedded in a prompt.
const MaxNameLength = 200

// MaxMerchantLength is the longest merchant name kept from a receipt.
const MaxMerchantLength = 100

// SuggestTypeTimeout bounds one type suggestion call.
const SuggestTypeTimeout = 10 * time.Second

// TypeSuggestion is the expense type proposed for a bill name.
type TypeSuggestion struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// SuggestType proposes one of models.ExpenseTypes for a bill name.
func (c *Client) SuggestType(ctx context.Context, name string) (*TypeSuggestion, error) {
	name = SanitizeForPrompt(name, MaxNameLength)
	if name == "" {
		return nil, errors.New("bill name is required")
	}
	nameLog := logger.SanitizeText(name)

	timeoutCtx, cancel := context.WithTimeout(ctx, SuggestTypeTimeout)
	defer cancel()

	temp := float32(0.3)
	config := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(300),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: "You are a JSON API. You MUST respond with ONLY valid JSON, no preamble or explanation. Output a single JSON object."},
			},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"type": {
					Type:        genai.TypeString,
					Enum:        models.ExpenseTypes,
					Description: "The most appropriate expense type from the provided list",
				},
				"confidence": {
					Type:        genai.TypeNumber,
					Description: "Confidence score between 0 and 1",
				},
				"reasoning": {
					Type:        genai.TypeString,
					Description: "Brief explanation for the classification",
				},
			},
			Required: []string{"type", "confidence", "reasoning"},
		},
	}

	text, err := c.generate(timeoutCtx, []*genai.Part{{Text: buildTypePrompt(name)}}, config)
	if err != nil {
		logger.Log.Error().Err(err).Str("name", nameLog).Msg("SuggestType: Gemini API call failed")
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	jsonText := extractJSON(text)
	if jsonText == "" {
		return nil, errors.New("no JSON found in response")
	}

	var suggestion TypeSuggestion
	if err := json.Unmarshal([]byte(jsonText), &suggestion); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	matched := matchExpenseType(suggestion.Type)
	if matched == "" {
		logger.Log.Warn().
			Str("name", nameLog).
			Str("suggested_type", suggestion.Type).
			Msg("SuggestType: suggestion not in expense types")
		return nil, fmt.Errorf("suggested type %q is not an expense type", suggestion.Type)
	}
	suggestion.Type = matched

	if suggestion.Confidence < 0 || suggestion.Confidence > 1 {
		return nil, fmt.Errorf("confidence out of range: %f", suggestion.Confidence)
	}
	suggestion.Reasoning = SanitizeForPrompt(suggestion.Reasoning, models.MaxCommentaryLength)

	logger.Log.Debug().
		Str("name", nameLog).
		Str("type", suggestion.Type).
		Float64("confidence", suggestion.Confidence).
		Msg("SuggestType: matched expense type")

	return &suggestion, nil
}

func buildTypePrompt(name string) string {
	return fmt.Sprintf(`Classify this business expense: "%s"

Available expense types:
- %s

Rules:
- Choose the MOST appropriate type from the list
- "Transports" for taxi, train, plane, fuel, tolls
- "Restaurants et bars" for meals and drinks, "Hôtel et logement" for lodging
- Higher confidence (0.8-1.0) for obvious types, lower (0.5-0.7) for ambiguous ones

Return JSON only:
{"type": "exact type name", "confidence": 0.0-1.0, "reasoning": "brief explanation"}`,
		name, strings.Join(models.ExpenseTypes, "\n- "))
}

// SanitizeForPrompt flattens input to a single line without quotes or
// control characters and truncates it to maxLength bytes.
func SanitizeForPrompt(input string, maxLength int) string {
	input = strings.ReplaceAll(input, `"`, `'`)
	input = strings.ReplaceAll(input, "`", "'")
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.Join(strings.Fields(input), " ")

	if len(input) > maxLength {
		input = strings.ToValidUTF8(input[:maxLength], "")
		input = strings.TrimSpace(input)
	}
	return input
}
