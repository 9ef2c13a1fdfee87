// Package gemini reads receipt images and classifies expenses with the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// ModelName is the Gemini model used for receipt extraction and type suggestion.
const ModelName = "gemini-2.5-flash"

// ErrNotConfigured is returned when the client has no generator.
var ErrNotConfigured = errors.New("gemini client not initialized")

// ContentGenerator is the part of the Gemini API the client relies on.
type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

type modelsAdapter struct {
	models *genai.Models
}

func (m *modelsAdapter) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	resp, err := m.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("genai.GenerateContent: %w", err)
	}
	return resp, nil
}

// Client wraps the Gemini API client.
type Client struct {
	generator ContentGenerator
}

// NewClient creates a client authenticated with apiKey.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{generator: &modelsAdapter{models: client.Models}}, nil
}

// NewClientWithGenerator creates a Client over generator, typically a test double.
func NewClientWithGenerator(generator ContentGenerator) *Client {
	return &Client{generator: generator}
}

func (c *Client) generate(ctx context.Context, parts []*genai.Part, config *genai.GenerateContentConfig) (string, error) {
	if c == nil || c.generator == nil {
		return "", ErrNotConfigured
	}
	resp, err := c.generator.GenerateContent(ctx, ModelName, []*genai.Content{
		{Role: "user", Parts: parts},
	}, config)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", errors.New("no response from Gemini")
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response from Gemini")
	}
	return text, nil
}
