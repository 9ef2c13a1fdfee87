package gemini

import (
	"context"
	"encoding/json"
	"sync"

	"google.golang.org/genai"
)

type mockGenerator struct {
	mu       sync.Mutex
	response *genai.GenerateContentResponse
	err      error
	calls    int
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (m *mockGenerator) GenerateContent(
	ctx context.Context,
	_ string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.contents = contents
	m.config = config
	if m.err != nil {
		return nil, m.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.response, nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func jsonResponse(v any) *genai.GenerateContentResponse {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return textResponse(string(raw))
}
