package gemini

import (
	"context"
	"sync"

	"google.golang.org/genai"
)

type mockGenerator struct {
	response *genai.GenerateContentResponse
	err      error

	mu       sync.Mutex
	prompts  []string
	configs  []*genai.GenerateContentConfig
	deadline bool
}

func (m *mockGenerator) GenerateContent(
	ctx context.Context,
	_ string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range contents {
		for _, p := range c.Parts {
			m.prompts = append(m.prompts, p.Text)
		}
	}
	m.configs = append(m.configs, config)
	_, m.deadline = ctx.Deadline()
	return m.response, m.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}
