// Package gemini turns free-text event inquiries into lead data with the
// Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ModelName is the Gemini model used for inquiry parsing.
const ModelName = "gemini-2.5-flash"

// ContentGenerator is the part of the Gemini API the CRM calls. Tests
// replace it with a canned generator.
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

// Client parses lead inquiries.
type Client struct {
	generator ContentGenerator
}

// NewClient creates a client for the Gemini API with apiKey. The key is
// checked by the API on the first inquiry.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
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

// NewClientWithGenerator creates a Client over generator.
func NewClientWithGenerator(generator ContentGenerator) *Client {
	return &Client{generator: generator}
}

// generateJSON sends one prompt asking for a JSON reply and returns the
// concatenated text of the first candidate.
func (c *Client) generateJSON(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	if c.generator == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.generator.GenerateContent(timeoutCtx, ModelName, []*genai.Content{
		{Parts: []*genai.Part{{Text: prompt}}},
	}, &genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return sb.String(), nil
}
