// Package llm provides the single entry point for all generative calls:
// prompt composition, per-model retry, and fallback across model variants.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client is an abstraction over a generative model provider.
type Client interface {
	// Generate returns a textual completion from the named model.
	Generate(ctx context.Context, model, prompt string) (string, error)
	// Close releases any resources held by the client.
	Close() error
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a new Gemini-backed client.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// Generate returns a completion from the named Gemini model.
func (c *GeminiClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	m := c.client.GenerativeModel(model)
	m.SetTemperature(0.2) // Low temperature for consistent output

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return extractTextFromResponse(resp)
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}
