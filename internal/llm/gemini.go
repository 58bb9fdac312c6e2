package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Generator produces one reply for a system instruction and user message.
type Generator interface {
	Generate(ctx context.Context, model string, prompt Prompt) (string, error)
	CheckModel(ctx context.Context, model string) error
}

// GeneratorFactory builds a Generator for an API key.
type GeneratorFactory func(ctx context.Context, apiKey string) (Generator, error)

// GeminiClient generates replies using Google's Gemini API.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a Gemini client. An empty key lets the SDK fall
// back to GEMINI_API_KEY / GOOGLE_API_KEY from the environment.
func NewGeminiClient(ctx context.Context, apiKey string) (Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// Generate issues a single GenerateContent call.
func (g *GeminiClient) Generate(ctx context.Context, model string, prompt Prompt) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx,
		model,
		genai.Text(prompt.User),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
			Temperature:       genai.Ptr[float32](Temperature),
			MaxOutputTokens:   MaxTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("Gemini generate failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("no response from Gemini")
	}
	return text, nil
}

// CheckModel verifies that the model exists and the key is accepted.
func (g *GeminiClient) CheckModel(ctx context.Context, model string) error {
	if _, err := g.client.Models.Get(ctx, model, nil); err != nil {
		return fmt.Errorf("Gemini model lookup failed: %w", err)
	}
	return nil
}
