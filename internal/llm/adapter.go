package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/warm3snow/pytutor/internal/settings"
)

// LocalChat sends one non-streaming request to {baseUrl}/api/chat and
// returns the reply content.
func (c *Client) LocalChat(ctx context.Context, ep settings.Endpoint, messages []Message) (string, error) {
	request := LocalChatRequest{
		Model:    ep.Model,
		Messages: messages,
		Stream:   false,
	}

	body, err := c.do(ctx, settings.BackendLocal, http.MethodPost, ep.BaseURL+"/api/chat", "", request, false)
	if err != nil {
		return "", err
	}

	return parseLocalChatResponse(body)
}

// LocalModels lists model names from {baseUrl}/api/tags.
func (c *Client) LocalModels(ctx context.Context, ep settings.Endpoint) ([]string, error) {
	body, err := c.do(ctx, settings.BackendLocal, http.MethodGet, ep.BaseURL+"/api/tags", "", nil, false)
	if err != nil {
		return nil, err
	}

	var tags LocalTags
	if err := json.Unmarshal(body, &tags); err != nil {
		return nil, fmt.Errorf("failed to parse tags response: %w", err)
	}

	names := make([]string, len(tags.Models))
	for i, m := range tags.Models {
		names[i] = m.Name
	}
	return names, nil
}

// parseLocalChatResponse handles the /api/chat response format
func parseLocalChatResponse(responseBody []byte) (string, error) {
	trimmedBody := strings.TrimSpace(string(responseBody))
	if len(trimmedBody) == 0 {
		return "", fmt.Errorf("empty response from local server")
	}

	// If it doesn't start with '{', it's not valid JSON
	if trimmedBody[0] != '{' {
		return "", fmt.Errorf("invalid response format")
	}

	var resp LocalChatResponse
	if err := json.Unmarshal(responseBody, &resp); err != nil {
		return "", fmt.Errorf("failed to parse chat response: %w", err)
	}

	if resp.Error != "" {
		return "", fmt.Errorf("API error: %s", resp.Error)
	}

	return resp.Message.Content, nil
}
