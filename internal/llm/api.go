package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/warm3snow/pytutor/internal/settings"
)

// maxErrorBody caps how much of a failing response body ends up in an error.
const maxErrorBody = 400

// StatusError is returned when a backend answers with a non-2xx status.
type StatusError struct {
	Backend settings.BackendKind
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s backend returned HTTP %d", e.Backend, e.Code)
	}
	return fmt.Sprintf("%s backend returned HTTP %d: %s", e.Backend, e.Code, e.Body)
}

// Client speaks the HTTP chat protocols of the local and remote backends.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client. A zero timeout means requests are bounded only
// by their context.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ChatCompletion sends one request to {baseUrl}/chat/completions and returns
// the content of the first choice.
func (c *Client) ChatCompletion(ctx context.Context, ep settings.Endpoint, messages []Message) (string, error) {
	request := ChatCompletionRequest{
		Model:       ep.Model,
		Messages:    messages,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	}

	body, err := c.do(ctx, settings.BackendRemote, http.MethodPost, ep.BaseURL+"/chat/completions", ep.APIKey, request, true)
	if err != nil {
		return "", err
	}

	var chatResponse ChatCompletionResponse
	if err := json.Unmarshal(body, &chatResponse); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResponse.Error != nil {
		return "", fmt.Errorf("API error: %s", chatResponse.Error.Message)
	}

	if len(chatResponse.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}

	return chatResponse.Choices[0].Message.Content, nil
}

// RemoteModels lists model ids from {baseUrl}/models.
func (c *Client) RemoteModels(ctx context.Context, ep settings.Endpoint) ([]string, error) {
	body, err := c.do(ctx, settings.BackendRemote, http.MethodGet, ep.BaseURL+"/models", ep.APIKey, nil, true)
	if err != nil {
		return nil, err
	}

	var modelList ModelList
	if err := json.Unmarshal(body, &modelList); err != nil {
		return nil, fmt.Errorf("failed to unmarshal models: %w", err)
	}

	modelNames := make([]string, len(modelList.Data))
	for i, model := range modelList.Data {
		modelNames[i] = model.ID
	}
	return modelNames, nil
}

// do performs one JSON request and returns the body of a 2xx response. A
// non-2xx response becomes a *StatusError, carrying the body when withBody
// is set.
func (c *Client) do(ctx context.Context, backend settings.BackendKind, method, url, apiKey string, payload any, withBody bool) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Backend: backend, Code: resp.StatusCode}
		if withBody {
			statusErr.Body = truncate(strings.TrimSpace(string(body)), maxErrorBody)
		}
		return nil, statusErr
	}

	return body, nil
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
