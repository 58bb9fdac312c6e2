package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/warm3snow/pytutor/internal/logging"
	"github.com/warm3snow/pytutor/internal/settings"
)

// ErrNotLoaded is the failure when the in-process model is not ready.
var ErrNotLoaded = errors.New("the in-process model is not loaded yet; wait for loading to finish, then ask again")

// SettingsSource provides the active settings.
type SettingsSource interface {
	Snapshot() settings.Settings
}

// Dispatcher sends a prompt to the backend selected in the active settings.
type Dispatcher struct {
	settings SettingsSource
	client   *Client
	engines  *EngineHolder
	gemini   GeneratorFactory
}

// NewDispatcher creates a dispatcher. A nil gemini factory uses the Gemini SDK.
func NewDispatcher(src SettingsSource, client *Client, engines *EngineHolder, gemini GeneratorFactory) *Dispatcher {
	if engines == nil {
		engines = NewEngineHolder(nil)
	}
	if gemini == nil {
		gemini = NewGeminiClient
	}
	return &Dispatcher{
		settings: src,
		client:   client,
		engines:  engines,
		gemini:   gemini,
	}
}

// Engines returns the in-process engine holder.
func (d *Dispatcher) Engines() *EngineHolder {
	return d.engines
}

// Dispatch sends the prompt exactly once. Every error is folded into a
// Failure outcome; Dispatch itself never fails.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt Prompt) Outcome {
	cfg := d.settings.Snapshot()
	backend := cfg.Backend
	ep := cfg.Active()

	logging.LogLLMRequest(string(backend), ep.Model, len(prompt.System)+len(prompt.User))

	text, err := d.send(ctx, backend, ep, prompt)

	logging.LogLLMResponse(string(backend), ep.Model, len(text), err)

	if err != nil {
		return Failure(err.Error())
	}
	return Success(text)
}

func (d *Dispatcher) send(ctx context.Context, backend settings.BackendKind, ep settings.Endpoint, prompt Prompt) (string, error) {
	switch backend {
	case settings.BackendEngine:
		return d.sendEngine(ctx, prompt)
	case settings.BackendLocal:
		return d.client.LocalChat(ctx, ep, prompt.Messages())
	case settings.BackendRemote:
		return d.client.ChatCompletion(ctx, ep, prompt.Messages())
	case settings.BackendGemini:
		g, err := d.gemini(ctx, ep.APIKey)
		if err != nil {
			return "", err
		}
		return g.Generate(ctx, ep.Model, prompt)
	default:
		return "", fmt.Errorf("unsupported backend: %s", backend)
	}
}

func (d *Dispatcher) sendEngine(ctx context.Context, prompt Prompt) (string, error) {
	engine, _, ok := d.engines.Loaded()
	if !ok {
		return "", ErrNotLoaded
	}

	resp, err := engine.ChatCompletion(ctx, EngineRequest{
		Messages:    prompt.Messages(),
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("engine completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from engine")
	}
	return resp.Choices[0].Message.Content, nil
}
