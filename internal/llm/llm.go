package llm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrNoEngineRuntime is returned by Load when no engine loader is installed.
var ErrNoEngineRuntime = errors.New("no in-process engine runtime is available")

// ErrNoEngine is returned by Load when the loader reports success without an engine.
var ErrNoEngine = errors.New("engine loader returned no engine")

// EngineRequest is a chat completion request to an in-process engine.
type EngineRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Engine is a loaded in-process model.
type Engine interface {
	ChatCompletion(ctx context.Context, req EngineRequest) (ChatCompletionResponse, error)
}

// LoadProgress is reported while an engine initialises.
type LoadProgress struct {
	Text     string
	Progress float64
}

// EngineLoader initialises the engine for a model, reporting progress as it
// goes. Loading is expensive (model weights are large), so the holder makes
// sure it runs at most once per model.
type EngineLoader func(ctx context.Context, model string, report func(LoadProgress)) (Engine, error)

// EngineHolder memoises the loaded engine. Concurrent Load calls for the
// same model share one in-flight load and all receive the same handle.
type EngineHolder struct {
	loader EngineLoader
	group  singleflight.Group

	mu       sync.Mutex
	engine   Engine
	model    string
	watchers map[string][]func(LoadProgress)
}

// NewEngineHolder creates a holder. A nil loader means no engine can ever be
// loaded, and dispatches to the engine backend fail as "not loaded".
func NewEngineHolder(loader EngineLoader) *EngineHolder {
	return &EngineHolder{
		loader:   loader,
		watchers: make(map[string][]func(LoadProgress)),
	}
}

// Loaded returns the current handle and the model it was loaded for.
func (h *EngineHolder) Loaded() (Engine, string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine, h.model, h.engine != nil
}

// Load returns the engine for model, loading it if needed. report, when not
// nil, receives progress for the load this call waits on. Cancelling ctx
// stops this caller from waiting but does not abort a load other callers
// share.
func (h *EngineHolder) Load(ctx context.Context, model string, report func(LoadProgress)) (Engine, error) {
	h.mu.Lock()
	if h.engine != nil && h.model == model {
		e := h.engine
		h.mu.Unlock()
		return e, nil
	}
	if report != nil {
		h.watchers[model] = append(h.watchers[model], report)
	}
	h.mu.Unlock()

	if h.loader == nil {
		return nil, ErrNoEngineRuntime
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := h.group.DoChan(model, func() (any, error) {
		h.mu.Lock()
		if h.engine != nil && h.model == model {
			e := h.engine
			delete(h.watchers, model)
			h.mu.Unlock()
			return e, nil
		}
		h.mu.Unlock()

		e, err := h.loader(loadCtx, model, func(p LoadProgress) {
			h.notify(model, p)
		})

		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.watchers, model)
		if err != nil {
			return nil, err
		}
		if e == nil {
			return nil, ErrNoEngine
		}
		h.engine, h.model = e, model
		return e, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("failed to load model %s: %w", model, res.Err)
		}
		return res.Val.(Engine), nil
	}
}

// notify fans progress out to every caller waiting on model.
func (h *EngineHolder) notify(model string, p LoadProgress) {
	if p.Progress < 0 {
		p.Progress = 0
	}
	if p.Progress > 1 {
		p.Progress = 1
	}

	h.mu.Lock()
	watchers := slices.Clone(h.watchers[model])
	h.mu.Unlock()

	for _, w := range watchers {
		w(p)
	}
}
