package llm

import (
	"context"
	"fmt"

	"github.com/warm3snow/pytutor/internal/settings"
)

// ProbeResult describes whether a backend is reachable.
type ProbeResult struct {
	Backend settings.BackendKind
	OK      bool
	Models  []string
	Detail  string
}

// Probe checks connectivity of the given backend using the active settings.
// It never returns an error; problems are reported in the result.
func (d *Dispatcher) Probe(ctx context.Context, backend settings.BackendKind) ProbeResult {
	ep := d.settings.Snapshot().Endpoint(backend)
	result := ProbeResult{Backend: backend}

	var err error
	switch backend {
	case settings.BackendEngine:
		if _, model, ok := d.engines.Loaded(); ok {
			result.Models = []string{model}
		} else {
			err = fmt.Errorf("model %s is not loaded", ep.Model)
		}
	case settings.BackendLocal:
		result.Models, err = d.client.LocalModels(ctx, ep)
	case settings.BackendRemote:
		result.Models, err = d.client.RemoteModels(ctx, ep)
	case settings.BackendGemini:
		var g Generator
		if g, err = d.gemini(ctx, ep.APIKey); err == nil {
			if err = g.CheckModel(ctx, ep.Model); err == nil {
				result.Models = []string{ep.Model}
			}
		}
	default:
		err = fmt.Errorf("unsupported backend: %s", backend)
	}

	if err != nil {
		result.Detail = err.Error()
		return result
	}
	result.OK = true
	result.Detail = fmt.Sprintf("%d model(s) available", len(result.Models))
	return result
}
