package tutor

import (
	"context"

	"github.com/warm3snow/pytutor/internal/llm"
	"github.com/warm3snow/pytutor/internal/progress"
	"github.com/warm3snow/pytutor/internal/settings"
)

// Backend sends a prompt to the configured model.
type Backend interface {
	Dispatch(ctx context.Context, prompt llm.Prompt) llm.Outcome
}

// SettingsSource supplies the current settings.
type SettingsSource interface {
	Snapshot() settings.Settings
}

// ProgressSource supplies the saved learning progress.
type ProgressSource interface {
	Load(ctx context.Context) progress.Record
}

// DefaultEdges is the tutor wiring.
var DefaultEdges = Edges{
	StageCollect:  {ActionNext: StagePrompt},
	StagePrompt:   {ActionNext: StageDispatch},
	StageDispatch: {ActionSuccess: StageFormat, ActionFailure: StageFallback},
}

func defaultStages(backend Backend, cfg SettingsSource, prog ProgressSource) map[StageID]Stage {
	return map[StageID]Stage{
		StageCollect:  collectStage(cfg, prog),
		StagePrompt:   promptStage(),
		StageDispatch: dispatchStage(backend),
		StageFormat:   formatStage(),
		StageFallback: fallbackStage(),
	}
}

func collectStage(cfg SettingsSource, prog ProgressSource) Stage {
	return step[string, Snapshot]{
		prepare: func(s *Shared) string { return s.Location },
		perform: func(ctx context.Context, location string) Snapshot {
			return Collect(location, prog.Load(ctx), cfg.Snapshot().Mode)
		},
		finalize: func(s *Shared, _ string, snap Snapshot) Action {
			s.Context = snap
			return ActionNext
		},
	}
}

type promptInput struct {
	question string
	context  Snapshot
}

func promptStage() Stage {
	return step[promptInput, llm.Prompt]{
		prepare: func(s *Shared) promptInput {
			return promptInput{question: s.Question, context: s.Context}
		},
		perform: func(_ context.Context, in promptInput) llm.Prompt {
			return BuildPrompt(in.question, in.context)
		},
		finalize: func(s *Shared, _ promptInput, p llm.Prompt) Action {
			s.Prompt = p
			return ActionNext
		},
	}
}

func dispatchStage(backend Backend) Stage {
	return step[llm.Prompt, llm.Outcome]{
		prepare: func(s *Shared) llm.Prompt { return s.Prompt },
		perform: backend.Dispatch,
		finalize: func(s *Shared, _ llm.Prompt, out llm.Outcome) Action {
			s.Outcome = out
			if out.OK() {
				return ActionSuccess
			}
			return ActionFailure
		},
	}
}

func formatStage() Stage {
	return step[string, Response]{
		prepare: func(s *Shared) string { return s.Outcome.Text() },
		perform: func(_ context.Context, text string) Response { return Format(text) },
		finalize: func(s *Shared, _ string, r Response) Action {
			s.Response = r
			return ActionDone
		},
	}
}

type fallbackInput struct {
	message  string
	question string
}

func fallbackStage() Stage {
	return step[fallbackInput, Response]{
		prepare: func(s *Shared) fallbackInput {
			return fallbackInput{message: s.Outcome.Message(), question: s.Question}
		},
		perform: func(_ context.Context, in fallbackInput) Response {
			return Fallback(in.message, in.question)
		},
		finalize: func(s *Shared, _ fallbackInput, r Response) Action {
			s.Response = r
			return ActionDone
		},
	}
}
