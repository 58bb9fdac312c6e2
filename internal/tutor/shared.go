package tutor

import (
	"github.com/warm3snow/pytutor/internal/llm"
	"github.com/warm3snow/pytutor/internal/settings"
)

// Track is a curriculum path.
type Track string

const (
	// TrackStarter is the zero-experience path.
	TrackStarter Track = "starter"
	// TrackModule is the standard numbered-module path.
	TrackModule Track = "module"
	// TrackAdvanced is the advanced AI path.
	TrackAdvanced Track = "advanced"
)

// Snapshot is the learner context a question is asked in. It is built once
// per question and never modified.
type Snapshot struct {
	Track            Track
	Module           int
	Unit             string
	Completed        []int
	PracticeAttempts int
	Mode             settings.Mode
}

// Response is the display-ready answer.
type Response struct {
	// Markup is sanitized HTML.
	Markup string
	// Text is the markdown the markup was produced from, for terminals.
	Text    string
	IsError bool
}

// Shared is the per-question record threaded through the stages. Each field
// is written by exactly one stage, in wiring order.
type Shared struct {
	RunID    string
	Question string
	Location string

	Context  Snapshot
	Prompt   llm.Prompt
	Outcome  llm.Outcome
	Response Response
}
