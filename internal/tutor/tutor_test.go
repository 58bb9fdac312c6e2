package tutor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warm3snow/pytutor/internal/llm"
	"github.com/warm3snow/pytutor/internal/progress"
	"github.com/warm3snow/pytutor/internal/settings"
)

type fakeBackend struct {
	mu      sync.Mutex
	outcome llm.Outcome
	prompts []llm.Prompt
	block   chan struct{}
}

func (f *fakeBackend) Dispatch(ctx context.Context, p llm.Prompt) llm.Outcome {
	f.mu.Lock()
	f.prompts = append(f.prompts, p)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.outcome
}

type fixedSettings settings.Settings

func (s fixedSettings) Snapshot() settings.Settings { return settings.Settings(s) }

type fixedProgress progress.Record

func (p fixedProgress) Load(context.Context) progress.Record { return progress.Record(p) }

func newTestTutor(t *testing.T, backend Backend, mode settings.Mode) *Tutor {
	t.Helper()
	cfg := settings.Default()
	cfg.Mode = mode
	tu, err := New(backend, fixedSettings(cfg), fixedProgress{})
	require.NoError(t, err)
	return tu
}

func TestAsk_SuccessIsFormatted(t *testing.T) {
	backend := &fakeBackend{outcome: llm.Success("A variable stores values.")}
	tu := newTestTutor(t, backend, settings.ModeGuided)

	shared := tu.Run(context.Background(), "What is a variable?", "/starter/lesson-3.html")

	assert.Equal(t, TrackStarter, shared.Context.Track)
	assert.Equal(t, settings.ModeGuided, shared.Context.Mode)
	assert.NotEmpty(t, shared.RunID)
	assert.Contains(t, shared.Response.Markup, "<p>A variable stores values.</p>")
	assert.False(t, shared.Response.IsError)

	require.Len(t, backend.prompts, 1)
	assert.Equal(t, "What is a variable?", backend.prompts[0].User)
	assert.Contains(t, backend.prompts[0].System, DefaultPolicy.Modes[settings.ModeGuided].Title)
	assert.Contains(t, backend.prompts[0].System, DefaultPolicy.Tracks[TrackStarter].Title)
}

func TestAsk_FailureWithKeywordUsesCannedAnswer(t *testing.T) {
	backend := &fakeBackend{outcome: llm.Failure("Connection refused")}
	tu := newTestTutor(t, backend, settings.ModeGuided)

	r := tu.Ask(context.Background(), "What is a variable?", "/starter/lesson-3.html")

	assert.False(t, r.IsError)
	assert.Contains(t, r.Markup, "is a name that refers to a value")
}

func TestAsk_FailureWithoutKeywordIsError(t *testing.T) {
	backend := &fakeBackend{outcome: llm.Failure("timeout")}
	tu := newTestTutor(t, backend, settings.ModeDirect)

	r := tu.Ask(context.Background(), "asdkjasd", "/modules/module-1.html")

	assert.True(t, r.IsError)
	assert.Contains(t, r.Markup, "timeout")
}

func TestAsk_RunIDsAreUnique(t *testing.T) {
	tu := newTestTutor(t, &fakeBackend{outcome: llm.Success("ok")}, settings.ModeGuided)
	a := tu.Run(context.Background(), "q", "")
	b := tu.Run(context.Background(), "q", "")
	assert.NotEqual(t, a.RunID, b.RunID)
}

// recordStage appends its name and returns a fixed action.
type recordStage struct {
	name   string
	action Action
	trace  *[]string
}

func (s recordStage) Run(_ context.Context, _ *Shared) Action {
	*s.trace = append(*s.trace, s.name)
	return s.action
}

func TestFlow_UnmatchedActionEndsRun(t *testing.T) {
	var trace []string
	stages := map[StageID]Stage{
		StageCollect:  recordStage{name: "collect", action: ActionNext, trace: &trace},
		StagePrompt:   recordStage{name: "prompt", action: ActionFailure, trace: &trace},
		StageDispatch: recordStage{name: "dispatch", action: ActionNext, trace: &trace},
	}
	flow, err := NewFlow(StageCollect, stages, Edges{
		StageCollect: {ActionNext: StagePrompt},
		StagePrompt:  {ActionNext: StageDispatch},
	})
	require.NoError(t, err)

	shared := &Shared{Question: "q"}
	got := flow.Run(context.Background(), shared)

	assert.Same(t, shared, got)
	assert.Equal(t, []string{"collect", "prompt"}, trace)
}

func TestNewFlow_RejectsBadWiring(t *testing.T) {
	var trace []string
	stage := recordStage{name: "s", action: ActionNext, trace: &trace}
	stages := map[StageID]Stage{StageCollect: stage, StagePrompt: stage}

	tests := []struct {
		name  string
		start StageID
		edges Edges
		want  string
	}{
		{
			name:  "unknown start",
			start: StageFormat,
			want:  "start stage format is not registered",
		},
		{
			name:  "unknown target",
			start: StageCollect,
			edges: Edges{StageCollect: {ActionNext: StageDispatch}},
			want:  "unregistered stage dispatch",
		},
		{
			name:  "unknown source",
			start: StageCollect,
			edges: Edges{StageFallback: {ActionNext: StageCollect}},
			want:  "edge from unregistered stage fallback",
		},
		{
			name:  "cycle",
			start: StageCollect,
			edges: Edges{
				StageCollect: {ActionNext: StagePrompt},
				StagePrompt:  {ActionNext: StageCollect},
			},
			want: "cycle",
		},
		{
			name:  "self loop",
			start: StageCollect,
			edges: Edges{StageCollect: {ActionFailure: StageCollect}},
			want:  "cycle",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFlow(tt.start, stages, tt.edges)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSession_RejectsConcurrentQuestion(t *testing.T) {
	backend := &fakeBackend{outcome: llm.Success("done"), block: make(chan struct{})}
	s := NewSession(newTestTutor(t, backend, settings.ModeGuided), "/modules/module-2.html")

	first := make(chan Response, 1)
	go func() {
		r, err := s.Ask(context.Background(), "first")
		assert.NoError(t, err)
		first <- r
	}()

	require.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return len(backend.prompts) == 1
	}, time.Second, 5*time.Millisecond)

	_, err := s.Ask(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(backend.block)
	assert.Contains(t, (<-first).Markup, "done")

	backend.mu.Lock()
	backend.block = nil
	backend.mu.Unlock()
	r, err := s.Ask(context.Background(), "third")
	require.NoError(t, err)
	assert.Contains(t, r.Markup, "done")
	assert.Equal(t, "/modules/module-2.html", s.Location())
}
