package tutor

import (
	"context"
	"fmt"

	"github.com/warm3snow/pytutor/internal/logging"
)

// StageID names a pipeline stage.
type StageID int

const (
	StageCollect StageID = iota
	StagePrompt
	StageDispatch
	StageFormat
	StageFallback
)

func (id StageID) String() string {
	switch id {
	case StageCollect:
		return "collect"
	case StagePrompt:
		return "prompt"
	case StageDispatch:
		return "dispatch"
	case StageFormat:
		return "format"
	case StageFallback:
		return "fallback"
	}
	return fmt.Sprintf("stage(%d)", int(id))
}

// Action is what a stage reports when it finishes; it selects the outgoing
// edge.
type Action int

const (
	ActionNext Action = iota
	ActionSuccess
	ActionFailure
	ActionDone
)

func (a Action) String() string {
	switch a {
	case ActionNext:
		return "next"
	case ActionSuccess:
		return "success"
	case ActionFailure:
		return "failure"
	case ActionDone:
		return "done"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Stage is one step of the pipeline.
type Stage interface {
	Run(ctx context.Context, shared *Shared) Action
}

// step adapts the prepare → perform → finalize triple into a Stage.
// prepare reads what perform needs from the shared record, perform does the
// work without touching the shared record, finalize writes the result back
// and picks the action.
type step[In, Out any] struct {
	prepare  func(shared *Shared) In
	perform  func(ctx context.Context, in In) Out
	finalize func(shared *Shared, in In, out Out) Action
}

func (s step[In, Out]) Run(ctx context.Context, shared *Shared) Action {
	in := s.prepare(shared)
	out := s.perform(ctx, in)
	return s.finalize(shared, in, out)
}

// Edges is the transition table: stage → action → next stage.
type Edges map[StageID]map[Action]StageID

// Flow is a statically wired, acyclic stage graph.
type Flow struct {
	start  StageID
	stages map[StageID]Stage
	edges  Edges
}

// NewFlow validates the wiring: the start stage and every edge target must
// be registered, and the graph must not contain a cycle.
func NewFlow(start StageID, stages map[StageID]Stage, edges Edges) (*Flow, error) {
	if _, ok := stages[start]; !ok {
		return nil, fmt.Errorf("start stage %s is not registered", start)
	}
	for from, out := range edges {
		if _, ok := stages[from]; !ok {
			return nil, fmt.Errorf("edge from unregistered stage %s", from)
		}
		for action, to := range out {
			if _, ok := stages[to]; !ok {
				return nil, fmt.Errorf("edge %s --%s--> unregistered stage %s", from, action, to)
			}
		}
	}
	if err := checkAcyclic(stages, edges); err != nil {
		return nil, err
	}
	return &Flow{start: start, stages: stages, edges: edges}, nil
}

func checkAcyclic(stages map[StageID]Stage, edges Edges) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[StageID]int, len(stages))

	var visit func(id StageID) error
	visit = func(id StageID) error {
		switch state[id] {
		case visiting:
			return fmt.Errorf("stage graph has a cycle through %s", id)
		case done:
			return nil
		}
		state[id] = visiting
		for _, next := range edges[id] {
			if err := visit(next); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}

	for id := range stages {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// Run executes stages from the start until a stage returns an action with
// no outgoing edge. An unmatched action is a normal end of the run.
func (f *Flow) Run(ctx context.Context, shared *Shared) *Shared {
	current := f.start
	for {
		action := f.stages[current].Run(ctx, shared)
		logging.LogStage(shared.RunID, current.String(), action.String())

		next, ok := f.edges[current][action]
		if !ok {
			return shared
		}
		current = next
	}
}
