// Package tutor answers Python questions in the context of the learner's
// current lesson. A question runs once through a fixed stage graph:
// collect → prompt → dispatch → format, with a fallback branch when the
// backend fails.
package tutor

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrBusy is returned by Session.Ask while a previous question is in flight.
var ErrBusy = errors.New("a question is already being answered; wait for it to finish")

// Tutor runs questions through the stage graph.
type Tutor struct {
	flow *Flow
}

// New wires the default flow around the given collaborators.
func New(backend Backend, cfg SettingsSource, prog ProgressSource) (*Tutor, error) {
	flow, err := NewFlow(StageCollect, defaultStages(backend, cfg, prog), DefaultEdges)
	if err != nil {
		return nil, err
	}
	return &Tutor{flow: flow}, nil
}

// Run executes one question and returns the full shared record.
func (t *Tutor) Run(ctx context.Context, question, location string) *Shared {
	shared := &Shared{
		RunID:    uuid.NewString(),
		Question: question,
		Location: location,
	}
	return t.flow.Run(ctx, shared)
}

// Ask answers a question asked from location. It never fails: backend
// errors come back as a fallback or error response.
func (t *Tutor) Ask(ctx context.Context, question, location string) Response {
	return t.Run(ctx, question, location).Response
}

// Session is one chat conversation. It allows one question at a time.
type Session struct {
	tutor    *Tutor
	location string
	busy     atomic.Bool
}

// NewSession starts a session anchored at location.
func NewSession(t *Tutor, location string) *Session {
	return &Session{tutor: t, location: location}
}

// Location returns the page the session asks from.
func (s *Session) Location() string { return s.location }

// Ask answers question, or returns ErrBusy if another question has not
// finished yet.
func (s *Session) Ask(ctx context.Context, question string) (Response, error) {
	answer, err := s.Start(ctx, question)
	if err != nil {
		return Response{}, err
	}
	return <-answer, nil
}

// Start claims the session and answers question in the background. The
// response is delivered on the returned channel, after the session has been
// released for the next question.
func (s *Session) Start(ctx context.Context, question string) (<-chan Response, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	answer := make(chan Response, 1)
	go func() {
		resp := s.tutor.Ask(ctx, question, s.location)
		s.busy.Store(false)
		answer <- resp
	}()
	return answer, nil
}
