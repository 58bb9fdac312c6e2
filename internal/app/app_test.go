package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warm3snow/pytutor/internal/config"
	"github.com/warm3snow/pytutor/internal/llm"
	"github.com/warm3snow/pytutor/internal/settings"
)

// syncBuffer is a bytes.Buffer safe for the chat's background writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// chatServer is a local chat server answering every question with reply.
type chatServer struct {
	*httptest.Server
	mu      sync.Mutex
	reply   string
	systems []string
	gate    chan struct{}
}

func newChatServer(t *testing.T, reply string) *chatServer {
	t.Helper()
	s := &chatServer{reply: reply}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			json.NewEncoder(w).Encode(map[string]any{"models": []map[string]string{{"name": "llama3.2:latest"}}})
		case "/api/chat":
			var req llm.LocalChatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			s.mu.Lock()
			s.systems = append(s.systems, req.Messages[0].Content)
			gate := s.gate
			s.mu.Unlock()
			if gate != nil {
				<-gate
			}
			json.NewEncoder(w).Encode(map[string]any{
				"message": map[string]string{"role": "assistant", "content": s.reply},
				"done":    true,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *chatServer) requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.systems)
}

func newTestApp(t *testing.T, baseURL string, opts ...Option) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "pytutor.db")
	cfg.HTTP.TimeoutSeconds = 5
	cfg.Defaults.Backend = settings.BackendLocal
	cfg.Defaults.Local.BaseURL = baseURL

	a, err := New(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestApp_AskUsesStoredProgress(t *testing.T) {
	server := newChatServer(t, "A variable stores values.")
	a := newTestApp(t, server.URL)
	ctx := context.Background()

	_, err := a.Progress.MarkComplete(ctx, 1)
	require.NoError(t, err)

	r := a.Tutor.Ask(ctx, "What is a variable?", "/modules/module-2.html")
	assert.Equal(t, "<p>A variable stores values.</p>", r.Markup)
	assert.False(t, r.IsError)

	require.Equal(t, 1, server.requests())
	assert.Contains(t, server.systems[0], "Completed modules: 1.")
	assert.Contains(t, server.systems[0], "The student is currently on: Control Flow.")
}

func TestApp_SettingsSurviveReopen(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "pytutor.db")
	ctx := context.Background()

	a, err := New(ctx, cfg)
	require.NoError(t, err)
	_, err = a.Settings.SetValue(ctx, "mode", "direct")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := New(ctx, cfg)
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, settings.ModeDirect, b.Settings.Snapshot().Mode)
}

func TestApp_LoadEngine(t *testing.T) {
	engine := engineFunc(func(context.Context, llm.EngineRequest) (llm.ChatCompletionResponse, error) {
		return llm.ChatCompletionResponse{Choices: []llm.Choice{{Message: llm.Message{Role: "assistant", Content: "From the engine."}}}}, nil
	})
	a := newTestApp(t, "http://127.0.0.1:1", WithEngineLoader(func(_ context.Context, _ string, report func(llm.LoadProgress)) (llm.Engine, error) {
		report(llm.LoadProgress{Text: "ready", Progress: 1})
		return engine, nil
	}))
	ctx := context.Background()

	_, err := a.Settings.SetValue(ctx, "backend", "engine")
	require.NoError(t, err)

	r := a.Tutor.Ask(ctx, "asdkjasd", "")
	assert.True(t, r.IsError)
	assert.Contains(t, r.Text, "not loaded")

	var reports []llm.LoadProgress
	require.NoError(t, a.LoadEngine(ctx, func(p llm.LoadProgress) { reports = append(reports, p) }))
	assert.NotEmpty(t, reports)

	r = a.Tutor.Ask(ctx, "asdkjasd", "")
	assert.False(t, r.IsError)
	assert.Equal(t, "<p>From the engine.</p>", r.Markup)
}

type engineFunc func(context.Context, llm.EngineRequest) (llm.ChatCompletionResponse, error)

func (f engineFunc) ChatCompletion(ctx context.Context, req llm.EngineRequest) (llm.ChatCompletionResponse, error) {
	return f(ctx, req)
}

func TestChat_Commands(t *testing.T) {
	server := newChatServer(t, "unused")
	a := newTestApp(t, server.URL)
	ctx := context.Background()
	out := &syncBuffer{}
	c := a.NewChat("/starter/lesson-1.html", out)

	assert.False(t, c.Handle(ctx, "/mode direct"))
	assert.Equal(t, settings.ModeDirect, a.Settings.Snapshot().Mode)

	assert.False(t, c.Handle(ctx, "/mode"))
	assert.Contains(t, out.String(), "mode: direct")

	assert.False(t, c.Handle(ctx, "/backend nowhere"))
	assert.Contains(t, out.String(), "Error:")
	assert.Equal(t, settings.BackendLocal, a.Settings.Snapshot().Backend)

	assert.False(t, c.Handle(ctx, "/probe"))
	assert.Contains(t, out.String(), "local backend is reachable")
	assert.Contains(t, out.String(), "llama3.2:latest")

	_, err := a.Progress.MarkComplete(ctx, 2)
	require.NoError(t, err)
	assert.False(t, c.Handle(ctx, "/progress"))
	assert.Contains(t, out.String(), "Completed modules: 2")

	assert.False(t, c.Handle(ctx, "/help"))
	assert.Contains(t, out.String(), "Available commands:")
	assert.Contains(t, out.String(), "/clear")

	assert.False(t, c.Handle(ctx, "/clear"))
	assert.Contains(t, out.String(), "\033[H\033[2J")

	assert.False(t, c.Handle(ctx, "/dance"))
	assert.Contains(t, out.String(), "Unknown command /dance")

	assert.False(t, c.Handle(ctx, "   "))
	assert.True(t, c.Handle(ctx, "exit"))
	assert.Equal(t, 0, server.requests())
}

func TestChat_OneQuestionAtATime(t *testing.T) {
	server := newChatServer(t, "Loops repeat code.")
	server.gate = make(chan struct{})
	a := newTestApp(t, server.URL)
	ctx := context.Background()
	out := &syncBuffer{}
	c := a.NewChat("/modules/module-2.html", out)

	assert.False(t, c.Handle(ctx, "What is a loop?"))
	require.Eventually(t, func() bool { return server.requests() == 1 }, 5*time.Second, 10*time.Millisecond)

	assert.False(t, c.Handle(ctx, "And a list?"))
	assert.Contains(t, out.String(), "Still working on your previous question")

	close(server.gate)
	c.Wait()
	assert.Contains(t, out.String(), "Loops repeat code.")
	assert.Equal(t, 1, server.requests())
	assert.Equal(t, 1, strings.Count(out.String(), "You: "))
}

func TestChat_ErrorResponseIsBoxed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	a := newTestApp(t, server.URL)
	out := &syncBuffer{}
	c := a.NewChat("", out)

	c.Handle(context.Background(), "asdkjasd")
	c.Wait()
	assert.Contains(t, out.String(), "Tutor unavailable")
	assert.Contains(t, out.String(), "HTTP 503")
}
