package settings

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memKV is an in-memory KV used to observe what the store persists.
type memKV struct {
	mu     sync.Mutex
	data   map[string]string
	writes int
	err    error
}

func newMemKV(seed map[string]string) *memKV {
	data := make(map[string]string)
	for k, v := range seed {
		data[k] = v
	}
	return &memKV{data: data}
}

func (m *memKV) List(_ context.Context, prefix string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string)
	for k, v := range m.data {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out, nil
}

func (m *memKV) SetMany(_ context.Context, pairs map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.writes++
	for k, v := range pairs {
		m.data[k] = v
	}
	return nil
}

func TestOpen_UsesDefaultsWhenEmpty(t *testing.T) {
	s, err := Open(context.Background(), newMemKV(nil), Default(), nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), s.Snapshot())
}

func TestOpen_OverlaysStoredValues(t *testing.T) {
	kv := newMemKV(map[string]string{
		KeyMode:                   "direct",
		KeyBackend:                "remote",
		"backend.remote.model":    "gpt-4.1-mini",
		"backend.remote.api_key":  "sk-test",
		"backend.unknown.model":   "ignored",
	})
	s, err := Open(context.Background(), kv, Default(), nil)
	require.NoError(t, err)

	got := s.Snapshot()
	assert.Equal(t, ModeDirect, got.Mode)
	assert.Equal(t, BackendRemote, got.Backend)
	assert.Equal(t, "gpt-4.1-mini", got.Remote.Model)
	assert.Equal(t, "sk-test", got.Remote.APIKey)
	assert.Equal(t, Default().Remote.BaseURL, got.Remote.BaseURL)
}

func TestOpen_InvalidStoredValuesFallBack(t *testing.T) {
	kv := newMemKV(map[string]string{KeyMode: "lecture"})
	s, err := Open(context.Background(), kv, Default(), nil)
	require.NoError(t, err)
	assert.Equal(t, ModeGuided, s.Snapshot().Mode)
}

func TestUpdate_PersistsOnlyChangedKeys(t *testing.T) {
	kv := newMemKV(nil)
	s, err := Open(context.Background(), kv, Default(), nil)
	require.NoError(t, err)

	got, err := s.SetValue(context.Background(), "local.base_url", "http://127.0.0.1:11434/")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:11434", got.Local.BaseURL)
	assert.Equal(t, map[string]string{"backend.local.base_url": "http://127.0.0.1:11434"}, kv.data)
}

func TestUpdate_RejectsInvalidAndKeepsCurrent(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown mode", "mode", "lecture"},
		{"unknown backend", "backend", "webgpu"},
		{"bad scheme", "remote.base_url", "ftp://example.com"},
		{"unknown key", "theme", "dark"},
		{"unknown field", "local.temperature", "0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newMemKV(nil)
			s, err := Open(context.Background(), kv, Default(), nil)
			require.NoError(t, err)

			_, err = s.SetValue(context.Background(), tt.key, tt.value)
			assert.Error(t, err)
			assert.Equal(t, Default(), s.Snapshot())
			assert.Zero(t, kv.writes)
		})
	}
}

func TestUpdate_PersistenceFailureKeepsCurrent(t *testing.T) {
	kv := newMemKV(nil)
	s, err := Open(context.Background(), kv, Default(), nil)
	require.NoError(t, err)

	kv.err = errors.New("disk full")
	_, err = s.SetValue(context.Background(), "mode", "direct")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, ModeGuided, s.Snapshot().Mode)
}

func TestSettings_Redacted(t *testing.T) {
	s := Default()
	s.Remote.APIKey = "sk-1234567890abcdef"
	s.Gemini.APIKey = "short"

	r := s.Redacted()
	assert.Equal(t, "sk-1****cdef", r.Remote.APIKey)
	assert.Equal(t, "****", r.Gemini.APIKey)
	assert.Equal(t, "sk-1234567890abcdef", s.Remote.APIKey)
}

func TestKeys_CoverEveryBackend(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, KeyMode)
	assert.Contains(t, keys, KeyBackend)
	for _, kind := range Backends {
		assert.Contains(t, keys, "backend."+string(kind)+".model")
	}
}

func TestDiff_ShowsOnlyChangedLines(t *testing.T) {
	before := Default()
	after := before
	after.Mode = ModeDirect
	after.Remote.APIKey = "sk-1234567890abcdef"

	d := Diff(before, after)
	assert.Equal(t,
		"- backend.remote.api_key = \n"+
			"+ backend.remote.api_key = sk-1****cdef\n"+
			"- tutor.mode = guided\n"+
			"+ tutor.mode = direct\n",
		d)
	assert.NotContains(t, d, "1234567890")
	assert.Empty(t, Diff(before, before))
}

func TestDiff_SingleChangeInLongRendering(t *testing.T) {
	before := Default()
	require.Greater(t, strings.Count(before.Render(), "\n"), 10)

	after := before
	after.Gemini.Model = "gemini-2.5-pro"
	assert.Equal(t,
		"- backend.gemini.model = gemini-2.0-flash\n"+
			"+ backend.gemini.model = gemini-2.5-pro\n",
		Diff(before, after))
}
