package settings

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Mode is the tutoring style.
type Mode string

const (
	// ModeGuided is the Socratic, hint-driven style.
	ModeGuided Mode = "guided"
	// ModeDirect gives the solution first.
	ModeDirect Mode = "direct"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeGuided, ModeDirect:
		return true
	}
	return false
}

// BackendKind selects the LLM execution strategy.
type BackendKind string

const (
	// BackendEngine is the in-process model engine.
	BackendEngine BackendKind = "engine"
	// BackendLocal is a local HTTP chat server speaking the /api/chat protocol.
	BackendLocal BackendKind = "local"
	// BackendRemote is an OpenAI-compatible chat-completions API.
	BackendRemote BackendKind = "remote"
	// BackendGemini is the Gemini API.
	BackendGemini BackendKind = "gemini"
)

// Backends lists every kind in display order.
var Backends = []BackendKind{BackendEngine, BackendLocal, BackendRemote, BackendGemini}

// Valid reports whether k is a known backend kind.
func (k BackendKind) Valid() bool {
	switch k {
	case BackendEngine, BackendLocal, BackendRemote, BackendGemini:
		return true
	}
	return false
}

// Endpoint is the per-backend configuration triple. Not every backend uses
// every field: the engine only needs a model, Gemini has no base URL.
type Endpoint struct {
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`
	APIKey  string `yaml:"api_key,omitempty"`
}

// Settings is the durable tutor configuration.
type Settings struct {
	Mode    Mode        `yaml:"mode"`
	Backend BackendKind `yaml:"backend"`
	Engine  Endpoint    `yaml:"engine"`
	Local   Endpoint    `yaml:"local"`
	Remote  Endpoint    `yaml:"remote"`
	Gemini  Endpoint    `yaml:"gemini"`
}

// Default returns the settings used before the user changes anything.
func Default() Settings {
	return Settings{
		Mode:    ModeGuided,
		Backend: BackendLocal,
		Engine: Endpoint{
			Model: "Llama-3.2-1B-Instruct-q4f16_1-MLC",
		},
		Local: Endpoint{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.2:latest",
		},
		Remote: Endpoint{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Gemini: Endpoint{
			Model: "gemini-2.0-flash",
		},
	}
}

// Endpoint returns the endpoint configured for kind.
func (s Settings) Endpoint(kind BackendKind) Endpoint {
	switch kind {
	case BackendEngine:
		return s.Engine
	case BackendLocal:
		return s.Local
	case BackendRemote:
		return s.Remote
	case BackendGemini:
		return s.Gemini
	}
	return Endpoint{}
}

// Active returns the endpoint of the selected backend.
func (s Settings) Active() Endpoint {
	return s.Endpoint(s.Backend)
}

// Validate checks that the settings can drive a dispatch.
func (s Settings) Validate() error {
	if !s.Mode.Valid() {
		return fmt.Errorf("unknown mode %q (want guided or direct)", s.Mode)
	}
	if !s.Backend.Valid() {
		return fmt.Errorf("unknown backend %q", s.Backend)
	}
	for _, kind := range []BackendKind{BackendLocal, BackendRemote} {
		raw := s.Endpoint(kind).BaseURL
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid %s base URL: %w", kind, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid %s base URL %q: scheme must be http or https", kind, raw)
		}
	}
	return nil
}

// Storage keys. Per-backend keys are backend.<kind>.<field>.
const (
	KeyMode    = "tutor.mode"
	KeyBackend = "tutor.backend"
)

const (
	fieldBaseURL = "base_url"
	fieldModel   = "model"
	fieldAPIKey  = "api_key"
)

func backendKey(kind BackendKind, field string) string {
	return "backend." + string(kind) + "." + field
}

// Pairs flattens the settings into storage keys.
func (s Settings) Pairs() map[string]string {
	out := map[string]string{
		KeyMode:    string(s.Mode),
		KeyBackend: string(s.Backend),
	}
	for _, kind := range Backends {
		ep := s.Endpoint(kind)
		out[backendKey(kind, fieldBaseURL)] = ep.BaseURL
		out[backendKey(kind, fieldModel)] = ep.Model
		out[backendKey(kind, fieldAPIKey)] = ep.APIKey
	}
	return out
}

// Keys returns every settable key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(Default().Pairs()))
	for k := range Default().Pairs() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns one value by storage key. The short forms "mode" and
// "backend" are accepted as well as "<kind>.<field>" without the
// "backend." prefix.
func (s *Settings) Set(key, value string) error {
	key = strings.TrimSpace(key)
	switch key {
	case KeyMode, "mode":
		s.Mode = Mode(value)
		return nil
	case KeyBackend, "backend":
		s.Backend = BackendKind(value)
		return nil
	}

	parts := strings.Split(strings.TrimPrefix(key, "backend."), ".")
	if len(parts) != 2 {
		return fmt.Errorf("unknown settings key %q", key)
	}
	ep := s.endpointRef(BackendKind(parts[0]))
	if ep == nil {
		return fmt.Errorf("unknown backend %q in key %q", parts[0], key)
	}
	switch parts[1] {
	case fieldBaseURL:
		ep.BaseURL = strings.TrimRight(value, "/")
	case fieldModel:
		ep.Model = value
	case fieldAPIKey:
		ep.APIKey = value
	default:
		return fmt.Errorf("unknown field %q in key %q", parts[1], key)
	}
	return nil
}

func (s *Settings) endpointRef(kind BackendKind) *Endpoint {
	switch kind {
	case BackendEngine:
		return &s.Engine
	case BackendLocal:
		return &s.Local
	case BackendRemote:
		return &s.Remote
	case BackendGemini:
		return &s.Gemini
	}
	return nil
}

// apply overlays stored pairs onto s. Unknown keys are ignored so that old
// stores keep loading.
func (s *Settings) apply(pairs map[string]string) {
	for key, value := range pairs {
		_ = s.Set(key, value)
	}
}

// Redacted returns a copy safe to print, with credentials masked.
func (s Settings) Redacted() Settings {
	for _, kind := range Backends {
		if ep := s.endpointRef(kind); ep != nil && ep.APIKey != "" {
			ep.APIKey = mask(ep.APIKey)
		}
	}
	return s
}

func mask(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****" + secret[len(secret)-4:]
}
