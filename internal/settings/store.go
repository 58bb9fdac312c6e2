package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// KV is the durable storage the settings are persisted to.
type KV interface {
	List(ctx context.Context, prefix string) (map[string]string, error)
	SetMany(ctx context.Context, pairs map[string]string) error
}

// Store holds the active settings. Reads are snapshots; every change goes
// through Update so that validation and persistence happen in one place.
type Store struct {
	mu      sync.RWMutex
	kv      KV
	current Settings
	logger  *slog.Logger
}

// Open loads the persisted settings on top of defaults. Stored values that
// do not validate are discarded in favour of the defaults.
func Open(ctx context.Context, kv KV, defaults Settings, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	stored := make(map[string]string)
	for _, prefix := range []string{"tutor.", "backend."} {
		pairs, err := kv.List(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		for k, v := range pairs {
			stored[k] = v
		}
	}

	current := defaults
	current.apply(stored)
	if err := current.Validate(); err != nil {
		logger.Warn("Stored settings are invalid, using defaults", "error", err)
		current = defaults
	}

	return &Store{kv: kv, current: current, logger: logger}, nil
}

// Snapshot returns a copy of the active settings.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies fn to a copy of the active settings, validates the result,
// persists the changed keys and only then makes it active. On any error the
// active settings are left untouched.
func (s *Store) Update(ctx context.Context, fn func(*Settings) error) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	if err := fn(&next); err != nil {
		return s.current, err
	}
	if err := next.Validate(); err != nil {
		return s.current, err
	}

	changed := diffPairs(s.current.Pairs(), next.Pairs())
	if err := s.kv.SetMany(ctx, changed); err != nil {
		return s.current, fmt.Errorf("failed to persist settings: %w", err)
	}

	if len(changed) > 0 {
		keys := make([]string, 0, len(changed))
		for k := range changed {
			keys = append(keys, k)
		}
		s.logger.Info("Settings updated", "keys", strings.Join(keys, ","))
	}
	s.current = next
	return next, nil
}

// SetValue is a convenience wrapper around Update for a single key.
func (s *Store) SetValue(ctx context.Context, key, value string) (Settings, error) {
	return s.Update(ctx, func(next *Settings) error {
		return next.Set(key, value)
	})
}

func diffPairs(before, after map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range after {
		if before[k] != v {
			out[k] = v
		}
	}
	return out
}
