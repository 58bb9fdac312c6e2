package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"
)

// Key is the storage key the progress record is kept under.
const Key = "progress"

// ModuleProgress is the saved state of one module.
type ModuleProgress struct {
	Completed   bool      `json:"completed"`
	CompletedAt time.Time `json:"completedAt,omitempty"`
}

// Record is the saved learning progress. Modules are keyed by module number
// in decimal, the way the record has always been serialised.
type Record struct {
	Modules          map[string]ModuleProgress `json:"modules"`
	PracticeAttempts int                       `json:"practiceAttempts"`
}

// CompletedModules returns the numbers of completed modules in ascending
// order. Keys that are not numbers are skipped.
func (r Record) CompletedModules() []int {
	var out []int
	for key, m := range r.Modules {
		if !m.Completed {
			continue
		}
		n, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Parse decodes a stored record. Empty or malformed input yields an empty
// record and a non-nil error describing the problem; callers that only need
// a usable record can ignore the error.
func Parse(raw string) (Record, error) {
	var r Record
	if raw == "" {
		return Record{Modules: map[string]ModuleProgress{}}, nil
	}
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Record{Modules: map[string]ModuleProgress{}}, fmt.Errorf("malformed progress record: %w", err)
	}
	if r.Modules == nil {
		r.Modules = map[string]ModuleProgress{}
	}
	if r.PracticeAttempts < 0 {
		r.PracticeAttempts = 0
	}
	return r, nil
}

// KV is the durable storage the record is persisted to.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Tracker reads and writes the progress record.
type Tracker struct {
	kv     KV
	logger *slog.Logger
	now    func() time.Time
}

// NewTracker creates a tracker over kv.
func NewTracker(kv KV, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{kv: kv, logger: logger, now: time.Now}
}

// Load returns the saved record. It never fails: a missing, unreadable or
// malformed record is logged and replaced by an empty one.
func (t *Tracker) Load(ctx context.Context) Record {
	raw, _, err := t.kv.Get(ctx, Key)
	if err != nil {
		t.logger.Warn("Failed to read progress, using empty record", "error", err)
		return Record{Modules: map[string]ModuleProgress{}}
	}
	r, err := Parse(raw)
	if err != nil {
		t.logger.Warn("Ignoring stored progress", "error", err)
	}
	return r
}

// MarkComplete records module n as completed.
func (t *Tracker) MarkComplete(ctx context.Context, n int) (Record, error) {
	if n <= 0 {
		return Record{}, fmt.Errorf("invalid module number %d", n)
	}
	r := t.Load(ctx)
	r.Modules[strconv.Itoa(n)] = ModuleProgress{Completed: true, CompletedAt: t.now().UTC()}
	return r, t.save(ctx, r)
}

// RecordAttempt increments the practice-attempt counter.
func (t *Tracker) RecordAttempt(ctx context.Context) (Record, error) {
	r := t.Load(ctx)
	r.PracticeAttempts++
	return r, t.save(ctx, r)
}

// Reset removes all saved progress.
func (t *Tracker) Reset(ctx context.Context) error {
	if err := t.kv.Delete(ctx, Key); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	return nil
}

func (t *Tracker) save(ctx context.Context, r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	if err := t.kv.Set(ctx, Key, string(data)); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}
