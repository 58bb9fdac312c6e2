package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	slogmulti "github.com/samber/slog-multi"
)

const (
	// MaxLogSize is the maximum size in bytes for the log file (10MB)
	MaxLogSize = 10 * 1024 * 1024

	// DefaultLogDir is the default directory for log files
	DefaultLogDir = "~/.pytutor/logs"

	// DefaultLogFile is the default log file name
	DefaultLogFile = "pytutor.log"
)

// Options controls where log records go.
type Options struct {
	Dir    string
	Level  string
	Stderr bool
}

var (
	// Logger is the global logger instance. It discards everything until
	// InitLogger is called.
	Logger = slog.New(slog.DiscardHandler)

	mu      sync.Mutex
	logFile *os.File
	level   = new(slog.LevelVar)
	stderr  bool
	stop    chan struct{}
)

// InitLogger initializes the logger with a JSON file sink and, when
// requested, a text sink on stderr.
func InitLogger(opts Options) error {
	level.Set(ParseLevel(opts.Level))

	dir := opts.Dir
	if dir == "" {
		dir = DefaultLogDir
	}
	logDir, err := expandPath(dir)
	if err != nil {
		return fmt.Errorf("failed to expand log directory path: %w", err)
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logFilePath := filepath.Join(logDir, DefaultLogFile)

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	mu.Lock()
	if stop != nil {
		close(stop)
	}
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	stderr = opts.Stderr
	setLogger(f)
	stop = make(chan struct{})
	done := stop
	mu.Unlock()

	Logger.Info("Logger initialized", "path", logFilePath)

	go monitorLogSize(logFilePath, done)

	return nil
}

// Live returns a logger that always writes through the current global
// logger, so it keeps working across InitLogger and log rotation.
func Live() *slog.Logger {
	return slog.New(liveHandler{})
}

// liveHandler resolves the global logger's handler on every record and
// replays the attributes and groups added to it.
type liveHandler struct {
	ops []func(slog.Handler) slog.Handler
}

func (h liveHandler) current() slog.Handler {
	mu.Lock()
	hd := Logger.Handler()
	mu.Unlock()
	for _, op := range h.ops {
		hd = op(hd)
	}
	return hd
}

func (h liveHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.current().Enabled(ctx, l)
}

func (h liveHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.current().Handle(ctx, r)
}

func (h liveHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(hd slog.Handler) slog.Handler { return hd.WithAttrs(attrs) })
}

func (h liveHandler) WithGroup(name string) slog.Handler {
	return h.with(func(hd slog.Handler) slog.Handler { return hd.WithGroup(name) })
}

func (h liveHandler) with(op func(slog.Handler) slog.Handler) liveHandler {
	return liveHandler{ops: append(slices.Clip(h.ops), op)}
}

// ParseLevel maps a level name to a slog level; unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// setLogger rebuilds the global logger around the current file. Callers
// hold mu.
func setLogger(f *os.File) {
	handlers := []slog.Handler{
		slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339))
				}
				return a
			},
		}),
	}
	if stderr {
		handlers = append(handlers, slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	Logger = slog.New(slogmulti.Fanout(handlers...))
	slog.SetDefault(Logger)
}

// expandPath expands the ~ to the user's home directory
func expandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// monitorLogSize periodically checks the log file size and rotates if needed
func monitorLogSize(logFilePath string, done <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		mu.Lock()
		f := logFile
		mu.Unlock()
		if f == nil {
			continue
		}

		fileInfo, err := f.Stat()
		if err != nil {
			Logger.Error("Failed to get log file info", "error", err)
			continue
		}

		if fileInfo.Size() >= MaxLogSize {
			rotateLogFile(logFilePath)
		}
	}
}

// rotateLogFile renames the current log file with a timestamp suffix and
// starts a fresh one.
func rotateLogFile(logFilePath string) {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
	}

	timestamp := time.Now().Format("20060102-150405")
	backupPath := fmt.Sprintf("%s.%s", logFilePath, timestamp)

	if err := os.Rename(logFilePath, backupPath); err != nil {
		Logger.Error("Failed to rotate log file", "error", err)
		return
	}

	newLogFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		Logger.Error("Failed to create new log file", "error", err)
		return
	}

	logFile = newLogFile
	setLogger(logFile)

	Logger.Info("Log file rotated", "old", backupPath, "new", logFilePath)
}

// Close properly closes the log file
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if stop != nil {
		close(stop)
		stop = nil
	}
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	Logger = slog.New(slog.DiscardHandler)
}

// LogLLMRequest logs a backend request
func LogLLMRequest(backend string, model string, messageLength int) {
	Logger.Info("LLM Request",
		"backend", backend,
		"model", model,
		"messageLength", messageLength)
}

// LogLLMResponse logs a backend response
func LogLLMResponse(backend string, model string, responseLength int, err error) {
	if err != nil {
		Logger.Error("LLM Response Failed",
			"backend", backend,
			"model", model,
			"error", err)
	} else {
		Logger.Info("LLM Response",
			"backend", backend,
			"model", model,
			"responseLength", responseLength)
	}
}

// LogStage logs one pipeline step
func LogStage(runID, stage, action string) {
	Logger.Debug("Pipeline step", "run", runID, "stage", stage, "action", action)
}

// LogAppStart logs application startup
func LogAppStart(version string) {
	Logger.Info("App Started", "version", version)
}

// LogAppExit logs application exit
func LogAppExit() {
	Logger.Info("App Exited")
}

// LogError logs an error
func LogError(msg string, args ...any) {
	Logger.Error(msg, args...)
}
