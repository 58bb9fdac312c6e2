// Package app holds the application state shared by every command: the
// durable store, settings, progress, the backend dispatcher and the tutor.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/warm3snow/pytutor/internal/config"
	"github.com/warm3snow/pytutor/internal/llm"
	"github.com/warm3snow/pytutor/internal/logging"
	"github.com/warm3snow/pytutor/internal/progress"
	"github.com/warm3snow/pytutor/internal/settings"
	"github.com/warm3snow/pytutor/internal/storage"
	"github.com/warm3snow/pytutor/internal/tutor"
)

// App is the explicit application state passed to commands.
type App struct {
	Config     *config.Config
	Store      *storage.Store
	Settings   *settings.Store
	Progress   *progress.Tracker
	Dispatcher *llm.Dispatcher
	Tutor      *tutor.Tutor

	logger *slog.Logger
}

type options struct {
	loader llm.EngineLoader
	gemini llm.GeneratorFactory
	logger *slog.Logger
}

// Option customises New.
type Option func(*options)

// WithEngineLoader installs the runtime used to load in-process models.
func WithEngineLoader(loader llm.EngineLoader) Option {
	return func(o *options) { o.loader = loader }
}

// WithGeminiFactory replaces the Gemini client constructor.
func WithGeminiFactory(f llm.GeneratorFactory) Option {
	return func(o *options) { o.gemini = f }
}

// WithLogger sets the logger; logging.Live is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New opens the store and wires every component from cfg.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{logger: logging.Live()}
	for _, opt := range opts {
		opt(&o)
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	st, err := settings.Open(ctx, store, cfg.Defaults, o.logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	dispatcher := llm.NewDispatcher(st, llm.NewClient(cfg.HTTP.Timeout()), llm.NewEngineHolder(o.loader), o.gemini)
	tracker := progress.NewTracker(store, o.logger)

	tu, err := tutor.New(dispatcher, st, tracker)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to build tutor: %w", err)
	}

	return &App{
		Config:     cfg,
		Store:      store,
		Settings:   st,
		Progress:   tracker,
		Dispatcher: dispatcher,
		Tutor:      tu,
		logger:     o.logger,
	}, nil
}

// LoadEngine loads the configured in-process model, reporting progress.
func (a *App) LoadEngine(ctx context.Context, report func(llm.LoadProgress)) error {
	model := a.Settings.Snapshot().Engine.Model
	if _, err := a.Dispatcher.Engines().Load(ctx, model, report); err != nil {
		return err
	}
	a.logger.Info("Engine loaded", "model", model)
	return nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
