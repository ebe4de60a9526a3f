package app

import (
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/vk/framegraph/internal/config"
	"github.com/vk/framegraph/internal/engine"
	"github.com/vk/framegraph/internal/publish"
	"github.com/vk/framegraph/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	loader   config.Loader

	publisher publish.Publisher

	// engine is read by the health check while Run replaces it.
	engine     atomic.Pointer[engine.Engine]
	frames     atomic.Uint64
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns an App
// with its own isolated logger and a registry whose catalog holds libs, or
// the compiled-in libraries when none are given.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, libs ...registry.Library) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	if len(libs) == 0 {
		libs = coreLibraries
	}
	reg := registry.New(libs...)
	logger.Debug("Pass library catalog ready.", "libraries", reg.Libraries())

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		loader:   loader,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Engine returns the engine built by the last Run, or nil.
func (a *App) Engine() *engine.Engine {
	return a.engine.Load()
}

// Frames returns the number of frames completed by Run.
func (a *App) Frames() uint64 {
	return a.frames.Load()
}

// SetPublisher overrides the publisher built from PublishURL. Run closes it
// when rendering ends.
func (a *App) SetPublisher(p publish.Publisher) {
	a.publisher = p
}
