package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/gridbuild/internal/config"
	"github.com/vk/gridbuild/internal/ctxlog"
	"github.com/vk/gridbuild/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	registry  *registry.Registry
	loader    config.Loader
	converter config.Converter
}

// NewApp is the constructor for the main application. It returns an App
// with its own isolated logger and registry. Without modules the core
// modules are registered.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, converter config.Converter, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = CoreModules
	}
	reg := registry.New(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "kinds", reg.Kinds())

	return &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		registry:  reg,
		loader:    loader,
		converter: converter,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Load reads the build files and checks that every step kind they use is
// registered.
func (a *App) Load(ctx context.Context) (*config.Model, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	model, err := a.loader.Load(ctx, a.config.Variables, a.config.BuildPath)
	if err != nil {
		return nil, configError(err)
	}
	a.logger.Debug("Build files loaded.", "root", model.Root, "tasks", len(model.Tasks))

	if err := a.registry.ValidateModel(ctx, model); err != nil {
		return nil, configError(err)
	}
	return model, nil
}
