package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ahmetkaya/modhost/internal/config"
	"github.com/ahmetkaya/modhost/internal/ctxlog"
	"github.com/ahmetkaya/modhost/internal/payload"
	"github.com/ahmetkaya/modhost/internal/progress"
	"github.com/ahmetkaya/modhost/internal/registry"
)

// App encapsulates the daemon's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	model    *config.Model
	store    payload.Store
	sink     progress.Sink
	closers  []func()
}

// NewApp constructs a fully initialized App: logger, loaded host config,
// payload store, progress sink, and a populated, validated module
// registry. A failure to assemble any of these is a fatal startup error,
// so NewApp panics; the CLI entrypoint recovers and exits cleanly.
func NewApp(outW io.Writer, appConfig *Config) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := config.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		panic(fmt.Errorf("failed to load host configuration: %w", err))
	}

	app := &App{
		outW:     outW,
		logger:   logger,
		registry: registry.New(),
		model:    model,
		sink:     progress.Discard{},
	}

	if model.Payloads != nil {
		store, err := newPayloadStore(ctx, model.Payloads)
		if err != nil {
			panic(fmt.Errorf("failed to configure payload store: %w", err))
		}
		app.store = store
	}

	if model.Progress != nil {
		emitter, err := progress.Connect(ctx, progress.EmitterConfig{
			URL:       model.Progress.URL,
			Namespace: model.Progress.Namespace,
			Timeout:   model.Progress.Timeout,
		})
		if err != nil {
			panic(fmt.Errorf("failed to connect progress gateway: %w", err))
		}
		app.sink = emitter
		app.closers = append(app.closers, emitter.Close)
	}

	app.registerModules()
	logger.Debug("All modules registered.", "modules", app.registry.Names())

	if err := app.validateWorkers(); err != nil {
		// A worker naming an unregistered module is a configuration error
		// that would otherwise only surface mid-run.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return app
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// newPayloadStore builds the configured payload store backend.
func newPayloadStore(ctx context.Context, cfg *config.PayloadConfig) (payload.Store, error) {
	switch cfg.Backend {
	case config.BackendDir:
		return payload.NewDirStore(cfg.Path)
	case config.BackendS3:
		store, err := payload.NewS3Store(payload.S3Config{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
			Prefix:    cfg.Prefix,
		})
		if err != nil {
			return nil, err
		}
		if err := store.CheckBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown payload backend %q", cfg.Backend)
	}
}
