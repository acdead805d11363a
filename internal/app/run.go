package app

import (
	"context"
	"fmt"

	"github.com/ahmetkaya/modhost/internal/ctxlog"
	"github.com/ahmetkaya/modhost/internal/worker"
)

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	defer func() {
		for _, closeFn := range a.closers {
			closeFn()
		}
	}()

	if appConfig.HealthcheckPort > 0 {
		go a.startHealthcheckServer(appConfig.HealthcheckPort)
	}

	if len(a.model.Workers) == 0 {
		a.logger.Warn("No workers configured, nothing to run.")
		return nil
	}

	a.logger.Info("🚀 Starting workers...", "groups", len(a.model.Workers))
	host := worker.NewHost(a.registry, a.model.Workers)
	if err := host.Run(ctx); err != nil {
		return fmt.Errorf("worker host failed: %w", err)
	}
	a.logger.Info("🏁 All workers finished.")

	a.logger.Debug("App.Run method finished.")
	return nil
}
