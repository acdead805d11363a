// Package worker spawns and supervises worker instances. Each instance is
// one run of the module bootstrapper; the host owns everything the
// bootstrapper deliberately does not: concurrency, restart policy, and
// deciding when a failure takes the whole host down.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ahmetkaya/modhost/internal/bootstrap"
	"github.com/ahmetkaya/modhost/internal/config"
	"github.com/ahmetkaya/modhost/internal/ctxlog"
	"github.com/ahmetkaya/modhost/internal/registry"
)

// maxRestarts bounds the on-failure policy so a module that can never
// initialize does not respawn forever.
const maxRestarts = 3

// restartDelay spaces restart attempts. Variable so tests can shorten it.
var restartDelay = time.Second

// Host runs the configured worker groups to completion.
type Host struct {
	reg     *registry.Registry
	workers []*config.WorkerDef
}

// NewHost creates a host for the given worker definitions.
func NewHost(reg *registry.Registry, workers []*config.WorkerDef) *Host {
	return &Host{reg: reg, workers: workers}
}

// Run spawns every configured instance and waits for all of them. The
// first instance failure (after its restart budget, if any) cancels the
// remaining instances and is returned.
func (h *Host) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errChan := make(chan error, 1)

	total := 0
	for _, def := range h.workers {
		for i := 0; i < def.Count; i++ {
			total++
			wg.Add(1)
			go func(def *config.WorkerDef) {
				defer wg.Done()
				if err := h.runInstance(runCtx, def); err != nil {
					select {
					case errChan <- fmt.Errorf("worker %q: %w", def.Name, err):
					default:
					}
					cancel()
				}
			}(def)
		}
	}

	logger.Info("Worker instances started.", "count", total)
	wg.Wait()

	select {
	case err := <-errChan:
		return err
	default:
		logger.Info("All worker instances finished.")
		return nil
	}
}

// runInstance bootstraps one worker instance, applying its restart policy.
func (h *Host) runInstance(ctx context.Context, def *config.WorkerDef) error {
	instanceID := uuid.New().String()
	instanceCtx := ctxlog.With(ctx, "worker", def.Name, "instance", instanceID)
	logger := ctxlog.FromContext(instanceCtx)
	logger.Debug("Worker instance starting.", "query", def.Params.Encode())

	attempts := 1
	if def.Restart == config.RestartOnFailure {
		attempts += maxRestarts
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = bootstrap.Run(instanceCtx, h.reg, def.Params)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			// The host is shutting down; don't burn restart attempts on it.
			return err
		}
		if attempt < attempts {
			logger.Warn("Worker instance failed, restarting.",
				"attempt", attempt, "remaining", attempts-attempt, "error", err)
			select {
			case <-ctx.Done():
				return err
			case <-time.After(restartDelay):
			}
		}
	}
	return err
}
