// Package bootstrap hands a freshly started worker over to its module.
//
// A worker's entire startup sequence is linear: resolve the module
// identifier from the invocation parameters, load that module through the
// registry, derive the name of its companion binary payload, and invoke
// the module's initialization entry point with that name. Any failure is
// logged once and surfaced unchanged to the caller; there is no retry and
// no fallback module, because a worker that cannot bootstrap cannot do its
// job at all.
package bootstrap

import (
	"context"

	"github.com/ahmetkaya/modhost/internal/ctxlog"
	"github.com/ahmetkaya/modhost/internal/params"
	"github.com/ahmetkaya/modhost/internal/payload"
	"github.com/ahmetkaya/modhost/internal/registry"
)

// diagMessage tags every bootstrap failure log entry so operators can find
// them regardless of which stage failed.
const diagMessage = "Worker bootstrap failed."

// Run performs the one-shot bootstrap for a worker.
//
// Initialization is never attempted when the load fails. On success,
// control has passed into the loaded module and the bootstrapper has no
// further responsibility. The returned error is exactly the error produced
// by the failing stage, not a wrapped copy, so the hosting environment can
// match on it.
func Run(ctx context.Context, reg *registry.Registry, p params.Params) error {
	logger := ctxlog.FromContext(ctx)

	name := p.Resolve(params.ScriptKey, params.DefaultModule)
	logger.Debug("Resolved worker module identifier.", "module", name)

	mod, err := reg.Load(ctx, name)
	if err != nil {
		logger.Error(diagMessage, "stage", "load", "module", name, "error", err)
		return err
	}

	payloadName := payload.CompanionName(name)
	logger.Debug("Derived companion payload identifier.", "module", name, "payload", payloadName)

	if err := mod.Init(ctx, payloadName); err != nil {
		logger.Error(diagMessage, "stage", "init", "module", name, "payload", payloadName, "error", err)
		return err
	}

	logger.Info("Worker module initialized.", "module", name, "payload", payloadName)
	return nil
}
