package app

import (
	"fmt"

	"github.com/ahmetkaya/modhost/internal/config"
	"github.com/ahmetkaya/modhost/internal/drawing"
	"github.com/ahmetkaya/modhost/internal/params"
	"github.com/ahmetkaya/modhost/internal/scriptmod"
	"github.com/ahmetkaya/modhost/internal/wasmmod"
)

// registerModules populates the registry with the built-in drawing module
// and every module declared in the host configuration.
func (a *App) registerModules() {
	// --- Module registration section ---
	a.registry.RegisterModule(params.DefaultModule,
		drawing.NewFactory(a.store, a.sink, drawing.DefaultConfig))

	for _, def := range a.model.Modules {
		switch def.Runtime {
		case config.RuntimeWasm:
			a.registry.RegisterModule(def.Name, wasmmod.NewFactory(a.store, def.Entry))
		case config.RuntimeScript:
			a.registry.RegisterModule(def.Name, scriptmod.NewFactory(def.Path))
		}
	}
	// --- Module registration section ---
}

// validateWorkers checks that every configured worker resolves to a
// registered module, so bad configuration fails at startup instead of
// inside a spawned worker.
func (a *App) validateWorkers() error {
	for _, def := range a.model.Workers {
		name := def.Params.Resolve(params.ScriptKey, params.DefaultModule)
		if !a.registry.Has(name) {
			return fmt.Errorf("worker %q selects unregistered module %q (registered: %v)",
				def.Name, name, a.registry.Names())
		}
	}
	return nil
}
