// Package wasmmod runs compiled WebAssembly compute modules inside a
// worker. The module's companion payload is the .wasm artifact itself:
// initialization fetches it from the payload store, compiles it, and calls
// its exported entry function.
package wasmmod

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"

	"github.com/ahmetkaya/modhost/internal/ctxlog"
	"github.com/ahmetkaya/modhost/internal/payload"
	"github.com/ahmetkaya/modhost/internal/registry"
)

// DefaultEntry is the exported function invoked after instantiation when a
// module definition does not name one.
const DefaultEntry = "init"

// Module is a wazero-backed loadable module.
type Module struct {
	store payload.Store
	entry string
}

// NewFactory returns a registry factory producing wazero-backed modules.
// entry may be empty, in which case DefaultEntry is used.
func NewFactory(store payload.Store, entry string) registry.Factory {
	if entry == "" {
		entry = DefaultEntry
	}
	return func(ctx context.Context) (registry.Module, error) {
		if store == nil {
			return nil, fmt.Errorf("wasm module requires a payload store")
		}
		return &Module{store: store, entry: entry}, nil
	}
}

// Init fetches, compiles, and runs the module's wasm payload.
//
// The runtime lives only for the duration of the entry call; modhost
// workers are one-shot, so there is nothing to keep resident afterwards.
func (m *Module) Init(ctx context.Context, payloadName string) error {
	logger := ctxlog.FromContext(ctx)

	wasmBin, err := m.store.Fetch(ctx, payloadName)
	if err != nil {
		return err
	}
	logger.Debug("Fetched wasm payload.", "payload", payloadName, "bytes", len(wasmBin))

	r := wazero.NewRuntime(ctx)
	defer func() {
		if closeErr := r.Close(context.Background()); closeErr != nil {
			logger.Warn("Failed to close wasm runtime.", "error", closeErr)
		}
	}()

	compiled, err := r.CompileModule(ctx, wasmBin)
	if err != nil {
		return fmt.Errorf("failed to compile wasm payload %q: %w", payloadName, err)
	}

	instance, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(payloadName))
	if err != nil {
		return fmt.Errorf("failed to instantiate wasm payload %q: %w", payloadName, err)
	}
	defer instance.Close(context.Background())

	fn := instance.ExportedFunction(m.entry)
	if fn == nil {
		return fmt.Errorf("wasm payload %q does not export entry function %q", payloadName, m.entry)
	}

	logger.Debug("Calling wasm entry function.", "payload", payloadName, "entry", m.entry)
	if _, err := fn.Call(ctx); err != nil {
		return fmt.Errorf("wasm entry %q failed: %w", m.entry, err)
	}
	return nil
}
