package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// ErrUnknownModule is returned by Load when no factory is registered for
// the requested identifier. There is deliberately no fallback module.
var ErrUnknownModule = errors.New("unknown module")

// Module is the contract every loadable module must satisfy: a single
// initialization entry point that receives the name of the module's
// companion binary payload and either completes or fails.
type Module interface {
	Init(ctx context.Context, payloadName string) error
}

// Factory constructs a Module. Construction is the "load" half of the
// bootstrap; anything that can go wrong before initialization (reading a
// module source, resolving its entry point) belongs here.
type Factory func(ctx context.Context) (Module, error)

// Registry holds the registered module factories for a single application
// instance.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Factory
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		modules: make(map[string]Factory),
	}
}

// RegisterModule registers a factory under a module identifier.
// Registering the same identifier twice is a programmer error.
func (r *Registry) RegisterModule(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[name]; exists {
		panic(fmt.Sprintf("module with identifier '%s' already registered", name))
	}
	slog.Debug("Registering module.", "name", name)
	r.modules[name] = factory
}

// Has reports whether a factory is registered for the identifier.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.modules[name]
	return ok
}

// Names returns the registered identifiers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load resolves an identifier to a constructed Module. An unregistered
// identifier or a failing factory is a load error; the caller decides how
// loudly to fail.
func (r *Registry) Load(ctx context.Context, name string) (Module, error) {
	r.mu.RLock()
	factory, ok := r.modules[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModule, name)
	}
	return factory(ctx)
}
