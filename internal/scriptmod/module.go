// Package scriptmod runs interpreted Go compute modules inside a worker.
// A script module is a single .go source file evaluated with yaegi; it
// must define
//
//	func Init(payloadName string) error
//
// which becomes the module's initialization entry point. Interpreting the
// source and resolving Init happen at load time, so a broken script
// surfaces as a load error before initialization is ever attempted.
package scriptmod

import (
	"context"
	"fmt"
	"reflect"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/ahmetkaya/modhost/internal/ctxlog"
	"github.com/ahmetkaya/modhost/internal/registry"
)

// entryFuncName is the symbol every script module must define.
const entryFuncName = "Init"

// Module is a yaegi-backed loadable module.
type Module struct {
	path string
	fn   reflect.Value
}

// NewFactory returns a registry factory that interprets the Go source file
// at path and resolves its Init entry point.
func NewFactory(path string) registry.Factory {
	return func(ctx context.Context) (registry.Module, error) {
		i := interp.New(interp.Options{})
		if err := i.Use(stdlib.Symbols); err != nil {
			return nil, fmt.Errorf("script module %s: %w", path, err)
		}
		if _, err := i.EvalPath(path); err != nil {
			return nil, fmt.Errorf("failed to interpret script module %s: %w", path, err)
		}
		fnValue, err := i.Eval(entryFuncName)
		if err != nil {
			return nil, fmt.Errorf("script module %s must define %s(string) error: %w", path, entryFuncName, err)
		}
		if fnValue.Kind() != reflect.Func {
			return nil, fmt.Errorf("script module %s: %s is not a function", path, entryFuncName)
		}
		fnType := fnValue.Type()
		if fnType.NumIn() != 1 || fnType.In(0).Kind() != reflect.String {
			return nil, fmt.Errorf("script module %s: %s must accept exactly one string argument", path, entryFuncName)
		}
		return &Module{path: path, fn: fnValue}, nil
	}
}

// Init invokes the script's entry function with the payload name.
func (m *Module) Init(ctx context.Context, payloadName string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Calling script entry function.", "script", m.path, "payload", payloadName)

	results := m.fn.Call([]reflect.Value{reflect.ValueOf(payloadName)})
	if len(results) == 0 {
		return nil
	}
	last := results[len(results)-1]
	if last.IsValid() && !last.IsZero() {
		if err, ok := last.Interface().(error); ok {
			return err
		}
	}
	return nil
}
