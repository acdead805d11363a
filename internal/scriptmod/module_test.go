package scriptmod

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "module.go")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestScriptModuleInit(t *testing.T) {
	path := writeScript(t, `package main

import "errors"

func Init(payloadName string) error {
	if payloadName == "" {
		return errors.New("empty payload name")
	}
	return nil
}
`)

	mod, err := NewFactory(path)(context.Background())
	require.NoError(t, err)

	assert.NoError(t, mod.Init(context.Background(), "./custom_bg.wasm"))

	err = mod.Init(context.Background(), "")
	assert.ErrorContains(t, err, "empty payload name")
}

func TestScriptModuleLoadFailures(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewFactory(filepath.Join(t.TempDir(), "absent.go"))(context.Background())
		assert.Error(t, err)
	})

	t.Run("missing Init symbol", func(t *testing.T) {
		path := writeScript(t, `package main

func Setup(payloadName string) error { return nil }
`)
		_, err := NewFactory(path)(context.Background())
		assert.ErrorContains(t, err, "must define Init")
	})

	t.Run("wrong Init signature", func(t *testing.T) {
		path := writeScript(t, `package main

func Init(a, b string) error { return nil }
`)
		_, err := NewFactory(path)(context.Background())
		assert.ErrorContains(t, err, "exactly one string argument")
	})
}
