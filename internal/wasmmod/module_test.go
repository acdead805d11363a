package wasmmod

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetkaya/modhost/internal/payload"
)

// minimalModule is a hand-assembled wasm binary exporting a no-op
// function named "init": type () -> (), one body, empty code.
var minimalModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic + version
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00, // type section: () -> ()
	0x03, 0x02, 0x01, 0x00, // function section: one func, type 0
	0x07, 0x08, 0x01, 0x04, 'i', 'n', 'i', 't', 0x00, 0x00, // export "init"
	0x0a, 0x04, 0x01, 0x02, 0x00, 0x0b, // code section: empty body
}

func newStore(t *testing.T, name string, blob []byte) payload.Store {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), blob, 0o644))
	store, err := payload.NewDirStore(dir)
	require.NoError(t, err)
	return store
}

func TestInitRunsExportedEntry(t *testing.T) {
	store := newStore(t, "custom_bg.wasm", minimalModule)

	factory := NewFactory(store, "")
	mod, err := factory(context.Background())
	require.NoError(t, err)

	assert.NoError(t, mod.Init(context.Background(), "./custom_bg.wasm"))
}

func TestInitMissingEntryExport(t *testing.T) {
	store := newStore(t, "custom_bg.wasm", minimalModule)

	factory := NewFactory(store, "start")
	mod, err := factory(context.Background())
	require.NoError(t, err)

	err = mod.Init(context.Background(), "./custom_bg.wasm")
	assert.ErrorContains(t, err, `does not export entry function "start"`)
}

func TestInitInvalidPayload(t *testing.T) {
	store := newStore(t, "garbage_bg.wasm", []byte("not wasm at all"))

	factory := NewFactory(store, "")
	mod, err := factory(context.Background())
	require.NoError(t, err)

	err = mod.Init(context.Background(), "./garbage_bg.wasm")
	assert.ErrorContains(t, err, "failed to compile wasm payload")
}

func TestInitMissingPayload(t *testing.T) {
	store := newStore(t, "custom_bg.wasm", minimalModule)

	factory := NewFactory(store, "")
	mod, err := factory(context.Background())
	require.NoError(t, err)

	assert.Error(t, mod.Init(context.Background(), "./absent_bg.wasm"))
}

func TestFactoryRequiresStore(t *testing.T) {
	factory := NewFactory(nil, "")
	_, err := factory(context.Background())
	assert.ErrorContains(t, err, "payload store")
}
