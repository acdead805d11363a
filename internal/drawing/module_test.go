package drawing

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetkaya/modhost/internal/payload"
	"github.com/ahmetkaya/modhost/internal/progress"
)

type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSink) Publish(event string, data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func encodeTestPNG(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / (size - 1)),
				G: uint8(y * 255 / (size - 1)),
				B: uint8((x + y) * 255 / (2*size - 2)),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func presetStore(t *testing.T, name string, blob []byte) payload.Store {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), blob, 0o644))
	store, err := payload.NewDirStore(dir)
	require.NoError(t, err)
	return store
}

func TestDecodePreset(t *testing.T) {
	t.Run("valid png", func(t *testing.T) {
		preset, err := DecodePreset(encodeTestPNG(t, 32))
		require.NoError(t, err)

		colors, targets, weights, err := preset.Scaled(Settings{Sidelen: 16, ProximityImportance: 8})
		require.NoError(t, err)
		assert.Len(t, colors, CanvasSize*CanvasSize)
		assert.Len(t, targets, 16*16)
		assert.Len(t, weights, 16*16)
		for _, w := range weights {
			assert.Positive(t, w)
		}
	})

	t.Run("garbage payload", func(t *testing.T) {
		_, err := DecodePreset([]byte("not an image"))
		assert.ErrorContains(t, err, "failed to decode preset image")
	})

	t.Run("sidelen out of range", func(t *testing.T) {
		preset, err := DecodePreset(encodeTestPNG(t, 8))
		require.NoError(t, err)
		_, _, _, err = preset.Scaled(Settings{Sidelen: CanvasSize + 1})
		assert.ErrorContains(t, err, "out of range")
	})
}

func TestModuleInit(t *testing.T) {
	store := presetStore(t, "drawing_bg.wasm", encodeTestPNG(t, 32))
	sink := &recordingSink{}

	cfg := Config{
		Settings:       Settings{Sidelen: 16, ProximityImportance: 8},
		Params:         DefaultParams,
		MaxGenerations: 4,
	}
	mod, err := NewFactory(store, sink, cfg)(context.Background())
	require.NoError(t, err)

	require.NoError(t, mod.Init(context.Background(), "./drawing_bg.wasm"))

	events := sink.snapshot()
	require.NotEmpty(t, events)
	assert.Equal(t, progress.EventDone, events[len(events)-1])
}

func TestModuleInitMissingPayload(t *testing.T) {
	store := presetStore(t, "drawing_bg.wasm", encodeTestPNG(t, 32))
	mod, err := NewFactory(store, nil, DefaultConfig)(context.Background())
	require.NoError(t, err)

	assert.Error(t, mod.Init(context.Background(), "./absent_bg.wasm"))
}

func TestModuleInitMalformedPayload(t *testing.T) {
	store := presetStore(t, "drawing_bg.wasm", []byte("garbage"))
	mod, err := NewFactory(store, nil, DefaultConfig)(context.Background())
	require.NoError(t, err)

	assert.ErrorContains(t, mod.Init(context.Background(), "./drawing_bg.wasm"), "failed to decode preset image")
}

func TestModuleInitCancellation(t *testing.T) {
	store := presetStore(t, "drawing_bg.wasm", encodeTestPNG(t, 32))
	sink := &recordingSink{}
	cfg := Config{
		Settings:       Settings{Sidelen: 16, ProximityImportance: 8},
		Params:         DefaultParams,
		MaxGenerations: 64,
	}
	mod, err := NewFactory(store, sink, cfg)(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = mod.Init(ctx, "./drawing_bg.wasm")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, sink.snapshot(), progress.EventFailed)
}
