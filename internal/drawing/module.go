package drawing

import (
	"context"
	"fmt"

	"github.com/ahmetkaya/modhost/internal/ctxlog"
	"github.com/ahmetkaya/modhost/internal/payload"
	"github.com/ahmetkaya/modhost/internal/progress"
	"github.com/ahmetkaya/modhost/internal/registry"
)

// Config bundles the knobs for a registered drawing module.
type Config struct {
	Settings Settings
	Params   Params
	// MaxGenerations bounds a run; the optimizer also stops early once a
	// generation applies no swaps.
	MaxGenerations int
}

// DefaultConfig is used for the default module registration.
var DefaultConfig = Config{
	Settings:       DefaultSettings,
	Params:         DefaultParams,
	MaxGenerations: 256,
}

// Module runs one drawing optimization per worker. Its companion payload
// is the preset image.
type Module struct {
	store payload.Store
	sink  progress.Sink
	cfg   Config
}

// NewFactory returns a registry factory for the drawing module.
func NewFactory(store payload.Store, sink progress.Sink, cfg Config) registry.Factory {
	return func(ctx context.Context) (registry.Module, error) {
		if store == nil {
			return nil, fmt.Errorf("drawing module requires a payload store")
		}
		if sink == nil {
			sink = progress.Discard{}
		}
		return &Module{store: store, sink: sink, cfg: cfg}, nil
	}
}

// Init fetches and decodes the preset payload, then runs swap generations
// until convergence, the generation cap, or cancellation. Assignment
// updates stream to the progress sink after every productive generation.
func (m *Module) Init(ctx context.Context, payloadName string) error {
	logger := ctxlog.FromContext(ctx)

	data, err := m.store.Fetch(ctx, payloadName)
	if err != nil {
		return err
	}

	preset, err := DecodePreset(data)
	if err != nil {
		return err
	}

	colors, targets, weights, err := preset.Scaled(m.cfg.Settings)
	if err != nil {
		return err
	}

	state := NewState(m.cfg.Settings, colors, targets, weights)
	pixelData := InitCanvas(0)
	swapsPerGeneration := SwapsPerGenerationPerPixel * m.cfg.Settings.Sidelen * m.cfg.Settings.Sidelen

	var prev []int
	frame := uint32(0)
	for gen := 0; gen < m.cfg.MaxGenerations; gen++ {
		if err := ctx.Err(); err != nil {
			m.sink.Publish(progress.EventFailed, map[string]any{
				"payload": payloadName,
				"error":   err.Error(),
			})
			return err
		}

		assignments := state.Step(colors, pixelData, frame, swapsPerGeneration, &m.cfg.Params)
		frame++
		if assignments == nil {
			logger.Debug("Drawing converged.", "generation", gen)
			break
		}

		markEdited(pixelData, prev, assignments, frame)
		prev = assignments

		m.sink.Publish(progress.EventAssignments, map[string]any{
			"frame":       frame,
			"assignments": assignments,
		})
	}

	m.sink.Publish(progress.EventDone, map[string]any{
		"payload": payloadName,
		"frames":  frame,
	})
	logger.Info("Drawing run finished.", "payload", payloadName, "frames", frame)
	return nil
}

// markEdited stamps every canvas position whose assignment changed since
// the previous generation, so its swap radius starts decaying fresh.
func markEdited(pixelData []PixelData, prev, current []int, frame uint32) {
	for i, src := range current {
		if prev == nil || prev[i] != src {
			pixelData[i].LastEdited = frame
		}
	}
}
