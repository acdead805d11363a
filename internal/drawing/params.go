package drawing

import "math"

// Params tunes the swap optimizer.
type Params struct {
	// StrokeReward is added to a position's cost when a 4-connected
	// neighbor belongs to the same stroke, nudging the optimizer to break
	// up stale strokes.
	StrokeReward int64
	// MaxDistBase is the starting swap radius for an untouched position.
	MaxDistBase uint32
	// MaxDistDecay shrinks the radius as a position ages; applied once per
	// 30 frames of age.
	MaxDistDecay float32
	// MaxDistMin is the radius floor.
	MaxDistMin uint32
}

// DefaultParams are the tunings used by the registered default module.
var DefaultParams = Params{
	StrokeReward: 400,
	MaxDistBase:  64,
	MaxDistDecay: 0.97,
	MaxDistMin:   4,
}

// MaxDist returns the swap radius for a position of the given age, in
// frames since it was last edited.
func (p Params) MaxDist(age uint32) uint32 {
	decaySteps := int(age / 30)
	raw := float64(p.MaxDistBase) * math.Pow(float64(p.MaxDistDecay), float64(decaySteps))
	return uint32(math.Max(math.Round(raw), float64(p.MaxDistMin)))
}
