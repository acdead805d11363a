package drawing

import (
	"math/rand"
)

// rngSeed fixes the optimizer's randomness so a given preset always
// converges to the same arrangement.
const rngSeed = 12345

// SwapsPerGenerationPerPixel sizes one optimization generation relative
// to the canvas area.
const SwapsPerGenerationPerPixel = 4

// drawingPixel is one palette entry's current placement bookkeeping:
// where it was sourced from and its cached base cost (no stroke reward).
type drawingPixel struct {
	srcX, srcY int
	h          int64
}

// calcHeuristic scores this pixel at the given canvas position against
// that position's target color, looking its own color up in colors by
// source position.
func (p *drawingPixel) calcHeuristic(tgtX, tgtY int, tgtCol [3]uint8, weight int64, colors []SeedColor, proximityImportance int64) int64 {
	srcCol := colors[p.srcY*CanvasSize+p.srcX].rgb8()
	return heuristic(p.srcX, p.srcY, tgtX, tgtY, srcCol, tgtCol, weight, proximityImportance)
}

// Settings configures a drawing run.
type Settings struct {
	// Sidelen is the working resolution; the preset is scaled to
	// Sidelen x Sidelen. Must not exceed CanvasSize.
	Sidelen int
	// ProximityImportance weights how strongly pixels are pulled back
	// toward their home positions.
	ProximityImportance int64
}

// DefaultSettings runs at full canvas resolution.
var DefaultSettings = Settings{
	Sidelen:             CanvasSize,
	ProximityImportance: 8,
}

// State is the mutable optimizer state for one drawing run.
type State struct {
	pixels       []drawingPixel
	rng          *rand.Rand
	settings     Settings
	targetPixels [][3]uint8
	weights      []int64
}

// NewState builds the initial identity arrangement and caches each
// pixel's starting cost.
func NewState(settings Settings, colors []SeedColor, targetPixels [][3]uint8, weights []int64) *State {
	side := settings.Sidelen
	pixels := make([]drawingPixel, side*side)
	for i := range pixels {
		x := i % side
		y := i / side
		p := drawingPixel{srcX: x, srcY: y}
		p.h = p.calcHeuristic(x, y, targetPixels[i], weights[i], colors, settings.ProximityImportance)
		pixels[i] = p
	}
	return &State{
		pixels:       pixels,
		rng:          rand.New(rand.NewSource(rngSeed)),
		settings:     settings,
		targetPixels: targetPixels,
		weights:      weights,
	}
}

// Step attempts up to maxSwaps randomized pair swaps and applies those
// that lower the combined cost. It returns the updated assignment vector
// (canvas position -> source index) when at least one swap was applied,
// or nil when the generation made no progress.
func (s *State) Step(colors []SeedColor, pixelData []PixelData, frameCount uint32, maxSwaps int, params *Params) []int {
	swapsMade := 0
	side := s.settings.Sidelen

	for i := 0; i < maxSwaps; i++ {
		apos := s.rng.Intn(len(s.pixels))
		ax := apos % side
		ay := apos / side

		maxDistA := int(params.MaxDist(saturatingSub(frameCount, pixelData[apos].LastEdited)))

		bx := clamp(ax+s.rng.Intn(2*maxDistA+1)-maxDistA, 0, side-1)
		by := clamp(ay+s.rng.Intn(2*maxDistA+1)-maxDistA, 0, side-1)
		bpos := by*side + bx

		// The reverse move must also be within b's own radius.
		maxDistB := int(params.MaxDist(saturatingSub(frameCount, pixelData[bpos].LastEdited)))
		if abs(bx-ax) > maxDistB || abs(by-ay) > maxDistB {
			continue
		}

		tA := s.targetPixels[apos]
		tB := s.targetPixels[bpos]

		currentA := s.pixels[apos].h + s.strokeReward(apos, apos, pixelData, frameCount, params)
		currentB := s.pixels[bpos].h + s.strokeReward(bpos, bpos, pixelData, frameCount, params)

		aOnBBase := s.pixels[apos].calcHeuristic(bx, by, tB, s.weights[bpos], colors, s.settings.ProximityImportance)
		bOnABase := s.pixels[bpos].calcHeuristic(ax, ay, tA, s.weights[apos], colors, s.settings.ProximityImportance)

		aOnB := aOnBBase + s.strokeReward(bpos, apos, pixelData, frameCount, params)
		bOnA := bOnABase + s.strokeReward(apos, bpos, pixelData, frameCount, params)

		improvementA := currentA - bOnA
		improvementB := currentB - aOnB
		if improvementA+improvementB > 0 {
			s.pixels[apos], s.pixels[bpos] = s.pixels[bpos], s.pixels[apos]
			s.pixels[apos].h = bOnABase
			s.pixels[bpos].h = aOnBBase
			swapsMade++
		}
	}

	if swapsMade == 0 {
		return nil
	}

	assignments := make([]int, len(s.pixels))
	for i, p := range s.pixels {
		assignments[i] = p.srcY*side + p.srcX
	}
	return assignments
}

// strokeReward returns the stroke-adjacency reward for moving the pixel
// currently at oldpos onto newpos: any 4-connected neighbor of newpos
// sharing oldpos's stroke earns the reward.
func (s *State) strokeReward(newpos, oldpos int, pixelData []PixelData, frameCount uint32, params *Params) int64 {
	side := s.settings.Sidelen
	x := newpos % side
	y := newpos / side

	data := pixelData[s.pixels[oldpos].srcX+s.pixels[oldpos].srcY*CanvasSize]
	strokeID := data.StrokeID

	for _, d := range [4][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}} {
		nx := x + d[0]
		ny := y + d[1]
		if nx < 0 || nx >= side || ny < 0 || ny >= side {
			continue
		}
		npos := ny*side + nx
		neighbor := pixelData[s.pixels[npos].srcX+s.pixels[npos].srcY*CanvasSize]
		if neighbor.StrokeID == strokeID {
			return params.StrokeReward
		}
	}
	return 0
}

func saturatingSub(a, b uint32) uint32 {
	if b > a {
		return 0
	}
	return a - b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
