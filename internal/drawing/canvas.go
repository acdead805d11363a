// Package drawing is the built-in compute module: it rearranges a fixed
// palette of seed colors on a square canvas until the arrangement
// approximates a target image, one randomized swap generation at a time.
// It is registered under the default module identifier and treats its
// companion payload as the source-image preset.
package drawing

// CanvasSize is the side length of the drawing canvas in pixels.
const CanvasSize = 128

// PixelData is the per-canvas-position bookkeeping the optimizer consults
// when scoring swaps: which stroke last touched the position and when.
type PixelData struct {
	StrokeID   uint32
	LastEdited uint32
}

// InitCanvas returns a fresh canvas state with every position untouched
// as of frameCount.
func InitCanvas(frameCount uint32) []PixelData {
	canvas := make([]PixelData, CanvasSize*CanvasSize)
	for i := range canvas {
		canvas[i] = PixelData{StrokeID: 0, LastEdited: frameCount}
	}
	return canvas
}

// SeedColor is one palette entry, RGBA in [0,1].
type SeedColor struct {
	RGBA [4]float32
}

// rgb8 converts the color to 8-bit RGB channels, saturating at 255.
func (c SeedColor) rgb8() [3]uint8 {
	var out [3]uint8
	for i := 0; i < 3; i++ {
		v := int32(c.RGBA[i] * 256.0)
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		out[i] = uint8(v)
	}
	return out
}
