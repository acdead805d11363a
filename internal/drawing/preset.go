package drawing

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
)

// Preset is the decoded source image a drawing run works toward.
type Preset struct {
	img image.Image
}

// DecodePreset parses a payload blob as a preset image.
func DecodePreset(data []byte) (*Preset, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode preset image: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("preset image %s has empty bounds", format)
	}
	return &Preset{img: img}, nil
}

// Scaled samples the preset down to the working resolution. It returns the
// seed color palette (laid out at CanvasSize stride, as the optimizer
// indexes it), the target colors per canvas position, and per-position
// weights derived from the alpha channel.
func (p *Preset) Scaled(settings Settings) ([]SeedColor, [][3]uint8, []int64, error) {
	side := settings.Sidelen
	if side <= 0 || side > CanvasSize {
		return nil, nil, nil, fmt.Errorf("sidelen %d out of range (1..%d)", side, CanvasSize)
	}

	bounds := p.img.Bounds()
	colors := make([]SeedColor, CanvasSize*CanvasSize)
	targets := make([][3]uint8, side*side)
	weights := make([]int64, side*side)

	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			// Nearest-neighbor sample.
			sx := bounds.Min.X + x*bounds.Dx()/side
			sy := bounds.Min.Y + y*bounds.Dy()/side
			r, g, b, a := p.img.At(sx, sy).RGBA()

			i := y*side + x
			targets[i] = [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
			// Fully transparent positions still carry a minimal weight so
			// their cost stays defined.
			weights[i] = int64(a>>8) + 1

			colors[y*CanvasSize+x] = SeedColor{RGBA: [4]float32{
				float32(r) / 0xffff,
				float32(g) / 0xffff,
				float32(b) / 0xffff,
				float32(a) / 0xffff,
			}}
		}
	}
	return colors, targets, weights, nil
}
