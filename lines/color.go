package lines

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/sandydoo/flux-sub000/config"
)

// Wheel is a six-stop RGBA color wheel indexed by line direction.
type Wheel [24]float32

var colorSchemePlasma = Wheel{
	60.219 / 255.0, 37.2487 / 255.0, 66.4301 / 255.0, 1.0,
	170.962 / 255.0, 54.4873 / 255.0, 50.9661 / 255.0, 1.0,
	230.299 / 255.0, 39.2759 / 255.0, 5.54531 / 255.0, 1.0,
	242.924 / 255.0, 94.3563 / 255.0, 22.4186 / 255.0, 1.0,
	242.435 / 255.0, 156.752 / 255.0, 58.9794 / 255.0, 1.0,
	135.291 / 255.0, 152.793 / 255.0, 182.473 / 255.0, 1.0,
}

var colorSchemePoolside = Wheel{
	76.0 / 255.0, 156.0 / 255.0, 228.0 / 255.0, 1.0,
	140.0 / 255.0, 204.0 / 255.0, 244.0 / 255.0, 1.0,
	108.0 / 255.0, 180.0 / 255.0, 236.0 / 255.0, 1.0,
	188.0 / 255.0, 228.0 / 255.0, 244.0 / 255.0, 1.0,
	124.0 / 255.0, 220.0 / 255.0, 236.0 / 255.0, 1.0,
	156.0 / 255.0, 208.0 / 255.0, 236.0 / 255.0, 1.0,
}

var colorSchemeFreedom = Wheel{
	0.0, 87.0 / 255.0, 183.0 / 255.0, 1.0,
	0.0, 87.0 / 255.0, 183.0 / 255.0, 1.0,
	0.0, 87.0 / 255.0, 183.0 / 255.0, 1.0,
	1.0, 215.0 / 255.0, 0.0, 1.0,
	1.0, 215.0 / 255.0, 0.0, 1.0,
	1.0, 215.0 / 255.0, 0.0, 1.0,
}

// colorSchemeOriginal is the default cold palette.
var colorSchemeOriginal = Wheel{
	80.0 / 255.0, 108.0 / 255.0, 218.0 / 255.0, 1.0,
	156.0 / 255.0, 116.0 / 255.0, 226.0 / 255.0, 1.0,
	209.0 / 255.0, 106.0 / 255.0, 196.0 / 255.0, 1.0,
	122.0 / 255.0, 129.0 / 255.0, 230.0 / 255.0, 1.0,
	75.0 / 255.0, 160.0 / 255.0, 226.0 / 255.0, 1.0,
	103.0 / 255.0, 118.0 / 255.0, 224.0 / 255.0, 1.0,
}

// Sample interpolates the wheel at angle radians, mapping the full circle
// across the six stops.
func (w *Wheel) Sample(angle float32) (r, g, b float32) {
	t := float64(angle) / (2 * math.Pi)
	t -= math.Floor(t)
	pos := t * 6
	i := int(pos) % 6
	j := (i + 1) % 6
	frac := float32(pos - math.Floor(pos))

	r = w[i*4] + frac*(w[j*4]-w[i*4])
	g = w[i*4+1] + frac*(w[j*4+1]-w[i*4+1])
	b = w[i*4+2] + frac*(w[j*4+2]-w[i*4+2])
	return r, g, b
}

// ColorSource resolves a line's target color from its direction and
// basepoint. It is rebuilt once per configuration change.
type ColorSource interface {
	ColorAt(angle, u, v float32) (r, g, b float32)
}

type wheelSource struct {
	wheel *Wheel
}

func (s wheelSource) ColorAt(angle, u, v float32) (float32, float32, float32) {
	return s.wheel.Sample(angle)
}

type imageSource struct {
	img image.Image
}

func (s imageSource) ColorAt(angle, u, v float32) (float32, float32, float32) {
	bounds := s.img.Bounds()
	x := bounds.Min.X + int(u*float32(bounds.Dx()-1))
	y := bounds.Min.Y + int(v*float32(bounds.Dy()-1))
	r, g, b, _ := s.img.At(x, y).RGBA()
	return float32(r) / 65535.0, float32(g) / 65535.0, float32(b) / 65535.0
}

// NewColorSource builds the source for the configured color mode.
func NewColorSource(cfg config.ColorConfig) (ColorSource, error) {
	switch cfg.Mode {
	case config.ColorModePreset:
		switch cfg.Preset {
		case "plasma":
			return wheelSource{&colorSchemePlasma}, nil
		case "poolside":
			return wheelSource{&colorSchemePoolside}, nil
		case "freedom":
			return wheelSource{&colorSchemeFreedom}, nil
		case "original":
			return wheelSource{&colorSchemeOriginal}, nil
		default:
			return nil, fmt.Errorf("lines: unknown color preset %q", cfg.Preset)
		}
	case config.ColorModeImage:
		f, err := os.Open(cfg.ImagePath)
		if err != nil {
			return nil, fmt.Errorf("lines: opening color image: %w", err)
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("lines: decoding color image: %w", err)
		}
		return imageSource{img}, nil
	default:
		return nil, fmt.Errorf("lines: unknown color mode %q", cfg.Mode)
	}
}
