package renderer

import (
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/sandydoo/flux-sub000/field"
)

// FieldRenderer uploads a simulation field to a texture and draws it
// stretched across the screen. Used by the debug render modes.
type FieldRenderer struct {
	texture rl.Texture2D
	pixels  []color.RGBA
	width   int
	height  int
}

// NewFieldRenderer allocates a streaming texture of the given field size.
func NewFieldRenderer(width, height int) *FieldRenderer {
	img := rl.GenImageColor(width, height, rl.Black)
	defer rl.UnloadImage(img)

	return &FieldRenderer{
		texture: rl.LoadTextureFromImage(img),
		pixels:  make([]color.RGBA, width*height),
		width:   width,
		height:  height,
	}
}

// resize recreates the texture when the field size changed.
func (r *FieldRenderer) resize(width, height int) {
	if width == r.width && height == r.height {
		return
	}
	rl.UnloadTexture(r.texture)
	img := rl.GenImageColor(width, height, rl.Black)
	defer rl.UnloadImage(img)

	r.texture = rl.LoadTextureFromImage(img)
	r.pixels = make([]color.RGBA, width*height)
	r.width = width
	r.height = height
}

// DrawVector maps a two-component field to a red/green ramp centered at
// mid-gray, scaled so scale maps to full intensity.
func (r *FieldRenderer) DrawVector(f *field.Field, scale float32, screenWidth, screenHeight int32) {
	r.resize(f.Width, f.Height)

	for i := 0; i < f.Width*f.Height; i++ {
		vx := f.Data[2*i] / scale
		vy := f.Data[2*i+1] / scale
		r.pixels[i] = color.RGBA{
			R: rampByte(vx),
			G: rampByte(vy),
			B: 64,
			A: 255,
		}
	}
	r.upload(screenWidth, screenHeight)
}

// DrawScalar maps a one-component field to a blue/orange diverging ramp.
func (r *FieldRenderer) DrawScalar(f *field.Field, scale float32, screenWidth, screenHeight int32) {
	r.resize(f.Width, f.Height)

	for i := 0; i < f.Width*f.Height; i++ {
		v := f.Data[i] / scale
		if v >= 0 {
			r.pixels[i] = color.RGBA{R: rampByte(v), G: rampByte(v * 0.6), B: 32, A: 255}
		} else {
			r.pixels[i] = color.RGBA{R: 32, G: rampByte(-v * 0.6), B: rampByte(-v), A: 255}
		}
	}
	r.upload(screenWidth, screenHeight)
}

func (r *FieldRenderer) upload(screenWidth, screenHeight int32) {
	rl.UpdateTexture(r.texture, r.pixels)
	src := rl.Rectangle{Width: float32(r.width), Height: float32(r.height)}
	dst := rl.Rectangle{Width: float32(screenWidth), Height: float32(screenHeight)}
	rl.DrawTexturePro(r.texture, src, dst, rl.Vector2{}, 0, rl.White)
}

// Unload releases the texture.
func (r *FieldRenderer) Unload() {
	rl.UnloadTexture(r.texture)
}

// rampByte maps [-1, 1] to [0, 255] with 128 at zero.
func rampByte(v float32) uint8 {
	scaled := 128 + 127*math.Max(-1, math.Min(1, float64(v)))
	return uint8(scaled)
}
