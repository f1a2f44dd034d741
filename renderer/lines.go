// Package renderer draws the line field and debug field views with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/sandydoo/flux-sub000/grid"
	"github.com/sandydoo/flux-sub000/lines"
)

// LineRenderer draws the placed line field to the screen.
type LineRenderer struct {
	screenWidth  float32
	screenHeight float32
	viewScale    float32
}

// NewLineRenderer creates a renderer for the given screen size.
func NewLineRenderer(screenWidth, screenHeight int32, viewScale float32) *LineRenderer {
	return &LineRenderer{
		screenWidth:  float32(screenWidth),
		screenHeight: float32(screenHeight),
		viewScale:    viewScale,
	}
}

// Resize updates the screen mapping.
func (r *LineRenderer) Resize(screenWidth, screenHeight int32) {
	r.screenWidth = float32(screenWidth)
	r.screenHeight = float32(screenHeight)
}

// SetViewScale updates the zoom applied to line lengths.
func (r *LineRenderer) SetViewScale(viewScale float32) {
	r.viewScale = viewScale
}

// Draw renders every line and its endpoint dot. Line state offsets are in
// normalized grid units; lineLength converts them to logical pixels.
func (r *LineRenderer) Draw(states []lines.State, g grid.Grid, lineLength, beginOffset float32) {
	scale := lineLength * r.viewScale
	sx := r.screenWidth / float32(g.Width)
	sy := r.screenHeight / float32(g.Height)

	rl.BeginBlendMode(rl.BlendAlpha)
	for i := range states {
		line := &states[i]
		if line.Color[3] < 0.004 {
			continue
		}

		bx := g.Basepoints[2*i] * float32(g.Width) * sx
		by := g.Basepoints[2*i+1] * float32(g.Height) * sy
		ex := bx + line.EndpointX*scale*sx
		ey := by + line.EndpointY*scale*sy

		color := rl.Color{
			R: uint8(clamp01(line.Color[0]) * 255),
			G: uint8(clamp01(line.Color[1]) * 255),
			B: uint8(clamp01(line.Color[2]) * 255),
			A: uint8(clamp01(line.Color[3]) * 255),
		}

		// The tail fades in from the begin offset along the line.
		tx := bx + (ex-bx)*beginOffset
		ty := by + (ey-by)*beginOffset
		faint := color
		faint.A = uint8(float32(color.A) * 0.35)
		rl.DrawLineEx(rl.Vector2{X: bx, Y: by}, rl.Vector2{X: tx, Y: ty}, line.Width*0.5, faint)
		rl.DrawLineEx(rl.Vector2{X: tx, Y: ty}, rl.Vector2{X: ex, Y: ey}, line.Width, color)

		rl.DrawCircleV(rl.Vector2{X: ex, Y: ey}, line.Width*0.6, color)
	}
	rl.EndBlendMode()
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
