// Package ui draws the runtime parameter panel.
package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/sandydoo/flux-sub000/config"
)

const (
	panelWidth  = 300
	rowHeight   = 35
	sliderWidth = panelWidth - 90
)

var renderModes = []string{
	config.ModeNormal,
	config.ModeDebugNoise,
	config.ModeDebugFluid,
	config.ModeDebugPressure,
	config.ModeDebugDivergence,
}

// Panel is the live settings panel. Toggle with Tab; Draw mutates cfg in
// place and reports whether anything changed this frame.
type Panel struct {
	visible bool
}

// NewPanel creates a hidden panel.
func NewPanel() *Panel {
	return &Panel{}
}

// Toggle flips panel visibility.
func (p *Panel) Toggle() {
	p.visible = !p.visible
}

// Visible reports whether the panel is drawn.
func (p *Panel) Visible() bool {
	return p.visible
}

// Draw renders the panel and edits cfg in place. Returns true when a value
// changed and the caller should push the new settings into the simulation.
func (p *Panel) Draw(cfg *config.Config) bool {
	if !p.visible {
		return false
	}

	changed := false
	x := float32(10)
	y := float32(10)

	rl.DrawRectangle(0, 0, panelWidth, int32(rl.GetScreenHeight()), rl.Color{R: 20, G: 20, B: 28, A: 220})
	rl.DrawText("settings", int32(x), int32(y), 20, rl.RayWhite)
	y += 30

	changed = p.slider(&x, &y, "viscosity", &cfg.Fluid.Viscosity, 0.1, 10) || changed
	changed = p.slider(&x, &y, "dissipation", &cfg.Fluid.VelocityDissipation, 0, 2) || changed
	changed = p.intSlider(&x, &y, "diffusion iters", &cfg.Fluid.DiffusionIterations, 0, 10) || changed
	changed = p.intSlider(&x, &y, "pressure iters", &cfg.Fluid.PressureIterations, 1, 60) || changed

	y += 10
	changed = p.slider(&x, &y, "line length", &cfg.Lines.Length, 100, 1200) || changed
	changed = p.slider(&x, &y, "line width", &cfg.Lines.Width, 1, 20) || changed
	changed = p.slider(&x, &y, "variance", &cfg.Lines.Variance, 0, 1) || changed

	y += 10
	rl.DrawText("noise channels", int32(x), int32(y), 16, rl.LightGray)
	y += 22
	for i := range cfg.NoiseChannels {
		label := fmt.Sprintf("multiplier %d", i+1)
		changed = p.slider(&x, &y, label, &cfg.NoiseChannels[i].Multiplier, 0, 2) || changed
	}

	y += 10
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 130, Height: 26}, "mode: "+cfg.Mode) {
		cfg.Mode = nextMode(cfg.Mode)
		changed = true
	}

	return changed
}

func nextMode(mode string) string {
	for i, m := range renderModes {
		if m == mode {
			return renderModes[(i+1)%len(renderModes)]
		}
	}
	return renderModes[0]
}

func (p *Panel) slider(x, y *float32, label string, value *float64, min, max float32) bool {
	rl.DrawText(label, int32(*x), int32(*y), 14, rl.Gray)
	*y += 16
	got := gui.SliderBar(
		rl.Rectangle{X: *x, Y: *y, Width: sliderWidth, Height: 16},
		"", "",
		float32(*value), min, max,
	)
	rl.DrawText(fmt.Sprintf("%.2f", *value), int32(*x+sliderWidth+8), int32(*y), 14, rl.LightGray)
	*y += rowHeight - 16

	if float64(got) != *value {
		*value = float64(got)
		return true
	}
	return false
}

func (p *Panel) intSlider(x, y *float32, label string, value *int, min, max float32) bool {
	f := float64(*value)
	if p.slider(x, y, label, &f, min, max) {
		*value = int(f)
		return true
	}
	return false
}
