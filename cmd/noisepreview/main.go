// Noise channel preview tool - interactive tuning with sliders.
//
// Usage: go run ./cmd/noisepreview
package main

import (
	"fmt"
	"image/color"
	"math/rand"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/sandydoo/flux-sub000/config"
	"github.com/sandydoo/flux-sub000/grid"
	"github.com/sandydoo/flux-sub000/noise"
	"github.com/sandydoo/flux-sub000/parallel"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
)

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Noise Channel Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	channels := []config.NoiseChannelConfig{
		{Scale: 2.5, Multiplier: 1.0, OffsetIncrement: 0.0015},
		{Scale: 15.0, Multiplier: 0.7, OffsetIncrement: 0.009},
		{Scale: 30.0, Multiplier: 0.5, OffsetIncrement: 0.018},
	}
	seed := int64(12345)

	pool := parallel.NewPool()
	defer pool.Close()

	generator := buildGenerator(channels, seed, pool)
	size := generator.Force().Width

	img := rl.GenImageColor(size, size, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	var elapsed float32
	animating := true
	needsRebuild := false

	generator.Generate()
	updateTexture(texture, generator)

	for !rl.WindowShouldClose() {
		if needsRebuild {
			generator = buildGenerator(channels, seed, pool)
			needsRebuild = false
		}
		if animating {
			elapsed += rl.GetFrameTime()
			generator.Tick(elapsed)
			generator.Generate()
			updateTexture(texture, generator)
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(size), Height: float32(size)},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Time: %.1f", elapsed), 15, previewSize+25, 16, rl.DarkGray)

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Noise Channels", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		live := generator.Channels()
		for i := range channels {
			header := fmt.Sprintf("Channel %d", i+1)
			if i < len(live) {
				header = fmt.Sprintf("Channel %d   phase %.1f  blend %.2f", i+1, live[i].Offset1, live[i].BlendFactor)
			}
			rl.DrawText(header, int32(panelX), int32(panelY), 16, rl.DarkGray)
			panelY += 22

			if slider(panelX, &panelY, "scale", &channels[i].Scale, 0.5, 50) {
				needsRebuild = true
			}
			if slider(panelX, &panelY, "multiplier", &channels[i].Multiplier, 0, 2) {
				needsRebuild = true
			}
			if slider(panelX, &panelY, "offset increment", &channels[i].OffsetIncrement, 0, 0.05) {
				needsRebuild = true
			}
			panelY += 8
		}

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			seed = int64(rl.GetRandomValue(0, 99999))
			needsRebuild = true
		}
		panelY += 45

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 22
		rl.DrawText("noise_channels:", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 16
		for _, ch := range channels {
			for _, line := range []string{
				fmt.Sprintf("  - scale: %.1f", ch.Scale),
				fmt.Sprintf("    multiplier: %.2f", ch.Multiplier),
				fmt.Sprintf("    offset_increment: %.4f", ch.OffsetIncrement),
			} {
				rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
				panelY += 16
			}
		}

		rl.EndDrawing()
	}
}

func buildGenerator(channels []config.NoiseChannelConfig, seed int64, pool *parallel.Pool) *noise.Generator {
	cfg := &config.Config{
		Fluid:         config.FluidConfig{Size: 128},
		NoiseChannels: channels,
	}
	rng := rand.New(rand.NewSource(seed))
	return noise.NewGenerator(cfg, grid.NewScalingRatio(86, 54), rng, pool)
}

func slider(x float32, y *float32, label string, value *float64, min, max float32) bool {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 16
	got := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: float32(panelWidth - 80), Height: 18},
		"", "",
		float32(*value), min, max,
	)
	rl.DrawText(fmt.Sprintf("%.3f", *value), int32(x+float32(panelWidth-70)), int32(*y+2), 14, rl.DarkGray)
	*y += 26

	if float64(got) != *value {
		*value = float64(got)
		return true
	}
	return false
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// updateTexture maps the two force components to red/green around mid-gray.
func updateTexture(texture rl.Texture2D, g *noise.Generator) {
	force := g.Force()
	pixels := make([]color.RGBA, force.Width*force.Height)
	for i := range pixels {
		fx := force.Data[2*i]
		fy := force.Data[2*i+1]
		pixels[i] = color.RGBA{
			R: uint8(128 + 127*clampUnit(fx)),
			G: uint8(128 + 127*clampUnit(fy)),
			B: 64,
			A: 255,
		}
	}
	rl.UpdateTexture(texture, pixels)
}

func clampUnit(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
