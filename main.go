package main

import (
	"flag"
	"log/slog"
	"math"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/sandydoo/flux-sub000/config"
	"github.com/sandydoo/flux-sub000/flux"
	"github.com/sandydoo/flux-sub000/renderer"
	"github.com/sandydoo/flux-sub000/telemetry"
	"github.com/sandydoo/flux-sub000/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	seed := flag.String("seed", "", "Seed string (empty = use config or generate)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *seed != "" {
		cfg.Seed = *seed
	}

	dir := *outputDir
	if dir == "" && cfg.Telemetry.Enabled {
		dir = cfg.Telemetry.OutputDir
	}
	output, err := telemetry.NewOutputManager(dir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if output.Dir() != "" {
		slog.Info("telemetry output enabled", "dir", output.Dir())
	}

	if *headless {
		runHeadless(cfg, output, *maxFrames)
		return
	}
	runWindow(cfg, output, *maxFrames)
}

// runHeadless drives the pipeline with synthetic timestamps at the fluid
// frame rate, so each frame dispatches one sub-step.
func runHeadless(cfg *config.Config, output *telemetry.OutputManager, maxFrames int) {
	sim, err := flux.New(cfg, cfg.Screen.Width, cfg.Screen.Height)
	if err != nil {
		slog.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}
	defer sim.Dispose()

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	sim.Perf = perf
	window := telemetry.NewStatsWindow(0)

	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	slog.Info("starting headless run", "max_frames", maxFrames, "seed", cfg.Seed)

	frameMs := 1000.0 / cfg.Fluid.FrameRate
	for frame := 1; maxFrames == 0 || frame <= maxFrames; frame++ {
		sim.Animate(float64(frame) * frameMs)
		window.RecordFrame(sim.LastSubSteps(), sim.MeanAbsDivergence())

		if window.Frames() >= cfg.Telemetry.PerfCollectorWindow {
			flushStats(sim, perf, window, output, int32(frame))
		}
	}
	slog.Info("max frames reached", "frames", maxFrames)
}

// runWindow drives the pipeline from the raylib event loop.
func runWindow(cfg *config.Config, output *telemetry.OutputManager, maxFrames int) {
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Flux")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	sim, err := flux.New(cfg, cfg.Screen.Width, cfg.Screen.Height)
	if err != nil {
		slog.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}
	defer sim.Dispose()

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	sim.Perf = perf
	window := telemetry.NewStatsWindow(0)

	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	lineRenderer := renderer.NewLineRenderer(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Derived.ViewScale32)
	fieldRenderer := renderer.NewFieldRenderer(64, 64)
	defer fieldRenderer.Unload()
	panel := ui.NewPanel()

	frame := 0
	for !rl.WindowShouldClose() {
		frame++
		if rl.IsWindowResized() {
			w := int(rl.GetScreenWidth())
			h := int(rl.GetScreenHeight())
			sim.Resize(w, h)
			lineRenderer.Resize(int32(w), int32(h))
		}
		if rl.IsKeyPressed(rl.KeyTab) {
			panel.Toggle()
		}

		sim.Animate(float64(rl.GetTime()) * 1000.0)
		window.RecordFrame(sim.LastSubSteps(), sim.MeanAbsDivergence())

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		sw := int32(rl.GetScreenWidth())
		sh := int32(rl.GetScreenHeight())
		switch sim.Config().Mode {
		case config.ModeDebugNoise:
			fieldRenderer.DrawVector(sim.NoiseField(), 1.0, sw, sh)
		case config.ModeDebugFluid:
			fieldRenderer.DrawVector(sim.VelocityField(), 0.5, sw, sh)
		case config.ModeDebugPressure:
			fieldRenderer.DrawScalar(sim.PressureField(), 0.1, sw, sh)
		case config.ModeDebugDivergence:
			fieldRenderer.DrawScalar(sim.DivergenceField(), 0.05, sw, sh)
		default:
			lineRenderer.Draw(sim.Lines(), sim.Grid(), sim.Config().Derived.LineLength32, sim.Config().Derived.BeginOffset32)
		}

		if panel.Draw(sim.Config()) {
			if err := sim.Update(sim.Config()); err != nil {
				slog.Error("rejected settings change", "error", err)
			}
			lineRenderer.SetViewScale(sim.Config().Derived.ViewScale32)
		}
		if !panel.Visible() {
			rl.DrawText("tab: settings", 10, sh-24, 14, rl.Gray)
		}

		rl.EndDrawing()

		if window.Frames() >= cfg.Telemetry.PerfCollectorWindow {
			flushStats(sim, perf, window, output, int32(frame))
		}
		if maxFrames > 0 && frame >= maxFrames {
			break
		}
	}
}

// flushStats aggregates and emits one telemetry window, then resets it.
func flushStats(sim *flux.Flux, perf *telemetry.PerfCollector, window *telemetry.StatsWindow, output *telemetry.OutputManager, frame int32) {
	vel := sim.VelocityField()
	speeds := make([]float64, 0, vel.Width*vel.Height)
	for i := 0; i < vel.Width*vel.Height; i++ {
		vx := float64(vel.Data[2*i])
		vy := float64(vel.Data[2*i+1])
		speeds = append(speeds, math.Sqrt(vx*vx+vy*vy))
	}

	stats := window.Aggregate(frame, float64(sim.ElapsedTime()), speeds)
	stats.LogStats()
	perfStats := perf.Stats()
	perfStats.LogStats()

	if err := output.WriteStats(stats); err != nil {
		slog.Error("failed to write frame stats", "error", err)
	}
	if err := output.WritePerf(perfStats, frame); err != nil {
		slog.Error("failed to write perf stats", "error", err)
	}
	window.Reset(frame)
}
