// Package flux wires the grid, solver, noise generator, and line placer into
// the per-frame simulation entry point.
package flux

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand"

	"github.com/sandydoo/flux-sub000/config"
	"github.com/sandydoo/flux-sub000/field"
	"github.com/sandydoo/flux-sub000/fluid"
	"github.com/sandydoo/flux-sub000/grid"
	"github.com/sandydoo/flux-sub000/lines"
	"github.com/sandydoo/flux-sub000/noise"
	"github.com/sandydoo/flux-sub000/parallel"
	"github.com/sandydoo/flux-sub000/telemetry"
)

const (
	// maxElapsedTime wraps the animation clock to avoid float precision loss.
	maxElapsedTime = 1000.0

	// maxFrameTime caps a single frame's delta so a stall never triggers a
	// catch-up burst.
	maxFrameTime = 1.0 / 10.0

	// warmupSteps pre-seeds the field so the first painted frame is not cold.
	warmupSteps = 5

	seedChars  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	seedLength = 8
)

// Flux owns the full simulation pipeline and its clock.
type Flux struct {
	cfg  *config.Config
	grid grid.Grid
	pool *parallel.Pool

	// Structural settings the current grid and fields were built with.
	// Update stores newer values in cfg; Resize compares against these.
	gridSpacing int
	fluidSize   int

	solver    *fluid.Solver
	generator *noise.Generator
	placer    *lines.Placer

	// Perf is an optional per-pass timing collector. Nil disables timing.
	Perf *telemetry.PerfCollector

	elapsedTime    float32
	lastTimestamp  float64
	fluidFrameTime float32
	started        bool
	disposed       bool

	// Sub-steps dispatched by the most recent Animate call.
	lastSubSteps int
}

// New validates the configuration, builds every sub-component, and warms the
// field up with a few sub-steps so the first frame shows motion.
func New(cfg *config.Config, width, height int) (*Flux, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("flux: %w", err)
	}
	cfg.ComputeDerived()

	seed := cfg.Seed
	rng := newSeededRand(&seed)
	if seed != cfg.Seed {
		slog.Info("generated seed", "seed", seed)
		cfg.Seed = seed
	}

	w, h := grid.ClampLogicalSize(width, height)
	g := grid.New(w, h, cfg.Lines.GridSpacing)
	pool := parallel.NewPool()

	solver, err := fluid.NewSolver(cfg, g.ScalingRatio, pool)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("flux: building solver: %w", err)
	}
	generator := noise.NewGenerator(cfg, g.ScalingRatio, rng, pool)
	placer, err := lines.NewPlacer(cfg, g, rng, pool)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("flux: building line placer: %w", err)
	}

	f := &Flux{
		cfg:         cfg,
		grid:        g,
		pool:        pool,
		gridSpacing: cfg.Lines.GridSpacing,
		fluidSize:   cfg.Fluid.Size,
		solver:      solver,
		generator:   generator,
		placer:      placer,
	}

	dt := cfg.Derived.Timestep32
	for i := 0; i < warmupSteps; i++ {
		f.subStep(dt)
	}

	slog.Info("flux ready",
		"canvas_width", w,
		"canvas_height", h,
		"lines", g.LineCount,
		"fluid_width", solver.Width(),
		"fluid_height", solver.Height(),
		"seed", seed)
	return f, nil
}

// newSeededRand builds the run's RNG. An empty seed is replaced with a fresh
// random one so the run stays reproducible once the seed is reported.
func newSeededRand(seed *string) *rand.Rand {
	if *seed == "" {
		src := rand.New(rand.NewSource(rand.Int63()))
		b := make([]byte, seedLength)
		for i := range b {
			b[i] = seedChars[src.Intn(len(seedChars))]
		}
		*seed = string(b)
	}
	h := fnv.New64a()
	h.Write([]byte(*seed))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// subStep runs one fixed-timestep iteration: advance and inject the noise
// forcing, then the full solver pass sequence.
func (f *Flux) subStep(dt float32) {
	perf := f.Perf
	if perf != nil {
		perf.StartTick()
		perf.StartPhase(telemetry.PhaseNoise)
	}
	f.generator.Tick(f.elapsedTime)
	f.generator.Generate()
	f.generator.InjectInto(f.solver.Velocity(), dt)

	if perf != nil {
		perf.StartPhase(telemetry.PhaseAdvection)
	}
	f.solver.AdvectForward(dt)
	f.solver.AdvectReverse(dt)
	f.solver.AdjustAdvection(dt)

	if perf != nil {
		perf.StartPhase(telemetry.PhaseDiffusion)
	}
	f.solver.Diffuse(dt)

	if perf != nil {
		perf.StartPhase(telemetry.PhaseDivergence)
	}
	f.solver.CalculateDivergence()

	if perf != nil {
		perf.StartPhase(telemetry.PhasePressure)
	}
	f.solver.SolvePressure()

	if perf != nil {
		perf.StartPhase(telemetry.PhaseGradient)
	}
	f.solver.SubtractGradient()

	if perf != nil {
		perf.EndTick()
	}
}

// Animate advances the simulation for one displayed frame. timestampMs is the
// caller's monotonic clock in milliseconds. The fluid advances on its fixed
// timestep through an accumulator; line placement runs once with the frame's
// delta so visible motion stays smooth at any refresh rate.
func (f *Flux) Animate(timestampMs float64) {
	if f.disposed {
		return
	}

	var frameDt float32
	if f.started {
		frameDt = float32(0.001 * (timestampMs - f.lastTimestamp))
		if frameDt < 0 {
			frameDt = 0
		}
		if frameDt > maxFrameTime {
			frameDt = maxFrameTime
		}
	}
	f.lastTimestamp = timestampMs
	f.started = true

	f.elapsedTime += frameDt
	f.fluidFrameTime += frameDt
	if overflow := f.elapsedTime - maxElapsedTime; overflow >= 0 {
		f.elapsedTime = overflow
	}

	timestep := f.cfg.Derived.Timestep32
	steps := 0
	for f.fluidFrameTime >= timestep {
		f.subStep(timestep)
		f.fluidFrameTime -= timestep
		steps++
	}
	f.lastSubSteps = steps

	if f.Perf != nil {
		f.Perf.StartTick()
		f.Perf.StartPhase(telemetry.PhasePlacement)
	}
	f.placer.PlaceLines(f.solver.Velocity().Current(), f.elapsedTime, frameDt)
	if f.Perf != nil {
		f.Perf.EndTick()
		f.Perf.RecordFrame()
	}
}

// Update applies new settings live. Numeric parameters take effect on the
// next sub-step; structural changes (grid spacing, fluid size) still require
// an explicit Resize. Field contents are preserved.
func (f *Flux) Update(newCfg *config.Config) error {
	if err := newCfg.Validate(); err != nil {
		return fmt.Errorf("flux: %w", err)
	}
	newCfg.ComputeDerived()

	f.solver.Update(newCfg)
	f.generator.Update(newCfg, f.grid.ScalingRatio)
	if err := f.placer.Update(newCfg); err != nil {
		return fmt.Errorf("flux: %w", err)
	}
	f.cfg = newCfg

	slog.Info("settings updated",
		"viscosity", newCfg.Fluid.Viscosity,
		"dissipation", newCfg.Fluid.VelocityDissipation,
		"mode", newCfg.Mode)
	return nil
}

// Resize rebuilds all grid-dependent state for a new logical canvas size, or
// for structural settings (grid spacing, fluid size) stored by an earlier
// Update. Line state resets to rest; fluid fields are recreated zeroed when
// the fluid texture size changes.
func (f *Flux) Resize(width, height int) {
	w, h := grid.ClampLogicalSize(width, height)
	if w == f.grid.Width && h == f.grid.Height &&
		f.cfg.Lines.GridSpacing == f.gridSpacing && f.cfg.Fluid.Size == f.fluidSize {
		return
	}

	f.gridSpacing = f.cfg.Lines.GridSpacing
	f.fluidSize = f.cfg.Fluid.Size
	f.grid = grid.New(w, h, f.cfg.Lines.GridSpacing)
	f.solver.Resize(f.cfg, f.grid.ScalingRatio)
	f.generator.Resize(f.cfg, f.grid.ScalingRatio)
	f.placer.Resize(f.grid)

	slog.Info("resized", "width", w, "height", h, "lines", f.grid.LineCount)
}

// Dispose releases the worker pool. The instance must not be used afterward.
func (f *Flux) Dispose() {
	if f.disposed {
		return
	}
	f.disposed = true
	f.pool.Close()
}

// Lines returns the stable line state for the renderer.
func (f *Flux) Lines() []lines.State { return f.placer.Lines() }

// Grid returns the current basepoint lattice.
func (f *Flux) Grid() grid.Grid { return f.grid }

// Config returns the active configuration.
func (f *Flux) Config() *config.Config { return f.cfg }

// ElapsedTime returns the wrapped animation clock in seconds.
func (f *Flux) ElapsedTime() float32 { return f.elapsedTime }

// LastSubSteps reports how many fluid sub-steps the previous Animate ran.
func (f *Flux) LastSubSteps() int { return f.lastSubSteps }

// MeanAbsDivergence exposes the solver's residual diagnostic.
func (f *Flux) MeanAbsDivergence() float64 { return f.solver.MeanAbsDivergence() }

// VelocityField returns the committed velocity field (debug view).
func (f *Flux) VelocityField() *field.Field { return f.solver.Velocity().Current() }

// PressureField returns the current pressure field (debug view).
func (f *Flux) PressureField() *field.Field { return f.solver.Pressure() }

// DivergenceField returns the latest divergence field (debug view).
func (f *Flux) DivergenceField() *field.Field { return f.solver.Divergence() }

// NoiseField returns the last generated forcing field (debug view).
func (f *Flux) NoiseField() *field.Field { return f.generator.Force() }
