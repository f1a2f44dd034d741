package flux

import (
	"math"
	"testing"

	"github.com/sandydoo/flux-sub000/config"
)

func testConfig() *config.Config {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}
	// Small field keeps the tests fast.
	cfg.Fluid.Size = 64
	cfg.Seed = "test-seed"
	cfg.ComputeDerived()
	return cfg
}

func newTestFlux(t *testing.T) *Flux {
	t.Helper()
	f, err := New(testConfig(), 1280, 800)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	t.Cleanup(f.Dispose)
	return f
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Lines.GridSpacing = 0
	if _, err := New(cfg, 1280, 800); err == nil {
		t.Fatal("New accepted a zero grid spacing")
	}
}

func TestNewGeneratesSeedWhenEmpty(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = ""
	f, err := New(cfg, 1280, 800)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Dispose()

	if cfg.Seed == "" {
		t.Error("empty seed was not replaced with a generated one")
	}
	if len(cfg.Seed) != seedLength {
		t.Errorf("generated seed length = %d, want %d", len(cfg.Seed), seedLength)
	}
}

func TestWarmupLeavesFieldWarm(t *testing.T) {
	f := newTestFlux(t)

	var sum float64
	for _, v := range f.VelocityField().Data {
		sum += math.Abs(float64(v))
	}
	if sum == 0 {
		t.Error("velocity field is identically zero after warm-up")
	}
}

func TestAccumulatorDispatchesFixedSubSteps(t *testing.T) {
	f := newTestFlux(t)

	// First call establishes the clock baseline.
	f.Animate(0)
	if f.LastSubSteps() != 0 {
		t.Errorf("first frame dispatched %d sub-steps, want 0", f.LastSubSteps())
	}

	// One 60 Hz frame accumulates exactly one 60 Hz sub-step (plus any
	// residual), so over many frames steps track frames one to one.
	total := 0
	frames := 30
	for i := 1; i <= frames; i++ {
		f.Animate(float64(i) * 1000.0 / 60.0)
		total += f.LastSubSteps()
	}
	if total < frames-1 || total > frames+1 {
		t.Errorf("dispatched %d sub-steps over %d 60Hz frames, want ~%d", total, frames, frames)
	}
}

func TestAccumulatorClampsStalls(t *testing.T) {
	f := newTestFlux(t)
	f.Animate(0)

	// A five-second stall must be clamped to maxFrameTime, not replayed.
	f.Animate(5000)
	maxSteps := int(maxFrameTime/float64(f.Config().Fluid.Timestep)) + 1
	if f.LastSubSteps() > maxSteps {
		t.Errorf("stall dispatched %d sub-steps, want at most %d", f.LastSubSteps(), maxSteps)
	}
}

func TestElapsedTimeWraps(t *testing.T) {
	f := newTestFlux(t)
	f.elapsedTime = maxElapsedTime - 0.01
	f.Animate(0)
	f.Animate(50) // 50 ms pushes the clock past the wrap point

	if f.ElapsedTime() >= maxElapsedTime {
		t.Errorf("elapsed time %v did not wrap at %v", f.ElapsedTime(), maxElapsedTime)
	}
	if f.ElapsedTime() < 0 {
		t.Errorf("elapsed time %v went negative on wrap", f.ElapsedTime())
	}
}

func TestAnimateKeepsDivergenceLow(t *testing.T) {
	if testing.Short() {
		t.Skip("multi-second simulation")
	}
	f := newTestFlux(t)

	f.Animate(0)
	for i := 1; i <= 120; i++ {
		f.Animate(float64(i) * 1000.0 / 60.0)
	}
	if div := f.MeanAbsDivergence(); div > 1e-2 {
		t.Errorf("mean abs divergence after 2s = %v, want small", div)
	}
}

func TestUpdatePreservesFieldContents(t *testing.T) {
	f := newTestFlux(t)
	f.Animate(0)
	f.Animate(1000.0 / 60.0)

	before := make([]float32, len(f.VelocityField().Data))
	copy(before, f.VelocityField().Data)

	cfg := testConfig()
	cfg.Fluid.Viscosity = 1.5
	if err := f.Update(cfg); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	for i, v := range f.VelocityField().Data {
		if v != before[i] {
			t.Fatal("Update changed field contents")
		}
	}
	if f.Config().Fluid.Viscosity != 1.5 {
		t.Error("Update did not apply the new viscosity")
	}
}

func TestUpdateRejectsInvalidSettings(t *testing.T) {
	f := newTestFlux(t)
	cfg := testConfig()
	cfg.Fluid.PressureMode = "bogus"
	if err := f.Update(cfg); err == nil {
		t.Error("Update accepted an invalid pressure mode")
	}
}

func TestResizeResetsLines(t *testing.T) {
	f := newTestFlux(t)
	f.Animate(0)
	f.Animate(100)

	f.Resize(1440, 900)
	g := f.Grid()
	if g.Columns != 97 || g.Rows != 61 {
		t.Errorf("grid after resize = (%d, %d), want (97, 61)", g.Columns, g.Rows)
	}
	if len(f.Lines()) != g.LineCount {
		t.Fatalf("line count = %d, want %d", len(f.Lines()), g.LineCount)
	}
	for i, line := range f.Lines() {
		if line.EndpointX != 0 || line.EndpointY != 0 {
			t.Fatalf("line %d not at rest after resize", i)
		}
	}
}

func TestResizeSameSizeIsNoOp(t *testing.T) {
	f := newTestFlux(t)
	f.Animate(0)
	f.Animate(100)
	linesBefore := f.Lines()

	f.Resize(1280, 800)
	if &f.Lines()[0] != &linesBefore[0] {
		t.Error("same-size resize reallocated line state")
	}
}

func TestResizeAppliesStructuralSettings(t *testing.T) {
	f := newTestFlux(t)
	linesBefore := len(f.Lines())
	fluidBefore := f.VelocityField().Width

	cfg := testConfig()
	cfg.Lines.GridSpacing = 30
	cfg.Fluid.Size = 32
	if err := f.Update(cfg); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	// The canvas size is unchanged, but the stored structural settings must
	// still force a rebuild.
	f.Resize(1280, 800)
	if len(f.Lines()) == linesBefore {
		t.Error("new grid spacing did not change the line count on resize")
	}
	if f.VelocityField().Width == fluidBefore {
		t.Error("new fluid size did not change the fluid texture on resize")
	}
	if f.Grid().Width != 1280 || f.Grid().Height != 800 {
		t.Errorf("canvas after resize = (%d, %d), want (1280, 800)", f.Grid().Width, f.Grid().Height)
	}

	// A second same-size resize with no pending settings is a no-op again.
	stable := f.Lines()
	f.Resize(1280, 800)
	if &f.Lines()[0] != &stable[0] {
		t.Error("resize with no pending changes reallocated line state")
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	f, err := New(testConfig(), 1280, 800)
	if err != nil {
		t.Fatal(err)
	}
	f.Dispose()
	f.Dispose()
	f.Animate(16) // must not panic after dispose
}
