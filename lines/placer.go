package lines

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/sandydoo/flux-sub000/config"
	"github.com/sandydoo/flux-sub000/field"
	"github.com/sandydoo/flux-sub000/grid"
	"github.com/sandydoo/flux-sub000/parallel"
)

// Damped spring driving each endpoint toward the sampled flow.
const (
	springStiffness = 2.0
	springDamping   = 3.2
	springMass      = 1.0
	restLength      = 0.0

	colorStiffness = 4.0
	colorDamping   = 3.0

	// widthResponse shapes how quickly line width tracks flow speed.
	widthResponse = 5.0
)

// Per-line jitter phase, advanced once per displayed frame.
const (
	jitterBlendThreshold = 4.0
	jitterBaseOffset     = 0.0015
	jitterScale          = 6.0
)

// Placer owns the line state and advances it once per displayed frame.
type Placer struct {
	grid   grid.Grid
	buffer *DoubleBuffer

	width    float32
	variance float32

	colors  ColorSource
	simplex opensimplex.Noise
	pool    *parallel.Pool

	jitterOffset1 float32
	jitterOffset2 float32
	jitterBlend   float32
}

// NewPlacer allocates the line buffers at rest for the given lattice and
// resolves the color source.
func NewPlacer(cfg *config.Config, g grid.Grid, rng *rand.Rand, pool *parallel.Pool) (*Placer, error) {
	colors, err := NewColorSource(cfg.Color)
	if err != nil {
		return nil, fmt.Errorf("building color source: %w", err)
	}

	p := &Placer{
		grid:          g,
		buffer:        NewDoubleBuffer(g.LineCount),
		colors:        colors,
		simplex:       opensimplex.New(rng.Int63()),
		pool:          pool,
		jitterOffset1: jitterBlendThreshold * rng.Float32(),
	}
	p.applySettings(cfg)

	slog.Info("line placer ready", "lines", g.LineCount, "columns", g.Columns, "rows", g.Rows)
	return p, nil
}

func (p *Placer) applySettings(cfg *config.Config) {
	p.width = cfg.Derived.LineWidth32
	p.variance = cfg.Derived.Variance32
}

// Update applies new appearance parameters and rebuilds the color source.
func (p *Placer) Update(cfg *config.Config) error {
	colors, err := NewColorSource(cfg.Color)
	if err != nil {
		return fmt.Errorf("rebuilding color source: %w", err)
	}
	p.colors = colors
	p.applySettings(cfg)
	return nil
}

// Resize reallocates the state at the new lattice's line count with all lines
// at rest. Prior positions are discarded.
func (p *Placer) Resize(g grid.Grid) {
	p.grid = g
	p.buffer = NewDoubleBuffer(g.LineCount)
	slog.Info("line placer resized", "lines", g.LineCount)
}

// Lines returns the stable state slice for the renderer.
func (p *Placer) Lines() []State { return p.buffer.Current() }

// Grid returns the lattice the placer is laid out on.
func (p *Placer) Grid() grid.Grid { return p.grid }

// tickJitter advances the slow per-line jitter phase, cross-fading to a fresh
// phase past the blend threshold.
func (p *Placer) tickJitter(elapsedTime float32) {
	perturb := 1.0 + 0.2*float32(math.Sin(0.01*float64(elapsedTime)*2*math.Pi))
	offset := jitterBaseOffset * perturb
	p.jitterOffset1 += offset

	if p.jitterOffset1 > jitterBlendThreshold {
		p.jitterOffset2 += offset
		p.jitterBlend += jitterBaseOffset
	}
	if p.jitterBlend > 1.0 {
		p.jitterOffset1 = p.jitterOffset2
		p.jitterOffset2 = 0
		p.jitterBlend = 0
	}
}

// jitterAt evaluates the per-line variance factor at a basepoint, in [0, 1].
func (p *Placer) jitterAt(u, v float32) float32 {
	a := p.simplex.Eval3(float64(u)*jitterScale, float64(v)*jitterScale, float64(p.jitterOffset1))
	if p.jitterBlend > 0 {
		b := p.simplex.Eval3(float64(u)*jitterScale, float64(v)*jitterScale, float64(p.jitterOffset2))
		a += float64(p.jitterBlend) * (b - a)
	}
	return 0.5 + 0.5*float32(a)
}

// PlaceLines advances every line by one displayed frame: sample the committed
// velocity at the basepoint, integrate the endpoint spring, and derive color
// and width from the flow. Reads the current slot, writes the next, swaps.
func (p *Placer) PlaceLines(velocity *field.Field, elapsedTime, dt float32) {
	p.tickJitter(elapsedTime)

	src := p.buffer.Current()
	dst := p.buffer.Next()
	basepoints := p.grid.Basepoints
	variance := p.variance
	lineWidth := p.width
	count := p.buffer.Len()

	// Row granularity keeps chunks coarse enough for the pool.
	rows := p.grid.Rows
	cols := p.grid.Columns
	p.pool.Rows(rows, func(row int) {
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if i >= count {
				return
			}
			bx := basepoints[2*i]
			by := basepoints[2*i+1]

			fx := velocity.SampleNorm(bx, by, 0)
			fy := velocity.SampleNorm(bx, by, 1)

			// Variance scales the forcing per line, so neighboring lines
			// drift apart even in a uniform flow.
			if variance > 0 {
				j := p.jitterAt(bx, by)
				scale := 1.0 - variance + variance*j
				fx *= scale
				fy *= scale
			}

			line := src[i]

			stretchX := line.EndpointX - restLength
			stretchY := line.EndpointY - restLength
			ax := (fx - springStiffness*stretchX - springDamping*line.VelocityX) / springMass
			ay := (fy - springStiffness*stretchY - springDamping*line.VelocityY) / springMass

			line.VelocityX += ax * dt
			line.VelocityY += ay * dt
			line.EndpointX += line.VelocityX * dt
			line.EndpointY += line.VelocityY * dt

			speed := float32(math.Hypot(float64(line.EndpointX), float64(line.EndpointY)))

			angle := float32(math.Atan2(float64(line.EndpointY), float64(line.EndpointX)))
			r, g, b := p.colors.ColorAt(angle, bx, by)
			for c, target := range [3]float32{r, g, b} {
				accel := colorStiffness*(target-line.Color[c]) - colorDamping*line.ColorVelocity[c]
				line.ColorVelocity[c] += accel * dt
				line.Color[c] += line.ColorVelocity[c] * dt
			}
			line.Color[3] = clamp01(speed * widthResponse)

			targetWidth := lineWidth * clamp01(speed*widthResponse)
			line.Width += (targetWidth - line.Width) * clamp01(widthResponse*dt)

			dst[i] = line
		}
	})

	p.buffer.Swap()
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
