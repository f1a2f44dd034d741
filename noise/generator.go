package noise

import (
	"log/slog"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/sandydoo/flux-sub000/config"
	"github.com/sandydoo/flux-sub000/field"
	"github.com/sandydoo/flux-sub000/grid"
	"github.com/sandydoo/flux-sub000/parallel"
)

// yPhaseOffset decorrelates the two force components sampled from the same
// simplex volume.
const yPhaseOffset = 100.0

// Generator evaluates every configured channel into a two-component force
// field sized to the fluid grid.
type Generator struct {
	width  int
	height int

	channels []*Channel
	force    *field.Field
	simplex  opensimplex.Noise
	pool     *parallel.Pool
}

// NewGenerator builds the generator and its force field at the scaled fluid
// size. Channel phases are seeded from rng.
func NewGenerator(cfg *config.Config, ratio grid.ScalingRatio, rng *rand.Rand, pool *parallel.Pool) *Generator {
	width := ratio.RoundedX() * cfg.Fluid.Size
	height := ratio.RoundedY() * cfg.Fluid.Size

	channels := make([]*Channel, len(cfg.NoiseChannels))
	for i, ch := range cfg.NoiseChannels {
		channels[i] = NewChannel(ch, ratio, rng)
	}

	slog.Info("noise generator ready", "width", width, "height", height, "channels", len(channels))
	return &Generator{
		width:    width,
		height:   height,
		channels: channels,
		force:    field.NewField(width, height, 2),
		simplex:  opensimplex.New(rng.Int63()),
		pool:     pool,
	}
}

// Update applies new channel parameters; existing phases are preserved. The
// channel set is fixed at construction, so extra configured channels are
// ignored.
func (g *Generator) Update(cfg *config.Config, ratio grid.ScalingRatio) {
	n := len(cfg.NoiseChannels)
	if n > len(g.channels) {
		n = len(g.channels)
	}
	for i := 0; i < n; i++ {
		g.channels[i].Update(cfg.NoiseChannels[i], ratio)
	}
}

// Resize reallocates the force field at the new scaled size, keeping channel
// phases.
func (g *Generator) Resize(cfg *config.Config, ratio grid.ScalingRatio) {
	width := ratio.RoundedX() * cfg.Fluid.Size
	height := ratio.RoundedY() * cfg.Fluid.Size
	if width == g.width && height == g.height {
		return
	}
	g.width = width
	g.height = height
	g.force = field.NewField(width, height, 2)
	for _, ch := range g.channels {
		ch.Update(ch.settings, ratio)
	}
}

// Channels exposes the running channel state, mainly for tuning tools.
func (g *Generator) Channels() []*Channel { return g.channels }

// Force returns the last generated force field.
func (g *Generator) Force() *field.Field { return g.force }

// Tick advances every channel phase by one sub-step.
func (g *Generator) Tick(elapsedTime float32) {
	for _, ch := range g.channels {
		ch.Tick(elapsedTime)
	}
}

// Generate evaluates all channels into the force field. Each channel samples
// the simplex volume at its two phase offsets and cross-fades between them;
// channels are summed with their multipliers.
func (g *Generator) Generate() {
	width := g.width
	invW := 1.0 / float64(g.width)
	invH := 1.0 / float64(g.height)
	channels := g.channels
	force := g.force

	g.pool.Rows(g.height, func(y int) {
		v := float64(y) * invH
		for x := 0; x < width; x++ {
			u := float64(x) * invW
			var fx, fy float32
			for _, ch := range channels {
				sx := u * float64(ch.ScaleX)
				sy := v * float64(ch.ScaleY)
				blend := float64(ch.BlendFactor)

				ax := g.simplex.Eval3(sx, sy, float64(ch.Offset1))
				ay := g.simplex.Eval3(sx+yPhaseOffset, sy+yPhaseOffset, float64(ch.Offset1))
				if blend > 0 {
					bx := g.simplex.Eval3(sx, sy, float64(ch.Offset2))
					by := g.simplex.Eval3(sx+yPhaseOffset, sy+yPhaseOffset, float64(ch.Offset2))
					ax += blend * (bx - ax)
					ay += blend * (by - ay)
				}
				fx += ch.Multiplier * float32(ax)
				fy += ch.Multiplier * float32(ay)
			}
			i := force.Index(x, y)
			force.Data[i] = fx
			force.Data[i+1] = fy
		}
	})
}

// InjectInto additively blends the generated force into the velocity pair,
// scaled by dt. The write lands before the next solver step's advection
// consumes it.
func (g *Generator) InjectInto(velocity *field.DoubleField, dt float32) {
	width := g.width
	force := g.force
	velocity.DrawTo(func(dst *field.Field) {
		src := velocity.Current()
		g.pool.Rows(g.height, func(y int) {
			for x := 0; x < width; x++ {
				i := dst.Index(x, y)
				dst.Data[i] = src.Data[i] + dt*force.Data[i]
				dst.Data[i+1] = src.Data[i+1] + dt*force.Data[i+1]
			}
		})
	})
}
