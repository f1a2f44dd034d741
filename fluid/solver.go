// Package fluid implements the incompressible flow solver: BFECC advection,
// viscous diffusion, and a Jacobi pressure projection over double-buffered
// velocity and pressure fields.
package fluid

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/sandydoo/flux-sub000/config"
	"github.com/sandydoo/flux-sub000/field"
	"github.com/sandydoo/flux-sub000/grid"
	"github.com/sandydoo/flux-sub000/parallel"
)

// Pressure stencil for a unit grid spacing.
const (
	pressureAlpha = -1.0
	pressureRBeta = 0.25
)

// Solver advances the velocity field one fixed timestep at a time. All passes
// run on the worker pool; within a step they execute strictly in the order
// Step lists them.
type Solver struct {
	width  int
	height int

	viscosity           float32
	dissipation         float32
	diffusionIterations int
	pressureIterations  int
	pressureMode        string
	clearPressure       float32

	velocity   *field.DoubleField
	forward    *field.Field
	reverse    *field.Field
	divergence *field.Field
	pressure   *field.DoubleField

	pool *parallel.Pool
}

// NewSolver builds a solver sized to the fluid grid: the configured base size
// scaled by the rounded lattice ratio on each axis.
func NewSolver(cfg *config.Config, ratio grid.ScalingRatio, pool *parallel.Pool) (*Solver, error) {
	width := ratio.RoundedX() * cfg.Fluid.Size
	height := ratio.RoundedY() * cfg.Fluid.Size
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("fluid: invalid texture size %dx%d", width, height)
	}

	s := &Solver{
		width:      width,
		height:     height,
		velocity:   field.NewDoubleField(width, height, 2),
		forward:    field.NewField(width, height, 2),
		reverse:    field.NewField(width, height, 2),
		divergence: field.NewField(width, height, 1),
		pressure:   field.NewDoubleField(width, height, 1),
		pool:       pool,
	}
	s.applySettings(cfg)

	slog.Info("fluid solver ready",
		"width", width,
		"height", height,
		"viscosity", s.viscosity,
		"pressure_mode", s.pressureMode)
	return s, nil
}

// applySettings copies the numeric parameters the passes read every step.
func (s *Solver) applySettings(cfg *config.Config) {
	s.viscosity = cfg.Derived.Viscosity32
	s.dissipation = cfg.Derived.Dissipation32
	s.diffusionIterations = cfg.Fluid.DiffusionIterations
	s.pressureIterations = cfg.Fluid.PressureIterations
	s.pressureMode = cfg.Fluid.PressureMode
	s.clearPressure = float32(cfg.Fluid.ClearPressure)
}

// Update applies new numeric parameters. They take effect on the next step.
func (s *Solver) Update(cfg *config.Config) {
	s.applySettings(cfg)
}

// Resize recreates all fields zeroed at the new scaled size. No-op when the
// size is unchanged.
func (s *Solver) Resize(cfg *config.Config, ratio grid.ScalingRatio) {
	width := ratio.RoundedX() * cfg.Fluid.Size
	height := ratio.RoundedY() * cfg.Fluid.Size
	if width == s.width && height == s.height {
		return
	}

	s.width = width
	s.height = height
	s.velocity = field.NewDoubleField(width, height, 2)
	s.forward = field.NewField(width, height, 2)
	s.reverse = field.NewField(width, height, 2)
	s.divergence = field.NewField(width, height, 1)
	s.pressure = field.NewDoubleField(width, height, 1)

	slog.Info("fluid solver resized", "width", width, "height", height)
}

// Width returns the fluid texture width.
func (s *Solver) Width() int { return s.width }

// Height returns the fluid texture height.
func (s *Solver) Height() int { return s.height }

// Velocity exposes the velocity pair for noise injection and sampling.
func (s *Solver) Velocity() *field.DoubleField { return s.velocity }

// Pressure returns the current pressure field.
func (s *Solver) Pressure() *field.Field { return s.pressure.Current() }

// Divergence returns the divergence field from the latest step.
func (s *Solver) Divergence() *field.Field { return s.divergence }

// Step runs one full sub-step. The caller injects forcing into the velocity
// pair before calling; after Step returns, Velocity().Current() is the
// authoritative field for this tick.
func (s *Solver) Step(dt float32) {
	s.AdvectForward(dt)
	s.AdvectReverse(dt)
	s.AdjustAdvection(dt)
	s.Diffuse(dt)
	s.CalculateDivergence()
	s.SolvePressure()
	s.SubtractGradient()
}

// advect traces each texel backward along vel by amount and samples vel there.
func (s *Solver) advect(dst *field.Field, vel *field.Field, amount float32) {
	width := s.width
	s.pool.Rows(s.height, func(y int) {
		for x := 0; x < width; x++ {
			i := dst.Index(x, y)
			vx := vel.Data[i]
			vy := vel.Data[i+1]
			px := float32(x) - amount*vx
			py := float32(y) - amount*vy
			dst.Data[i] = vel.Sample(px, py, 0)
			dst.Data[i+1] = vel.Sample(px, py, 1)
		}
	})
}

// AdvectForward writes the +dt semi-Lagrangian trace of the current velocity
// into the forward scratch field.
func (s *Solver) AdvectForward(dt float32) {
	s.advect(s.forward, s.velocity.Current(), dt)
}

// AdvectReverse writes the -dt trace into the reverse scratch field. It reads
// the same pre-advection snapshot as AdvectForward.
func (s *Solver) AdvectReverse(dt float32) {
	s.advect(s.reverse, s.velocity.Current(), -dt)
}

// AdjustAdvection combines the forward and reverse traces with the original
// velocity to cancel the first-order advection error, applies dissipation
// decay, and promotes the corrected field.
func (s *Solver) AdjustAdvection(dt float32) {
	decay := 1.0 / (1.0 + s.dissipation*dt)
	width := s.width
	s.velocity.DrawTo(func(dst *field.Field) {
		original := s.velocity.Current()
		forward := s.forward
		reverse := s.reverse
		s.pool.Rows(s.height, func(y int) {
			for x := 0; x < width; x++ {
				i := dst.Index(x, y)
				dst.Data[i] = decay * (forward.Data[i] + 0.5*(original.Data[i]-reverse.Data[i]))
				dst.Data[i+1] = decay * (forward.Data[i+1] + 0.5*(original.Data[i+1]-reverse.Data[i+1]))
			}
		})
	})
}

// Diffuse runs the configured number of Jacobi iterations solving the
// implicit viscosity equation.
func (s *Solver) Diffuse(dt float32) {
	centerFactor := 1.0 / (s.viscosity * dt)
	stencilFactor := 1.0 / (4.0 + centerFactor)
	width := s.width

	for n := 0; n < s.diffusionIterations; n++ {
		s.velocity.DrawTo(func(dst *field.Field) {
			src := s.velocity.Current()
			s.pool.Rows(s.height, func(y int) {
				for x := 0; x < width; x++ {
					i := dst.Index(x, y)
					for c := 0; c < 2; c++ {
						neighbors := src.At(x-1, y, c) + src.At(x+1, y, c) +
							src.At(x, y-1, c) + src.At(x, y+1, c)
						dst.Data[i+c] = (neighbors + centerFactor*src.At(x, y, c)) * stencilFactor
					}
				}
			})
		})
	}
}

// CalculateDivergence writes the central-difference divergence of the current
// velocity into the divergence field.
func (s *Solver) CalculateDivergence() {
	vel := s.velocity.Current()
	div := s.divergence
	width := s.width
	s.pool.Rows(s.height, func(y int) {
		for x := 0; x < width; x++ {
			dx := vel.At(x+1, y, 0) - vel.At(x-1, y, 0)
			dy := vel.At(x, y+1, 1) - vel.At(x, y-1, 1)
			div.Data[div.Index(x, y)] = 0.5 * (dx + dy)
		}
	})
}

// SolvePressure relaxes the pressure Poisson equation against the divergence
// field. Depending on the pressure mode the field is first cleared to a
// constant or retained from the previous step as the initial guess.
func (s *Solver) SolvePressure() {
	if s.pressureMode == config.PressureClear {
		s.pressure.FillBoth(s.clearPressure)
	}

	div := s.divergence
	width := s.width
	for n := 0; n < s.pressureIterations; n++ {
		s.pressure.DrawTo(func(dst *field.Field) {
			src := s.pressure.Current()
			s.pool.Rows(s.height, func(y int) {
				for x := 0; x < width; x++ {
					neighbors := src.At(x-1, y, 0) + src.At(x+1, y, 0) +
						src.At(x, y-1, 0) + src.At(x, y+1, 0)
					b := div.Data[div.Index(x, y)]
					dst.Data[dst.Index(x, y)] = (neighbors + pressureAlpha*b) * pressureRBeta
				}
			})
		})
	}
}

// SubtractGradient projects the velocity onto its divergence-free component
// by subtracting the pressure gradient.
func (s *Solver) SubtractGradient() {
	width := s.width
	s.velocity.DrawTo(func(dst *field.Field) {
		vel := s.velocity.Current()
		p := s.pressure.Current()
		s.pool.Rows(s.height, func(y int) {
			for x := 0; x < width; x++ {
				gradX := 0.5 * (p.At(x+1, y, 0) - p.At(x-1, y, 0))
				gradY := 0.5 * (p.At(x, y+1, 0) - p.At(x, y-1, 0))
				i := dst.Index(x, y)
				dst.Data[i] = vel.Data[i] - gradX
				dst.Data[i+1] = vel.Data[i+1] - gradY
			}
		})
	})
}

// MeanAbsDivergence reports the mean absolute divergence of the latest step,
// a cheap residual diagnostic for telemetry.
func (s *Solver) MeanAbsDivergence() float64 {
	abs := make([]float64, len(s.divergence.Data))
	for i, v := range s.divergence.Data {
		if v < 0 {
			abs[i] = float64(-v)
		} else {
			abs[i] = float64(v)
		}
	}
	return stat.Mean(abs, nil)
}
