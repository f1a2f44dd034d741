// Package grid derives the basepoint lattice and scaling ratios from the
// logical canvas size.
package grid

import "math"

// referenceColumns is the column count at which the scaling ratio is 1.0.
// Wider or taller canvases scale the fluid/noise feature size up so the flow
// keeps the same visual density.
const referenceColumns = 171.0

// ScalingRatio keeps noise and fluid feature size constant across very wide
// or very tall canvases.
type ScalingRatio struct {
	X, Y float32
}

// NewScalingRatio computes the ratio for a lattice of the given dimensions.
func NewScalingRatio(columns, rows int) ScalingRatio {
	return ScalingRatio{
		X: float32(math.Max(float64(columns)/referenceColumns, 1.0)),
		Y: float32(math.Max(float64(rows)/referenceColumns, 1.0)),
	}
}

// RoundedX returns the X ratio rounded to the nearest integer.
func (s ScalingRatio) RoundedX() int {
	return int(math.Round(float64(s.X)))
}

// RoundedY returns the Y ratio rounded to the nearest integer.
func (s ScalingRatio) RoundedY() int {
	return int(math.Round(float64(s.Y)))
}

// Grid is the immutable basepoint lattice for a given canvas size. It is
// recomputed on resize and read-only everywhere else.
type Grid struct {
	Width, Height int // logical pixels
	AspectRatio   float32
	Columns, Rows int
	LineCount     int
	ScalingRatio  ScalingRatio

	// Basepoints holds interleaved (x, y) anchor positions in [0,1]^2,
	// row-major, length 2*LineCount.
	Basepoints []float32
}

// New lays out the lattice for a canvas of width x height logical pixels with
// the given spacing between anchors.
func New(width, height, gridSpacing int) Grid {
	w := float64(width)
	h := float64(height)
	spacing := float64(gridSpacing)

	columns := math.Floor(w / spacing)
	rows := math.Floor((h / w) * columns)
	spacingX := 1.0 / columns
	spacingY := 1.0 / rows

	cols := int(columns) + 1
	rws := int(rows) + 1
	lineCount := cols * rws

	basepoints := make([]float32, 0, 2*lineCount)
	for v := 0; v < rws; v++ {
		for u := 0; u < cols; u++ {
			basepoints = append(basepoints, float32(float64(u)*spacingX), float32(float64(v)*spacingY))
		}
	}

	return Grid{
		Width:        width,
		Height:       height,
		AspectRatio:  float32(w / h),
		Columns:      cols,
		Rows:         rws,
		LineCount:    lineCount,
		ScalingRatio: NewScalingRatio(cols, rws),
		Basepoints:   basepoints,
	}
}

// ClampLogicalSize scales very small canvases up to a minimum dimension so
// the lattice never degenerates on tiny windows.
func ClampLogicalSize(width, height int) (int, int) {
	w := float64(width)
	h := float64(height)

	const minimumDimension = 800.0
	scale := math.Max(math.Max(minimumDimension/w, minimumDimension/h), 1.0)
	return int(math.Floor(w * scale)), int(math.Floor(h * scale))
}
