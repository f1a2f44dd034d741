// Package field provides the simulation's flat float32 field buffers and the
// double-buffered read/write pairs the solver passes operate on.
package field

// Field is a Width x Height grid of texels with Components float32 values per
// texel, stored row-major. Velocity fields use two components, scalar fields
// (pressure, divergence) one.
type Field struct {
	Width      int
	Height     int
	Components int
	Data       []float32
}

// NewField allocates a zeroed field.
func NewField(width, height, components int) *Field {
	return &Field{
		Width:      width,
		Height:     height,
		Components: components,
		Data:       make([]float32, width*height*components),
	}
}

// Index returns the offset of texel (x, y) into Data.
func (f *Field) Index(x, y int) int {
	return (y*f.Width + x) * f.Components
}

// At returns component c of texel (x, y), clamping coordinates to the edge.
func (f *Field) At(x, y, c int) float32 {
	if x < 0 {
		x = 0
	} else if x >= f.Width {
		x = f.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= f.Height {
		y = f.Height - 1
	}
	return f.Data[(y*f.Width+x)*f.Components+c]
}

// Set writes component c of texel (x, y). Coordinates must be in range.
func (f *Field) Set(x, y, c int, v float32) {
	f.Data[(y*f.Width+x)*f.Components+c] = v
}

// Fill sets every texel's components to the given values. Values beyond
// len(vals) are zeroed.
func (f *Field) Fill(vals ...float32) {
	n := len(f.Data)
	for i := 0; i < n; i++ {
		c := i % f.Components
		if c < len(vals) {
			f.Data[i] = vals[c]
		} else {
			f.Data[i] = 0
		}
	}
}

// Clear zeroes the field.
func (f *Field) Clear() {
	for i := range f.Data {
		f.Data[i] = 0
	}
}

// Sample bilinearly interpolates component c at continuous texel coordinates
// (x, y), where (0, 0) is the center of the corner texel. Samples outside the
// field clamp to the edge.
func (f *Field) Sample(x, y float32, c int) float32 {
	x0f := floor32(x)
	y0f := floor32(y)
	tx := x - x0f
	ty := y - y0f
	x0 := int(x0f)
	y0 := int(y0f)

	s00 := f.At(x0, y0, c)
	s10 := f.At(x0+1, y0, c)
	s01 := f.At(x0, y0+1, c)
	s11 := f.At(x0+1, y0+1, c)

	top := s00 + (s10-s00)*tx
	bottom := s01 + (s11-s01)*tx
	return top + (bottom-top)*ty
}

// SampleNorm bilinearly interpolates component c at normalized coordinates
// (u, v) in [0,1], mapped so that 0 and 1 land on texel centers at the edges.
func (f *Field) SampleNorm(u, v float32, c int) float32 {
	return f.Sample(u*float32(f.Width-1), v*float32(f.Height-1), c)
}

func floor32(v float32) float32 {
	i := float32(int(v))
	if v < i {
		return i - 1
	}
	return i
}
