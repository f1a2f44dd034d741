package field

import (
	"math"
	"testing"
)

const eps = 1e-6

func TestSampleAtTexelCenters(t *testing.T) {
	f := NewField(4, 4, 1)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			f.Set(x, y, 0, float32(y*4+x))
		}
	}

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			got := f.Sample(float32(x), float32(y), 0)
			want := float32(y*4 + x)
			if math.Abs(float64(got-want)) > eps {
				t.Errorf("Sample(%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestSampleInterpolates(t *testing.T) {
	f := NewField(2, 2, 1)
	f.Set(0, 0, 0, 0)
	f.Set(1, 0, 0, 1)
	f.Set(0, 1, 0, 2)
	f.Set(1, 1, 0, 3)

	tests := []struct {
		name string
		x, y float32
		want float32
	}{
		{"midpoint of top edge", 0.5, 0, 0.5},
		{"midpoint of left edge", 0, 0.5, 1.0},
		{"center", 0.5, 0.5, 1.5},
		{"quarter", 0.25, 0.25, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Sample(tt.x, tt.y, 0)
			if math.Abs(float64(got-tt.want)) > eps {
				t.Errorf("Sample(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestSampleClampsToEdge(t *testing.T) {
	f := NewField(3, 3, 2)
	f.Set(0, 0, 0, 7)
	f.Set(2, 2, 1, 9)

	if got := f.Sample(-5, -5, 0); math.Abs(float64(got-7)) > eps {
		t.Errorf("Sample below range = %v, want 7", got)
	}
	if got := f.Sample(10, 10, 1); math.Abs(float64(got-9)) > eps {
		t.Errorf("Sample above range = %v, want 9", got)
	}
}

func TestFillAndClear(t *testing.T) {
	f := NewField(3, 2, 2)
	f.Fill(1.5, -2.5)

	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if f.At(x, y, 0) != 1.5 || f.At(x, y, 1) != -2.5 {
				t.Fatalf("texel (%d, %d) = (%v, %v) after Fill", x, y, f.At(x, y, 0), f.At(x, y, 1))
			}
		}
	}

	f.Clear()
	for i, v := range f.Data {
		if v != 0 {
			t.Fatalf("Data[%d] = %v after Clear", i, v)
		}
	}
}

func TestFillPartialComponents(t *testing.T) {
	f := NewField(2, 2, 2)
	f.Fill(3)
	if f.At(1, 1, 0) != 3 || f.At(1, 1, 1) != 0 {
		t.Errorf("partial Fill = (%v, %v), want (3, 0)", f.At(1, 1, 0), f.At(1, 1, 1))
	}
}
