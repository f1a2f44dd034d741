package telemetry

import (
	"math"
	"testing"
)

func TestAggregateSpeedQuantiles(t *testing.T) {
	tests := []struct {
		name    string
		speeds  []float64
		wantP50 float64
		wantP90 float64
	}{
		{"single element", []float64{5}, 5, 5},
		{"odd count", []float64{1, 2, 3, 4, 5}, 3, 5},
		{"even count", []float64{4, 2, 1, 3}, 2, 4},
		{"ten elements", []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, 5, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewStatsWindow(0)
			stats := w.Aggregate(0, 0, tt.speeds)
			if math.Abs(stats.SpeedP50-tt.wantP50) > 1e-9 {
				t.Errorf("SpeedP50 = %v, want %v", stats.SpeedP50, tt.wantP50)
			}
			if math.Abs(stats.SpeedP90-tt.wantP90) > 1e-9 {
				t.Errorf("SpeedP90 = %v, want %v", stats.SpeedP90, tt.wantP90)
			}
		})
	}
}

func TestStatsWindowAggregate(t *testing.T) {
	w := NewStatsWindow(0)
	w.RecordFrame(1, 0.002)
	w.RecordFrame(2, 0.004)
	w.RecordFrame(0, 0) // frame with no sub-steps contributes no residual

	speeds := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	stats := w.Aggregate(3, 0.05, speeds)

	if stats.SubSteps != 3 {
		t.Errorf("SubSteps = %d, want 3", stats.SubSteps)
	}
	if math.Abs(stats.SubStepsPerFrame-1.0) > 0.001 {
		t.Errorf("SubStepsPerFrame = %v, want 1.0", stats.SubStepsPerFrame)
	}
	if math.Abs(stats.DivergenceMean-0.003) > 1e-9 {
		t.Errorf("DivergenceMean = %v, want 0.003", stats.DivergenceMean)
	}
	if math.Abs(stats.DivergenceMax-0.004) > 1e-9 {
		t.Errorf("DivergenceMax = %v, want 0.004", stats.DivergenceMax)
	}
	if math.Abs(stats.SpeedMean-0.3) > 0.001 {
		t.Errorf("SpeedMean = %v, want 0.3", stats.SpeedMean)
	}
	if math.Abs(stats.SpeedP50-0.3) > 0.001 {
		t.Errorf("SpeedP50 = %v, want 0.3", stats.SpeedP50)
	}
	if stats.SpeedMax != 0.5 {
		t.Errorf("SpeedMax = %v, want 0.5", stats.SpeedMax)
	}
}

func TestStatsWindowReset(t *testing.T) {
	w := NewStatsWindow(0)
	w.RecordFrame(3, 0.01)
	w.Reset(100)

	if w.Frames() != 0 {
		t.Errorf("Frames after reset = %d, want 0", w.Frames())
	}
	stats := w.Aggregate(100, 0, nil)
	if stats.SubSteps != 0 || stats.DivergenceMean != 0 {
		t.Error("reset window carried over data")
	}
	if stats.WindowStartFrame != 100 {
		t.Errorf("WindowStartFrame = %d, want 100", stats.WindowStartFrame)
	}
}

func TestStatsWindowEmptyAggregate(t *testing.T) {
	w := NewStatsWindow(0)
	stats := w.Aggregate(0, 0, nil)
	if stats.SubStepsPerFrame != 0 || stats.SpeedMean != 0 {
		t.Error("empty window should aggregate to zeros")
	}
}
