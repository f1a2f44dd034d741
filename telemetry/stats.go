package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated field statistics for a window of displayed
// frames.
type WindowStats struct {
	WindowStartFrame int32   `csv:"-"`
	WindowEndFrame   int32   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`

	// Sub-step dispatch
	SubSteps         int     `csv:"sub_steps"`
	SubStepsPerFrame float64 `csv:"sub_steps_per_frame"`

	// Divergence residual after projection
	DivergenceMean float64 `csv:"divergence_mean"`
	DivergenceStd  float64 `csv:"divergence_std"`
	DivergenceMax  float64 `csv:"divergence_max"`

	// Velocity magnitude sampled at window end
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`
}

// StatsWindow accumulates per-frame simulation measurements and aggregates
// them into WindowStats.
type StatsWindow struct {
	startFrame  int32
	frames      int
	subSteps    int
	divergences []float64
}

// NewStatsWindow starts an empty window at the given frame.
func NewStatsWindow(startFrame int32) *StatsWindow {
	return &StatsWindow{startFrame: startFrame}
}

// RecordFrame adds one displayed frame's measurements: how many sub-steps it
// dispatched and the divergence residual after the last projection.
func (w *StatsWindow) RecordFrame(subSteps int, divergence float64) {
	w.frames++
	w.subSteps += subSteps
	if subSteps > 0 {
		w.divergences = append(w.divergences, divergence)
	}
}

// Frames returns the number of frames recorded so far.
func (w *StatsWindow) Frames() int { return w.frames }

// Aggregate computes the window stats. speeds is the velocity magnitude per
// texel sampled at window end; it may be nil.
func (w *StatsWindow) Aggregate(endFrame int32, simTime float64, speeds []float64) WindowStats {
	s := WindowStats{
		WindowStartFrame: w.startFrame,
		WindowEndFrame:   endFrame,
		SimTimeSec:       simTime,
		SubSteps:         w.subSteps,
	}
	if w.frames > 0 {
		s.SubStepsPerFrame = float64(w.subSteps) / float64(w.frames)
	}

	if len(w.divergences) > 0 {
		mean, std := stat.MeanStdDev(w.divergences, nil)
		s.DivergenceMean = mean
		if len(w.divergences) > 1 {
			s.DivergenceStd = std
		}
		for _, d := range w.divergences {
			if d > s.DivergenceMax {
				s.DivergenceMax = d
			}
		}
	}

	if len(speeds) > 0 {
		s.SpeedMean = stat.Mean(speeds, nil)
		sorted := make([]float64, len(speeds))
		copy(sorted, speeds)
		sort.Float64s(sorted)
		s.SpeedP50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
		s.SpeedP90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
		s.SpeedMax = sorted[len(sorted)-1]
	}

	return s
}

// Reset clears the window, starting a new one at the given frame.
func (w *StatsWindow) Reset(startFrame int32) {
	w.startFrame = startFrame
	w.frames = 0
	w.subSteps = 0
	w.divergences = w.divergences[:0]
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartFrame)),
		slog.Int("window_end", int(s.WindowEndFrame)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("sub_steps", s.SubSteps),
		slog.Float64("sub_steps_per_frame", s.SubStepsPerFrame),
		slog.Float64("divergence_mean", s.DivergenceMean),
		slog.Float64("divergence_std", s.DivergenceStd),
		slog.Float64("divergence_max", s.DivergenceMax),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"sim_time", s.SimTimeSec,
		"sub_steps", s.SubSteps,
		"sub_steps_per_frame", s.SubStepsPerFrame,
		"divergence_mean", s.DivergenceMean,
		"divergence_std", s.DivergenceStd,
		"divergence_max", s.DivergenceMax,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"speed_max", s.SpeedMax,
	)
}
