package metrics

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// FrameRateStats summarises the instantaneous frame rate over a window
type FrameRateStats struct {
	Frames    int
	FPSMean   float64
	FPSStdDev float64
	// JitterMean is the mean absolute deviation of frame intervals, in seconds
	JitterMean float64
}

// FrameRate tracks frame timestamps over a sliding window
type FrameRate struct {
	window int
	times  []time.Time
}

// NewFrameRate keeps the last window+1 timestamps
func NewFrameRate(window int) *FrameRate {
	if window < 2 {
		window = 2
	}
	return &FrameRate{
		window: window,
		times:  make([]time.Time, 0, window+1),
	}
}

// Tick records a frame at t
func (f *FrameRate) Tick(t time.Time) {
	f.times = append(f.times, t)
	if len(f.times) > f.window+1 {
		f.times = f.times[len(f.times)-(f.window+1):]
	}
}

// Stats computes the statistics for the recorded window
func (f *FrameRate) Stats() FrameRateStats {
	if len(f.times) < 2 {
		return FrameRateStats{Frames: len(f.times)}
	}

	intervals := make([]float64, 0, len(f.times)-1)
	fps := make([]float64, 0, len(f.times)-1)
	for i := 1; i < len(f.times); i++ {
		dt := f.times[i].Sub(f.times[i-1]).Seconds()
		if dt <= 0 {
			continue
		}
		intervals = append(intervals, dt)
		fps = append(fps, 1.0/dt)
	}

	if len(fps) == 0 {
		return FrameRateStats{Frames: len(f.times)}
	}

	fpsMean, fpsStdDev := stat.MeanStdDev(fps, nil)
	if len(fps) < 2 {
		fpsStdDev = 0
	}

	intervalMean := stat.Mean(intervals, nil)
	deviations := make([]float64, len(intervals))
	for i, dt := range intervals {
		d := dt - intervalMean
		if d < 0 {
			d = -d
		}
		deviations[i] = d
	}

	return FrameRateStats{
		Frames:     len(f.times),
		FPSMean:    fpsMean,
		FPSStdDev:  fpsStdDev,
		JitterMean: stat.Mean(deviations, nil),
	}
}

// Reset drops all recorded timestamps
func (f *FrameRate) Reset() {
	f.times = f.times[:0]
}
