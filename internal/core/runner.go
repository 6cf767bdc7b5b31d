// internal/core/runner.go
// Capture → mirror → adjust → present loop
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"webcam-tuner/internal/algorithms"
	"webcam-tuner/internal/metrics"
	"webcam-tuner/internal/params"
)

// ErrCaptureFailed is returned when the source stops delivering frames
var ErrCaptureFailed = errors.New("capture failed")

// FrameSource yields one BGR frame per call
type FrameSource interface {
	Read(dst *gocv.Mat) bool
	Close() error
}

// DisplaySink shows frames and reports the quit input
type DisplaySink interface {
	Present(frame gocv.Mat) error
	PollQuit(timeout time.Duration) bool
	Close() error
}

// ControlSurface hands over slider changes since the last call
type ControlSurface interface {
	Updates() []params.Update
}

// State of the main loop
type State int

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// RunnerOptions tunes the loop
type RunnerOptions struct {
	PollInterval time.Duration
	// MaxCaptureFailures is how many consecutive failed reads are skipped
	// before the loop stops; 0 stops on the first failure.
	MaxCaptureFailures int
	// StatsInterval logs frame diagnostics every N frames at debug level; 0 disables
	StatsInterval int
}

// Runner owns the parameter record and drives one frame per tick
type Runner struct {
	source   FrameSource
	sink     DisplaySink
	controls ControlSurface
	pipeline *Pipeline
	params   *params.Params
	logger   *logrus.Logger
	opts     RunnerOptions

	state     State
	frames    uint64
	failures  int
	info      FrameInfo
	frameRate *metrics.FrameRate
	evaluator *metrics.Evaluator
}

func NewRunner(source FrameSource, sink DisplaySink, controls ControlSurface, pipeline *Pipeline,
	prm *params.Params, logger *logrus.Logger, opts RunnerOptions) *Runner {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Millisecond
	}

	window := opts.StatsInterval
	if window <= 0 {
		window = 30
	}

	return &Runner{
		source:    source,
		sink:      sink,
		controls:  controls,
		pipeline:  pipeline,
		params:    prm,
		logger:    logger,
		opts:      opts,
		state:     Running,
		frameRate: metrics.NewFrameRate(window),
		evaluator: metrics.NewEvaluator(),
	}
}

// State reports the current loop state
func (r *Runner) State() State {
	return r.state
}

// Frames reports how many frames were presented
func (r *Runner) Frames() uint64 {
	return r.frames
}

// Params returns the live parameter record
func (r *Runner) Params() *params.Params {
	return r.params
}

// Run loops until quit, context cancellation or a fatal error, then releases
// the source and the sink. A user quit returns nil.
func (r *Runner) Run(ctx context.Context) (err error) {
	r.logger.WithFields(logrus.Fields{
		"poll_interval":        r.opts.PollInterval,
		"max_capture_failures": r.opts.MaxCaptureFailures,
	}).Info("Main loop started")

	defer func() {
		r.state = Stopped
		r.teardown()
		r.logger.WithFields(logrus.Fields{
			"frames": r.frames,
			"error":  err,
		}).Info("Main loop stopped")
	}()

	frame := gocv.NewMat()
	defer frame.Close()
	mirrored := gocv.NewMat()
	defer mirrored.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		quit, err := r.Tick(&frame, &mirrored)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// Tick runs one iteration using the caller's scratch buffers and reports
// whether quit was requested.
func (r *Runner) Tick(frame, mirrored *gocv.Mat) (bool, error) {
	if r.controls != nil {
		for _, u := range r.controls.Updates() {
			r.params.Apply(u)
			r.logger.WithField("update", u.String()).Debug("Parameter changed")
		}
	}

	if !r.source.Read(frame) || frame.Empty() {
		r.failures++
		// a capture gap is not a slow frame
		r.frameRate.Reset()
		r.logger.WithField("consecutive_failures", r.failures).Warn("Frame capture failed")
		if r.failures > r.opts.MaxCaptureFailures {
			return false, fmt.Errorf("%w: %d consecutive failed reads", ErrCaptureFailed, r.failures)
		}
		return r.sink.PollQuit(r.opts.PollInterval), nil
	}
	r.failures = 0

	if changed := r.info.Update(*frame); changed {
		r.logger.WithFields(logrus.Fields{
			"width":    r.info.Width,
			"height":   r.info.Height,
			"channels": r.info.Channels,
		}).Info("Frame format")
	}

	if err := algorithms.Mirror(*frame, mirrored); err != nil {
		return false, err
	}

	result, err := r.pipeline.Process(*mirrored, r.params.Snapshot())
	if err != nil {
		return false, err
	}
	defer result.Close()

	if err := r.sink.Present(result); err != nil {
		return false, fmt.Errorf("present frame: %w", err)
	}
	r.frames++
	r.recordStats(*mirrored, result)

	return r.sink.PollQuit(r.opts.PollInterval), nil
}

func (r *Runner) recordStats(input, output gocv.Mat) {
	if r.opts.StatsInterval <= 0 || !r.logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}

	r.frameRate.Tick(time.Now())
	if r.frames%uint64(r.opts.StatsInterval) != 0 {
		return
	}

	stats := r.frameRate.Stats()
	fields := logrus.Fields{
		"frames":      r.frames,
		"fps_mean":    stats.FPSMean,
		"fps_stddev":  stats.FPSStdDev,
		"jitter_mean": stats.JitterMean,
		"params":      fmt.Sprintf("%+v", r.params.Snapshot()),
	}
	for name, value := range r.evaluator.CalculateAll(input, output) {
		fields[name] = value
	}
	r.logger.WithFields(fields).Debug("Frame statistics")
	r.pipeline.Debugger().LogSummary()
}

func (r *Runner) teardown() {
	if err := r.source.Close(); err != nil {
		r.logger.WithError(err).Warn("Failed to release frame source")
	}
	if err := r.sink.Close(); err != nil {
		r.logger.WithError(err).Warn("Failed to close display")
	}
}
