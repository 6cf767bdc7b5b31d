package core

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"webcam-tuner/internal/algorithms"
	"webcam-tuner/internal/params"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func grayFrame(t *testing.T, rows, cols int, value float64) gocv.Mat {
	t.Helper()
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(value, value, value, 0), rows, cols, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { mat.Close() })
	return mat
}

func TestNewPipelineDefaultsToFourStages(t *testing.T) {
	p, err := NewPipeline(quietLogger())
	require.NoError(t, err)

	names := make([]string, 0)
	for _, step := range p.Steps() {
		names = append(names, step.Name)
		assert.True(t, step.Enabled)
	}
	assert.Equal(t, algorithms.DefaultOrder(), names)

	_, err = NewPipeline(quietLogger(), "tone", "blur")
	assert.Error(t, err)
}

func TestMidGrayBrightnessScenario(t *testing.T) {
	input := grayFrame(t, 100, 100, 128)
	prm := params.Default()
	prm.SetBrightness(120)

	tone, err := NewPipeline(quietLogger(), "tone")
	require.NoError(t, err)
	toned, err := tone.Process(input, prm.Snapshot())
	require.NoError(t, err)
	defer toned.Close()
	for i, v := range toned.ToBytes() {
		if v != 148 {
			t.Fatalf("tone sample %d = %d, want 148", i, v)
		}
	}

	full, err := NewPipeline(quietLogger())
	require.NoError(t, err)
	output, err := full.Process(input, prm.Snapshot())
	require.NoError(t, err)
	defer output.Close()

	assert.Equal(t, 100, output.Rows())
	assert.Equal(t, 100, output.Cols())
	assert.Equal(t, gocv.MatTypeCV8UC3, output.Type())
	assert.Len(t, output.ToBytes(), 100*100*3)

	// the source frame is left untouched
	assert.Equal(t, byte(128), input.ToBytes()[0])
}

func TestDisabledStagesAreSkipped(t *testing.T) {
	p, err := NewPipeline(quietLogger())
	require.NoError(t, err)
	for _, name := range algorithms.DefaultOrder() {
		require.NoError(t, p.setEnabled(name, false))
	}
	assert.Error(t, p.setEnabled("blur", false))

	input := grayFrame(t, 10, 10, 42)
	output, err := p.Process(input, *params.Default())
	require.NoError(t, err)
	defer output.Close()

	assert.Equal(t, input.ToBytes(), output.ToBytes())
}

// brokenStage fails the way a library call inside a stage would
type brokenStage struct{}

func (brokenStage) Apply(gocv.Mat, params.Params) (gocv.Mat, error) {
	return gocv.NewMat(), errors.New("opencv: assertion failed")
}

func (brokenStage) GetName() string        { return "Broken" }
func (brokenStage) GetDescription() string { return "always fails" }

func TestPipelineWrapsStageErrors(t *testing.T) {
	p, err := NewPipeline(quietLogger(), "tone")
	require.NoError(t, err)
	p.steps = append(p.steps, ProcessingStep{Name: "broken", Stage: brokenStage{}, Enabled: true})

	_, err = p.Process(grayFrame(t, 4, 4, 10), *params.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage broken")
	assert.Contains(t, err.Error(), "assertion failed")
	assert.NotErrorIs(t, err, algorithms.ErrMalformedFrame)
}

func TestPipelineRejectsMalformedFrame(t *testing.T) {
	p, err := NewPipeline(quietLogger())
	require.NoError(t, err)

	gray := gocv.NewMatWithSize(8, 8, gocv.MatTypeCV8U)
	defer gray.Close()

	_, err = p.Process(gray, *params.Default())
	assert.ErrorIs(t, err, algorithms.ErrMalformedFrame)
}

func TestPipelineDebuggerRecordsStages(t *testing.T) {
	logger := quietLogger()
	logger.SetLevel(logrus.DebugLevel)

	p, err := NewPipeline(logger)
	require.NoError(t, err)
	require.True(t, p.Debugger().IsEnabled())

	output, err := p.Process(grayFrame(t, 16, 16, 90), *params.Default())
	require.NoError(t, err)
	output.Close()

	ops := p.Debugger().Operations()
	require.Len(t, ops, 4)
	for i, name := range algorithms.DefaultOrder() {
		assert.Equal(t, name, ops[i].Stage)
		assert.True(t, ops[i].Success)
	}
	assert.Len(t, p.Debugger().AverageDurations(), 4)

	p.Debugger().LogSummary()
	assert.Empty(t, p.Debugger().Operations())
}

func TestPipelineDebuggerBoundsHistory(t *testing.T) {
	d := NewPipelineDebugger(quietLogger())
	d.Enable()
	for i := 0; i < 600; i++ {
		d.LogStage("tone", time.Microsecond, nil)
	}
	assert.Len(t, d.Operations(), 512)
	assert.Equal(t, time.Microsecond, d.AverageDurations()["tone"])

	d.Disable()
	d.LogStage("tone", time.Second, nil)
	assert.Len(t, d.Operations(), 512)
}
