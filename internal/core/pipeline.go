// internal/core/pipeline.go
// Adjustment pipeline: ordered stages applied to one frame
package core

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"webcam-tuner/internal/algorithms"
	"webcam-tuner/internal/params"
)

// ProcessingStep is one named stage of the pipeline
type ProcessingStep struct {
	Name    string
	Stage   algorithms.Stage
	Enabled bool
}

// Pipeline runs its steps strictly in order; each output feeds the next step
type Pipeline struct {
	steps    []ProcessingStep
	logger   *logrus.Logger
	debugger *PipelineDebugger
}

// NewPipeline builds a pipeline from registered stage names
func NewPipeline(logger *logrus.Logger, names ...string) (*Pipeline, error) {
	if len(names) == 0 {
		names = algorithms.DefaultOrder()
	}

	p := &Pipeline{
		steps:    make([]ProcessingStep, 0, len(names)),
		logger:   logger,
		debugger: NewPipelineDebugger(logger),
	}

	for _, name := range names {
		stage, ok := algorithms.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown stage: %s", name)
		}
		p.steps = append(p.steps, ProcessingStep{Name: name, Stage: stage, Enabled: true})
		logger.WithFields(logrus.Fields{
			"stage": name,
			"title": stage.GetName(),
		}).Debug(stage.GetDescription())
	}

	logger.WithField("stages", names).Debug("Pipeline created")
	return p, nil
}

// Steps returns the configured steps in order
func (p *Pipeline) Steps() []ProcessingStep {
	result := make([]ProcessingStep, len(p.steps))
	copy(result, p.steps)
	return result
}

// setEnabled toggles a step by name
func (p *Pipeline) setEnabled(name string, enabled bool) error {
	for i := range p.steps {
		if p.steps[i].Name == name {
			p.steps[i].Enabled = enabled
			return nil
		}
	}
	return fmt.Errorf("unknown stage: %s", name)
}

// Debugger exposes the per-stage timing recorder
func (p *Pipeline) Debugger() *PipelineDebugger {
	return p.debugger
}

// Process applies every enabled step to input. input is never modified and
// the returned Mat is owned by the caller.
func (p *Pipeline) Process(input gocv.Mat, prm params.Params) (gocv.Mat, error) {
	if err := algorithms.ValidateFrame(input); err != nil {
		return gocv.NewMat(), err
	}

	current := input.Clone()
	for _, step := range p.steps {
		if !step.Enabled {
			continue
		}

		start := time.Now()
		next, err := step.Stage.Apply(current, prm)
		current.Close()
		p.debugger.LogStage(step.Name, time.Since(start), err)

		if err != nil {
			next.Close()
			return gocv.NewMat(), fmt.Errorf("stage %s: %w", step.Name, err)
		}
		current = next
	}

	return current, nil
}
