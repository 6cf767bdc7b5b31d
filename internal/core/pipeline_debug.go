// internal/core/pipeline_debug.go
// Per-stage timing, logged at debug level
package core

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineOperation records one stage execution
type PipelineOperation struct {
	Timestamp time.Time
	Stage     string
	Success   bool
	Duration  time.Duration
	Error     string
}

// PipelineDebugger keeps a bounded history of stage executions
type PipelineDebugger struct {
	logger  *logrus.Logger
	enabled bool

	operations    []PipelineOperation
	maxOperations int
	stageTimes    map[string][]time.Duration
}

func NewPipelineDebugger(logger *logrus.Logger) *PipelineDebugger {
	return &PipelineDebugger{
		logger:        logger,
		enabled:       logger.IsLevelEnabled(logrus.DebugLevel),
		operations:    make([]PipelineOperation, 0),
		maxOperations: 512,
		stageTimes:    make(map[string][]time.Duration),
	}
}

func (pd *PipelineDebugger) Enable() {
	pd.enabled = true
}

func (pd *PipelineDebugger) Disable() {
	pd.enabled = false
}

func (pd *PipelineDebugger) IsEnabled() bool {
	return pd.enabled
}

// LogStage records a stage execution
func (pd *PipelineDebugger) LogStage(stage string, duration time.Duration, err error) {
	if !pd.enabled {
		return
	}

	errorStr := ""
	if err != nil {
		errorStr = err.Error()
	}

	pd.operations = append(pd.operations, PipelineOperation{
		Timestamp: time.Now(),
		Stage:     stage,
		Success:   err == nil,
		Duration:  duration,
		Error:     errorStr,
	})
	if len(pd.operations) > pd.maxOperations {
		pd.operations = pd.operations[len(pd.operations)-pd.maxOperations:]
	}

	times := append(pd.stageTimes[stage], duration)
	if len(times) > pd.maxOperations {
		times = times[len(times)-pd.maxOperations:]
	}
	pd.stageTimes[stage] = times

	if err != nil {
		pd.logger.WithFields(logrus.Fields{
			"stage":       stage,
			"duration_us": duration.Microseconds(),
			"error":       errorStr,
		}).Error("Pipeline stage failed")
	}
}

// Operations returns the recorded history, oldest first
func (pd *PipelineDebugger) Operations() []PipelineOperation {
	result := make([]PipelineOperation, len(pd.operations))
	copy(result, pd.operations)
	return result
}

// AverageDurations returns the mean duration per stage
func (pd *PipelineDebugger) AverageDurations() map[string]time.Duration {
	result := make(map[string]time.Duration, len(pd.stageTimes))
	for stage, times := range pd.stageTimes {
		if len(times) == 0 {
			continue
		}
		var total time.Duration
		for _, d := range times {
			total += d
		}
		result[stage] = total / time.Duration(len(times))
	}
	return result
}

// LogSummary writes the average stage durations and resets the history
func (pd *PipelineDebugger) LogSummary() {
	if !pd.enabled {
		return
	}

	averages := pd.AverageDurations()
	stages := make([]string, 0, len(averages))
	for stage := range averages {
		stages = append(stages, stage)
	}
	sort.Strings(stages)

	fields := logrus.Fields{}
	for _, stage := range stages {
		fields[stage+"_us"] = averages[stage].Microseconds()
	}
	pd.logger.WithFields(fields).Debug("Pipeline stage timings")

	pd.operations = pd.operations[:0]
	pd.stageTimes = make(map[string][]time.Duration)
}
