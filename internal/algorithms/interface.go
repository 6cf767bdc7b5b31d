// Adjustment stages applied to every captured frame
package algorithms

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"webcam-tuner/internal/params"
)

// ErrMalformedFrame reports a frame that is not a non-empty 8-bit 3-channel image
var ErrMalformedFrame = errors.New("malformed frame")

// Stage defines the interface for one step of the adjustment pipeline.
// Apply never modifies input; the returned Mat is owned by the caller.
type Stage interface {
	Apply(input gocv.Mat, p params.Params) (gocv.Mat, error)
	GetName() string
	GetDescription() string
}

var stages = make(map[string]Stage)

func Register(name string, stage Stage) {
	stages[name] = stage
}

func Get(name string) (Stage, bool) {
	stage, exists := stages[name]
	return stage, exists
}

// DefaultOrder is the order the adjustment stages run in
func DefaultOrder() []string {
	return []string{"tone", "gamma", "white_balance", "clahe"}
}

// ValidateFrame checks the pipeline precondition on a frame
func ValidateFrame(mat gocv.Mat) error {
	if mat.Empty() {
		return fmt.Errorf("%w: empty buffer", ErrMalformedFrame)
	}
	if mat.Channels() != 3 {
		return fmt.Errorf("%w: %d channels", ErrMalformedFrame, mat.Channels())
	}
	if mat.Type() != gocv.MatTypeCV8UC3 {
		return fmt.Errorf("%w: type %v", ErrMalformedFrame, mat.Type())
	}
	return nil
}

func init() {
	Register("tone", NewToneAdjustment())
	Register("gamma", NewGammaCorrection())
	Register("white_balance", NewWhiteBalance())
	Register("clahe", NewLocalContrast())
}
