package metrics

import (
	"fmt"

	"gocv.io/x/gocv"
)

// ContrastRatio compares luminance standard deviation after/before
type ContrastRatio struct{}

// NewContrastRatio creates a new contrast ratio metric
func NewContrastRatio() *ContrastRatio {
	return &ContrastRatio{}
}

func (c *ContrastRatio) Calculate(original, processed gocv.Mat) (float64, error) {
	if original.Empty() || processed.Empty() {
		return 0, fmt.Errorf("empty images")
	}

	_, origStdDev, err := grayMeanStdDev(original)
	if err != nil {
		return 0, err
	}
	_, procStdDev, err := grayMeanStdDev(processed)
	if err != nil {
		return 0, err
	}

	if origStdDev == 0 {
		return 1.0, nil
	}

	return procStdDev / origStdDev, nil
}

// MeanShift reports how far mean luminance moved
type MeanShift struct{}

// NewMeanShift creates a new mean shift metric
func NewMeanShift() *MeanShift {
	return &MeanShift{}
}

func (m *MeanShift) Calculate(original, processed gocv.Mat) (float64, error) {
	if original.Empty() || processed.Empty() {
		return 0, fmt.Errorf("empty images")
	}

	origMean, _, err := grayMeanStdDev(original)
	if err != nil {
		return 0, err
	}
	procMean, _, err := grayMeanStdDev(processed)
	if err != nil {
		return 0, err
	}

	return procMean - origMean, nil
}

// MSE implements mean squared error over all samples
type MSE struct{}

// NewMSE creates a new MSE metric
func NewMSE() *MSE {
	return &MSE{}
}

func (m *MSE) Calculate(original, processed gocv.Mat) (float64, error) {
	if original.Empty() || processed.Empty() {
		return 0, fmt.Errorf("empty images")
	}

	if original.Rows() != processed.Rows() || original.Cols() != processed.Cols() ||
		original.Type() != processed.Type() {
		return 0, fmt.Errorf("image size mismatch")
	}

	diff := gocv.NewMat()
	defer diff.Close()
	if err := gocv.AbsDiff(original, processed, &diff); err != nil {
		return 0, fmt.Errorf("mse: %w", err)
	}

	diffF := gocv.NewMat()
	defer diffF.Close()
	if err := diff.ConvertTo(&diffF, gocv.MatTypeCV64F); err != nil {
		return 0, fmt.Errorf("mse: %w", err)
	}

	squared := gocv.NewMat()
	defer squared.Close()
	if err := gocv.Multiply(diffF, diffF, &squared); err != nil {
		return 0, fmt.Errorf("mse: %w", err)
	}

	s := squared.Mean()
	channels := original.Channels()
	sum := s.Val1 + s.Val2 + s.Val3 + s.Val4

	return sum / float64(channels), nil
}

// grayMeanStdDev returns mean and standard deviation of the luminance
func grayMeanStdDev(input gocv.Mat) (float64, float64, error) {
	gray := input
	if input.Channels() != 1 {
		gray = gocv.NewMat()
		defer gray.Close()
		if err := gocv.CvtColor(input, &gray, gocv.ColorBGRToGray); err != nil {
			return 0, 0, fmt.Errorf("luminance: %w", err)
		}
	}

	mean := gocv.NewMat()
	defer mean.Close()
	stdDev := gocv.NewMat()
	defer stdDev.Close()
	if err := gocv.MeanStdDev(gray, &mean, &stdDev); err != nil {
		return 0, 0, fmt.Errorf("luminance: %w", err)
	}

	return mean.GetDoubleAt(0, 0), stdDev.GetDoubleAt(0, 0), nil
}
