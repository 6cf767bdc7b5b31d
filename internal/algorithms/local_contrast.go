// Local contrast equalization on the luminance channel
package algorithms

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"webcam-tuner/internal/params"
)

// LocalContrast runs CLAHE on the L channel of the Lab representation
type LocalContrast struct{}

// NewLocalContrast creates a new CLAHE stage
func NewLocalContrast() *LocalContrast {
	return &LocalContrast{}
}

func (l *LocalContrast) Apply(input gocv.Mat, p params.Params) (gocv.Mat, error) {
	if err := ValidateFrame(input); err != nil {
		return gocv.NewMat(), err
	}

	lab, err := convertColor(input, gocv.ColorBGRToLab)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer lab.Close()

	equalized, err := EqualizeLab(lab, p.ClipLimit, p.GridSize)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer equalized.Close()

	return convertColor(equalized, gocv.ColorLabToBGR)
}

func convertColor(src gocv.Mat, code gocv.ColorConversionCode) (gocv.Mat, error) {
	dst := gocv.NewMat()
	if err := gocv.CvtColor(src, &dst, code); err != nil {
		dst.Close()
		return gocv.NewMat(), fmt.Errorf("clahe: color conversion %d: %w", code, err)
	}
	return dst, nil
}

// EqualizeLab applies CLAHE to channel 0 of a 3-channel Lab Mat and merges
// it back with the A and B channels untouched.
func EqualizeLab(lab gocv.Mat, clipLimit float64, gridSize int) (gocv.Mat, error) {
	if lab.Channels() != 3 {
		return gocv.NewMat(), fmt.Errorf("%w: lab image has %d channels", ErrMalformedFrame, lab.Channels())
	}
	if gridSize <= 0 {
		return gocv.NewMat(), fmt.Errorf("invalid grid size: %d", gridSize)
	}

	channels := gocv.Split(lab)
	defer func() {
		for _, ch := range channels {
			ch.Close()
		}
	}()

	clahe := gocv.NewCLAHEWithParams(clipLimit, image.Pt(gridSize, gridSize))
	defer clahe.Close()

	lEqualized := gocv.NewMat()
	defer lEqualized.Close()
	if err := clahe.Apply(channels[0], &lEqualized); err != nil {
		return gocv.NewMat(), fmt.Errorf("clahe: %w", err)
	}

	output := gocv.NewMat()
	if err := gocv.Merge([]gocv.Mat{lEqualized, channels[1], channels[2]}, &output); err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("clahe: merge: %w", err)
	}

	return output, nil
}

func (l *LocalContrast) GetName() string {
	return "Local Contrast (CLAHE)"
}

func (l *LocalContrast) GetDescription() string {
	return "Contrast-limited adaptive histogram equalization on luminance"
}

// Mirror flips a frame around its vertical axis into dst
func Mirror(src gocv.Mat, dst *gocv.Mat) error {
	if err := ValidateFrame(src); err != nil {
		return err
	}
	if err := gocv.Flip(src, dst, 1); err != nil {
		return fmt.Errorf("mirror: %w", err)
	}
	return nil
}
