// Per-sample intensity adjustments
package algorithms

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"webcam-tuner/internal/params"
)

// ToneAdjustment implements the linear contrast/brightness remap
type ToneAdjustment struct{}

// NewToneAdjustment creates a new tone adjustment stage
func NewToneAdjustment() *ToneAdjustment {
	return &ToneAdjustment{}
}

// Apply computes clamp(round(x*contrast + brightness), 0, 255) per sample.
// ConvertTo saturates, so negative results clamp to 0 rather than folding.
func (t *ToneAdjustment) Apply(input gocv.Mat, p params.Params) (gocv.Mat, error) {
	if err := ValidateFrame(input); err != nil {
		return gocv.NewMat(), err
	}

	output := gocv.NewMat()
	if err := input.ConvertToWithParams(&output, gocv.MatTypeCV8UC3, float32(p.Contrast), float32(p.Brightness)); err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("tone: %w", err)
	}

	return output, nil
}

func (t *ToneAdjustment) GetName() string {
	return "Tone Adjustment"
}

func (t *ToneAdjustment) GetDescription() string {
	return "Linear gain and offset (contrast/brightness)"
}

// GammaCorrection implements the power-law remap through a lookup table
type GammaCorrection struct{}

// NewGammaCorrection creates a new gamma correction stage
func NewGammaCorrection() *GammaCorrection {
	return &GammaCorrection{}
}

// GammaTable returns lut[x] = clamp(round((x/255)^gamma * 255)).
// Entry 0 is always 0, so with gamma 0 black stays black while every
// other sample goes to 255.
func GammaTable(gamma float64) [256]uint8 {
	var lut [256]uint8
	for i := 1; i < 256; i++ {
		v := math.Pow(float64(i)/255.0, gamma) * 255.0
		lut[i] = clampToByte(v)
	}
	return lut
}

func (g *GammaCorrection) Apply(input gocv.Mat, p params.Params) (gocv.Mat, error) {
	if err := ValidateFrame(input); err != nil {
		return gocv.NewMat(), err
	}

	table := GammaTable(p.Gamma)
	lut := gocv.NewMatWithSize(1, 256, gocv.MatTypeCV8U)
	defer lut.Close()
	for i, v := range table {
		lut.SetUCharAt(0, i, v)
	}

	return applyLookup(input, lut)
}

// applyLookup maps every sample of input through a 1x256 table
func applyLookup(input, lut gocv.Mat) (gocv.Mat, error) {
	output := gocv.NewMat()
	if err := gocv.LUT(input, lut, &output); err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("gamma: %w", err)
	}
	return output, nil
}

func (g *GammaCorrection) GetName() string {
	return "Gamma Correction"
}

func (g *GammaCorrection) GetDescription() string {
	return "Per-sample power-law remap"
}

// WhiteBalance blends the frame with a zero frame and adds a uniform bias.
// Blue scales the whole frame and red is a flat offset on every channel;
// this is the tool's historical behaviour, not a per-channel balance.
type WhiteBalance struct{}

// NewWhiteBalance creates a new white balance stage
func NewWhiteBalance() *WhiteBalance {
	return &WhiteBalance{}
}

func (w *WhiteBalance) Apply(input gocv.Mat, p params.Params) (gocv.Mat, error) {
	if err := ValidateFrame(input); err != nil {
		return gocv.NewMat(), err
	}

	zeros := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), input.Rows(), input.Cols(), input.Type())
	defer zeros.Close()

	return blendWithBias(input, zeros, float64(p.WhiteBalanceBlue)/255.0, float64(p.WhiteBalanceRed)/255.0)
}

// blendWithBias computes input*weight + zeros*0 + bias, saturating
func blendWithBias(input, zeros gocv.Mat, weight, bias float64) (gocv.Mat, error) {
	output := gocv.NewMat()
	if err := gocv.AddWeighted(input, weight, zeros, 0, bias, &output); err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("white balance: %w", err)
	}
	return output, nil
}

func (w *WhiteBalance) GetName() string {
	return "White Balance"
}

func (w *WhiteBalance) GetDescription() string {
	return "Global weight (blue) and uniform bias (red)"
}

func clampToByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
