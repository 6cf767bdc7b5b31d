package algorithms

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"webcam-tuner/internal/params"
)

func solidFrame(t *testing.T, rows, cols int, value float64) gocv.Mat {
	t.Helper()
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(value, value, value, 0), rows, cols, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { mat.Close() })
	return mat
}

func gradientFrame(t *testing.T, rows, cols int) gocv.Mat {
	t.Helper()
	data := make([]byte, rows*cols*3)
	for i := range data {
		data[i] = byte((i * 7) % 256)
	}
	mat, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC3, data)
	require.NoError(t, err)
	clone := mat.Clone()
	mat.Close()
	t.Cleanup(func() { clone.Close() })
	return clone
}

func allBytes(t *testing.T, mat gocv.Mat, want byte) {
	t.Helper()
	for i, v := range mat.ToBytes() {
		if v != want {
			t.Fatalf("sample %d = %d, want %d", i, v, want)
		}
	}
}

func TestToneAdjustmentIdentityAtDefaults(t *testing.T) {
	input := gradientFrame(t, 16, 16)

	output, err := NewToneAdjustment().Apply(input, *params.Default())
	require.NoError(t, err)
	defer output.Close()

	assert.Equal(t, input.ToBytes(), output.ToBytes())
}

func TestToneAdjustmentClamps(t *testing.T) {
	tests := []struct {
		name       string
		input      float64
		contrast   float64
		brightness float64
		want       byte
	}{
		{"saturates high", 250, 2, 50, 255},
		{"saturates low", 10, 1, -100, 0},
		{"gain and offset", 100, 1.5, -20, 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := *params.Default()
			p.Contrast = tt.contrast
			p.Brightness = tt.brightness

			output, err := NewToneAdjustment().Apply(solidFrame(t, 4, 4, tt.input), p)
			require.NoError(t, err)
			defer output.Close()

			allBytes(t, output, tt.want)
		})
	}
}

func TestGammaTable(t *testing.T) {
	t.Run("gamma one is identity", func(t *testing.T) {
		lut := GammaTable(1)
		for i := 0; i < 256; i++ {
			assert.Equal(t, uint8(i), lut[i], "entry %d", i)
		}
	})

	t.Run("gamma zero saturates positive samples", func(t *testing.T) {
		lut := GammaTable(0)
		assert.Equal(t, uint8(0), lut[0])
		for i := 1; i < 256; i++ {
			assert.Equal(t, uint8(255), lut[i], "entry %d", i)
		}
	})

	t.Run("gamma two darkens midtones", func(t *testing.T) {
		lut := GammaTable(2)
		assert.Equal(t, uint8(64), lut[128])
		assert.Equal(t, uint8(255), lut[255])
	})
}

func TestGammaCorrectionApply(t *testing.T) {
	input := gradientFrame(t, 8, 8)
	p := *params.Default()
	p.Gamma = 1

	output, err := NewGammaCorrection().Apply(input, p)
	require.NoError(t, err)
	defer output.Close()
	assert.Equal(t, input.ToBytes(), output.ToBytes())

	p.Gamma = 0
	zeroGamma, err := NewGammaCorrection().Apply(solidFrame(t, 3, 3, 17), p)
	require.NoError(t, err)
	defer zeroGamma.Close()
	allBytes(t, zeroGamma, 255)
}

func TestWhiteBalanceIsUniformBlend(t *testing.T) {
	p := *params.Default()

	output, err := NewWhiteBalance().Apply(solidFrame(t, 5, 5, 128), p)
	require.NoError(t, err)
	defer output.Close()

	want := byte(math.Round(128*100.0/255.0 + 100.0/255.0))
	allBytes(t, output, want)

	p.WhiteBalanceBlue = 255
	p.WhiteBalanceRed = 0
	passthrough, err := NewWhiteBalance().Apply(solidFrame(t, 5, 5, 200), p)
	require.NoError(t, err)
	defer passthrough.Close()
	allBytes(t, passthrough, 200)
}

func TestEqualizeLabKeepsChrominance(t *testing.T) {
	bgr := gradientFrame(t, 64, 64)
	lab := gocv.NewMat()
	defer lab.Close()
	require.NoError(t, gocv.CvtColor(bgr, &lab, gocv.ColorBGRToLab))

	equalized, err := EqualizeLab(lab, 2.0, 4)
	require.NoError(t, err)
	defer equalized.Close()

	before := gocv.Split(lab)
	after := gocv.Split(equalized)
	defer func() {
		for _, m := range append(before, after...) {
			m.Close()
		}
	}()

	require.Len(t, after, 3)
	assert.Equal(t, before[1].ToBytes(), after[1].ToBytes(), "A channel changed")
	assert.Equal(t, before[2].ToBytes(), after[2].ToBytes(), "B channel changed")
}

func TestEqualizeLabRejectsBadGrid(t *testing.T) {
	lab := solidFrame(t, 8, 8, 50)
	_, err := EqualizeLab(lab, 1.0, 0)
	assert.Error(t, err)
}

func TestValidateFrame(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	assert.ErrorIs(t, ValidateFrame(empty), ErrMalformedFrame)

	gray := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8U)
	defer gray.Close()
	assert.ErrorIs(t, ValidateFrame(gray), ErrMalformedFrame)

	for _, name := range DefaultOrder() {
		stage, ok := Get(name)
		require.True(t, ok, name)
		_, err := stage.Apply(gray, *params.Default())
		assert.ErrorIs(t, err, ErrMalformedFrame, name)
	}

	assert.NoError(t, ValidateFrame(solidFrame(t, 2, 2, 0)))
}

func TestMirror(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}
	src, err := gocv.NewMatFromBytes(1, 2, gocv.MatTypeCV8UC3, data)
	require.NoError(t, err)
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	require.NoError(t, Mirror(src, &dst))

	assert.Equal(t, []byte{4, 5, 6, 1, 2, 3}, dst.ToBytes())
}

func TestRegistry(t *testing.T) {
	for _, name := range DefaultOrder() {
		stage, ok := Get(name)
		require.True(t, ok, name)
		assert.NotEmpty(t, stage.GetName())
		assert.NotEmpty(t, stage.GetDescription())
	}

	_, ok := Get("sharpen")
	assert.False(t, ok)
}

func TestLookupReportsLibraryError(t *testing.T) {
	input := solidFrame(t, 4, 4, 10)
	short := gocv.NewMatWithSize(1, 10, gocv.MatTypeCV8U)
	defer short.Close()

	_, err := applyLookup(input, short)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gamma")
	assert.NotErrorIs(t, err, ErrMalformedFrame)
}

func TestBlendReportsLibraryError(t *testing.T) {
	input := solidFrame(t, 4, 4, 10)
	zeros := solidFrame(t, 2, 2, 0)

	_, err := blendWithBias(input, zeros, 1, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "white balance")
}

func TestEqualizeLabReportsLibraryError(t *testing.T) {
	// CLAHE accepts only 8 and 16 bit unsigned channels
	lab := gocv.NewMatWithSize(8, 8, gocv.MatTypeCV32FC3)
	defer lab.Close()

	_, err := EqualizeLab(lab, 2.0, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clahe")
}

func TestConvertColorReportsLibraryError(t *testing.T) {
	signed := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV16SC3)
	defer signed.Close()

	_, err := convertColor(signed, gocv.ColorBGRToLab)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "color conversion")
}
