// Frame format tracking
package core

import (
	"fmt"

	"gocv.io/x/gocv"
)

// FrameInfo describes the format of the frames a source delivers
type FrameInfo struct {
	Width    int
	Height   int
	Channels int
	Type     gocv.MatType
}

// Update records mat's format and reports whether it differs from the last one
func (fi *FrameInfo) Update(mat gocv.Mat) bool {
	next := FrameInfo{
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
		Type:     mat.Type(),
	}
	if next == *fi {
		return false
	}
	*fi = next
	return true
}

func (fi FrameInfo) String() string {
	return fmt.Sprintf("%dx%dx%d", fi.Width, fi.Height, fi.Channels)
}
