// Frame sources: webcam capture and a still image replayed every tick
package io

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Camera reads frames from a capture device
type Camera struct {
	capture *gocv.VideoCapture
	device  int
	logger  *logrus.Logger
}

// OpenCamera opens device and optionally requests a frame size (0 keeps the driver default)
func OpenCamera(device, width, height int, logger *logrus.Logger) (*Camera, error) {
	logger.WithField("device", device).Debug("Opening capture device")

	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open capture device %d: %w", device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("capture device %d is not available", device)
	}

	if width > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(width))
	}
	if height > 0 {
		capture.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}

	logger.WithFields(logrus.Fields{
		"device": device,
		"width":  capture.Get(gocv.VideoCaptureFrameWidth),
		"height": capture.Get(gocv.VideoCaptureFrameHeight),
		"fps":    capture.Get(gocv.VideoCaptureFPS),
	}).Info("Capture device opened")

	return &Camera{capture: capture, device: device, logger: logger}, nil
}

// Read fills dst with the next frame
func (c *Camera) Read(dst *gocv.Mat) bool {
	return c.capture.Read(dst)
}

func (c *Camera) Close() error {
	c.logger.WithField("device", c.device).Debug("Releasing capture device")
	return c.capture.Close()
}

func (c *Camera) String() string {
	return fmt.Sprintf("camera:%d", c.device)
}

// StillImage yields a fresh copy of one image file on every Read
type StillImage struct {
	image  gocv.Mat
	path   string
	logger *logrus.Logger
}

// LoadStillImage loads a color image from disk
func LoadStillImage(path string, logger *logrus.Logger) (*StillImage, error) {
	logger.WithField("filepath", path).Debug("Loading image")

	if !isSupportedImageFormat(path) {
		return nil, fmt.Errorf("unsupported image format: %s", path)
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to load image: %s", path)
	}

	logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
	}).Info("Image loaded successfully")

	return &StillImage{image: mat, path: path, logger: logger}, nil
}

// NewStillImage wraps an in-memory frame; the source takes ownership of mat
func NewStillImage(mat gocv.Mat, logger *logrus.Logger) *StillImage {
	return &StillImage{image: mat, path: "memory", logger: logger}
}

func (s *StillImage) Read(dst *gocv.Mat) bool {
	if s.image.Empty() {
		return false
	}
	if err := s.image.CopyTo(dst); err != nil {
		s.logger.WithError(err).Warn("Failed to copy still image")
		return false
	}
	return true
}

func (s *StillImage) Close() error {
	return s.image.Close()
}

func (s *StillImage) String() string {
	return "image:" + s.path
}

func isSupportedImageFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	supportedFormats := []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}

	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}

	return false
}
