package gui

import (
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"webcam-tuner/internal/config"
	"webcam-tuner/internal/params"
)

// HighGUI shows frames in an OpenCV window and reads sliders from a second
// window of trackbars. Everything runs on the caller's goroutine.
type HighGUI struct {
	display  *gocv.Window
	controls *gocv.Window
	poller   TrackbarPoller
	logger   *logrus.Logger
}

func NewHighGUI(cfg config.WindowConfig, sliders []params.Control, logger *logrus.Logger) *HighGUI {
	controls := gocv.NewWindow(cfg.Controls)

	h := &HighGUI{
		controls: controls,
		logger:   logger,
	}

	for _, c := range sliders {
		bar := controls.CreateTrackbar(c.Label, c.Max)
		bar.SetPos(c.Initial)
		h.poller.Add(c.Field, bar, c.Initial)
	}

	display := gocv.NewWindow(cfg.Name)
	display.SetWindowProperty(gocv.WindowPropertyAutosize, gocv.WindowNormal)
	display.ResizeWindow(cfg.Width, cfg.Height)
	h.display = display

	logger.WithFields(logrus.Fields{
		"window":   cfg.Name,
		"controls": cfg.Controls,
		"sliders":  len(sliders),
	}).Debug("highgui windows created")

	return h
}

func (h *HighGUI) Present(frame gocv.Mat) error {
	h.display.IMShow(frame)
	return nil
}

// keyWindow is the part of a gocv window the quit check needs
type keyWindow interface {
	WaitKey(delay int) int
	GetWindowProperty(flag gocv.WindowPropertyFlag) float64
}

// PollQuit waits up to timeout for a key press; 'q' or a closed window quits
func (h *HighGUI) PollQuit(timeout time.Duration) bool {
	return pollQuit(h.display, timeout)
}

func pollQuit(w keyWindow, timeout time.Duration) bool {
	delay := int(timeout.Milliseconds())
	if delay < 1 {
		delay = 1
	}

	key := w.WaitKey(delay)
	if key >= 0 && key&0xFF == 'q' {
		return true
	}
	// the window manager's close button only shows up as lost visibility
	return w.GetWindowProperty(gocv.WindowPropertyVisible) < 1
}

func (h *HighGUI) Updates() []params.Update {
	return h.poller.Poll()
}

func (h *HighGUI) Close() error {
	errControls := h.controls.Close()
	errDisplay := h.display.Close()
	if errDisplay != nil {
		return errDisplay
	}
	return errControls
}
