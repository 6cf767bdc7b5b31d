package gui

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"webcam-tuner/internal/config"
	"webcam-tuner/internal/params"
)

// FyneFrontend hosts the sliders and the preview in fyne windows. fyne owns
// the main goroutine, so the capture loop runs elsewhere: slider callbacks
// only queue updates and frames reach the canvas through fyne.Do.
type FyneFrontend struct {
	app       fyne.App
	display   fyne.Window
	controls  fyne.Window
	preview   *canvas.Image
	sliders   map[params.Field]*widget.Slider
	queue     *UpdateQueue
	logger    *logrus.Logger
	quit      chan struct{}
	quitOnce  sync.Once
	closeOnce sync.Once
	stopped   atomic.Bool
}

func NewFyneFrontend(a fyne.App, cfg config.WindowConfig, sliders []params.Control, logger *logrus.Logger) *FyneFrontend {
	f := &FyneFrontend{
		app:     a,
		sliders: make(map[params.Field]*widget.Slider, len(sliders)),
		queue:   NewUpdateQueue(),
		logger:  logger,
		quit:    make(chan struct{}),
	}

	f.controls = a.NewWindow(cfg.Controls)
	f.controls.SetContent(f.createControlPanel(sliders))

	f.preview = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	f.preview.FillMode = canvas.ImageFillContain
	f.preview.ScaleMode = canvas.ImageScaleFastest

	f.display = a.NewWindow(cfg.Name)
	f.display.SetContent(container.NewStack(f.preview))
	f.display.Resize(fyne.NewSize(float32(cfg.Width), float32(cfg.Height)))
	f.display.SetMaster()
	f.display.SetOnClosed(f.requestQuit)
	f.display.Canvas().SetOnTypedRune(f.handleRune)
	f.controls.Canvas().SetOnTypedRune(f.handleRune)

	return f
}

func (f *FyneFrontend) createControlPanel(sliders []params.Control) fyne.CanvasObject {
	rows := container.NewVBox()

	for _, c := range sliders {
		c := c
		valueLabel := widget.NewLabel(fmt.Sprintf("%d", c.Initial))

		slider := widget.NewSlider(0, float64(c.Max))
		slider.Step = 1
		slider.SetValue(float64(c.Initial))
		// assigned after SetValue so the initial position is not reported
		slider.OnChanged = func(value float64) {
			raw := int(value)
			valueLabel.SetText(fmt.Sprintf("%d", raw))
			f.queue.Push(params.Update{Field: c.Field, Raw: raw})
		}
		f.sliders[c.Field] = slider

		rows.Add(container.NewBorder(nil, nil, widget.NewLabel(c.Label+":"), valueLabel, slider))
	}

	return container.NewVScroll(rows)
}

// Slider returns the widget bound to field
func (f *FyneFrontend) Slider(field params.Field) (*widget.Slider, bool) {
	s, ok := f.sliders[field]
	return s, ok
}

func (f *FyneFrontend) handleRune(r rune) {
	if r == 'q' {
		f.requestQuit()
	}
}

func (f *FyneFrontend) requestQuit() {
	f.quitOnce.Do(func() {
		f.logger.Debug("Quit requested")
		close(f.quit)
	})
}

// Present converts the frame to an image.Image and swaps it into the preview
func (f *FyneFrontend) Present(frame gocv.Mat) error {
	if f.stopped.Load() {
		return nil
	}

	img, err := frame.ToImage()
	if err != nil {
		return fmt.Errorf("convert frame: %w", err)
	}

	fyne.Do(func() {
		f.preview.Image = img
		f.preview.Refresh()
	})
	return nil
}

func (f *FyneFrontend) PollQuit(timeout time.Duration) bool {
	select {
	case <-f.quit:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (f *FyneFrontend) Updates() []params.Update {
	return f.queue.Drain()
}

// Close stops the fyne event loop, which tears the windows down
func (f *FyneFrontend) Close() error {
	f.closeOnce.Do(func() {
		f.requestQuit()
		if !f.stopped.Load() {
			fyne.Do(f.app.Quit)
		}
	})
	return nil
}

// Run shows both windows, starts loop on its own goroutine and blocks in the
// fyne event loop until the application quits.
func (f *FyneFrontend) Run(loop func()) {
	f.controls.Show()
	f.display.Show()

	go func() {
		loop()
		f.Close()
	}()

	f.app.Run()
	f.stopped.Store(true)
	f.requestQuit()
}
