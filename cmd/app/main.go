// Webcam Tuner - live brightness/contrast/gamma/CLAHE adjustment
// License: MIT

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"

	"webcam-tuner/internal/config"
	"webcam-tuner/internal/core"
	"webcam-tuner/internal/gui"
	"webcam-tuner/internal/io"
	"webcam-tuner/internal/params"
)

const (
	AppName    = "Webcam Tuner"
	AppID      = "com.webcamtuner.app"
	AppVersion = "1.0.0"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	device := flag.Int("device", 0, "Capture device index")
	imagePath := flag.String("image", "", "Replay a still image instead of opening a camera")
	ui := flag.String("ui", config.UIHighGUI, "Front end: highgui or fyne")
	flag.Parse()

	logger := initLogger(*debugMode)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": *debugMode,
	}).Info("Starting " + AppName)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// explicitly set flags win over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device":
			cfg.Device = *device
		case "image":
			cfg.Image = *imagePath
		case "ui":
			cfg.UI = *ui
		}
	})
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		if effective, err := cfg.Marshal(); err == nil {
			logger.Debug("Effective configuration:\n" + string(effective))
		}
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("Webcam Tuner stopped with an error")
		os.Exit(1)
	}

	logger.Info("Application shutting down gracefully")
}

func run(cfg config.Config, logger *logrus.Logger) error {
	sliders, initial, err := params.WithInitial(cfg.Controls)
	if err != nil {
		return err
	}
	prm := params.Default()
	prm.ApplyAll(initial)

	source, err := openSource(cfg, logger)
	if err != nil {
		return err
	}
	logger.WithField("source", fmt.Sprint(source)).Info("Frame source ready")

	pipeline, err := core.NewPipeline(logger)
	if err != nil {
		source.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := core.RunnerOptions{
		PollInterval:       cfg.PollInterval,
		MaxCaptureFailures: cfg.MaxCaptureFailures,
		StatsInterval:      cfg.StatsInterval,
	}

	switch cfg.UI {
	case config.UIFyne:
		frontend := gui.NewFyneFrontend(app.NewWithID(AppID), cfg.Window, sliders, logger)
		runner := core.NewRunner(source, frontend, frontend, pipeline, prm, logger, opts)

		done := make(chan error, 1)
		frontend.Run(func() {
			done <- runner.Run(ctx)
		})

		select {
		case err = <-done:
		case <-time.After(2 * time.Second):
			return fmt.Errorf("capture loop did not stop after the window closed")
		}
	default:
		highgui := gui.NewHighGUI(cfg.Window, sliders, logger)
		runner := core.NewRunner(source, highgui, highgui, pipeline, prm, logger, opts)
		err = runner.Run(ctx)
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func openSource(cfg config.Config, logger *logrus.Logger) (core.FrameSource, error) {
	if cfg.Image != "" {
		return io.LoadStillImage(cfg.Image, logger)
	}
	return io.OpenCamera(cfg.Device, cfg.FrameWidth, cfg.FrameHeight, logger)
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
