// Runtime configuration loaded from YAML and overridden by flags
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"webcam-tuner/internal/params"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

const (
	UIHighGUI = "highgui"
	UIFyne    = "fyne"
)

// WindowConfig names and sizes the display windows
type WindowConfig struct {
	Name     string `yaml:"name"`
	Controls string `yaml:"controls"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
}

type Config struct {
	Device      int    `yaml:"device"`
	Image       string `yaml:"image"`
	UI          string `yaml:"ui"`
	FrameWidth  int    `yaml:"frame_width"`
	FrameHeight int    `yaml:"frame_height"`

	Window WindowConfig `yaml:"window"`

	PollInterval       time.Duration `yaml:"poll_interval"`
	MaxCaptureFailures int           `yaml:"max_capture_failures"`
	StatsInterval      int           `yaml:"stats_interval"`

	// Controls overrides initial slider positions by label
	Controls map[string]int `yaml:"controls,omitempty"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Device: 0,
		UI:     UIHighGUI,
		Window: WindowConfig{
			Name:     "CLAHE",
			Controls: "Controls",
			Width:    800,
			Height:   600,
		},
		PollInterval:       time.Millisecond,
		MaxCaptureFailures: 30,
		StatsInterval:      120,
	}
}

// Load reads path on top of Default. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks ranges and the slider overrides
func (c Config) Validate() error {
	if c.UI != UIHighGUI && c.UI != UIFyne {
		return fmt.Errorf("%w: unknown ui %q", ErrInvalidConfig, c.UI)
	}
	if c.Device < 0 {
		return fmt.Errorf("%w: device must be >= 0", ErrInvalidConfig)
	}
	if c.FrameWidth < 0 || c.FrameHeight < 0 {
		return fmt.Errorf("%w: frame size must be >= 0", ErrInvalidConfig)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size must be positive", ErrInvalidConfig)
	}
	if c.Window.Name == "" || c.Window.Controls == "" {
		return fmt.Errorf("%w: window names must not be empty", ErrInvalidConfig)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalidConfig)
	}
	if c.MaxCaptureFailures < 0 {
		return fmt.Errorf("%w: max_capture_failures must be >= 0", ErrInvalidConfig)
	}
	if c.StatsInterval < 0 {
		return fmt.Errorf("%w: stats_interval must be >= 0", ErrInvalidConfig)
	}
	if _, _, err := params.WithInitial(c.Controls); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Marshal renders the configuration as YAML
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
