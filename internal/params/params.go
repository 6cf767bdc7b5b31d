// Tuning parameters and the slider table that drives them
package params

import "fmt"

// Field identifies one tunable value of the record
type Field int

const (
	Brightness Field = iota
	Contrast
	Gamma
	ClipLimit
	GridSize
	WhiteBalanceBlue
	WhiteBalanceRed
)

func (f Field) String() string {
	switch f {
	case Brightness:
		return "brightness"
	case Contrast:
		return "contrast"
	case Gamma:
		return "gamma"
	case ClipLimit:
		return "clip_limit"
	case GridSize:
		return "grid_size"
	case WhiteBalanceBlue:
		return "white_balance_blue"
	case WhiteBalanceRed:
		return "white_balance_red"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Params is the current state of every tuning value, in semantic units.
// Gamma defaults to 0 which maps every positive sample to full scale.
type Params struct {
	Brightness       float64
	Contrast         float64
	Gamma            float64
	ClipLimit        float64
	GridSize         int
	WhiteBalanceBlue int
	WhiteBalanceRed  int
}

// Default returns the record the tool starts with
func Default() *Params {
	return &Params{
		Brightness:       0,
		Contrast:         1.0,
		Gamma:            0,
		ClipLimit:        1.0,
		GridSize:         8,
		WhiteBalanceBlue: 100,
		WhiteBalanceRed:  100,
	}
}

func (p *Params) SetBrightness(raw int) {
	p.Brightness = float64(raw - 100)
}

func (p *Params) SetContrast(raw int) {
	p.Contrast = float64(raw) / 100.0
}

func (p *Params) SetGamma(raw int) {
	p.Gamma = float64(raw) / 100.0
}

func (p *Params) SetClipLimit(raw int) {
	p.ClipLimit = float64(raw) / 10.0
}

// SetGridSize ignores 0 and keeps the previous grid
func (p *Params) SetGridSize(raw int) {
	if raw == 0 {
		return
	}
	p.GridSize = raw
}

func (p *Params) SetWhiteBalanceBlue(raw int) {
	p.WhiteBalanceBlue = raw
}

func (p *Params) SetWhiteBalanceRed(raw int) {
	p.WhiteBalanceRed = raw
}

// Update is a "set field to raw slider value" message emitted by a control surface
type Update struct {
	Field Field
	Raw   int
}

func (u Update) String() string {
	return fmt.Sprintf("%s=%d", u.Field, u.Raw)
}

// Apply dispatches an update to the matching setter
func (p *Params) Apply(u Update) {
	switch u.Field {
	case Brightness:
		p.SetBrightness(u.Raw)
	case Contrast:
		p.SetContrast(u.Raw)
	case Gamma:
		p.SetGamma(u.Raw)
	case ClipLimit:
		p.SetClipLimit(u.Raw)
	case GridSize:
		p.SetGridSize(u.Raw)
	case WhiteBalanceBlue:
		p.SetWhiteBalanceBlue(u.Raw)
	case WhiteBalanceRed:
		p.SetWhiteBalanceRed(u.Raw)
	}
}

// ApplyAll applies updates in order
func (p *Params) ApplyAll(updates []Update) {
	for _, u := range updates {
		p.Apply(u)
	}
}

// Snapshot returns a copy safe to hand to a stage
func (p *Params) Snapshot() Params {
	return *p
}
