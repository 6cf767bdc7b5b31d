package params

import "fmt"

// Control describes one slider of the control surface
type Control struct {
	Field       Field  `json:"field" yaml:"field"`
	Label       string `json:"label" yaml:"label"`
	Initial     int    `json:"initial" yaml:"initial"`
	Max         int    `json:"max" yaml:"max"`
	Description string `json:"description" yaml:"description"`
}

var controls = []Control{
	{Field: Brightness, Label: "Brightness", Initial: 100, Max: 200, Description: "Offset added to every sample (raw - 100)"},
	{Field: Contrast, Label: "Contrast", Initial: 100, Max: 200, Description: "Gain applied to every sample (raw / 100)"},
	{Field: Gamma, Label: "Gamma", Initial: 100, Max: 200, Description: "Power-law exponent (raw / 100)"},
	{Field: ClipLimit, Label: "Clip Limit", Initial: 10, Max: 50, Description: "CLAHE clip limit (raw / 10)"},
	{Field: GridSize, Label: "Grid Size", Initial: 8, Max: 16, Description: "CLAHE tile grid, 0 is ignored"},
	{Field: WhiteBalanceBlue, Label: "White Balance Blue", Initial: 100, Max: 255, Description: "Frame weight (raw / 255)"},
	{Field: WhiteBalanceRed, Label: "White Balance Red", Initial: 100, Max: 255, Description: "Uniform bias (raw / 255)"},
}

// Controls returns the slider table in display order
func Controls() []Control {
	result := make([]Control, len(controls))
	copy(result, controls)
	return result
}

// ControlByLabel finds a slider by its label
func ControlByLabel(label string) (Control, bool) {
	for _, c := range controls {
		if c.Label == label {
			return c, true
		}
	}
	return Control{}, false
}

// WithInitial returns the slider table with initial positions overridden by label.
// The returned updates carry the overridden positions so callers can push them
// into the record; sliders left at their default position produce no update.
func WithInitial(overrides map[string]int) ([]Control, []Update, error) {
	result := Controls()
	var updates []Update

	for label, raw := range overrides {
		found := false
		for i := range result {
			if result[i].Label != label {
				continue
			}
			if raw < 0 || raw > result[i].Max {
				return nil, nil, fmt.Errorf("control %q: position %d outside [0,%d]", label, raw, result[i].Max)
			}
			result[i].Initial = raw
			found = true
		}
		if !found {
			return nil, nil, fmt.Errorf("unknown control: %s", label)
		}
	}

	// keep update order stable regardless of map iteration
	for _, c := range result {
		if _, ok := overrides[c.Label]; ok {
			updates = append(updates, Update{Field: c.Field, Raw: c.Initial})
		}
	}

	return result, updates, nil
}
