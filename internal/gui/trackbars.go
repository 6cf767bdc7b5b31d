package gui

import "webcam-tuner/internal/params"

// positioner is the part of a gocv trackbar the poller needs
type positioner interface {
	GetPos() int
}

type trackedControl struct {
	field params.Field
	bar   positioner
	last  int
}

// TrackbarPoller turns trackbar position changes into updates. highgui only
// exposes positions, so every tick compares against the last seen value.
type TrackbarPoller struct {
	controls []trackedControl
}

func (p *TrackbarPoller) Add(field params.Field, bar positioner, initial int) {
	p.controls = append(p.controls, trackedControl{field: field, bar: bar, last: initial})
}

func (p *TrackbarPoller) Poll() []params.Update {
	var updates []params.Update
	for i := range p.controls {
		c := &p.controls[i]
		pos := c.bar.GetPos()
		if pos == c.last {
			continue
		}
		c.last = pos
		updates = append(updates, params.Update{Field: c.field, Raw: pos})
	}
	return updates
}
