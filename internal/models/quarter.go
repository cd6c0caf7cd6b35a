package models

import "time"

const QuartersPerDay = 4

type QuarterWindow struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls in [Start, End).
func (w QuarterWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

type QuarterPresets struct {
	Date         string          `json:"date"`
	CurrentLabel *string         `json:"current_label,omitempty"`
	Quarters     []QuarterWindow `json:"quarters"`
}

// Current returns the window named by CurrentLabel.
func (q *QuarterPresets) Current() (QuarterWindow, bool) {
	if q == nil || q.CurrentLabel == nil {
		return QuarterWindow{}, false
	}
	for _, w := range q.Quarters {
		if w.Label == *q.CurrentLabel {
			return w, true
		}
	}
	return QuarterWindow{}, false
}
