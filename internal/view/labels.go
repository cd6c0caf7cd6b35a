package view

import (
	"fmt"
	"time"

	"birdsong/internal/models"
)

// AnchorLabel is the "last updated" line of the view.
func AnchorLabel(t models.TimelinePreferences, loc *time.Location) string {
	at, ok := parseAnchor(t.StartCursor, loc)
	if !ok {
		return LatestLabel
	}
	return at.Format(DisplayLayout)
}

// Preview describes the window selected by t in one sentence.
func Preview(t models.TimelinePreferences, loc *time.Location) string {
	at, ok := parseAnchor(t.StartCursor, loc)
	if !ok {
		return fmt.Sprintf("Latest detections grouped in %d-minute intervals.", t.BucketMinutes)
	}
	return fmt.Sprintf("%s with events grouped in %d-minute intervals.", at.Format(DisplayLayout), t.BucketMinutes)
}

// QuarterDate is the date the quarter lookup is asked for: the anchor's
// local date, or "" for today.
func QuarterDate(t models.TimelinePreferences, loc *time.Location) string {
	at, ok := parseAnchor(t.StartCursor, loc)
	if !ok {
		return ""
	}
	return at.Format(DateLayout)
}

// QuarterLabel renders "<label> · <date>", or "" when no quarter is current.
func QuarterLabel(presets *models.QuarterPresets) string {
	if presets == nil || presets.CurrentLabel == nil {
		return ""
	}
	return *presets.CurrentLabel + " · " + presets.Date
}
