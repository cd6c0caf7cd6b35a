package view

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	AnchorLayout  = "2006-01-02T15:04:05.000Z"
	DateLayout    = "2006-01-02"
	TimeLayout    = "15:04"
	DisplayLayout = "Jan 2, 2006, 3:04 PM"

	LatestLabel = "Most recent detections"
)

var ErrInvalidAnchor = errors.New("invalid anchor")

// BuildAnchor turns a local date ("YYYY-MM-DD") and time ("HH:MM") into
// a UTC timestamp with millisecond precision. A blank input anchors the
// view to the latest detections and yields nil.
func BuildAnchor(date, clock string, loc *time.Location) (*string, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}

	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s", ErrInvalidAnchor, date, clock)
	}
	anchor := t.UTC().Format(AnchorLayout)
	return &anchor, nil
}

// SplitAnchor is the inverse of BuildAnchor. Unparseable anchors yield
// empty strings.
func SplitAnchor(anchor *string, loc *time.Location) (date, clock string) {
	t, ok := parseAnchor(anchor, loc)
	if !ok {
		return "", ""
	}
	return t.Format(DateLayout), t.Format(TimeLayout)
}

func parseAnchor(anchor *string, loc *time.Location) (time.Time, bool) {
	if anchor == nil || *anchor == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, *anchor)
	if err != nil {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc), true
}

// DatePreset names a day relative to today.
type DatePreset string

const (
	PresetLatest     DatePreset = "latest"
	PresetToday      DatePreset = "today"
	PresetYesterday  DatePreset = "yesterday"
	PresetTwoDaysAgo DatePreset = "twoDaysAgo"
)

var presetOffsets = map[DatePreset]int{
	PresetToday:      0,
	PresetYesterday:  -1,
	PresetTwoDaysAgo: -2,
}

// PresetDate resolves preset to a local date. PresetLatest and unknown
// presets return "".
func PresetDate(preset DatePreset, now time.Time, loc *time.Location) string {
	offset, ok := presetOffsets[preset]
	if !ok {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return now.In(loc).AddDate(0, 0, offset).Format(DateLayout)
}

// Clock24 formats a 12-hour clock reading as "HH:MM".
func Clock24(hour, minute int, meridiem string) (string, error) {
	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w: %d:%02d %s", ErrInvalidAnchor, hour, minute, meridiem)
	}
	h := hour % 12
	switch strings.ToUpper(meridiem) {
	case "AM":
	case "PM":
		h += 12
	default:
		return "", fmt.Errorf("%w: meridiem %q", ErrInvalidAnchor, meridiem)
	}
	return fmt.Sprintf("%02d:%02d", h, minute), nil
}
