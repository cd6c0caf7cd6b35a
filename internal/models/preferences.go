package models

import (
	"math"
	"strings"

	json "github.com/goccy/go-json"
)

const (
	// PreferencesVersion is the schema version stamped on every stored record.
	PreferencesVersion   = 1
	DefaultBucketMinutes = 5
)

type TimelinePreferences struct {
	BucketMinutes int     `json:"bucketMinutes"`
	StartCursor   *string `json:"startCursor"`
}

type UserPreferences struct {
	Version  int                 `json:"version"`
	Timeline TimelinePreferences `json:"timeline"`
}

// DefaultPreferences returns a fresh copy of the default record.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		Version: PreferencesVersion,
		Timeline: TimelinePreferences{
			BucketMinutes: DefaultBucketMinutes,
			StartCursor:   nil,
		},
	}
}

// Anchored reports whether the view is pinned to a point in time.
func (t TimelinePreferences) Anchored() bool {
	return t.StartCursor != nil
}

// Cursor returns the anchor or "" when the view follows the latest detections.
func (t TimelinePreferences) Cursor() string {
	if t.StartCursor == nil {
		return ""
	}
	return *t.StartCursor
}

func (t TimelinePreferences) Clone() TimelinePreferences {
	out := TimelinePreferences{BucketMinutes: t.BucketMinutes}
	if t.StartCursor != nil {
		c := *t.StartCursor
		out.StartCursor = &c
	}
	return out
}

func (t TimelinePreferences) Equal(o TimelinePreferences) bool {
	if t.BucketMinutes != o.BucketMinutes {
		return false
	}
	if t.StartCursor == nil || o.StartCursor == nil {
		return t.StartCursor == nil && o.StartCursor == nil
	}
	return *t.StartCursor == *o.StartCursor
}

// Patch converts a full value into a patch that sets every field.
func (t TimelinePreferences) Patch() TimelinePatch {
	bucket := float64(t.BucketMinutes)
	p := TimelinePatch{BucketMinutes: &bucket}
	if t.StartCursor == nil {
		p.ClearCursor = true
	} else {
		c := *t.StartCursor
		p.StartCursor = &c
	}
	return p
}

func (p UserPreferences) Clone() UserPreferences {
	return UserPreferences{Version: p.Version, Timeline: p.Timeline.Clone()}
}

func (p UserPreferences) Equal(o UserPreferences) bool {
	return p.Version == o.Version && p.Timeline.Equal(o.Timeline)
}

// TimelinePatch is a partial TimelinePreferences. A nil field leaves the
// current value untouched; ClearCursor is an explicit null anchor.
type TimelinePatch struct {
	BucketMinutes *float64
	StartCursor   *string
	ClearCursor   bool
}

// UnmarshalJSON keeps absent, null and wrongly typed fields apart so that
// sanitization can fall back per field instead of rejecting the payload.
func (p *TimelinePatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = patchFromRaw(raw)
	return nil
}

func patchFromRaw(raw map[string]json.RawMessage) TimelinePatch {
	var p TimelinePatch
	if v, ok := raw["bucketMinutes"]; ok {
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			p.BucketMinutes = &f
		}
	}
	if v, ok := raw["startCursor"]; ok {
		if string(v) == "null" {
			p.ClearCursor = true
		} else {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				p.StartCursor = &s
			}
		}
	}
	return p
}

// PreferencesPatch is a partial UserPreferences. Version is accepted for
// shape compatibility but is always rewritten to PreferencesVersion.
type PreferencesPatch struct {
	Version  *int           `json:"version,omitempty"`
	Timeline *TimelinePatch `json:"timeline,omitempty"`
}

// SanitizeTimeline applies the patch on top of fallback field by field.
// Invalid fields keep the fallback value.
func SanitizeTimeline(p TimelinePatch, fallback TimelinePreferences) TimelinePreferences {
	out := fallback.Clone()

	if p.BucketMinutes != nil {
		v := *p.BucketMinutes
		if !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0 {
			if floored := math.Floor(v); floored >= 1 && floored <= math.MaxInt32 {
				out.BucketMinutes = int(floored)
			}
		}
	}

	switch {
	case p.StartCursor != nil && strings.TrimSpace(*p.StartCursor) != "":
		c := *p.StartCursor
		out.StartCursor = &c
	case p.StartCursor == nil && p.ClearCursor:
		out.StartCursor = nil
	}

	return out
}

// MigratePreferences reconciles a decoded record with the current schema.
// Applying it to an already current record returns an equal value.
func MigratePreferences(p UserPreferences) UserPreferences {
	defaults := DefaultPreferences()
	return UserPreferences{
		Version:  PreferencesVersion,
		Timeline: SanitizeTimeline(p.Timeline.Patch(), defaults.Timeline),
	}
}

// DecodePreferences migrates a raw stored blob. Payloads that are not JSON
// objects yield the defaults; missing or invalid fields fill from defaults.
// The boolean reports whether the payload had to be repaired.
func DecodePreferences(data []byte) (UserPreferences, bool) {
	defaults := DefaultPreferences()

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return defaults, true
	}

	var timelineRaw map[string]json.RawMessage
	if v, ok := raw["timeline"]; ok {
		_ = json.Unmarshal(v, &timelineRaw)
	}

	out := UserPreferences{
		Version:  PreferencesVersion,
		Timeline: SanitizeTimeline(patchFromRaw(timelineRaw), defaults.Timeline),
	}

	var version int
	versionErr := json.Unmarshal(raw["version"], &version)
	repaired := versionErr != nil || version != PreferencesVersion

	if !repaired {
		current, err := EncodePreferences(out)
		repaired = err != nil || !jsonEqual(current, data)
	}
	return out, repaired
}

func EncodePreferences(p UserPreferences) ([]byte, error) {
	return json.Marshal(p)
}

func jsonEqual(a, b []byte) bool {
	var x, y any
	if json.Unmarshal(a, &x) != nil || json.Unmarshal(b, &y) != nil {
		return false
	}
	xa, err1 := json.Marshal(x)
	yb, err2 := json.Marshal(y)
	return err1 == nil && err2 == nil && string(xa) == string(yb)
}
