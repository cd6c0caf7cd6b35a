package models

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryKey_String(t *testing.T) {
	assert.Equal(t, "timeline:5:latest:12", QueryKey{BucketMinutes: 5, PageSize: 12}.String())
	assert.Equal(t, "timeline:10:2024-01-01T00:00:00.000Z:12",
		QueryKey{BucketMinutes: 10, StartCursor: "2024-01-01T00:00:00.000Z", PageSize: 12}.String())
}

func TestNewQueryKey_FromPreferences(t *testing.T) {
	k := NewQueryKey(TimelinePreferences{BucketMinutes: 10, StartCursor: strPtr("x")}, 6)
	assert.Equal(t, QueryKey{BucketMinutes: 10, StartCursor: "x", PageSize: 6}, k)
}

func TestPageLog_AppendAndTombstone(t *testing.T) {
	key := QueryKey{BucketMinutes: 5, PageSize: 2}
	first := &Page{HasMore: true, NextCursor: strPtr("c1"), Buckets: []TimelineBucket{{TotalDetections: 1}, {TotalDetections: 2}}}
	log := NewPageLog(key, first, time.Now())

	assert.Equal(t, key, log.Key())
	assert.False(t, log.Exhausted)
	assert.Equal(t, "c1", log.NextCursor())

	// has_more is advisory: a missing cursor ends pagination.
	log.Append(&Page{HasMore: true, Buckets: []TimelineBucket{{TotalDetections: 3}}})
	assert.True(t, log.Exhausted)
	assert.True(t, log.HasMore())
	assert.Equal(t, "", log.NextCursor())

	buckets := log.Buckets()
	require.Len(t, buckets, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{buckets[0].TotalDetections, buckets[1].TotalDetections, buckets[2].TotalDetections})
}

func TestPageLog_Stale(t *testing.T) {
	now := time.Now()
	log := NewPageLog(QueryKey{BucketMinutes: 5, PageSize: 1}, &Page{}, now.Add(-61*time.Second))
	assert.True(t, log.Stale(now, time.Minute))
	assert.False(t, log.Stale(now, 2*time.Minute))
}

func TestPage_DecodesBackendShape(t *testing.T) {
	payload := `{
		"bucket_minutes": 5,
		"has_more": true,
		"next_cursor": "2024-01-01T00:00:00Z",
		"previous_cursor": null,
		"buckets": [{
			"bucket_start": "2024-01-01T00:05:00Z",
			"bucket_end": null,
			"total_detections": 2,
			"unique_species": 1,
			"detections": [{"id": 7, "species": {"id": "cardinalis-cardinalis"}, "recording": {"wav_id": "w1"}}]
		}]
	}`
	var p Page
	require.NoError(t, json.Unmarshal([]byte(payload), &p))
	assert.Equal(t, "2024-01-01T00:00:00Z", p.Next())
	assert.Nil(t, p.PreviousCursor)
	require.Len(t, p.Buckets, 1)
	assert.Equal(t, "2024-01-01T00:05:00Z-open", p.Buckets[0].ID())
	assert.Equal(t, int64(7), p.Buckets[0].Detections[0].ID)
}

func TestQuarterPresets_Current(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := &QuarterPresets{
		Date:         "2024-01-01",
		CurrentLabel: strPtr("Q2"),
		Quarters: []QuarterWindow{
			{Label: "Q1", Start: base, End: base.Add(6 * time.Hour)},
			{Label: "Q2", Start: base.Add(6 * time.Hour), End: base.Add(12 * time.Hour)},
		},
	}
	w, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "Q2", w.Label)
	assert.True(t, w.Contains(base.Add(6*time.Hour)))
	assert.False(t, w.Contains(base.Add(12*time.Hour)))

	q.CurrentLabel = nil
	_, ok = q.Current()
	assert.False(t, ok)
}
