package main

import (
	"bytes"
	"testing"
	"time"

	"birdsong/internal/models"
	"birdsong/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anchor(s string) *string { return &s }

func TestSetOptions_Resolve(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	anchored := models.TimelinePreferences{BucketMinutes: 10, StartCursor: anchor("2024-03-01T06:30:00.000Z")}
	latest := models.TimelinePreferences{BucketMinutes: 5}

	tests := []struct {
		name       string
		opts       setOptions
		current    models.TimelinePreferences
		wantBucket int
		wantCursor *string
	}{
		{"bucket only keeps anchor", setOptions{bucket: 15}, anchored, 15, anchor("2024-03-01T06:30:00.000Z")},
		{"latest clears anchor", setOptions{latest: true}, anchored, 10, nil},
		{"latest preset clears anchor", setOptions{preset: "latest"}, anchored, 10, nil},
		{"cursor", setOptions{cursor: "2024-02-02T02:02:02Z"}, latest, 5, anchor("2024-02-02T02:02:02Z")},
		{"date keeps clock", setOptions{date: "2024-03-05"}, anchored, 10, anchor("2024-03-05T06:30:00.000Z")},
		{"time keeps date", setOptions{clock: "18:15"}, anchored, 10, anchor("2024-03-01T18:15:00.000Z")},
		{"time alone anchors today", setOptions{clock: "07:45"}, latest, 5, anchor("2024-03-10T07:45:00.000Z")},
		{"date alone starts at midnight", setOptions{date: "2024-03-05"}, latest, 5, anchor("2024-03-05T00:00:00.000Z")},
		{"yesterday preset", setOptions{preset: "yesterday", clock: "12:00"}, latest, 5, anchor("2024-03-09T12:00:00.000Z")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.resolve(tt.current, now, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, got.BucketMinutes)
			assert.Equal(t, tt.wantCursor, got.StartCursor)
		})
	}
}

func TestSetOptions_ResolveErrors(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	current := models.DefaultPreferences().Timeline

	_, err := setOptions{cursor: "yesterday-ish"}.resolve(current, now, time.UTC)
	assert.ErrorIs(t, err, view.ErrInvalidAnchor)

	_, err = setOptions{date: "2024-13-40"}.resolve(current, now, time.UTC)
	assert.ErrorIs(t, err, view.ErrInvalidAnchor)

	_, err = setOptions{preset: "lastWeek"}.resolve(current, now, time.UTC)
	assert.Error(t, err)
}

func TestWritePreferences(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writePreferences(&buf, models.DefaultPreferences()))
	assert.JSONEq(t, `{"version":1,"timeline":{"bucketMinutes":5,"startCursor":null}}`, buf.String())
}
