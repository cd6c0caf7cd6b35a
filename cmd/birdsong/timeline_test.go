package main

import (
	"bytes"
	"testing"
	"time"

	"birdsong/internal/models"
	"birdsong/internal/timeline"
	"birdsong/internal/view"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopSpecies(t *testing.T) {
	items := []models.DetectionItem{
		{Species: models.SpeciesPreview{CommonName: "Robin"}},
		{Species: models.SpeciesPreview{CommonName: "Robin"}},
		{Species: models.SpeciesPreview{ScientificName: "Parus major"}},
		{Species: models.SpeciesPreview{}},
		{Species: models.SpeciesPreview{CommonName: "Wren"}},
		{Species: models.SpeciesPreview{CommonName: "Blackbird"}},
	}
	assert.Equal(t, "Robin, Parus major, Wren", topSpecies(items))
	assert.Equal(t, "", topSpecies(nil))
}

func TestWriteTimeline(t *testing.T) {
	color.NoColor = true
	start := time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Minute)

	v := view.View{
		Preview:     "Latest detections grouped in 5-minute intervals.",
		AnchorLabel: view.LatestLabel,
		Result: timeline.Result{
			Buckets: []models.TimelineBucket{{
				BucketStart:     &start,
				BucketEnd:       &end,
				TotalDetections: 4,
				UniqueSpecies:   1,
				Detections:      []models.DetectionItem{{Species: models.SpeciesPreview{CommonName: "Robin"}}},
			}},
			Pages:       1,
			HasNextPage: true,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeTimeline(&buf, v, time.UTC))
	out := buf.String()
	assert.Contains(t, out, view.LatestLabel)
	assert.Contains(t, out, "Mar 10 06:00")
	assert.Contains(t, out, "Robin")
	assert.Contains(t, out, "1 buckets from 1 pages, older detections available")
}

func TestWriteTimeline_Empty(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	require.NoError(t, writeTimeline(&buf, view.View{AnchorLabel: view.LatestLabel}, time.UTC))
	assert.Contains(t, buf.String(), "No detections in this window.")
}

func TestWriteQuarters(t *testing.T) {
	color.NoColor = true
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	label := "Q2"
	presets := &models.QuarterPresets{
		Date:         "2024-03-10",
		CurrentLabel: &label,
		Quarters: []models.QuarterWindow{
			{Label: "Q1", Start: day, End: day.Add(6 * time.Hour)},
			{Label: "Q2", Start: day.Add(6 * time.Hour), End: day.Add(12 * time.Hour)},
		},
	}

	var buf bytes.Buffer
	writeQuarters(&buf, presets, time.UTC)
	assert.Contains(t, buf.String(), "Q1  00:00 - 06:00\n")
	assert.Contains(t, buf.String(), "Q2  06:00 - 12:00  (now)")
}
