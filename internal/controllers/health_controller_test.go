package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"birdsong/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPreferenceReader struct {
	prefs models.UserPreferences
}

func (m *mockPreferenceReader) GetSnapshot() models.UserPreferences { return m.prefs }

func TestHealth_ReturnsOK(t *testing.T) {
	anchor := "2024-01-01T00:00:00.000Z"
	prefs := &mockPreferenceReader{prefs: models.UserPreferences{
		Version:  models.PreferencesVersion,
		Timeline: models.TimelinePreferences{BucketMinutes: 10, StartCursor: &anchor},
	}}
	hc := NewHealthController(prefs)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Contains(t, resp, "uptime")
	assert.Contains(t, resp, "uptime_seconds")
	assert.Equal(t, float64(1), resp["preferences_version"])
	assert.Equal(t, float64(10), resp["bucket_minutes"])
	assert.Equal(t, true, resp["anchored"])
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	hc := NewHealthController(&mockPreferenceReader{prefs: models.DefaultPreferences()})

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"zero", 0, "0h0m0s"},
		{"one minute", 60 * time.Second, "0h1m0s"},
		{"one hour", time.Hour, "1h0m0s"},
		{"mixed", time.Hour + time.Minute + time.Second, "1h1m1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(tt.duration))
		})
	}
}
