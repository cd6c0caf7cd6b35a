package controllers

import (
	"fmt"
	"net/http"
	"time"

	"birdsong/internal/models"

	json "github.com/goccy/go-json"
)

type PreferenceReader interface {
	GetSnapshot() models.UserPreferences
}

type HealthController struct {
	prefs     PreferenceReader
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       int     `json:"preferences_version"`
	BucketMinutes int     `json:"bucket_minutes"`
	Anchored      bool    `json:"anchored"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	prefs := hc.prefs.GetSnapshot()
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Version:       prefs.Version,
		BucketMinutes: prefs.Timeline.BucketMinutes,
		Anchored:      prefs.Timeline.Anchored(),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(prefs PreferenceReader) *HealthController {
	return &HealthController{
		prefs:     prefs,
		startTime: time.Now(),
	}
}
