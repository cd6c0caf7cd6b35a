package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"birdsong/internal/models"
	"birdsong/internal/providers"
	"birdsong/internal/quarters"
	"birdsong/internal/view"

	json "github.com/goccy/go-json"
	"github.com/gookit/validate"
)

const maxRequestBodySize = 1 << 16

type ViewControllerInterface interface {
	Timeline(ctx context.Context) (view.View, error)
	LoadOlder(ctx context.Context) (view.View, error)
	Apply(ctx context.Context, next models.TimelinePreferences) (view.View, error)
	Reset(ctx context.Context) (view.View, error)
	Preferences() models.TimelinePreferences
	CheckBucket(minutes int) error
	AllowedBuckets() []int
	Location() *time.Location
}

type DashboardController struct {
	logger   providers.Logger
	view     ViewControllerInterface
	quarters quarters.LookupInterface
	now      func() time.Time
}

func NewDashboardController(logger providers.Logger, viewController ViewControllerInterface, lookup quarters.LookupInterface) *DashboardController {
	return &DashboardController{
		logger:   logger,
		view:     viewController,
		quarters: lookup,
		now:      time.Now,
	}
}

type bucketResponse struct {
	ID string `json:"id"`
	models.TimelineBucket
}

type timelineResponse struct {
	Preferences    models.TimelinePreferences `json:"preferences"`
	Key            string                     `json:"key"`
	Buckets        []bucketResponse           `json:"buckets"`
	Pages          int                        `json:"pages"`
	HasMore        bool                       `json:"hasMore"`
	HasNextPage    bool                       `json:"hasNextPage"`
	IsLoading      bool                       `json:"isLoading"`
	IsFetchingNext bool                       `json:"isFetchingNext"`
	Error          string                     `json:"error,omitempty"`
	FetchedAt      *time.Time                 `json:"fetchedAt,omitempty"`
	Preview        string                     `json:"preview"`
	AnchorLabel    string                     `json:"anchorLabel"`
	QuarterLabel   string                     `json:"quarterLabel,omitempty"`
}

type preferencesResponse struct {
	Preferences    models.TimelinePreferences `json:"preferences"`
	AnchorDate     string                     `json:"anchorDate"`
	AnchorTime     string                     `json:"anchorTime"`
	AllowedBuckets []int                      `json:"allowedBuckets"`
	Preview        string                     `json:"preview"`
	AnchorLabel    string                     `json:"anchorLabel"`
}

// applyRequest selects a view either by startCursor or by a local
// date/time pair. A preset replaces the date.
type applyRequest struct {
	BucketMinutes int     `json:"bucketMinutes" validate:"required|int|min:1"`
	StartCursor   *string `json:"startCursor"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	Preset        string  `json:"preset" validate:"in:latest,today,yesterday,twoDaysAgo"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toTimelineResponse(v view.View) timelineResponse {
	resp := timelineResponse{
		Preferences:    v.Preferences,
		Key:            v.Result.Key.String(),
		Buckets:        make([]bucketResponse, 0, len(v.Result.Buckets)),
		Pages:          v.Result.Pages,
		HasMore:        v.Result.HasMore,
		HasNextPage:    v.Result.HasNextPage,
		IsLoading:      v.Result.IsLoading,
		IsFetchingNext: v.Result.IsFetchingNext,
		Preview:        v.Preview,
		AnchorLabel:    v.AnchorLabel,
		QuarterLabel:   v.QuarterLabel,
	}
	for _, b := range v.Result.Buckets {
		resp.Buckets = append(resp.Buckets, bucketResponse{ID: b.ID(), TimelineBucket: b})
	}
	if v.Result.Err != nil {
		resp.Error = v.Result.Err.Error()
	}
	if !v.Result.FetchedAt.IsZero() {
		fetchedAt := v.Result.FetchedAt
		resp.FetchedAt = &fetchedAt
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	gson, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (dc *DashboardController) writeView(w http.ResponseWriter, v view.View, err error) {
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, view.ErrViewChanged):
		status = http.StatusConflict
	case errors.Is(err, context.Canceled):
		return
	default:
		dc.logger.Warnf(providers.TypeFetch, "Timeline request failed: %s", err)
		status = http.StatusBadGateway
	}
	writeJSON(w, status, toTimelineResponse(v))
}

func (dc *DashboardController) GetTimeline(w http.ResponseWriter, r *http.Request) {
	v, err := dc.view.Timeline(r.Context())
	dc.writeView(w, v, err)
}

func (dc *DashboardController) LoadOlder(w http.ResponseWriter, r *http.Request) {
	v, err := dc.view.LoadOlder(r.Context())
	dc.writeView(w, v, err)
}

func (dc *DashboardController) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs := dc.view.Preferences()
	loc := dc.view.Location()
	date, clock := view.SplitAnchor(prefs.StartCursor, loc)
	writeJSON(w, http.StatusOK, preferencesResponse{
		Preferences:    prefs,
		AnchorDate:     date,
		AnchorTime:     clock,
		AllowedBuckets: dc.view.AllowedBuckets(),
		Preview:        view.Preview(prefs, loc),
		AnchorLabel:    view.AnchorLabel(prefs, loc),
	})
}

func (dc *DashboardController) ApplyPreferences(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	next, err := dc.selection(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	v, err := dc.view.Apply(r.Context(), next)
	dc.writeView(w, v, err)
}

// selection validates req and resolves it to the preferences to apply.
func (dc *DashboardController) selection(req applyRequest) (models.TimelinePreferences, error) {
	vd := validate.Struct(&req)
	if !vd.Validate() {
		return models.TimelinePreferences{}, vd.Errors
	}
	if err := dc.view.CheckBucket(req.BucketMinutes); err != nil {
		return models.TimelinePreferences{}, err
	}

	next := models.TimelinePreferences{BucketMinutes: req.BucketMinutes}
	loc := dc.view.Location()

	date := req.Date
	if req.Preset != "" {
		date = view.PresetDate(view.DatePreset(req.Preset), dc.now(), loc)
	}

	switch {
	case req.Preset == string(view.PresetLatest):
	case date != "" || req.Time != "":
		anchor, err := view.BuildAnchor(date, req.Time, loc)
		if err != nil {
			return models.TimelinePreferences{}, err
		}
		next.StartCursor = anchor
	case req.StartCursor != nil && strings.TrimSpace(*req.StartCursor) != "":
		if _, err := time.Parse(time.RFC3339Nano, *req.StartCursor); err != nil {
			return models.TimelinePreferences{}, errors.New("startCursor must be an RFC 3339 timestamp")
		}
		cursor := *req.StartCursor
		next.StartCursor = &cursor
	}
	return next, nil
}

func (dc *DashboardController) ResetPreferences(w http.ResponseWriter, r *http.Request) {
	v, err := dc.view.Reset(r.Context())
	dc.writeView(w, v, err)
}

func (dc *DashboardController) GetQuarters(w http.ResponseWriter, r *http.Request) {
	presets, err := dc.quarters.Presets(r.Context(), r.URL.Query().Get("date"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, presets)
	case errors.Is(err, quarters.ErrInvalidDate):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		dc.logger.Warnf(providers.TypeFetch, "Quarter lookup failed: %s", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
}
