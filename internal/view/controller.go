package view

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"birdsong/internal/models"
	"birdsong/internal/preferences"
	"birdsong/internal/providers"
	"birdsong/internal/quarters"
	"birdsong/internal/structures"
	"birdsong/internal/timeline"
)

var (
	// ErrViewChanged is returned when the preferences moved to another query
	// key while a fetch was in flight. The fetched page is kept for that key.
	ErrViewChanged      = errors.New("view changed while loading")
	ErrBucketNotAllowed = errors.New("bucket size not allowed")
)

type PreferenceStore interface {
	GetSnapshot() models.UserPreferences
	UpdateTimeline(patch models.TimelinePatch) models.TimelinePreferences
	Reset() models.UserPreferences
	Subscribe(fn preferences.Subscriber) func()
}

// View is everything the presentation layer renders.
type View struct {
	Preferences  models.TimelinePreferences
	Result       timeline.Result
	Preview      string
	AnchorLabel  string
	QuarterLabel string
}

type Controller struct {
	prefs    PreferenceStore
	engine   timeline.EngineInterface
	quarters quarters.LookupInterface
	pageSize int
	allowed  []int
	loc      *time.Location
	logger   providers.Logger
}

func NewController(prefs PreferenceStore, engine timeline.EngineInterface, lookup quarters.LookupInterface, conf *structures.Config, logger providers.Logger) *Controller {
	return &Controller{
		prefs:    prefs,
		engine:   engine,
		quarters: lookup,
		pageSize: conf.Timeline.PageSize,
		allowed:  slices.Clone(conf.Timeline.AllowedBuckets),
		loc:      time.Local,
		logger:   logger,
	}
}

func (c *Controller) Location() *time.Location {
	return c.loc
}

func (c *Controller) AllowedBuckets() []int {
	return slices.Clone(c.allowed)
}

// CheckBucket enforces the configured bucket sizes. The store itself only
// requires a positive integer.
func (c *Controller) CheckBucket(minutes int) error {
	if len(c.allowed) > 0 && !slices.Contains(c.allowed, minutes) {
		return fmt.Errorf("%w: %d (allowed %v)", ErrBucketNotAllowed, minutes, c.allowed)
	}
	return nil
}

func (c *Controller) Preferences() models.TimelinePreferences {
	return c.prefs.GetSnapshot().Timeline
}

// Key is the query key derived from the current preferences.
func (c *Controller) Key() models.QueryKey {
	return models.NewQueryKey(c.prefs.GetSnapshot().Timeline, c.pageSize)
}

// Timeline loads the first page for the current preferences, or serves it
// from cache while fresh.
func (c *Controller) Timeline(ctx context.Context) (View, error) {
	return c.load(ctx, c.engine.Query)
}

// LoadOlder appends one older page to the current view.
func (c *Controller) LoadOlder(ctx context.Context) (View, error) {
	return c.load(ctx, c.engine.FetchNext)
}

// Apply stores next and loads the view it selects.
func (c *Controller) Apply(ctx context.Context, next models.TimelinePreferences) (View, error) {
	applied := c.prefs.UpdateTimeline(next.Patch())
	c.logger.Infof(providers.TypePrefs, "Applied timeline view: %d-minute buckets, anchor %q", applied.BucketMinutes, applied.Cursor())
	return c.Timeline(ctx)
}

// Reset restores the default view.
func (c *Controller) Reset(ctx context.Context) (View, error) {
	c.prefs.Reset()
	c.logger.Infof(providers.TypePrefs, "Timeline view reset to defaults")
	return c.Timeline(ctx)
}

// Current renders the cached state without fetching.
func (c *Controller) Current(ctx context.Context) View {
	prefs := c.prefs.GetSnapshot().Timeline
	return c.render(ctx, prefs, c.engine.Snapshot(models.NewQueryKey(prefs, c.pageSize)))
}

func (c *Controller) load(ctx context.Context, fetch func(context.Context, models.QueryKey) (timeline.Result, error)) (View, error) {
	prefs := c.prefs.GetSnapshot().Timeline
	key := models.NewQueryKey(prefs, c.pageSize)

	res, err := fetch(ctx, key)

	if current := c.Key(); current != key {
		c.logger.Debugf(providers.TypeFetch, "Result for %s not applied, view is now %s", key, current)
		return c.Current(ctx), ErrViewChanged
	}
	return c.render(ctx, prefs, res), err
}

func (c *Controller) render(ctx context.Context, prefs models.TimelinePreferences, res timeline.Result) View {
	return View{
		Preferences:  prefs,
		Result:       res,
		Preview:      Preview(prefs, c.loc),
		AnchorLabel:  AnchorLabel(prefs, c.loc),
		QuarterLabel: c.QuarterLabel(ctx, prefs),
	}
}

// QuarterLabel looks up the quarter of the anchored day, or of today.
// Lookup failures render as an empty label.
func (c *Controller) QuarterLabel(ctx context.Context, prefs models.TimelinePreferences) string {
	presets, err := c.quarters.Presets(ctx, QuarterDate(prefs, c.loc))
	if err != nil {
		c.logger.Warnf(providers.TypeFetch, "Quarter lookup failed: %s", err)
		return ""
	}
	return QuarterLabel(presets)
}
