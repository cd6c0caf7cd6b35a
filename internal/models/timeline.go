package models

import (
	"strconv"
	"time"
)

// LatestCursor stands in for a nil anchor inside cache keys.
const LatestCursor = "latest"

type SpeciesPreview struct {
	ID               string `json:"id"`
	CommonName       string `json:"common_name,omitempty"`
	ScientificName   string `json:"scientific_name,omitempty"`
	Genus            string `json:"genus,omitempty"`
	Family           string `json:"family,omitempty"`
	ImageURL         string `json:"image_url,omitempty"`
	ImageAttribution string `json:"image_attribution,omitempty"`
	ImageSourceURL   string `json:"image_source_url,omitempty"`
	Summary          string `json:"summary,omitempty"`
	InfoURL          string `json:"info_url,omitempty"`
}

type RecordingPreview struct {
	WavID           string   `json:"wav_id,omitempty"`
	Path            string   `json:"path,omitempty"`
	URL             string   `json:"url,omitempty"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
}

type DetectionItem struct {
	ID                int64            `json:"id"`
	RecordedAt        *time.Time       `json:"recorded_at,omitempty"`
	DeviceID          string           `json:"device_id,omitempty"`
	DeviceName        string           `json:"device_name,omitempty"`
	DeviceDisplayName string           `json:"device_display_name,omitempty"`
	Confidence        *float64         `json:"confidence,omitempty"`
	StartTime         *float64         `json:"start_time,omitempty"`
	EndTime           *float64         `json:"end_time,omitempty"`
	Species           SpeciesPreview   `json:"species"`
	Recording         RecordingPreview `json:"recording"`
	LocationHint      string           `json:"location_hint,omitempty"`
	DetectionCount    *int             `json:"detection_count,omitempty"`
}

type TimelineBucket struct {
	BucketStart     *time.Time      `json:"bucket_start"`
	BucketEnd       *time.Time      `json:"bucket_end"`
	TotalDetections int             `json:"total_detections"`
	UniqueSpecies   int             `json:"unique_species"`
	Detections      []DetectionItem `json:"detections"`
}

// ID identifies a bucket within a flattened timeline.
func (b TimelineBucket) ID() string {
	start, end := "unknown", "open"
	if b.BucketStart != nil {
		start = b.BucketStart.UTC().Format(time.RFC3339)
	}
	if b.BucketEnd != nil {
		end = b.BucketEnd.UTC().Format(time.RFC3339)
	}
	return start + "-" + end
}

// Page is one response of the timeline endpoint.
type Page struct {
	BucketMinutes  int              `json:"bucket_minutes"`
	HasMore        bool             `json:"has_more"`
	NextCursor     *string          `json:"next_cursor,omitempty"`
	PreviousCursor *string          `json:"previous_cursor,omitempty"`
	Buckets        []TimelineBucket `json:"buckets"`
}

// Next returns the cursor of the following page, "" when pagination is over.
func (p *Page) Next() string {
	if p == nil || p.NextCursor == nil {
		return ""
	}
	return *p.NextCursor
}

// QueryKey identifies one pagination chain.
type QueryKey struct {
	BucketMinutes int
	StartCursor   string
	PageSize      int
}

func NewQueryKey(t TimelinePreferences, pageSize int) QueryKey {
	return QueryKey{BucketMinutes: t.BucketMinutes, StartCursor: t.Cursor(), PageSize: pageSize}
}

func (k QueryKey) String() string {
	cursor := k.StartCursor
	if cursor == "" {
		cursor = LatestCursor
	}
	return "timeline:" + strconv.Itoa(k.BucketMinutes) + ":" + cursor + ":" + strconv.Itoa(k.PageSize)
}

// PageLog is the append-only list of pages fetched for a key. Exhausted is
// the tombstone: once set no further page is requested.
type PageLog struct {
	BucketMinutes int       `json:"bucket_minutes"`
	StartCursor   string    `json:"start_cursor"`
	PageSize      int       `json:"page_size"`
	Pages         []*Page   `json:"pages"`
	FetchedAt     time.Time `json:"fetched_at"`
	Exhausted     bool      `json:"exhausted"`
}

func NewPageLog(key QueryKey, first *Page, fetchedAt time.Time) *PageLog {
	l := &PageLog{
		BucketMinutes: key.BucketMinutes,
		StartCursor:   key.StartCursor,
		PageSize:      key.PageSize,
		FetchedAt:     fetchedAt,
	}
	l.Append(first)
	return l
}

func (l *PageLog) Key() QueryKey {
	return QueryKey{BucketMinutes: l.BucketMinutes, StartCursor: l.StartCursor, PageSize: l.PageSize}
}

func (l *PageLog) Append(p *Page) {
	l.Pages = append(l.Pages, p)
	l.Exhausted = p.Next() == ""
}

func (l *PageLog) Last() *Page {
	if len(l.Pages) == 0 {
		return nil
	}
	return l.Pages[len(l.Pages)-1]
}

// NextCursor returns the "before" cursor for the next page or "" once exhausted.
func (l *PageLog) NextCursor() string {
	if l.Exhausted {
		return ""
	}
	return l.Last().Next()
}

// HasMore is the advisory flag of the most recent page.
func (l *PageLog) HasMore() bool {
	last := l.Last()
	return last != nil && last.HasMore
}

// Buckets concatenates all pages in fetch order.
func (l *PageLog) Buckets() []TimelineBucket {
	n := 0
	for _, p := range l.Pages {
		n += len(p.Buckets)
	}
	out := make([]TimelineBucket, 0, n)
	for _, p := range l.Pages {
		out = append(out, p.Buckets...)
	}
	return out
}

func (l *PageLog) Stale(now time.Time, staleTime time.Duration) bool {
	return now.Sub(l.FetchedAt) >= staleTime
}
