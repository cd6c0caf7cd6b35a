package quarters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"birdsong/internal/api"
	"birdsong/internal/models"
	"birdsong/internal/providers"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// Source produces the quarter presets of a day. An empty date means today.
type Source interface {
	Presets(ctx context.Context, date string) (*models.QuarterPresets, error)
}

type RemoteSource struct {
	client api.ClientInterface
}

func NewRemoteSource(client api.ClientInterface) *RemoteSource {
	return &RemoteSource{client: client}
}

func (r *RemoteSource) Presets(ctx context.Context, date string) (*models.QuarterPresets, error) {
	return r.client.FetchQuarters(ctx, date)
}

// LocalSource splits a day into four six-hour windows in loc.
type LocalSource struct {
	loc *time.Location
	now func() time.Time
}

func NewLocalSource(loc *time.Location) *LocalSource {
	if loc == nil {
		loc = time.Local
	}
	return &LocalSource{loc: loc, now: time.Now}
}

func (l *LocalSource) Presets(_ context.Context, date string) (*models.QuarterPresets, error) {
	now := l.now().In(l.loc)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, l.loc)
	if date != "" {
		parsed, err := time.ParseInLocation(DateLayout, date, l.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
		}
		day = parsed
	}

	presets := &models.QuarterPresets{
		Date:     day.Format(DateLayout),
		Quarters: make([]models.QuarterWindow, 0, models.QuartersPerDay),
	}
	span := 24 / models.QuartersPerDay
	for i := 0; i < models.QuartersPerDay; i++ {
		start := time.Date(day.Year(), day.Month(), day.Day(), i*span, 0, 0, 0, l.loc)
		w := models.QuarterWindow{
			Label: fmt.Sprintf("Q%d", i+1),
			Start: start,
			End:   start.Add(time.Duration(span) * time.Hour),
		}
		if w.Contains(now) {
			label := w.Label
			presets.CurrentLabel = &label
		}
		presets.Quarters = append(presets.Quarters, w)
	}
	return presets, nil
}

// FallbackSource asks primary first and computes the windows locally when
// it fails.
type FallbackSource struct {
	primary   Source
	secondary Source
	logger    providers.Logger
}

func NewFallbackSource(primary, secondary Source, logger providers.Logger) *FallbackSource {
	return &FallbackSource{primary: primary, secondary: secondary, logger: logger}
}

func (f *FallbackSource) Presets(ctx context.Context, date string) (*models.QuarterPresets, error) {
	presets, err := f.primary.Presets(ctx, date)
	if err == nil {
		return presets, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	f.logger.Warnf(providers.TypeFetch, "Quarter presets unavailable, computing locally: %s", err)
	return f.secondary.Presets(ctx, date)
}

// NewSource builds the source named by quarters.source.
func NewSource(kind string, client api.ClientInterface, logger providers.Logger) Source {
	switch kind {
	case "remote":
		return NewRemoteSource(client)
	case "local":
		return NewLocalSource(time.Local)
	default:
		return NewFallbackSource(NewRemoteSource(client), NewLocalSource(time.Local), logger)
	}
}
