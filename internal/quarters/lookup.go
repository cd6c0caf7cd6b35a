package quarters

import (
	"context"
	"fmt"
	"time"

	"birdsong/internal/models"
	"birdsong/internal/providers"
	"birdsong/internal/structures"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "quarters:"

type LookupInterface interface {
	Presets(ctx context.Context, date string) (*models.QuarterPresets, error)
}

// Lookup is a read-through cache over a Source. Presets are reused for
// quarters.staleTime but never across a quarter boundary, when the current
// label of the day moves.
type Lookup struct {
	source    Source
	cache     providers.CacheProviderInterface
	staleTime time.Duration
	logger    providers.Logger
	loc       *time.Location
	now       func() time.Time
	group     singleflight.Group
}

func NewLookup(source Source, cache providers.CacheProviderInterface, conf *structures.Config, logger providers.Logger) *Lookup {
	return &Lookup{
		source:    source,
		cache:     cache,
		staleTime: conf.Quarters.StaleTime,
		logger:    logger,
		loc:       time.Local,
		now:       time.Now,
	}
}

// cacheKey resolves the empty date to today in the lookup's location.
func (l *Lookup) cacheKey(date string, now time.Time) string {
	if date == "" {
		date = now.In(l.loc).Format(DateLayout)
	}
	return cacheKeyPrefix + date
}

// ttl caps the freshness window at the next quarter boundary.
func (l *Lookup) ttl(now time.Time) time.Duration {
	local := now.In(l.loc)
	span := 24 / models.QuartersPerDay
	boundary := time.Date(local.Year(), local.Month(), local.Day(), (local.Hour()/span+1)*span, 0, 0, 0, l.loc)
	return min(l.staleTime, boundary.Sub(local))
}

func (l *Lookup) Presets(ctx context.Context, date string) (*models.QuarterPresets, error) {
	if date != "" {
		if _, err := time.Parse(DateLayout, date); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
		}
	}

	now := l.now()
	key := l.cacheKey(date, now)
	if data, ok := l.cache.Get(key); ok {
		var presets models.QuarterPresets
		if err := json.Unmarshal(data, &presets); err == nil {
			return &presets, nil
		}
		l.cache.Del(key)
	}

	val, err, _ := l.group.Do(key, func() (interface{}, error) {
		presets, err := l.source.Presets(ctx, date)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(presets)
		if err == nil {
			err = l.cache.SetWithTTL(key, data, l.ttl(now))
		}
		if err != nil {
			l.logger.Warnf(providers.TypeFetch, "Quarter presets for %s not cached: %s", key, err)
		}
		return presets, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*models.QuarterPresets), nil
}
