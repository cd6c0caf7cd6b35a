package timeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"birdsong/internal/api"
	"birdsong/internal/models"
	"birdsong/internal/providers"
	"birdsong/internal/structures"

	"golang.org/x/sync/singleflight"
)

// Fetcher loads one page of the detections timeline.
type Fetcher interface {
	FetchTimeline(ctx context.Context, params api.TimelineParams) (*models.Page, error)
}

type EngineInterface interface {
	Query(ctx context.Context, key models.QueryKey) (Result, error)
	FetchNext(ctx context.Context, key models.QueryKey) (Result, error)
	Snapshot(key models.QueryKey) Result
	Invalidate(key models.QueryKey)
}

// Result is the observable state of one query key.
type Result struct {
	Key     models.QueryKey
	Buckets []models.TimelineBucket
	Pages   int
	// HasMore is the advisory flag of the last page. HasNextPage is derived
	// from its cursor and decides whether another page can be requested.
	HasMore        bool
	HasNextPage    bool
	IsLoading      bool
	IsFetchingNext bool
	Err            error
	FetchedAt      time.Time
}

type keyState struct {
	loading      int
	fetchingNext int
	err          error
}

// Engine serves cursor-paginated timeline queries. Pages of a key are
// appended in fetch order; a page without next cursor ends the chain.
type Engine struct {
	fetcher   Fetcher
	pages     PageStoreInterface
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	staleTime time.Duration
	now       func() time.Time

	group  singleflight.Group
	mu     sync.Mutex
	states map[string]*keyState
}

func NewEngine(fetcher Fetcher, pages PageStoreInterface, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) *Engine {
	return &Engine{
		fetcher:   fetcher,
		pages:     pages,
		logger:    logger,
		metrics:   metrics,
		staleTime: conf.Timeline.StaleTime,
		now:       time.Now,
		states:    make(map[string]*keyState),
	}
}

// state must be called with e.mu held.
func (e *Engine) state(key models.QueryKey) *keyState {
	st, ok := e.states[key.String()]
	if !ok {
		st = &keyState{}
		e.states[key.String()] = st
	}
	return st
}

// Query returns the pages of key, loading or refreshing the first page when
// nothing is cached or the cached chain is stale.
func (e *Engine) Query(ctx context.Context, key models.QueryKey) (Result, error) {
	if log, ok := e.pages.Load(key); ok && !log.Stale(e.now(), e.staleTime) {
		return e.Snapshot(key), nil
	}

	err := e.do(ctx, key.String()+"|first", func(fetchCtx context.Context) error {
		return e.fetchFirst(fetchCtx, key)
	})
	return e.Snapshot(key), err
}

// FetchNext appends the page that follows the last loaded one. It is a
// no-op once the chain is exhausted.
func (e *Engine) FetchNext(ctx context.Context, key models.QueryKey) (Result, error) {
	log, ok := e.pages.Load(key)
	if !ok {
		return e.Query(ctx, key)
	}

	cursor := log.NextCursor()
	if cursor == "" {
		return e.Snapshot(key), nil
	}

	err := e.do(ctx, key.String()+"|before="+cursor, func(fetchCtx context.Context) error {
		return e.fetchNext(fetchCtx, key, cursor)
	})
	return e.Snapshot(key), err
}

// do runs fn once per flight key. The fetch is detached from the caller's
// cancellation so callers sharing it still get its result; a cancelled
// caller stops waiting and the fetch completes into the cache.
func (e *Engine) do(ctx context.Context, flightKey string, fn func(context.Context) error) error {
	leader := false
	ch := e.group.DoChan(flightKey, func() (interface{}, error) {
		leader = true
		return nil, fn(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Shared && !leader {
			e.metrics.IncCoalescedFetches()
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) fetchFirst(ctx context.Context, key models.QueryKey) error {
	e.mu.Lock()
	e.state(key).loading++
	e.mu.Unlock()

	page, err := e.fetcher.FetchTimeline(ctx, api.TimelineParams{
		BucketMinutes: key.BucketMinutes,
		Limit:         key.PageSize,
		After:         key.StartCursor,
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.state(key)
	st.loading--
	if err != nil {
		st.err = err
		e.logger.Warnf(providers.TypeFetch, "Failed to load first page of %s: %s", key, err)
		return fmt.Errorf("failed to load timeline %s: %w", key, err)
	}
	st.err = nil

	fresh := models.NewPageLog(key, page, e.now())
	if old, ok := e.pages.Load(key); ok && len(old.Pages) > 1 && page.Next() != "" && old.Pages[0].Next() == page.Next() {
		fresh.Pages = append(fresh.Pages, old.Pages[1:]...)
		fresh.Exhausted = old.Exhausted
	}
	if err := e.pages.Save(fresh); err != nil {
		st.err = err
		e.logger.Errorf(providers.TypeFetch, "Failed to cache first page of %s: %s", key, err)
		return fmt.Errorf("failed to cache timeline %s: %w", key, err)
	}
	e.logger.Debugf(providers.TypeFetch, "Loaded first page of %s: %d buckets", key, len(page.Buckets))
	return nil
}

func (e *Engine) fetchNext(ctx context.Context, key models.QueryKey, cursor string) error {
	e.mu.Lock()
	e.state(key).fetchingNext++
	e.mu.Unlock()

	page, err := e.fetcher.FetchTimeline(ctx, api.TimelineParams{
		BucketMinutes: key.BucketMinutes,
		Limit:         key.PageSize,
		Before:        cursor,
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.state(key)
	st.fetchingNext--
	if err != nil {
		st.err = err
		e.logger.Warnf(providers.TypeFetch, "Failed to load page before %s of %s: %s", cursor, key, err)
		return fmt.Errorf("failed to load timeline %s before %s: %w", key, cursor, err)
	}
	st.err = nil

	log, ok := e.pages.Load(key)
	if !ok || log.NextCursor() != cursor {
		e.logger.Debugf(providers.TypeFetch, "Discarding page before %s of %s: chain changed", cursor, key)
		return nil
	}
	log.Append(page)
	if err := e.pages.Save(log); err != nil {
		st.err = err
		e.logger.Errorf(providers.TypeFetch, "Failed to cache page before %s of %s: %s", cursor, key, err)
		return fmt.Errorf("failed to cache timeline %s before %s: %w", key, cursor, err)
	}
	e.logger.Debugf(providers.TypeFetch, "Appended page %d of %s: %d buckets", len(log.Pages), key, len(page.Buckets))
	return nil
}

// Snapshot returns the current state of key without fetching.
func (e *Engine) Snapshot(key models.QueryKey) Result {
	res := Result{Key: key}

	e.mu.Lock()
	if st, ok := e.states[key.String()]; ok {
		res.IsLoading = st.loading > 0
		res.IsFetchingNext = st.fetchingNext > 0
		res.Err = st.err
	}
	e.mu.Unlock()

	log, ok := e.pages.Load(key)
	if !ok {
		res.Buckets = []models.TimelineBucket{}
		return res
	}
	res.Buckets = log.Buckets()
	res.Pages = len(log.Pages)
	res.HasMore = log.HasMore()
	res.HasNextPage = log.NextCursor() != ""
	res.FetchedAt = log.FetchedAt
	return res
}

// Invalidate drops every page of key. The next Query starts from scratch.
func (e *Engine) Invalidate(key models.QueryKey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pages.Drop(key)
	delete(e.states, key.String())
}
