package timeline

import (
	"fmt"
	"strconv"
	"time"

	"birdsong/internal/models"
	"birdsong/internal/providers"

	json "github.com/goccy/go-json"
)

const pageKeyPrefix = "pages:"

// PageStoreInterface holds the page log of every query key. Logs that are
// not saved again within the retention window are dropped.
type PageStoreInterface interface {
	Load(key models.QueryKey) (*models.PageLog, bool)
	Save(log *models.PageLog) error
	Drop(key models.QueryKey)
}

// pageIndex is the log header. Every page lives in its own cache entry so
// no entry grows with the length of the chain.
type pageIndex struct {
	Pages     int       `json:"pages"`
	FetchedAt time.Time `json:"fetched_at"`
	Exhausted bool      `json:"exhausted"`
}

// PageStore keeps page logs compressed in the shared byte cache.
type PageStore struct {
	cache      providers.CacheProviderInterface
	compressor CompressorInterface
	logger     providers.Logger
	gcTime     time.Duration
}

func NewPageStore(cache providers.CacheProviderInterface, compressor CompressorInterface, gcTime time.Duration, logger providers.Logger) *PageStore {
	return &PageStore{
		cache:      cache,
		compressor: compressor,
		logger:     logger,
		gcTime:     gcTime,
	}
}

func cacheKey(key models.QueryKey) string {
	return pageKeyPrefix + key.String()
}

func pageCacheKey(key models.QueryKey, n int) string {
	return cacheKey(key) + ":" + strconv.Itoa(n)
}

func (s *PageStore) index(key models.QueryKey) (pageIndex, bool) {
	var idx pageIndex
	data, ok := s.cache.Get(cacheKey(key))
	if !ok {
		return idx, false
	}
	if err := json.Unmarshal(data, &idx); err != nil || idx.Pages <= 0 {
		s.logger.Errorf(providers.TypeFetch, "Failed to parse page index of %s: %v", key, err)
		s.Drop(key)
		return idx, false
	}
	return idx, true
}

// Load returns the log of key. Pages evicted from the cache cut the chain
// at the first gap; the remaining prefix stays usable.
func (s *PageStore) Load(key models.QueryKey) (*models.PageLog, bool) {
	idx, ok := s.index(key)
	if !ok {
		return nil, false
	}

	log := &models.PageLog{
		BucketMinutes: key.BucketMinutes,
		StartCursor:   key.StartCursor,
		PageSize:      key.PageSize,
		FetchedAt:     idx.FetchedAt,
	}
	for n := 0; n < idx.Pages; n++ {
		page, err := s.loadPage(key, n)
		if err != nil {
			s.logger.Errorf(providers.TypeFetch, "Failed to read page %d of %s: %s", n, key, err)
			s.cache.Del(pageCacheKey(key, n))
			break
		}
		if page == nil {
			break
		}
		log.Append(page)
	}

	if len(log.Pages) == 0 {
		s.Drop(key)
		return nil, false
	}
	if len(log.Pages) == idx.Pages {
		log.Exhausted = idx.Exhausted
	} else {
		s.logger.Debugf(providers.TypeFetch, "Pages of %s truncated to %d of %d", key, len(log.Pages), idx.Pages)
	}
	return log, true
}

func (s *PageStore) loadPage(key models.QueryKey, n int) (*models.Page, error) {
	data, ok := s.cache.Get(pageCacheKey(key, n))
	if !ok {
		return nil, nil
	}
	decompressed, err := s.compressor.Decompress(data)
	if err != nil {
		return nil, err
	}
	var page models.Page
	if err := json.Unmarshal(decompressed, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Save writes the pages newest first, then the index. A refused new page
// leaves the previously saved log readable.
func (s *PageStore) Save(log *models.PageLog) error {
	key := log.Key()
	prev, hadPrev := s.index(key)

	for n := len(log.Pages) - 1; n >= 0; n-- {
		if err := s.savePage(key, n, log.Pages[n]); err != nil {
			return fmt.Errorf("failed to save page %d of %s: %w", n, key, err)
		}
	}

	data, err := json.Marshal(pageIndex{Pages: len(log.Pages), FetchedAt: log.FetchedAt, Exhausted: log.Exhausted})
	if err != nil {
		return fmt.Errorf("failed to encode page index of %s: %w", key, err)
	}
	if err := s.cache.SetWithTTL(cacheKey(key), data, s.gcTime); err != nil {
		return fmt.Errorf("failed to save page index of %s: %w", key, err)
	}

	if hadPrev {
		for n := len(log.Pages); n < prev.Pages; n++ {
			s.cache.Del(pageCacheKey(key, n))
		}
	}
	return nil
}

func (s *PageStore) savePage(key models.QueryKey, n int, page *models.Page) error {
	jsonData, err := json.Marshal(page)
	if err != nil {
		return err
	}
	compressed, err := s.compressor.Compress(jsonData)
	if err != nil {
		return err
	}
	return s.cache.SetWithTTL(pageCacheKey(key, n), compressed, s.gcTime)
}

func (s *PageStore) Drop(key models.QueryKey) {
	data, ok := s.cache.Get(cacheKey(key))
	s.cache.Del(cacheKey(key))
	if !ok {
		return
	}
	var idx pageIndex
	if json.Unmarshal(data, &idx) != nil {
		return
	}
	for n := 0; n < idx.Pages; n++ {
		s.cache.Del(pageCacheKey(key, n))
	}
}
