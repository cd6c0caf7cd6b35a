package preferences

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"birdsong/internal/models"
	"birdsong/internal/providers"
)

const DefaultKey = "birdsong:user-preferences"

type Subscriber func()

type subscription struct {
	id int
	fn Subscriber
}

// Store is the single source of truth for the timeline view settings.
// Every write is sanitized, persisted under one key and announced to the
// subscribers. Changes written by other processes are applied through
// HandleExternalChange without being written back.
type Store struct {
	mu       sync.Mutex
	storage  Storage
	key      string
	state    models.UserPreferences
	lastSeen []byte
	subs     []subscription
	nextID   int
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
}

type Option func(*Store)

func WithStorage(storage Storage) Option {
	return func(s *Store) {
		if storage != nil {
			s.storage = storage
		}
	}
}

func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithMetrics(metrics providers.MetricsProviderInterface) Option {
	return func(s *Store) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// NewStore loads the persisted record, migrating it when needed. Without a
// storage option the store lives in memory only.
func NewStore(logger providers.Logger, opts ...Option) *Store {
	s := &Store{
		storage: NewMemoryStorage(),
		key:     DefaultKey,
		logger:  logger,
		metrics: providers.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = s.loadInitial()
	return s
}

func (s *Store) loadInitial() models.UserPreferences {
	raw, err := s.storage.Get(s.key)
	if err != nil {
		s.logger.Warnf(providers.TypePrefs, "Failed to read user preferences from storage: %s", err)
	}
	if raw == nil {
		defaults := models.DefaultPreferences()
		s.persist(defaults)
		return defaults
	}

	prefs, repaired := models.DecodePreferences(raw)
	if repaired {
		s.logger.Warnf(providers.TypePrefs, "Stored user preferences migrated to version %d", models.PreferencesVersion)
		s.persist(prefs)
	} else {
		s.lastSeen = raw
	}
	return prefs
}

// persist writes the record. Failures are logged and the in-memory state
// stays authoritative.
func (s *Store) persist(p models.UserPreferences) {
	data, err := models.EncodePreferences(p)
	if err != nil {
		s.logger.Errorf(providers.TypePrefs, "Failed to encode user preferences: %s", err)
		return
	}
	if err := s.storage.Set(s.key, data); err != nil {
		s.logger.Warnf(providers.TypePrefs, "Failed to persist user preferences to storage: %s", err)
		return
	}
	s.lastSeen = data
	s.metrics.IncPreferenceWrites()
}

// GetSnapshot returns a copy of the current, schema-current record.
func (s *Store) GetSnapshot() models.UserPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Update merges the patch on top of the current record.
func (s *Store) Update(patch models.PreferencesPatch) models.UserPreferences {
	s.mu.Lock()
	timeline := s.state.Timeline
	if patch.Timeline != nil {
		timeline = models.SanitizeTimeline(*patch.Timeline, s.state.Timeline)
	}
	return s.commitLocked(timeline, true)
}

// UpdateWith applies fn to a copy of the current record. fn runs outside
// the store lock and may read the store.
func (s *Store) UpdateWith(fn func(models.UserPreferences) models.UserPreferences) models.UserPreferences {
	next := fn(s.GetSnapshot())
	s.mu.Lock()
	return s.commitLocked(models.SanitizeTimeline(next.Timeline.Patch(), s.state.Timeline), true)
}

func (s *Store) UpdateTimeline(patch models.TimelinePatch) models.TimelinePreferences {
	s.mu.Lock()
	return s.commitLocked(models.SanitizeTimeline(patch, s.state.Timeline), true).Timeline
}

func (s *Store) UpdateTimelineWith(fn func(models.TimelinePreferences) models.TimelinePreferences) models.TimelinePreferences {
	next := fn(s.GetSnapshot().Timeline)
	s.mu.Lock()
	return s.commitLocked(models.SanitizeTimeline(next.Patch(), s.state.Timeline), true).Timeline
}

// Reset restores the default record.
func (s *Store) Reset() models.UserPreferences {
	s.mu.Lock()
	return s.commitLocked(models.DefaultPreferences().Timeline, true)
}

// commitLocked must be called with s.mu held; it releases the lock before
// notifying subscribers.
func (s *Store) commitLocked(timeline models.TimelinePreferences, persist bool) models.UserPreferences {
	s.state = models.UserPreferences{Version: models.PreferencesVersion, Timeline: timeline}
	if persist {
		s.persist(s.state)
	}
	snapshot := s.state.Clone()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	s.notify(subs)
	return snapshot
}

// HandleExternalChange re-reads the record after another process wrote it.
// The result is applied and announced but never written back. The read
// happens under the store lock so a local write cannot slip in between.
func (s *Store) HandleExternalChange() {
	s.mu.Lock()
	raw, err := s.storage.Get(s.key)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warnf(providers.TypePrefs, "Failed to read user preferences from storage: %s", err)
		return
	}
	if raw == nil || bytes.Equal(raw, s.lastSeen) {
		s.mu.Unlock()
		return
	}
	s.lastSeen = raw

	prefs, _ := models.DecodePreferences(raw)
	next := models.SanitizeTimeline(prefs.Timeline.Patch(), s.state.Timeline)
	if next.Equal(s.state.Timeline) {
		s.mu.Unlock()
		return
	}
	s.logger.Debugf(providers.TypePrefs, "Applying user preferences changed by another process")
	s.metrics.IncExternalSyncs()
	s.commitLocked(next, false)
}

// Subscribe registers fn to run after every state change, in registration
// order. The returned function removes it.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(subs []subscription) {
	for _, sub := range subs {
		s.call(sub.fn)
	}
}

func (s *Store) call(fn Subscriber) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf(providers.TypePrefs, "User preferences subscriber failed: %v", r)
		}
	}()
	fn()
}

// Listen connects the store to an external change notifier.
func (s *Store) Listen(ctx context.Context, notifier ChangeNotifier) error {
	if err := notifier.Start(ctx, s.HandleExternalChange); err != nil {
		return fmt.Errorf("failed to start preference watcher: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.storage.Close()
}
