package preferences

import (
	"context"
	"fmt"

	"birdsong/internal/providers"
	"birdsong/internal/structures"
)

// Storage is the durable key/value store the preferences live in.
// Get returns nil, nil for an absent key.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
	Close() error
}

// WatchableStorage is a Storage whose writes by other processes can be
// observed through the files it lists.
type WatchableStorage interface {
	Storage
	WatchPaths() []string
}

// OpenStorage builds the configured backend. Any failure degrades to an
// in-memory store so the preferences keep working without durability.
func OpenStorage(ctx context.Context, conf *structures.Config, logger providers.Logger) Storage {
	storage, err := openBackend(ctx, conf.Preferences)
	if err != nil {
		logger.Warnf(providers.TypePrefs, "Preference storage unavailable, using in-memory fallback: %s", err)
		return NewMemoryStorage()
	}
	logger.Infof(providers.TypePrefs, "Preference storage: %s %s", conf.Preferences.Backend, conf.Preferences.Path)
	return storage
}

func openBackend(ctx context.Context, conf structures.PreferencesConfig) (Storage, error) {
	switch conf.Backend {
	case "memory":
		return NewMemoryStorage(), nil
	case "file":
		return NewFileStorage(conf.Path)
	case "sqlite":
		return NewSQLiteStorage(ctx, conf.Path)
	default:
		return nil, fmt.Errorf("unknown preference backend %q", conf.Backend)
	}
}
