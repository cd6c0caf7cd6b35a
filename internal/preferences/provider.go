package preferences

import (
	"context"

	"birdsong/internal/providers"
	"birdsong/internal/structures"
)

func ProvideStorage(conf *structures.Config, logger providers.Logger) (Storage, func()) {
	storage := OpenStorage(context.Background(), conf, logger)
	return storage, func() {
		if err := storage.Close(); err != nil {
			logger.Errorf(providers.TypePrefs, "Failed to close preference storage: %s", err)
		}
	}
}

func ProvideStore(conf *structures.Config, storage Storage, logger providers.Logger, metrics providers.MetricsProviderInterface) *Store {
	return NewStore(logger, WithStorage(storage), WithKey(conf.Preferences.Key), WithMetrics(metrics))
}

// ProvideNotifier takes the store so that it is built after the store's
// first read registered the watched key.
func ProvideNotifier(conf *structures.Config, _ *Store, storage Storage, logger providers.Logger) (ChangeNotifier, error) {
	if !conf.Preferences.Watch {
		return nil, nil
	}
	return NewNotifier(storage, logger)
}
