package quarters

import (
	"birdsong/internal/api"
	"birdsong/internal/providers"
	"birdsong/internal/structures"
)

func ProvideLookup(conf *structures.Config, client api.ClientInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) LookupInterface {
	cache := providers.NewInstrumentedCacheProvider(conf, logger, metrics)
	return NewLookup(NewSource(conf.Quarters.Source, client, logger), cache, conf, logger)
}
