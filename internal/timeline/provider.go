package timeline

import (
	"birdsong/internal/api"
	"birdsong/internal/providers"
	"birdsong/internal/structures"
)

func ProvideCompressor() (CompressorInterface, func(), error) {
	compressor, err := NewZstdCompressor()
	if err != nil {
		return nil, nil, err
	}
	return compressor, compressor.Close, nil
}

func ProvidePageStore(conf *structures.Config, compressor CompressorInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) PageStoreInterface {
	cache := providers.NewPageCacheProvider(conf, logger, metrics)
	return NewPageStore(cache, compressor, conf.Timeline.GcTime, logger)
}

func ProvideEngine(client api.ClientInterface, pages PageStoreInterface, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) EngineInterface {
	return NewEngine(client, pages, conf, logger, metrics)
}
