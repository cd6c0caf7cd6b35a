package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"birdsong/internal/structures"

	"github.com/spf13/viper"
)

const (
	AppName            = "BirdsongTimeline"
	DefaultCacheSizeMB = 64
)

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("preferences.backend", "file")
	v.SetDefault("preferences.key", "birdsong:user-preferences")
	v.SetDefault("preferences.watch", true)
	v.SetDefault("timeline.pageSize", 12)
	v.SetDefault("timeline.staleTime", time.Minute)
	v.SetDefault("timeline.gcTime", 5*time.Minute)
	v.SetDefault("timeline.allowedBuckets", []int{5, 10, 20, 30, 60})
	v.SetDefault("quarters.staleTime", 5*time.Minute)
	v.SetDefault("quarters.source", "auto")
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8090)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", DefaultCacheSizeMB)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setConfigDefaults(v)

	v.BindEnv("api.baseUrl", "BIRDSONG_API_BASE_URL")
	v.BindEnv("logger.level", "BIRDSONG_LOG_LEVEL")
	v.BindEnv("logger.dir", "BIRDSONG_LOG_DIR")
	v.BindEnv("preferences.backend", "BIRDSONG_PREFERENCES_BACKEND")
	v.BindEnv("preferences.path", "BIRDSONG_PREFERENCES_PATH")
	v.BindEnv("timeline.staleTime", "BIRDSONG_STALE_TIME")
	v.BindEnv("cache.enabled", "BIRDSONG_CACHE_ENABLED")
	v.BindEnv("cache.size", "BIRDSONG_CACHE_SIZE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
