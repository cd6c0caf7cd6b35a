package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type ApiConfig struct {
	BaseUrl string        `yaml:"baseUrl" validate:"required|fullUrl"`
	Timeout time.Duration `yaml:"timeout" validate:"required|min:1"`
}

type PreferencesConfig struct {
	Backend string `yaml:"backend" validate:"required|in:file,sqlite,memory"`
	Path    string `yaml:"path"`
	Key     string `yaml:"key" validate:"required"`
	Watch   bool   `yaml:"watch"`
}

type TimelineConfig struct {
	PageSize       int           `yaml:"pageSize" validate:"required|int|min:1"`
	StaleTime      time.Duration `yaml:"staleTime" validate:"required|min:1"`
	GcTime         time.Duration `yaml:"gcTime" validate:"required|min:1"`
	AllowedBuckets []int         `yaml:"allowedBuckets" validate:"required"`
}

type QuartersConfig struct {
	StaleTime time.Duration `yaml:"staleTime" validate:"required|min:1"`
	Source    string        `yaml:"source" validate:"required|in:remote,local,auto"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	Api         ApiConfig         `yaml:"api"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Timeline    TimelineConfig    `yaml:"timeline"`
	Quarters    QuartersConfig    `yaml:"quarters"`
	WebServer   Server            `yaml:"webServer"`
	Logger      LoggerConfig      `yaml:"logger"`
	Cache       CacheConfig       `yaml:"cache"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}
