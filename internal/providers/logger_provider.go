package providers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"birdsong/internal/structures"

	"github.com/rs/zerolog"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeGet
	TypePost
	TypePrefs
	TypeFetch
)

var logTypeNames = map[TypeEnum]string{
	TypeApp:   "app",
	TypeGet:   "get",
	TypePost:  "post",
	TypePrefs: "prefs",
	TypeFetch: "fetch",
}

func (t TypeEnum) String() string {
	if name, ok := logTypeNames[t]; ok {
		return name
	}
	return "app"
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

// GetLogTypeByRequestType maps an HTTP method to the log channel of the gateway.
func GetLogTypeByRequestType(method string) TypeEnum {
	if method == "POST" {
		return TypePost
	}
	return TypeGet
}

type LogProvider struct {
	loggers map[TypeEnum]zerolog.Logger
	files   []*os.File
}

// NewLogProvider opens one log file per channel in conf.Logger.Dir.
func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	if err := os.MkdirAll(conf.Logger.Dir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create log dir %s: %w", conf.Logger.Dir, err)
	}

	lp := &LogProvider{loggers: make(map[TypeEnum]zerolog.Logger, len(logTypeNames))}
	for t, name := range logTypeNames {
		path := filepath.Join(conf.Logger.Dir, name+".log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, os.FileMode(conf.Logger.Mode))
		if err != nil {
			lp.Close()
			return nil, fmt.Errorf("unable to open log file %s: %w", path, err)
		}
		lp.files = append(lp.files, file)

		var w io.Writer = file
		if conf.Debug {
			w = zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: os.Stderr})
		}
		lp.loggers[t] = zerolog.New(w).Level(level).With().Timestamp().Str("type", name).Logger()
	}
	return lp, nil
}

// NewCliLogProvider logs to stderr for one-shot CLI commands. Below debug
// mode only warnings and errors reach the terminal.
func NewCliLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}
	if !conf.Debug && level < zerolog.WarnLevel {
		level = zerolog.WarnLevel
	}
	return NewConsoleLogProvider(os.Stderr, level), nil
}

// NewConsoleLogProvider logs every channel to w.
func NewConsoleLogProvider(w io.Writer, level zerolog.Level) Logger {
	lp := &LogProvider{loggers: make(map[TypeEnum]zerolog.Logger, len(logTypeNames))}
	out := zerolog.ConsoleWriter{Out: w, NoColor: true}
	for t, name := range logTypeNames {
		lp.loggers[t] = zerolog.New(out).Level(level).With().Timestamp().Str("type", name).Logger()
	}
	return lp
}

func (l *LogProvider) get(t TypeEnum) *zerolog.Logger {
	logger, ok := l.loggers[t]
	if !ok {
		logger = l.loggers[TypeApp]
	}
	return &logger
}

func (l *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l.get(t).Error().Msgf(format, args...)
}

func (l *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l.get(t).Warn().Msgf(format, args...)
}

func (l *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l.get(t).Debug().Msgf(format, args...)
}

func (l *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l.get(t).Info().Msgf(format, args...)
}

func (l *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	l.get(t).Fatal().Msgf(format, args...)
}

func (l *LogProvider) Close() {
	for _, f := range l.files {
		_ = f.Close()
	}
	l.files = nil
}
