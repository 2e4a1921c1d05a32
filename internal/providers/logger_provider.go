package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"fmd/internal/structures"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeHTTP
	TypeStore
	TypeAuth
)

var typeNames = map[TypeEnum]string{
	TypeApp:   "app",
	TypeHTTP:  "http",
	TypeStore: "store",
	TypeAuth:  "auth",
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

// LogProvider writes one zerolog file per category so a noisy HTTP surface
// never drowns store or auth events.
type LogProvider struct {
	loggers map[TypeEnum]zerolog.Logger
	files   []*os.File
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	if err := os.MkdirAll(conf.Logger.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create log dir: %w", err)
	}

	p := &LogProvider{loggers: make(map[TypeEnum]zerolog.Logger)}
	for t, name := range typeNames {
		path := filepath.Join(conf.Logger.Dir, name+".log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, os.FileMode(conf.Logger.Mode))
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
		}
		p.files = append(p.files, file)

		logger := zerolog.New(file).Level(level).With().Timestamp().Str("category", name).Logger()
		if conf.Debug {
			logger = logger.Output(zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: os.Stderr}))
		}
		p.loggers[t] = logger
	}
	return p, nil
}

func (p *LogProvider) logger(t TypeEnum) zerolog.Logger {
	if l, ok := p.loggers[t]; ok {
		return l
	}
	return p.loggers[TypeApp]
}

func (p *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l := p.logger(t)
	l.Error().Msgf(format, args...)
}

func (p *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l := p.logger(t)
	l.Warn().Msgf(format, args...)
}

func (p *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l := p.logger(t)
	l.Debug().Msgf(format, args...)
}

func (p *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l := p.logger(t)
	l.Info().Msgf(format, args...)
}

func (p *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	l := p.logger(t)
	l.Fatal().Msgf(format, args...)
}

func (p *LogProvider) Close() {
	for _, f := range p.files {
		_ = f.Close()
	}
	p.files = nil
}
