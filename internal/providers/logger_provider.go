package providers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"srtrack/internal/structures"

	"github.com/rs/zerolog"
)

type TypeEnum int

const (
	TypeApp = iota
	TypeGet
	TypePost
	TypeRanking
	TypeEventLog
	TypeChannel
	TypeSession
)

var typeNames = map[TypeEnum]string{
	TypeApp:      "app",
	TypeGet:      "get",
	TypePost:     "post",
	TypeRanking:  "ranking",
	TypeEventLog: "eventlog",
	TypeChannel:  "channel",
	TypeSession:  "session",
}

func (t TypeEnum) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

// LogProvider routes HTTP request logs to http.log and everything else to app.log.
type LogProvider struct {
	app   zerolog.Logger
	http  zerolog.Logger
	files []*os.File
}

func GetLogTypeByRequestType(method string) TypeEnum {
	if method == "POST" {
		return TypePost
	}
	return TypeGet
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	mode := os.FileMode(conf.Logger.Mode)
	appFile, err := os.OpenFile(filepath.Join(conf.Logger.Dir, "app.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, mode)
	if err != nil {
		return nil, err
	}
	httpFile, err := os.OpenFile(filepath.Join(conf.Logger.Dir, "http.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, mode)
	if err != nil {
		appFile.Close()
		return nil, err
	}

	var appOut io.Writer = appFile
	if conf.Debug {
		appOut = zerolog.MultiLevelWriter(appFile, zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return &LogProvider{
		app:   zerolog.New(appOut).Level(level).With().Timestamp().Logger(),
		http:  zerolog.New(httpFile).Level(level).With().Timestamp().Logger(),
		files: []*os.File{appFile, httpFile},
	}, nil
}

func (l *LogProvider) event(level zerolog.Level, t TypeEnum) *zerolog.Event {
	target := l.app
	if t == TypeGet || t == TypePost {
		target = l.http
	}
	return target.WithLevel(level).Str("type", t.String())
}

func (l *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l.event(zerolog.ErrorLevel, t).Msgf(format, args...)
}

func (l *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l.event(zerolog.WarnLevel, t).Msgf(format, args...)
}

func (l *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l.event(zerolog.DebugLevel, t).Msgf(format, args...)
}

func (l *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l.event(zerolog.InfoLevel, t).Msgf(format, args...)
}

// Fatalf logs and exits the process.
func (l *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	l.event(zerolog.FatalLevel, t).Msgf(format, args...)
	l.Close()
	os.Exit(1)
}

func (l *LogProvider) Close() {
	for _, f := range l.files {
		_ = f.Sync()
		_ = f.Close()
	}
	l.files = nil
}
