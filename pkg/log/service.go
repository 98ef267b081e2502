package log

import (
	"fmt"
	"io"
	"os"
	"time"

	config "github.com/mwantia/pastebox/internal/config/server"
)

type LoggerService interface {
	Debug(msg string, args ...any)

	Info(msg string, args ...any)

	Warn(msg string, args ...any)

	Error(msg string, args ...any)

	Fatal(msg string, args ...any)

	Named(name string) LoggerService

	Level() LogLevel
}

// LoggerServiceImpl writes formatted records for one named component. Named
// children share the parent's output.
type LoggerServiceImpl struct {
	LoggerService

	name   string
	min    LogLevel
	format formatter
	out    io.Writer
}

func NewLoggerService(name string, cfg config.LogServerConfig) LoggerService {
	return NewLoggerServiceWithWriter(name, cfg, newWriter(cfg))
}

// NewLoggerServiceWithWriter creates a logger that writes to w only, ignoring
// the terminal and file settings of cfg.
func NewLoggerServiceWithWriter(name string, cfg config.LogServerConfig, w io.Writer) LoggerService {
	return &LoggerServiceImpl{
		name:   name,
		min:    Parse(cfg.Level),
		format: newFormatter(cfg),
		out:    w,
	}
}

// Level returns the minimum level this logger emits.
func (impl *LoggerServiceImpl) Level() LogLevel {
	return impl.min
}

func (impl *LoggerServiceImpl) write(level LogLevel, msg string, args []any) {
	if level < impl.min {
		return
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	impl.out.Write(impl.format(record{
		time:    time.Now(),
		level:   level,
		service: impl.name,
		message: msg,
	}))

	if level == Fatal {
		os.Exit(1)
	}
}

func (impl *LoggerServiceImpl) Debug(msg string, args ...any) {
	impl.write(Debug, msg, args)
}

func (impl *LoggerServiceImpl) Info(msg string, args ...any) {
	impl.write(Info, msg, args)
}

func (impl *LoggerServiceImpl) Warn(msg string, args ...any) {
	impl.write(Warn, msg, args)
}

func (impl *LoggerServiceImpl) Error(msg string, args ...any) {
	impl.write(Error, msg, args)
}

func (impl *LoggerServiceImpl) Fatal(msg string, args ...any) {
	impl.write(Fatal, msg, args)
}

// Named returns a child logger whose name is appended to this one, separated
// by a slash.
func (impl *LoggerServiceImpl) Named(name string) LoggerService {
	if impl.name != "" {
		name = impl.name + "/" + name
	}

	child := *impl
	child.name = name
	return &child
}
