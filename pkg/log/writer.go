package log

import (
	"io"
	"os"

	config "github.com/mwantia/pastebox/internal/config/server"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newWriter combines stdout and the rotated log file configured in cfg.
// Stdout is used when neither is enabled.
func newWriter(cfg config.LogServerConfig) io.Writer {
	var outputs []io.Writer

	if !cfg.NoTerminal {
		outputs = append(outputs, os.Stdout)
	}

	if cfg.File != "" {
		outputs = append(outputs, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.Rotation.MaxSize,
			MaxBackups: cfg.Rotation.MaxBackups,
			MaxAge:     cfg.Rotation.MaxAge,
			Compress:   cfg.Rotation.Compress,
		})
	}

	switch len(outputs) {
	case 0:
		return os.Stdout
	case 1:
		return outputs[0]
	}
	return io.MultiWriter(outputs...)
}
