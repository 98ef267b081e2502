package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mwantia/pastebox/pkg/log"
)

// gormLogger forwards gorm's statement log into a LoggerService
type gormLogger struct {
	log   log.LoggerService
	level logger.LogLevel
	slow  time.Duration
}

func NewGormLogger(l log.LoggerService, level logger.LogLevel, slow time.Duration) logger.Interface {
	return &gormLogger{
		log:   l,
		level: level,
		slow:  slow,
	}
}

// ParseGormLogLevel maps silent, error, warn and info; anything else is silent.
func ParseGormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		return logger.Error
	case "warn", "warning":
		return logger.Warn
	case "info", "debug":
		return logger.Info
	}
	return logger.Silent
}

func (g *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *gormLogger) Info(_ context.Context, msg string, data ...any) {
	if g.level >= logger.Info {
		g.log.Info(msg, data...)
	}
}

func (g *gormLogger) Warn(_ context.Context, msg string, data ...any) {
	if g.level >= logger.Warn {
		g.log.Warn(msg, data...)
	}
}

func (g *gormLogger) Error(_ context.Context, msg string, data ...any) {
	if g.level >= logger.Error {
		g.log.Error(msg, data...)
	}
}

func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		g.log.Error("%v [%s rows:%d] %s", err, elapsed, rows, sql)
	case g.slow > 0 && elapsed > g.slow && g.level >= logger.Warn:
		sql, rows := fc()
		g.log.Warn("slow query >= %s [%s rows:%d] %s", g.slow, elapsed, rows, sql)
	case g.level >= logger.Info:
		sql, rows := fc()
		g.log.Info("[%s rows:%d] %s", elapsed, rows, sql)
	}
}
