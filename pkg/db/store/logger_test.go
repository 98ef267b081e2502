package store

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	config "github.com/mwantia/pastebox/internal/config/server"
	"github.com/mwantia/pastebox/pkg/log"
)

func bufferLogger(level string) (log.LoggerService, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.NewLoggerServiceWithWriter("store", config.LogServerConfig{Level: level, NoColor: true}, &buf), &buf
}

func statement() (string, int64) {
	return "SELECT 1", 1
}

func TestGormLogger_TraceAtInfoReachesDefaultLevel(t *testing.T) {
	l, buf := bufferLogger("info")

	NewGormLogger(l, logger.Info, time.Second).Trace(context.Background(), time.Now(), statement, nil)

	assert.Contains(t, buf.String(), "INFO")
	assert.Contains(t, buf.String(), "SELECT 1")
}

func TestGormLogger_TraceLevels(t *testing.T) {
	ctx := context.Background()

	l, buf := bufferLogger("debug")
	NewGormLogger(l, logger.Warn, time.Second).Trace(ctx, time.Now(), statement, nil)
	assert.Empty(t, buf.String(), "statements are only traced at info")

	NewGormLogger(l, logger.Silent, time.Second).Trace(ctx, time.Now(), statement, errors.New("boom"))
	assert.Empty(t, buf.String())

	NewGormLogger(l, logger.Error, time.Second).Trace(ctx, time.Now(), statement, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String(), "missing records are not errors")

	NewGormLogger(l, logger.Error, time.Second).Trace(ctx, time.Now(), statement, errors.New("boom"))
	assert.Contains(t, buf.String(), "ERROR")
	assert.Contains(t, buf.String(), "boom")

	buf.Reset()
	NewGormLogger(l, logger.Warn, time.Millisecond).Trace(ctx, time.Now().Add(-time.Second), statement, nil)
	assert.Contains(t, buf.String(), "slow query")
}
