package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/mwantia/pastebox/internal/config/server"
)

func testConfig(level string, jsonOutput bool) config.LogServerConfig {
	return config.LogServerConfig{
		Level:      level,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
		JSON:       jsonOutput,
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", Debug},
		{"INFO", Info},
		{" warn ", Warn},
		{"warning", Warn},
		{"Error", Error},
		{"fatal", Fatal},
		{"", Info},
		{"verbose", Info},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input))
		})
	}
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerServiceWithWriter("pastebox", testConfig("warn", false), &buf)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown %d", 1)
	logger.Error("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 1")
	assert.Contains(t, out, "shown 2")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestLogger_NamedSharesWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerServiceWithWriter("pastebox", testConfig("debug", false), &buf)

	logger.Named("store").Named("migrations").Info("applied")

	assert.Contains(t, buf.String(), "[pastebox/store/migrations] applied")
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerServiceWithWriter("pastebox", testConfig("info", true), &buf)

	logger.Named("capture").Info("captured %d bytes", 12)

	var entry jsonRecord
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "pastebox/capture", entry.Service)
	assert.Equal(t, "captured 12 bytes", entry.Message)
}

func TestLogger_MessageWithoutArgsIsVerbatim(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerServiceWithWriter("", testConfig("info", false), &buf)

	logger.Info("100% done")

	assert.Contains(t, buf.String(), "100% done")
}

func TestLogger_NamedLeavesParentUnchanged(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLoggerServiceWithWriter("pastebox", testConfig("info", false), &buf)

	parent.Named("shell")
	parent.Info("from parent")

	assert.Contains(t, buf.String(), "[pastebox] from parent")
	assert.NotContains(t, buf.String(), "shell")
}

func TestLogger_ColorsTerminalOutput(t *testing.T) {
	cfg := testConfig("debug", false)
	cfg.NoColor = false

	var buf bytes.Buffer
	NewLoggerServiceWithWriter("", cfg, &buf).Warn("careful")

	assert.True(t, strings.HasPrefix(buf.String(), Color(Warn)))
	assert.True(t, strings.HasSuffix(buf.String(), "careful\033[0m\n"))
}

func TestLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pastebox.log")

	cfg := testConfig("info", false)
	cfg.NoTerminal = true
	cfg.File = path

	logger := NewLoggerService("pastebox", cfg)
	logger.Info("persisted %s", "line")
	logger.Debug("filtered")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO  [pastebox] persisted line")
	assert.NotContains(t, string(data), "filtered")
	assert.NotContains(t, string(data), "\033[", "file output is never colored")
}

func TestNewWriter_DefaultsToStdout(t *testing.T) {
	assert.Equal(t, os.Stdout, newWriter(config.LogServerConfig{NoTerminal: true}))
	assert.Equal(t, os.Stdout, newWriter(config.LogServerConfig{}))
}

func TestLoggerTagProcessor_CanProcess(t *testing.T) {
	ltp := NewLoggerTagProcessor()

	assert.True(t, ltp.CanProcess("logger"))
	assert.True(t, ltp.CanProcess("Logger:store"))
	assert.False(t, ltp.CanProcess("inject"))
	assert.False(t, ltp.CanProcess("loggers"))
	assert.Equal(t, 50, ltp.GetPriority())
}
