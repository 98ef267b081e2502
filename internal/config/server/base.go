package server

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type BaseServerConfig struct {
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Log     LogServerConfig     `mapstructure:"log"     yaml:"log"`
	Store   StoreServerConfig   `mapstructure:"store"   yaml:"store"`
	Capture CaptureServerConfig `mapstructure:"capture" yaml:"capture"`
	Tags    TagsServerConfig    `mapstructure:"tags"    yaml:"tags"`
	Shell   ShellServerConfig   `mapstructure:"shell"   yaml:"shell"`
}

func LoadServerConfig() (*BaseServerConfig, error) {
	cfg := &BaseServerConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// ParseDuration parses value and falls back to def when it is empty or invalid.
func ParseDuration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}
