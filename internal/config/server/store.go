package server

// StoreServerConfig holds the paste store configuration
type StoreServerConfig struct {
	Path             string `mapstructure:"path"              yaml:"path"`
	BusyTimeout      string `mapstructure:"busy_timeout"      yaml:"busy_timeout"`
	BusyRetries      int    `mapstructure:"busy_retries"      yaml:"busy_retries"`
	RetryBackoff     string `mapstructure:"retry_backoff"     yaml:"retry_backoff"`
	OperationTimeout string `mapstructure:"operation_timeout" yaml:"operation_timeout"`
	PageSize         int    `mapstructure:"page_size"         yaml:"page_size"`
	LogLevel         string `mapstructure:"log_level"         yaml:"log_level"`
	SlowThreshold    string `mapstructure:"slow_threshold"    yaml:"slow_threshold"`
}

// TagsServerConfig controls how the command layer treats tag names
type TagsServerConfig struct {
	Normalize    bool `mapstructure:"normalize"     yaml:"normalize"`
	PruneOrphans bool `mapstructure:"prune_orphans" yaml:"prune_orphans"`
}
