package server

type CaptureServerConfig struct {
	Enabled  bool   `mapstructure:"enabled"  yaml:"enabled"`
	Interval string `mapstructure:"interval" yaml:"interval"`
	Dedupe   bool   `mapstructure:"dedupe"   yaml:"dedupe"`
	MaxSize  int    `mapstructure:"max_size" yaml:"max_size"`
}

type ShellServerConfig struct {
	Hotkey          string `mapstructure:"hotkey"             yaml:"hotkey"`
	HideOnFocusLost bool   `mapstructure:"hide_on_focus_lost" yaml:"hide_on_focus_lost"`
}
