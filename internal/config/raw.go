package config

// RawConfig mirrors Config with optional fields so unset keys keep their
// defaults.
type RawConfig struct {
	Display   *string `yaml:"display"`
	StorePath *string `yaml:"store_path"`

	Debounce         *Duration `yaml:"debounce"`
	RetryDelay       *Duration `yaml:"retry_delay"`
	MaxAttempts      *int      `yaml:"max_attempts"`
	FallbackInterval *Duration `yaml:"fallback_interval"`

	StartPaused       *bool `yaml:"start_paused"`
	WatchStore        *bool `yaml:"watch_store"`
	ReconcileOnResume *bool `yaml:"reconcile_on_resume"`

	CaptureHotkey *string `yaml:"capture_hotkey"`
	PauseHotkey   *string `yaml:"pause_hotkey"`

	LogLevel *string `yaml:"log_level"`
}
