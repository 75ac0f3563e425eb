// Package config loads the daemon settings. These are distinct from the
// arrangement store: they tune triggers, retries and hotkeys.
package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the effective daemon configuration.
type Config struct {
	// Display overrides $DISPLAY for the X11 backend.
	Display string `yaml:"display"`
	// StorePath overrides the arrangement file location.
	StorePath string `yaml:"store_path"`

	Debounce         Duration `yaml:"debounce"`
	RetryDelay       Duration `yaml:"retry_delay"`
	MaxAttempts      int      `yaml:"max_attempts"`
	FallbackInterval Duration `yaml:"fallback_interval"`

	StartPaused       bool `yaml:"start_paused"`
	WatchStore        bool `yaml:"watch_store"`
	ReconcileOnResume bool `yaml:"reconcile_on_resume"`

	CaptureHotkey string `yaml:"capture_hotkey"`
	PauseHotkey   string `yaml:"pause_hotkey"`

	LogLevel string `yaml:"log_level"`
}

// Duration is a time.Duration written as a Go duration string ("1500ms").
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", node.Line, s, err)
	}
	*d = Duration(parsed)
	return nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Debounce:          Duration(2 * time.Second),
		RetryDelay:        Duration(1500 * time.Millisecond),
		MaxAttempts:       0,
		FallbackInterval:  Duration(time.Minute),
		WatchStore:        true,
		ReconcileOnResume: true,
		CaptureHotkey:     "Mod4-Mod1-c",
		PauseHotkey:       "Mod4-Mod1-p",
		LogLevel:          "info",
	}
}

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate checks value ranges. Errors are *ValidationError.
func (c *Config) Validate() error {
	if c.Debounce < 0 {
		return &ValidationError{Path: "debounce", Err: fmt.Errorf("must not be negative, got %s", c.Debounce)}
	}
	if c.RetryDelay <= 0 {
		return &ValidationError{Path: "retry_delay", Err: fmt.Errorf("must be positive, got %s", c.RetryDelay)}
	}
	if c.MaxAttempts < 0 {
		return &ValidationError{Path: "max_attempts", Err: fmt.Errorf("must be 0 (unlimited) or positive, got %d", c.MaxAttempts)}
	}
	if c.FallbackInterval < 0 {
		return &ValidationError{Path: "fallback_interval", Err: fmt.Errorf("must not be negative, got %s", c.FallbackInterval)}
	}
	if _, ok := validLogLevels[c.LogLevel]; !ok {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("unknown level %q (want debug, info, warn or error)", c.LogLevel)}
	}
	if c.CaptureHotkey != "" && c.CaptureHotkey == c.PauseHotkey {
		return &ValidationError{Path: "pause_hotkey", Err: fmt.Errorf("same key sequence as capture_hotkey")}
	}
	return nil
}
