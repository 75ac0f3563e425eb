package config

import (
	"fmt"
	"strings"
)

// ValidationError reports an invalid setting, with its file position when
// known.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig overlays raw onto the defaults and validates the
// result.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Display != nil {
		cfg.Display = strings.TrimSpace(*raw.Display)
	}
	if raw.StorePath != nil {
		cfg.StorePath = strings.TrimSpace(*raw.StorePath)
	}
	if raw.Debounce != nil {
		cfg.Debounce = *raw.Debounce
	}
	if raw.RetryDelay != nil {
		cfg.RetryDelay = *raw.RetryDelay
	}
	if raw.MaxAttempts != nil {
		cfg.MaxAttempts = *raw.MaxAttempts
	}
	if raw.FallbackInterval != nil {
		cfg.FallbackInterval = *raw.FallbackInterval
	}
	if raw.StartPaused != nil {
		cfg.StartPaused = *raw.StartPaused
	}
	if raw.WatchStore != nil {
		cfg.WatchStore = *raw.WatchStore
	}
	if raw.ReconcileOnResume != nil {
		cfg.ReconcileOnResume = *raw.ReconcileOnResume
	}
	if raw.CaptureHotkey != nil {
		cfg.CaptureHotkey = strings.TrimSpace(*raw.CaptureHotkey)
	}
	if raw.PauseHotkey != nil {
		cfg.PauseHotkey = strings.TrimSpace(*raw.PauseHotkey)
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
