package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/1broseidon/monitormemory/internal/arrangement"
	"github.com/1broseidon/monitormemory/internal/reconcile"
)

// WatchFunc blocks until ctx is done, calling notify for every event it
// observes.
type WatchFunc func(ctx context.Context, notify func()) error

// RunnerConfig holds configuration for the runner.
type RunnerConfig struct {
	// Debounce delays a triggered cycle; every new trigger restarts it.
	Debounce time.Duration
	// FallbackInterval runs a cycle periodically; 0 disables it.
	FallbackInterval time.Duration
	Retry            RetryPolicy
	StorePath        string
	Logger           *slog.Logger
}

// Status is a point-in-time view of the runner.
type Status struct {
	Paused      bool      `json:"paused"`
	LastOutcome string    `json:"last_outcome,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	LastCycle   time.Time `json:"last_cycle,omitzero"`
	Attempts    int       `json:"attempts"`
	StorePath   string    `json:"store_path,omitempty"`
	Uptime      string    `json:"uptime"`
}

type source struct {
	name  string
	watch WatchFunc
}

// Runner funnels every trigger into the reconcile engine. Triggers are
// debounced and coalesced; failed cycles are retried per the RetryPolicy.
type Runner struct {
	engine *reconcile.Engine
	rc     *reconcile.Context
	cfg    RunnerConfig
	logger *slog.Logger

	trigger chan string
	sources []source
	warn    rate.Sometimes
	started time.Time

	mu     sync.Mutex
	status Status
}

// NewRunner creates a runner around engine. rc carries the pause flag and
// the gate shared with any other caller of engine.
func NewRunner(engine *reconcile.Engine, rc *reconcile.Context, cfg RunnerConfig) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Retry.Delay <= 0 {
		cfg.Retry.Delay = 1500 * time.Millisecond
	}

	return &Runner{
		engine:  engine,
		rc:      rc,
		cfg:     cfg,
		logger:  logger,
		trigger: make(chan string, 1),
		warn:    rate.Sometimes{First: 1, Interval: 30 * time.Second},
		started: time.Now(),
		status:  Status{StorePath: cfg.StorePath},
	}
}

// AddSource registers an event source started by Run. Each event triggers
// a debounced cycle.
func (r *Runner) AddSource(name string, watch WatchFunc) {
	r.sources = append(r.sources, source{name: name, watch: watch})
}

// Trigger requests a debounced cycle. It never blocks; a trigger arriving
// while one is already queued is dropped.
func (r *Runner) Trigger(reason string) {
	select {
	case r.trigger <- reason:
	default:
	}
}

// Run runs a cycle at startup, then serves triggers until ctx is done.
func (r *Runner) Run(ctx context.Context) {
	r.logger.Info("runner started",
		"debounce", r.cfg.Debounce,
		"fallback_interval", r.cfg.FallbackInterval,
		"retry_delay", r.cfg.Retry.Delay,
		"max_attempts", r.cfg.Retry.MaxAttempts)

	var wg sync.WaitGroup
	for _, s := range r.sources {
		wg.Add(1)
		go func(s source) {
			defer wg.Done()
			r.logger.Debug("event source started", "source", s.name)
			if err := s.watch(ctx, func() { r.Trigger(s.name) }); err != nil {
				r.logger.Warn("event source stopped", "source", s.name, "error", err)
			}
		}(s)
	}
	defer wg.Wait()

	r.runWithRetry(ctx, "startup")

	var fallback <-chan time.Time
	if r.cfg.FallbackInterval > 0 {
		ticker := time.NewTicker(r.cfg.FallbackInterval)
		defer ticker.Stop()
		fallback = ticker.C
	}

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()
	var (
		debounceC <-chan time.Time
		pending   string
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("runner stopped")
			return
		case reason := <-r.trigger:
			pending = reason
			if r.cfg.Debounce <= 0 {
				r.runWithRetry(ctx, pending)
				continue
			}
			debounce.Reset(r.cfg.Debounce)
			debounceC = debounce.C
		case <-debounceC:
			debounceC = nil
			r.runWithRetry(ctx, pending)
		case <-fallback:
			r.runWithRetry(ctx, "timer")
		}
	}
}

// ReconcileNow runs one cycle immediately. When it fails, a retrying cycle
// is queued for Run.
func (r *Runner) ReconcileNow() (reconcile.Outcome, error) {
	outcome, err := r.attempt()
	r.record(outcome, err)
	if err != nil {
		r.logger.Warn("manual reconcile failed", "error", err)
		if r.cfg.Retry.ShouldRetry(1, err) {
			r.Trigger("retry")
		}
		return outcome, err
	}
	r.logger.Info("manual reconcile finished", "outcome", outcome.String())
	return outcome, nil
}

// Capture records the live arrangement unconditionally.
func (r *Runner) Capture() (arrangement.Arrangement, error) {
	return r.engine.Capture(r.rc)
}

// Monitors returns the live arrangement.
func (r *Runner) Monitors() (arrangement.Arrangement, error) {
	return r.engine.Snapshot()
}

// SetPaused flips the pause flag. Resuming triggers a cycle.
func (r *Runner) SetPaused(paused bool) {
	was := r.rc.Paused()
	r.rc.SetPaused(paused)
	if was == paused {
		return
	}
	r.logger.Info("pause state changed", "paused", paused)
	if !paused {
		r.Trigger("resume")
	}
}

// Paused reports the pause flag.
func (r *Runner) Paused() bool {
	return r.rc.Paused()
}

// Status returns a snapshot of the runner state.
func (r *Runner) Status() Status {
	r.mu.Lock()
	s := r.status
	r.mu.Unlock()

	s.Paused = r.rc.Paused()
	s.Uptime = time.Since(r.started).Truncate(time.Second).String()
	return s
}

func (r *Runner) runWithRetry(ctx context.Context, reason string) (reconcile.Outcome, error) {
	for attempt := 1; ; attempt++ {
		outcome, err := r.attempt()
		r.record(outcome, err)
		if err == nil {
			r.logger.Info("reconcile finished", "reason", reason, "outcome", outcome.String(), "attempt", attempt)
			return outcome, nil
		}

		if !r.cfg.Retry.ShouldRetry(attempt, err) {
			r.logger.Error("reconcile failed, giving up", "reason", reason, "attempt", attempt, "error", err)
			return outcome, err
		}
		r.warn.Do(func() {
			r.logger.Warn("reconcile failed, retrying",
				"reason", reason,
				"attempt", attempt,
				"retry_in", r.cfg.Retry.Delay,
				"error", err)
		})

		select {
		case <-ctx.Done():
			return outcome, ctx.Err()
		case <-time.After(r.cfg.Retry.Delay):
		}
	}
}

// attempt runs a single cycle, converting a panic into a non-retryable
// error so the daemon survives it.
func (r *Runner) attempt() (outcome reconcile.Outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("reconcile panic recovered", "error", p)
			err = &contractError{value: p}
		}
	}()
	return r.engine.RunCycle(r.rc)
}

func (r *Runner) record(outcome reconcile.Outcome, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status.Attempts++
	r.status.LastCycle = time.Now()
	if err != nil {
		r.status.LastError = err.Error()
		return
	}
	r.status.LastError = ""
	r.status.LastOutcome = outcome.String()
}
