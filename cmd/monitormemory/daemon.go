package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/1broseidon/monitormemory/internal/config"
	"github.com/1broseidon/monitormemory/internal/daemon"
	"github.com/1broseidon/monitormemory/internal/hotkeys"
	"github.com/1broseidon/monitormemory/internal/ipc"
	"github.com/1broseidon/monitormemory/internal/platform"
	"github.com/1broseidon/monitormemory/internal/reconcile"
	"github.com/1broseidon/monitormemory/internal/store"
	"github.com/1broseidon/monitormemory/internal/watch"
)

// eventLooper is implemented by backends whose connection needs a
// dispatch loop on the main goroutine.
type eventLooper interface {
	EventLoop()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runDaemon() {
	res, err := config.LoadWithSources()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config
	if res.Exists {
		log.Printf("Configuration loaded from %s", res.Path)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))

	backend, err := platform.Open(cfg.Display)
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Close()

	var st *store.Store
	if cfg.StorePath != "" {
		st = store.New(cfg.StorePath)
	} else if st, err = store.Open(); err != nil {
		log.Fatalf("Failed to resolve arrangement store: %v", err)
	}
	log.Printf("Arrangement store: %s", st.Path())

	engine := reconcile.NewEngine(st, backend, logger)
	runner := daemon.NewRunner(engine, reconcile.NewContext(cfg.StartPaused), daemon.RunnerConfig{
		Debounce:         cfg.Debounce.Std(),
		FallbackInterval: cfg.FallbackInterval.Std(),
		Retry: daemon.RetryPolicy{
			Delay:       cfg.RetryDelay.Std(),
			MaxAttempts: cfg.MaxAttempts,
		},
		StorePath: st.Path(),
		Logger:    logger,
	})

	if notifier, ok := any(backend).(platform.ChangeNotifier); ok {
		runner.AddSource("display", notifier.WatchChanges)
	}
	if cfg.WatchStore {
		runner.AddSource("store", func(ctx context.Context, notify func()) error {
			return watch.File(ctx, st.Path(), logger, notify)
		})
	}
	if cfg.ReconcileOnResume && watch.ResumeSupported {
		runner.AddSource("resume", func(ctx context.Context, notify func()) error {
			return watch.Resume(ctx, logger, notify)
		})
	}

	ipcServer, err := ipc.NewServer(runner, "")
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	registerHotkeys(backend, runner, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		runner.Run(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down monitormemory daemon...")
		cancel()
		<-done
		ipcServer.Stop()
		backend.Close()
		os.Exit(0)
	}()

	log.Printf("monitormemory daemon started (%s, paused: %v)", runtime.GOOS, cfg.StartPaused)
	if looper, ok := any(backend).(eventLooper); ok {
		log.Println("Entering event loop...")
		looper.EventLoop()
		return
	}
	<-done
}

// registerHotkeys binds the capture and pause hotkeys when the backend
// supports global key grabs. Failures are logged, not fatal.
func registerHotkeys(backend any, runner *daemon.Runner, cfg *config.Config) {
	if cfg.CaptureHotkey == "" && cfg.PauseHotkey == "" {
		return
	}
	handler, err := hotkeys.NewHandler(backend, runner)
	if err != nil {
		log.Printf("Warning: hotkeys disabled: %v", err)
		return
	}
	if cfg.CaptureHotkey != "" {
		if err := handler.RegisterCapture(cfg.CaptureHotkey); err != nil {
			log.Printf("Warning: %v", err)
		} else {
			log.Printf("Capture hotkey registered: %s", cfg.CaptureHotkey)
		}
	}
	if cfg.PauseHotkey != "" {
		if err := handler.RegisterPauseToggle(cfg.PauseHotkey); err != nil {
			log.Printf("Warning: %v", err)
		} else {
			log.Printf("Pause hotkey registered: %s", cfg.PauseHotkey)
		}
	}
}
