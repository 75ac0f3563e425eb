package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/monitormemory/internal/config"
	"github.com/1broseidon/monitormemory/internal/ipc"
	"github.com/1broseidon/monitormemory/internal/platform"
	"github.com/1broseidon/monitormemory/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && isHelpArg(os.Args[2]) {
			fmt.Fprintln(os.Stdout, "Usage: monitormemory daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: monitormemory daemon")
			os.Exit(2)
		}
		runDaemon()
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "capture":
		os.Exit(runCapture(os.Args[2:]))
	case "pause":
		os.Exit(runSetPaused("pause", true, os.Args[2:]))
	case "resume":
		os.Exit(runSetPaused("resume", false, os.Args[2:]))
	case "reconcile":
		os.Exit(runReconcile(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "open-config":
		os.Exit(runOpenConfig(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: monitormemory <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the monitormemory daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  capture             Remember the current monitor arrangement")
	fmt.Fprintln(w, "  pause               Stop reapplying remembered arrangements")
	fmt.Fprintln(w, "  resume              Reapply remembered arrangements again")
	fmt.Fprintln(w, "  reconcile           Reconcile the attached monitors now")
	fmt.Fprintln(w, "  monitors            Show the attached monitors")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  list                List remembered arrangements")
	fmt.Fprintln(w, "  open-config         Open the arrangement file in the default editor")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate daemon settings")
	fmt.Fprintln(w, "  config print        Print effective daemon settings")
	fmt.Fprintln(w, "  config path         Print the settings and arrangement file paths")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'monitormemory <command> --help' for command-specific options.")
}

func isHelpArg(arg string) bool {
	return arg == "help" || arg == "-h" || arg == "--help"
}

// parseNoArgs parses flags for a command that takes no positional
// arguments. It returns -1 when the command should proceed.
func parseNoArgs(fs *flag.FlagSet, name string, args []string) int {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}
	return -1
}

func newFlagSet(name, usage, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, description)
		hasFlags := false
		fs.VisitAll(func(*flag.Flag) { hasFlags = true })
		if hasFlags {
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
	}
	return fs
}

// reportFailure prints err, and also shows it as a desktop message when
// the command was launched from a launcher or shortcut.
func reportFailure(gui bool, title string, err error) int {
	fmt.Fprintln(os.Stderr, err)
	if gui {
		if msgErr := platform.ShowMessage(title, err.Error()); msgErr != nil {
			fmt.Fprintln(os.Stderr, msgErr)
		}
	}
	return 1
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "monitormemory status", "Show daemon status via IPC.")
	if code := parseNoArgs(fs, "status", args); code >= 0 {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("paused:         %v\n", status.Paused)
	fmt.Printf("last_outcome:   %s\n", valueOrNone(status.LastOutcome))
	fmt.Printf("last_error:     %s\n", valueOrNone(status.LastError))
	fmt.Printf("last_cycle:     %s\n", valueOrNone(status.LastCycle))
	fmt.Printf("attempts:       %d\n", status.Attempts)
	fmt.Printf("store_path:     %s\n", status.StorePath)
	fmt.Printf("uptime:         %s\n", status.Uptime)
	return 0
}

func valueOrNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func runCapture(args []string) int {
	fs := newFlagSet("capture", "monitormemory capture [--gui]",
		"Record the current monitor arrangement as the newest remembered one.")
	gui := fs.Bool("gui", false, "Show failures as a desktop message")
	if code := parseNoArgs(fs, "capture", args); code >= 0 {
		return code
	}

	data, err := ipc.NewClient().Capture()
	if err != nil {
		return reportFailure(*gui, "Capture failed", err)
	}
	fmt.Printf("captured %d monitor(s)\n", len(data.Monitors))
	return 0
}

func runSetPaused(name string, paused bool, args []string) int {
	description := "Stop reapplying remembered arrangements until resumed."
	if !paused {
		description = "Reapply remembered arrangements again, starting with a reconcile."
	}
	fs := newFlagSet(name, "monitormemory "+name, description)
	if code := parseNoArgs(fs, name, args); code >= 0 {
		return code
	}

	if err := ipc.NewClient().SetPaused(paused); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("paused: %v\n", paused)
	return 0
}

func runReconcile(args []string) int {
	fs := newFlagSet("reconcile", "monitormemory reconcile",
		"Match the attached monitors against remembered arrangements now.")
	if code := parseNoArgs(fs, "reconcile", args); code >= 0 {
		return code
	}

	result, err := ipc.NewClient().Reconcile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if result.Outcome == "applied" {
		fmt.Printf("outcome: applied (%d monitor(s) changed)\n", result.Changed)
		return 0
	}
	fmt.Printf("outcome: %s\n", result.Outcome)
	return 0
}

func runMonitors(args []string) int {
	fs := newFlagSet("monitors", "monitormemory monitors",
		"Show the attached monitors as the daemon sees them.")
	if code := parseNoArgs(fs, "monitors", args); code >= 0 {
		return code
	}

	data, err := ipc.NewClient().GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	writeMonitorTable(os.Stdout, data.Monitors, terminalWidth())
	return 0
}

func runOpenConfig(args []string) int {
	fs := newFlagSet("open-config", "monitormemory open-config [--gui]",
		"Create the arrangement file if needed and open it with the default handler.")
	gui := fs.Bool("gui", false, "Show failures as a desktop message")
	if code := parseNoArgs(fs, "open-config", args); code >= 0 {
		return code
	}

	st, err := openStore()
	if err != nil {
		return reportFailure(*gui, "Open config failed", err)
	}
	if err := ensureFile(st.Path()); err != nil {
		return reportFailure(*gui, "Open config failed", err)
	}
	if err := platform.OpenFile(st.Path()); err != nil {
		return reportFailure(*gui, "Open config failed", err)
	}
	return 0
}

// openStore returns the arrangement store named by the settings, or the
// default one.
func openStore() (*store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.StorePath != "" {
		return store.New(cfg.StorePath), nil
	}
	return store.Open()
}

func ensureFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return f.Close()
}

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  monitormemory config validate [--path PATH]")
	fmt.Fprintln(w, "  monitormemory config print [--path PATH] [--defaults]")
	fmt.Fprintln(w, "  monitormemory config path")
	fmt.Fprintln(w, "  monitormemory config explain [--path PATH] <key>")
}

func loadConfigResult(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 {
		printConfigUsage(os.Stderr)
		return 2
	}
	if isHelpArg(args[0]) {
		printConfigUsage(os.Stdout)
		return 0
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: <user config dir>/monitormemory/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res, err := loadConfigResult(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if !res.Exists {
			fmt.Printf("config: ok (%s not found, using defaults)\n", res.Path)
			return 0
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: <user config dir>/monitormemory/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if *printDefaults {
			data, err := yaml.Marshal(config.DefaultConfig())
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			fmt.Print(string(data))
			return 0
		}

		res, err := loadConfigResult(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out, err := config.Render(res)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(out)
		return 0

	case "path":
		cfgPath, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("config:       %s\n", cfgPath)
		st, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("arrangements: %s\n", st.Path())
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: <user config dir>/monitormemory/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <key>")
			fmt.Fprintf(os.Stderr, "known keys: %s\n", strings.Join(config.Keys(), ", "))
			return 2
		}

		res, err := loadConfigResult(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("key: %s\n", fs.Arg(0))
		fmt.Printf("source: %s\n", src)
		fmt.Printf("value: %s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}
