package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/1broseidon/monitormemory/internal/ipc"
)

var rotationLabels = []string{"0", "90", "180", "270"}

func runList(args []string) int {
	fs := newFlagSet("list", "monitormemory list [--json]",
		"List remembered arrangements, most recent first. Reads the arrangement file directly.")
	jsonOut := fs.Bool("json", false, "Output arrangements as JSON")
	if code := parseNoArgs(fs, "list", args); code >= 0 {
		return code
	}

	st, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	stored, err := st.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		out := make([]ipc.MonitorsData, 0, len(stored))
		for _, arr := range stored {
			out = append(out, ipc.NewMonitorsData(arr))
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	if len(stored) == 0 {
		fmt.Printf("no arrangements remembered in %s\n", st.Path())
		return 0
	}
	width := terminalWidth()
	for i, arr := range stored {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("#%d (%d monitor(s))\n", i, len(arr))
		writeMonitorTable(os.Stdout, ipc.NewMonitorsData(arr).Monitors, width)
	}
	return 0
}

// terminalWidth returns the stdout width, or 0 when stdout is not a
// terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

// writeMonitorTable prints one row per monitor. With width > 0 the name
// column is truncated so rows fit; width 0 prints tab-separated fields for
// scripts.
func writeMonitorTable(w io.Writer, monitors []ipc.MonitorInfo, width int) {
	if width <= 0 {
		for _, m := range monitors {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
				m.Device, m.Name, m.Width, m.Height, m.X, m.Y, rotationLabel(m.Rotation))
		}
		return
	}

	deviceCol := len("DEVICE")
	nameCol := len("NAME")
	for _, m := range monitors {
		deviceCol = max(deviceCol, len(m.Device))
		nameCol = max(nameCol, len(m.Name))
	}
	const fixed = 2 + 11 + 2 + 13 + 2 + 3
	if avail := width - deviceCol - 2 - fixed; nameCol > avail {
		nameCol = max(avail, len("NAME"))
	}

	row := func(device, name, size, pos, rot string) {
		fmt.Fprintf(w, "%-*s  %-*s  %-11s  %-13s  %s\n", deviceCol, device, nameCol, truncate(name, nameCol), size, pos, rot)
	}
	row("DEVICE", "NAME", "SIZE", "POSITION", "ROT")
	for _, m := range monitors {
		row(valueOrNone(m.Device), m.Name,
			fmt.Sprintf("%dx%d", m.Width, m.Height),
			fmt.Sprintf("%+d,%+d", m.X, m.Y),
			rotationLabel(m.Rotation))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return strings.TrimSpace(string(r[:n-1])) + "~"
}

func rotationLabel(code int) string {
	if code < 0 || code >= len(rotationLabels) {
		return fmt.Sprint(code)
	}
	return rotationLabels[code]
}
