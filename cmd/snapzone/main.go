package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/1broseidon/snapzone/internal/ipc"
	"github.com/1broseidon/snapzone/internal/settings"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "areas":
		os.Exit(runAreas(os.Args[2:]))
	case "move":
		os.Exit(runMove(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
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
	fmt.Fprintln(w, "Usage: snapzone <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the snapzone daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  reload              Reload the settings file")
	fmt.Fprintln(w, "  areas               List work areas and their zones")
	fmt.Fprintln(w, "  move                Move or extend a window into zones")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'snapzone <command> --help' for command-specific options.")
}

// parseFlags parses args and reports an exit code when the command should
// stop: 0 for --help, 2 for a usage error.
func parseFlags(fs *flag.FlagSet, args []string, maxArgs int) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, true
		}
		return 2, true
	}
	if maxArgs >= 0 && fs.NArg() > maxArgs {
		fmt.Fprintf(os.Stderr, "%s: too many arguments\n", fs.Name())
		fs.Usage()
		return 2, true
	}
	return 0, false
}

func newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		fs.PrintDefaults()
	}
	return fs
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "Usage: snapzone status [--json]\n\nShow daemon status via IPC.")
	asJSON := fs.Bool("json", false, "Print raw JSON")
	if code, stop := parseFlags(fs, args, 0); stop {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(status)
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	fmt.Printf("settings_path:  %s\n", status.SettingsPath)
	fmt.Printf("desktop:        %s (%d total)\n", status.Desktop, status.Desktops)
	fmt.Printf("monitors:       %d\n", status.Monitors)
	fmt.Printf("work_areas:     %d\n", status.WorkAreas)
	fmt.Printf("dragging:       %v\n", status.Dragging)
	if status.Dragging {
		fmt.Printf("dragged_window: 0x%x\n", uint32(status.DraggedWindow))
		fmt.Printf("drag_enabled:   %v\n", status.DragEnabled)
		fmt.Printf("active_area:    %s\n", status.ActiveArea)
	}
	return 0
}

func runReload(args []string) int {
	fs := newFlagSet("reload", "Usage: snapzone reload\n\nAsk the daemon to re-read its settings file.")
	if code, stop := parseFlags(fs, args, 0); stop {
		return code
	}

	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("reloaded")
	return 0
}

func runAreas(args []string) int {
	fs := newFlagSet("areas", "Usage: snapzone areas [--json]\n\nList work areas on every desktop and monitor.")
	asJSON := fs.Bool("json", false, "Print raw JSON")
	if code, stop := parseFlags(fs, args, 0); stop {
		return code
	}

	data, err := ipc.NewClient().GetAreas()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(data)
	}
	for _, a := range data.Areas {
		marker := " "
		if a.Current {
			marker = "*"
		}
		fmt.Printf("%s %-40s %-10s %dx%d+%d+%d  %s x%d\n",
			marker, a.ID, a.Monitor,
			a.Bounds.Width, a.Bounds.Height, a.Bounds.X, a.Bounds.Y,
			a.Layout.Type, len(a.Zones))
		for i, z := range a.Zones {
			fmt.Printf("    zone %d: %dx%d+%d+%d\n", i, z.Width, z.Height, z.X, z.Y)
		}
	}
	return 0
}

func runMove(args []string) int {
	fs := newFlagSet("move", strings.Join([]string{
		"Usage:",
		"  snapzone move [--extend] [--window ID] <left|right|up|down>",
		"  snapzone move --zones 0,1 [--window ID]",
		"",
		"Place a window into zones of its work area without dragging.",
	}, "\n"))
	extend := fs.Bool("extend", false, "Extend the window into the neighbouring zone")
	zones := fs.String("zones", "", "Comma-separated zone indices")
	window := fs.String("window", "", "Window id (default: active window)")
	if code, stop := parseFlags(fs, args, 1); stop {
		return code
	}

	p, err := placePayload(fs.Arg(0), *extend, *zones, *window)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return 2
	}

	placed, err := ipc.NewClient().Place(p)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !placed {
		fmt.Println("window not placed")
		return 1
	}
	return 0
}

// placePayload builds a PLACE payload from command-line values.
func placePayload(direction string, extend bool, zones, window string) (ipc.PlacePayload, error) {
	var p ipc.PlacePayload
	if window != "" {
		id, err := strconv.ParseUint(window, 0, 32)
		if err != nil {
			return p, fmt.Errorf("invalid window id %q", window)
		}
		p.Window = uint32(id)
	}

	if zones != "" {
		if direction != "" || extend {
			return p, fmt.Errorf("--zones cannot be combined with a direction")
		}
		p.Kind = "zones"
		for _, part := range strings.Split(zones, ",") {
			i, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || i < 0 {
				return p, fmt.Errorf("invalid zone index %q", part)
			}
			p.Zones = append(p.Zones, i)
		}
		return p, nil
	}

	if direction == "" {
		return p, fmt.Errorf("a direction or --zones is required")
	}
	p.Kind = "move"
	if extend {
		p.Kind = "extend"
	}
	p.Direction = direction
	return p, nil
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  snapzone config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  snapzone config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := newFlagSet("validate", "Usage: snapzone config validate [--path PATH]")
		path := fs.String("path", "", "Config file path (default: ~/.config/snapzone/config.yaml)")
		if code, stop := parseFlags(fs, args[1:], 0); stop {
			return code
		}

		if _, err := loadSettings(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := newFlagSet("print", "Usage: snapzone config print [--path PATH] [--defaults]")
		path := fs.String("path", "", "Config file path (default: ~/.config/snapzone/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if code, stop := parseFlags(fs, args[1:], 0); stop {
			return code
		}

		s := settings.DefaultSettings()
		if !*printDefaults {
			var err error
			if s, err = loadSettings(*path); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}
		data, err := s.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

// settingsPath returns path, or the default settings location when empty.
func settingsPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return settings.DefaultSettingsPath()
}

func loadSettings(path string) (*settings.Settings, error) {
	p, err := settingsPath(path)
	if err != nil {
		return nil, err
	}
	return settings.LoadFromPath(p)
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
