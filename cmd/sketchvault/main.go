package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"

	"github.com/devista-consulting/arduino-sketch-vault/internal/app"
	"github.com/devista-consulting/arduino-sketch-vault/internal/changelog"
	"github.com/devista-consulting/arduino-sketch-vault/internal/config"
	"github.com/devista-consulting/arduino-sketch-vault/internal/fqbn"
	"github.com/devista-consulting/arduino-sketch-vault/internal/ide"
	"github.com/devista-consulting/arduino-sketch-vault/internal/pages"
	"github.com/devista-consulting/arduino-sketch-vault/internal/replay"
	"github.com/devista-consulting/arduino-sketch-vault/internal/serial"
	"github.com/devista-consulting/arduino-sketch-vault/internal/sketch"
	"github.com/devista-consulting/arduino-sketch-vault/internal/tracker"
	"github.com/devista-consulting/arduino-sketch-vault/internal/vault"
)

const version = "0.3.0"

func checkUpdate() {
	githubTag := &latest.GithubTag{
		Owner:      "devista-consulting",
		Repository: "arduino-sketch-vault",
	}

	res, err := latest.Check(githubTag, version)
	if err != nil {
		return // offline is fine
	}

	if res.Outdated {
		fmt.Printf("A new version is available: %s (you have %s)\n", res.Current, version)
		fmt.Println("Download it from https://github.com/devista-consulting/arduino-sketch-vault/releases")
	} else {
		fmt.Printf("You are using the latest version: %s\n", version)
	}
}

// cliNotifier prints service notifications for the non-TUI modes.
type cliNotifier struct{}

func (cliNotifier) Info(msg string)  { fmt.Println(msg) }
func (cliNotifier) Warn(msg string)  { fmt.Fprintln(os.Stderr, "warning: "+msg) }
func (cliNotifier) Error(msg string) { fmt.Fprintln(os.Stderr, "error: "+msg) }

// stdinPrompter asks yes/no questions on the terminal.
type stdinPrompter struct{}

func (stdinPrompter) Confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sketchvault [options]\n\n")
		fmt.Fprintf(os.Stderr, "sketchvault tracks the Arduino IDE's board configuration, records every\n")
		fmt.Fprintf(os.Stderr, "change, and keeps sketch.yaml build profiles in sync with the IDE.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  sketchvault                # Start TUI mode with the watch loop\n")
		fmt.Fprintf(os.Stderr, "  sketchvault --list         # List the sketch's build profiles\n")
		fmt.Fprintf(os.Stderr, "  sketchvault --apply debug  # Replay the debug profile into the IDE\n")
		fmt.Fprintf(os.Stderr, "  sketchvault --sync         # Apply the active profile (asks first)\n")
		fmt.Fprintf(os.Stderr, "  sketchvault --watch        # Headless watch loop, entries to stdout\n")
		fmt.Fprintf(os.Stderr, "  sketchvault --log --json   # Dump the change history as JSON\n")
	}

	listFlag := pflag.BoolP("list", "l", false, "List the sketch's build profiles")
	watchFlag := pflag.BoolP("watch", "w", false, "Watch the IDE and record changes without the TUI")
	applyFlag := pflag.StringP("apply", "a", "", "Apply the named profile to the IDE")
	syncFlag := pflag.BoolP("sync", "s", false, "Apply the sketch's active profile to the IDE")
	yesFlag := pflag.BoolP("yes", "y", false, "Answer yes to confirmation prompts")
	logFlag := pflag.Bool("log", false, "Print the recorded change history")
	clearLogFlag := pflag.Bool("clear-log", false, "Wipe the recorded change history")
	jsonFlag := pflag.BoolP("json", "j", false, "Output as JSON (with --list or --log)")
	bridgeFlag := pflag.StringP("bridge", "b", "", "Path to the IDE bridge binary")
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	updateFlag := pflag.BoolP("update", "u", false, "Check for a newer release")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}
	if *versionFlag {
		fmt.Printf("sketchvault version %s\n", version)
		return
	}
	if *updateFlag {
		checkUpdate()
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sk := sketch.Detect(cwd)
	if sk == nil {
		fmt.Fprintln(os.Stderr, "Not in an Arduino sketch (no sketch.yaml or .ino file found)")
		os.Exit(1)
	}

	cfg := config.Load(sk.Root)

	binary := ide.DefaultBridgeBinary
	if cfg.BridgeBinary != "" {
		binary = cfg.BridgeBinary
	}
	if *bridgeFlag != "" {
		binary = *bridgeFlag
	}

	logPath := cfg.LogPath
	if logPath == "" {
		logPath = filepath.Join(sk.Root, config.DataDirName, "changes.json")
	}

	runner := ide.NewExecRunner(binary, sk.Root, cfg.BridgeToolsDir)
	store := sketch.NewStore(sk.DocumentPath)
	sync := replay.New(&ide.BridgeBus{Runner: runner})

	// Every recorded entry is mirrored as a plain line next to the JSON log.
	var sink io.Writer
	if f, err := openSink(logPath); err == nil {
		defer f.Close()
		sink = f
		if *watchFlag {
			sink = io.MultiWriter(f, os.Stdout)
		}
	}
	log := changelog.Open(logPath, sink, nil)

	switch {
	case *listFlag:
		svc := vault.New(runner, tracker.New(), log, store, sync, sk.Root, cliNotifier{})
		runList(svc, *jsonFlag)
		return
	case *applyFlag != "":
		svc := vault.New(runner, tracker.New(), log, store, sync, sk.Root, cliNotifier{})
		runApply(svc, *applyFlag)
		return
	case *syncFlag:
		svc := vault.New(runner, tracker.New(), log, store, sync, sk.Root, cliNotifier{})
		ok, err := svc.ApplyDefault(false, !*yesFlag, stdinPrompter{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			os.Exit(1)
		}
		return
	case *logFlag:
		runLog(log, *jsonFlag)
		return
	case *watchFlag:
		svc := vault.New(runner, tracker.New(), log, store, sync, sk.Root, cliNotifier{})
		svc.DescribePort = describePort
		runWatch(svc, &cfg)
		return
	case *clearLogFlag:
		if !*yesFlag && !(stdinPrompter{}).Confirm("Clear the change history?") {
			return
		}
		if err := log.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("History cleared")
		return
	}

	runTUI(runner, store, log, sync, &cfg, sk)
}

// describePort enriches a bridge-reported address with USB metadata from
// the host's own port enumeration.
func describePort(address string) (string, bool) {
	p, ok := serial.Find(address)
	if !ok {
		return "", false
	}
	return p.Describe(), true
}

func openSink(jsonPath string) (*os.File, error) {
	dir := filepath.Dir(jsonPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(jsonPath), filepath.Ext(jsonPath)) + ".log"
	return os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// runWatch is the headless watch loop: poll, observe, repeat until
// interrupted. Entries stream to stdout through the log sink.
func runWatch(svc *vault.Service, cfg *config.Config) {
	interval := time.Duration(cfg.WatchIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = config.DefaultWatchIntervalMS * time.Millisecond
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching the IDE every %s (ctrl+c to stop)\n", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		svc.ObserveSelection(svc.Poll())
		select {
		case <-ctx.Done():
			fmt.Println("\nStopped")
			return
		case <-ticker.C:
		}
	}
}

func runList(svc *vault.Service, asJSON bool) {
	profiles, active, err := svc.Profiles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if asJSON {
		type profileOut struct {
			Name   string `json:"name"`
			FQBN   string `json:"fqbn"`
			Active bool   `json:"active"`
		}
		out := make([]profileOut, 0, len(profiles))
		for _, p := range profiles {
			out = append(out, profileOut{Name: p.Name, FQBN: p.FQBN, Active: p.Name == active})
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(profiles) == 0 {
		fmt.Println("No build profiles found in " + sketch.FileName)
		return
	}
	for _, p := range profiles {
		marker := " "
		if p.Name == active {
			marker = "*"
		}
		fmt.Printf("%s %-20s %s\n", marker, p.Name, fqbn.FormatSummary(p.FQBN, 3))
	}
}

func runApply(svc *vault.Service, name string) {
	res, err := svc.ApplyNamed(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, o := range res.OptionsApplied {
		fmt.Printf("applied %s=%s\n", o.Option, o.Value)
	}
	for _, o := range res.OptionsFailed {
		fmt.Fprintf(os.Stderr, "failed %s=%s: %s\n", o.Option, o.Value, o.Reason)
	}
	for _, e := range res.Errors {
		fmt.Fprintln(os.Stderr, "error: "+e)
	}

	if !res.Success {
		os.Exit(1)
	}
	fmt.Printf("Profile %q applied\n", name)
}

func runLog(log *changelog.Log, asJSON bool) {
	entries := log.Entries()

	if asJSON {
		data, _ := json.MarshalIndent(entries, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(entries) == 0 {
		fmt.Println("No changes recorded")
		return
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-8s %s", e.Timestamp.Format("2006-01-02 15:04:05"), e.ChangeType, e.FQBN)
		if s := e.Summary(); s != "" {
			line += "  " + s
		}
		fmt.Println(line)
	}
}

func runTUI(runner ide.Runner, store *sketch.Store, log *changelog.Log, sync *replay.Synchronizer, cfg *config.Config, sk *sketch.Sketch) {
	notifier := &app.Notifier{}
	svc := vault.New(runner, tracker.New(), log, store, sync, sk.Root, notifier)
	svc.DescribePort = describePort

	pageMap := map[app.PageID]app.Page{
		app.ProfilesPage: pages.NewProfilesPage(svc),
		app.HistoryPage:  pages.NewHistoryPage(svc),
		app.BoardPage:    pages.NewBoardPage(),
		app.PortsPage:    pages.NewPortsPage(),
		app.SettingsPage: pages.NewSettingsPage(cfg, sk.Root),
	}

	model := app.New(pageMap, svc, cfg, sk.Root, filepath.Base(sk.Root))

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	notifier.SetTarget(p)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
