package vault

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devista-consulting/arduino-sketch-vault/internal/changelog"
	"github.com/devista-consulting/arduino-sketch-vault/internal/ide"
	"github.com/devista-consulting/arduino-sketch-vault/internal/replay"
	"github.com/devista-consulting/arduino-sketch-vault/internal/sketch"
	"github.com/devista-consulting/arduino-sketch-vault/internal/tracker"
)

// scriptedRunner plays the role of the IDE bridge. Each subcommand has a
// canned response; "current" serves whatever selection the test installed.
type scriptedRunner struct {
	selection *ide.Selection
	commands  string
	details   string
	execErr   error
	executed  []string
}

func (r *scriptedRunner) Run(args ...string) (string, error) {
	switch args[0] {
	case "current":
		if r.selection == nil {
			return "", errors.New("bridge not running")
		}
		data, _ := json.Marshal(r.selection)
		return string(data), nil
	case "commands":
		return r.commands, nil
	case "details":
		return r.details, nil
	case "exec":
		r.executed = append(r.executed, args[1])
		return "", r.execErr
	}
	return "", errors.New("unknown subcommand")
}

type recordingNotifier struct {
	infos, warns, errs []string
}

func (n *recordingNotifier) Info(msg string)  { n.infos = append(n.infos, msg) }
func (n *recordingNotifier) Warn(msg string)  { n.warns = append(n.warns, msg) }
func (n *recordingNotifier) Error(msg string) { n.errs = append(n.errs, msg) }

type yesPrompter struct{ asked []string }

func (p *yesPrompter) Confirm(q string) bool { p.asked = append(p.asked, q); return true }

type noPrompter struct{}

func (noPrompter) Confirm(string) bool { return false }

func selection(fqbnStr string, options map[string]ide.OptionState, port *ide.Port) *ide.Selection {
	sel := &ide.Selection{Options: options, Port: port}
	sel.Board.Name = "Test Board"
	sel.Board.FQBN = fqbnStr
	return sel
}

func newService(t *testing.T, runner *scriptedRunner) (*Service, string, *recordingNotifier) {
	t.Helper()
	dir := t.TempDir()
	docPath := filepath.Join(dir, sketch.FileName)
	os.WriteFile(docPath, []byte(`profiles:
  release:
    fqbn: esp32:esp32:esp32s3:UploadSpeed=921600
    platforms:
      - platform: esp32:esp32 (3.0.2)
default_profile: release
`), 0o644)

	log := changelog.Open(filepath.Join(dir, "changes.json"), nil, nil)
	store := sketch.NewStore(docPath)
	sync := replay.New(&ide.BridgeBus{Runner: runner})
	sync.PollTimeout = 2 * time.Millisecond
	sync.PollInterval = time.Millisecond

	notifier := &recordingNotifier{}
	svc := New(runner, tracker.New(), log, store, sync, dir, notifier)
	return svc, docPath, notifier
}

func TestObserveSelectionLogsAndAutoSyncs(t *testing.T) {
	runner := &scriptedRunner{
		details: `{"properties": {"runtime.platform.path": "/u/.arduino15/packages/esp32/hardware/esp32/3.1.0"}}`,
	}
	svc, docPath, _ := newService(t, runner)

	opts := map[string]ide.OptionState{
		"UploadSpeed": {Label: "Upload Speed", Value: "921600", ValueLabel: "921600", Selected: true},
	}
	svc.ObserveSelection(selection("esp32:esp32:esp32s3", opts, nil))

	// First sighting: logged as initial, no auto-sync.
	entries := svc.Log.Entries()
	if len(entries) != 1 || entries[0].ChangeType != changelog.ChangeInitial {
		t.Fatalf("expected one initial entry, got %+v", entries)
	}

	opts["UploadSpeed"] = ide.OptionState{Label: "Upload Speed", Value: "460800", ValueLabel: "460800", Selected: true}
	svc.ObserveSelection(selection("esp32:esp32:esp32s3", opts, nil))

	entries = svc.Log.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	last := entries[1]
	if last.ChangeType != changelog.ChangeBoard || len(last.Changes) != 1 {
		t.Fatalf("unexpected entry: %+v", last)
	}
	if last.Changes[0].Option != "UploadSpeed" || *last.Changes[0].PreviousValue != "921600" {
		t.Errorf("unexpected change: %+v", last.Changes[0])
	}

	// Auto-sync rewrote the active profile with the new complete FQBN and
	// the version resolved from the install path.
	data, _ := os.ReadFile(docPath)
	doc, err := sketch.ParseDocument(data)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := doc.ActiveProfile()
	if !ok || p.FQBN != "esp32:esp32:esp32s3:UploadSpeed=460800" {
		t.Errorf("profile not synced: %+v", p)
	}
	if want := "platform: esp32:esp32 (3.1.0)"; !containsLine(string(data), want) {
		t.Errorf("platform not updated, document:\n%s", data)
	}
}

func TestObserveSelectionFQBNOnlyIsLogOnly(t *testing.T) {
	runner := &scriptedRunner{}
	svc, docPath, _ := newService(t, runner)
	before, _ := os.ReadFile(docPath)

	svc.ObserveSelection(selection("arduino:avr:uno", nil, nil))
	svc.ObserveSelection(selection("arduino:avr:uno", nil, nil)) // unchanged, no second entry

	entries := svc.Log.Entries()
	if len(entries) != 1 || entries[0].ChangeType != changelog.ChangeFQBN {
		t.Fatalf("expected one fqbn entry, got %+v", entries)
	}
	after, _ := os.ReadFile(docPath)
	if string(before) != string(after) {
		t.Error("fqbn-only events must not touch the document")
	}
}

func TestObserveSelectionPortChange(t *testing.T) {
	runner := &scriptedRunner{}
	svc, _, _ := newService(t, runner)

	svc.ObserveSelection(selection("arduino:avr:uno", nil, &ide.Port{Address: "/dev/ttyACM0", Protocol: "serial"}))
	svc.ObserveSelection(selection("arduino:avr:uno", nil, &ide.Port{Address: "/dev/ttyUSB1", Protocol: "serial"}))

	var portEntries []changelog.Entry
	for _, e := range svc.Log.Entries() {
		if e.ChangeType == changelog.ChangePort {
			portEntries = append(portEntries, e)
		}
	}
	if len(portEntries) != 1 {
		t.Fatalf("expected 1 port entry, got %d", len(portEntries))
	}
	c := portEntries[0].Changes[0]
	if c.PreviousValue == nil || *c.PreviousValue != "/dev/ttyACM0" || c.NewValue != "/dev/ttyUSB1" {
		t.Errorf("unexpected port change: %+v", c)
	}
	if portEntries[0].Port == nil || portEntries[0].Port.Protocol != "serial" {
		t.Errorf("port missing from entry: %+v", portEntries[0].Port)
	}
}

func TestObserveSelectionPortChangeUsesDescriber(t *testing.T) {
	runner := &scriptedRunner{}
	svc, _, _ := newService(t, runner)
	svc.DescribePort = func(address string) (string, bool) {
		if address == "/dev/ttyUSB1" {
			return "/dev/ttyUSB1 (USB 10c4:ea60)", true
		}
		return "", false
	}

	svc.ObserveSelection(selection("arduino:avr:uno", nil, &ide.Port{Address: "/dev/ttyACM0", Protocol: "serial"}))
	svc.ObserveSelection(selection("arduino:avr:uno", nil, &ide.Port{Address: "/dev/ttyUSB1", Protocol: "serial"}))

	var portEntries []changelog.Entry
	for _, e := range svc.Log.Entries() {
		if e.ChangeType == changelog.ChangePort {
			portEntries = append(portEntries, e)
		}
	}
	if len(portEntries) != 1 {
		t.Fatalf("expected 1 port entry, got %d", len(portEntries))
	}
	c := portEntries[0].Changes[0]
	if c.NewValue != "/dev/ttyUSB1" {
		t.Errorf("value must stay the raw address: %+v", c)
	}
	if c.NewLabel != "/dev/ttyUSB1 (USB 10c4:ea60)" {
		t.Errorf("label not enriched: %+v", c)
	}
}

func TestApplyDefaultPromptDeclined(t *testing.T) {
	runner := &scriptedRunner{}
	svc, docPath, _ := newService(t, runner)
	before, _ := os.ReadFile(docPath)

	ok, err := svc.ApplyDefault(false, true, noPrompter{})
	if err != nil {
		t.Fatalf("ApplyDefault failed: %v", err)
	}
	if ok {
		t.Error("expected declined prompt to report false")
	}
	if len(runner.executed) != 0 {
		t.Error("expected no commands after declined prompt")
	}
	after, _ := os.ReadFile(docPath)
	if string(before) != string(after) {
		t.Error("expected no document writes after declined prompt")
	}
}

func TestApplyDefaultSuccess(t *testing.T) {
	runner := &scriptedRunner{
		commands: "arduino-board-select--esp32:esp32:esp32s3\nesp32:esp32:esp32s3-UploadSpeed--921600\n",
	}
	svc, _, notifier := newService(t, runner)

	prompter := &yesPrompter{}
	ok, err := svc.ApplyDefault(false, true, prompter)
	if err != nil {
		t.Fatalf("ApplyDefault failed: %v", err)
	}
	if !ok {
		t.Fatal("expected success")
	}
	if len(prompter.asked) != 1 {
		t.Errorf("expected one prompt, got %v", prompter.asked)
	}
	if len(notifier.infos) != 1 {
		t.Errorf("expected one success notification, got %+v", notifier)
	}
	if runner.executed[0] != "arduino-board-select--esp32:esp32:esp32s3" {
		t.Errorf("expected board select first, got %v", runner.executed)
	}
}

func TestApplyDefaultSilentSuppressesSuccessNotification(t *testing.T) {
	runner := &scriptedRunner{
		commands: "arduino-board-select--esp32:esp32:esp32s3\nesp32:esp32:esp32s3-UploadSpeed--921600\n",
	}
	svc, _, notifier := newService(t, runner)

	ok, err := svc.ApplyDefault(true, false, nil)
	if err != nil || !ok {
		t.Fatalf("expected silent success, ok=%v err=%v", ok, err)
	}
	if len(notifier.infos) != 0 {
		t.Errorf("silent mode must not notify success, got %v", notifier.infos)
	}
	if len(runner.executed) == 0 {
		t.Error("silent mode must still perform the sync")
	}
}

func TestApplyDefaultPartialFailureWarns(t *testing.T) {
	// Board command exists, the option command does not.
	runner := &scriptedRunner{commands: "arduino-board-select--esp32:esp32:esp32s3\n"}
	svc, _, notifier := newService(t, runner)

	ok, err := svc.ApplyDefault(false, false, nil)
	if err != nil {
		t.Fatalf("ApplyDefault failed: %v", err)
	}
	if ok {
		t.Error("expected partial failure")
	}
	if len(notifier.warns) != 1 {
		t.Fatalf("expected one warning, got %+v", notifier)
	}
}

func TestCreateProfileFromCurrent(t *testing.T) {
	runner := &scriptedRunner{
		details: `{"properties": {"version": "3.0.2"}}`,
	}
	runner.selection = selection("esp32:esp32:esp32s3", map[string]ide.OptionState{
		"USBMode": {Label: "USB Mode", Value: "hwcdc", ValueLabel: "Hardware CDC", Selected: true},
	}, nil)
	svc, docPath, _ := newService(t, runner)

	if err := svc.CreateProfileFromCurrent("field-test"); err != nil {
		t.Fatalf("CreateProfileFromCurrent failed: %v", err)
	}

	data, _ := os.ReadFile(docPath)
	doc, _ := sketch.ParseDocument(data)
	var found bool
	for _, p := range doc.Profiles() {
		if p.Name == "field-test" {
			found = true
			if p.FQBN != "esp32:esp32:esp32s3:USBMode=hwcdc" {
				t.Errorf("unexpected fqbn: %s", p.FQBN)
			}
		}
	}
	if !found {
		t.Error("profile not created")
	}
}

func TestClearHistoryResetsTracker(t *testing.T) {
	runner := &scriptedRunner{}
	svc, _, _ := newService(t, runner)

	svc.ObserveSelection(selection("arduino:avr:uno", map[string]ide.OptionState{}, nil))
	if err := svc.ClearHistory(); err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}
	if len(svc.Log.Entries()) != 0 {
		t.Error("expected empty log")
	}
	// The same board observes as first-seen again.
	svc.ObserveSelection(selection("arduino:avr:uno", map[string]ide.OptionState{}, nil))
	entries := svc.Log.Entries()
	if len(entries) != 1 || entries[0].ChangeType != changelog.ChangeInitial {
		t.Errorf("expected fresh initial entry, got %+v", entries)
	}
}

func containsLine(s, sub string) bool {
	return strings.Contains(s, sub)
}
