package sketch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devista-consulting/arduino-sketch-vault/internal/replay"
)

// orderBus records command executions and lets the test observe the
// document state at the moment the first command runs.
type orderBus struct {
	registered map[string]struct{}
	executed   []string
	onExecute  func(id string)
}

func (b *orderBus) Commands() (map[string]struct{}, error) { return b.registered, nil }

func (b *orderBus) Execute(id string) error {
	b.executed = append(b.executed, id)
	if b.onExecute != nil {
		b.onExecute(id)
	}
	return nil
}

func writeDoc(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func fastSync(bus *orderBus) *replay.Synchronizer {
	s := replay.New(bus)
	s.PollTimeout = 2 * time.Millisecond
	s.PollInterval = time.Millisecond
	return s
}

func TestApplyProfileWritesPointerBeforeCommands(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, sampleDoc)
	store := NewStore(path)

	var pointerAtFirstExec string
	bus := &orderBus{
		registered: map[string]struct{}{
			"arduino-board-select--esp32:esp32:esp32s3":     {},
			"esp32:esp32:esp32s3-DebugLevel--verbose":       {},
			"esp32:esp32:esp32s3-UploadSpeed--921600":       {},
			"arduino-board-select--esp32:esp32:esp32s3-alt": {},
		},
		onExecute: func(string) {
			if pointerAtFirstExec == "" {
				doc, err := LoadDocument(path)
				if err != nil {
					t.Errorf("load during execute: %v", err)
					return
				}
				pointerAtFirstExec = doc.DefaultProfile()
			}
		},
	}

	res, err := store.ApplyProfile("debug", fastSync(bus))
	if err != nil {
		t.Fatalf("ApplyProfile failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	// The default_profile write must land before any command execution, or
	// auto-sync racing with the IDE's change events corrupts the previous
	// profile.
	if pointerAtFirstExec != "debug" {
		t.Errorf("default_profile at first command = %q, want debug", pointerAtFirstExec)
	}
}

func TestApplyProfileUnknownName(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(writeDoc(t, dir, sampleDoc))
	bus := &orderBus{registered: map[string]struct{}{}}
	if _, err := store.ApplyProfile("nope", fastSync(bus)); err == nil {
		t.Error("expected error for unknown profile")
	}
	if len(bus.executed) != 0 {
		t.Error("expected no commands for unknown profile")
	}
}

func TestUpdateActiveFQBNBestEffort(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, sampleDoc)
	store := NewStore(path)

	store.UpdateActiveFQBN("esp32:esp32:esp32s3:UploadSpeed=460800", "esp32:esp32 (3.0.2)")

	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := doc.ActiveProfile()
	if !ok || p.FQBN != "esp32:esp32:esp32s3:UploadSpeed=460800" {
		t.Errorf("fqbn not synced: %+v", p)
	}
}

func TestUpdateActiveFQBNMissingDocumentIsNoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	store := NewStore(path)

	store.UpdateActiveFQBN("arduino:avr:uno", "")

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no document to be created by best-effort sync")
	}
}

func TestUpdateActiveFQBNCorruptDocumentIsNoop(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "profiles: [unclosed\n")
	store := NewStore(path)

	store.UpdateActiveFQBN("arduino:avr:uno", "")

	data, _ := os.ReadFile(path)
	if string(data) != "profiles: [unclosed\n" {
		t.Error("corrupt document must not be rewritten")
	}
}

func TestCreateProfile(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, sampleDoc)
	store := NewStore(path)

	if err := store.CreateProfile("ota", "esp32:esp32:esp32s3", "esp32:esp32 (3.0.2)"); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	if err := store.CreateProfile("ota", "arduino:avr:uno", "arduino:avr"); err == nil {
		t.Error("expected duplicate rejection")
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "ota:") {
		t.Error("profile not persisted")
	}
	// Unrelated content still intact after the rewrite.
	if !strings.Contains(string(data), "- PubSubClient (2.8.0)") {
		t.Error("existing libraries lost")
	}
}

func TestSwitchDefault(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, sampleDoc)
	store := NewStore(path)

	if err := store.SwitchDefault("debug"); err != nil {
		t.Fatalf("SwitchDefault failed: %v", err)
	}
	doc, _ := LoadDocument(path)
	if doc.DefaultProfile() != "debug" {
		t.Errorf("got=%s", doc.DefaultProfile())
	}
}
