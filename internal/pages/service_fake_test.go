package pages

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/devista-consulting/arduino-sketch-vault/internal/changelog"
	"github.com/devista-consulting/arduino-sketch-vault/internal/ide"
	"github.com/devista-consulting/arduino-sketch-vault/internal/replay"
	"github.com/devista-consulting/arduino-sketch-vault/internal/sketch"
	"github.com/devista-consulting/arduino-sketch-vault/internal/tracker"
	"github.com/devista-consulting/arduino-sketch-vault/internal/vault"
)

// scriptedRunner answers bridge invocations from a canned output table
// keyed by the subcommand (first argument).
type scriptedRunner struct {
	outputs map[string]string
	calls   [][]string
}

func (r *scriptedRunner) Run(args ...string) (string, error) {
	copied := append([]string(nil), args...)
	r.calls = append(r.calls, copied)
	if out, ok := r.outputs[args[0]]; ok {
		return out, nil
	}
	return "", nil
}

const testSketchYAML = `profiles:
  release:
    fqbn: arduino:avr:uno
    platforms:
      - platform: arduino:avr (1.8.6)
  debug:
    fqbn: esp32:esp32:esp32:CPUFreq=240
    platforms:
      - platform: esp32:esp32 (2.0.14)

default_profile: release
`

func newTestService(t *testing.T, runner *scriptedRunner) *vault.Service {
	t.Helper()
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, sketch.FileName)
	if err := os.WriteFile(yamlPath, []byte(testSketchYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	store := sketch.NewStore(yamlPath)
	log := changelog.Open(filepath.Join(dir, "changes.json"), io.Discard, nil)
	sync := replay.New(&ide.BridgeBus{Runner: runner})
	sync.PollTimeout = 5 * time.Millisecond
	sync.PollInterval = time.Millisecond
	return vault.New(runner, tracker.New(), log, store, sync, dir, nil)
}
