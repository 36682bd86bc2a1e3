package pages

import (
	"strings"
	"testing"

	"github.com/devista-consulting/arduino-sketch-vault/internal/app"
	"github.com/devista-consulting/arduino-sketch-vault/internal/ide"
)

func testSelection() *ide.Selection {
	sel := &ide.Selection{
		Options: map[string]ide.OptionState{
			"CPUFreq":     {Label: "CPU Frequency", Value: "240", ValueLabel: "240MHz (WiFi/BT)", Selected: true},
			"UploadSpeed": {Label: "Upload Speed", Value: "921600", ValueLabel: "921600"},
		},
		Port: &ide.Port{Address: "/dev/ttyUSB0", Protocol: "serial"},
	}
	sel.Board.Name = "ESP32 Dev Module"
	sel.Board.FQBN = "esp32:esp32:esp32"
	return sel
}

func TestBoardWaitingBeforeFirstPoll(t *testing.T) {
	p := NewBoardPage()
	p.SetSize(80, 24)

	if !strings.Contains(p.View(), "Waiting for the first poll") {
		t.Fatalf("expected waiting state:\n%s", p.View())
	}
}

func TestBoardUnreachableBridge(t *testing.T) {
	p := NewBoardPage()
	p.SetSize(80, 24)
	p.Update(app.SelectionMsg{Sel: nil})

	view := p.View()
	if !strings.Contains(view, "No Board") {
		t.Fatalf("expected no-board state:\n%s", view)
	}
}

func TestBoardRendersSelection(t *testing.T) {
	p := NewBoardPage()
	p.SetSize(80, 24)
	p.Update(app.SelectionMsg{Sel: testSelection()})

	view := p.View()
	for _, want := range []string{
		"ESP32 Dev Module",
		"esp32:esp32:esp32",
		"/dev/ttyUSB0",
		"CPU Frequency",
		"240MHz (WiFi/BT)",
	} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
	// Unselected options are marked as defaults.
	if !strings.Contains(view, "(default)") {
		t.Fatalf("expected default marker for unselected option:\n%s", view)
	}
}
