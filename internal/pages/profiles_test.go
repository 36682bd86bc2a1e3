package pages

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/devista-consulting/arduino-sketch-vault/internal/app"
	"github.com/devista-consulting/arduino-sketch-vault/internal/replay"
)

func TestProfilesLoadsDocument(t *testing.T) {
	svc := newTestService(t, &scriptedRunner{})
	p := NewProfilesPage(svc)
	p.Init()

	if len(p.profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(p.profiles))
	}
	if p.profiles[0].Name != "release" || p.profiles[1].Name != "debug" {
		t.Fatalf("unexpected profile order: %v", p.profiles)
	}
	if p.active != "release" {
		t.Fatalf("expected active=release, got %q", p.active)
	}
}

func TestProfilesCursorClamps(t *testing.T) {
	svc := newTestService(t, &scriptedRunner{})
	p := NewProfilesPage(svc)
	p.Init()

	p.Update(tea.KeyMsg{Type: tea.KeyUp})
	if p.cursor != 0 {
		t.Fatalf("expected cursor to clamp at 0, got %d", p.cursor)
	}

	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	if p.cursor != 1 {
		t.Fatalf("expected cursor to clamp at 1, got %d", p.cursor)
	}
}

func TestProfilesEnterEmitsApply(t *testing.T) {
	svc := newTestService(t, &scriptedRunner{})
	p := NewProfilesPage(svc)
	p.Init()

	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command from enter")
	}
	msg, ok := cmd().(app.ApplyProfileMsg)
	if !ok {
		t.Fatalf("expected ApplyProfileMsg, got %T", cmd())
	}
	if msg.Name != "debug" {
		t.Fatalf("expected apply of debug, got %q", msg.Name)
	}
}

func TestProfilesAppliedMessageRefreshesActive(t *testing.T) {
	svc := newTestService(t, &scriptedRunner{})
	p := NewProfilesPage(svc)
	p.Init()

	// Simulate the apply the model ran: the store now points at debug.
	if _, err := svc.ApplyNamed("debug"); err != nil {
		t.Fatal(err)
	}
	p.Update(app.ProfileAppliedMsg{Name: "debug", Result: replay.Result{Success: true}})

	if p.active != "debug" {
		t.Fatalf("expected active=debug after apply, got %q", p.active)
	}
	if !strings.Contains(p.message, "debug") {
		t.Fatalf("expected message to mention the profile, got %q", p.message)
	}
}

func TestProfilesCreateFromCurrent(t *testing.T) {
	runner := &scriptedRunner{outputs: map[string]string{
		"current": `{
			"board": {"name": "Arduino Nano", "fqbn": "arduino:avr:nano"},
			"options": {
				"cpu": {"label": "Processor", "value": "atmega328", "value_label": "ATmega328P", "selected": true}
			}
		}`,
		"details": `{"properties": {"runtime.platform.path": "/home/u/.arduino15/packages/arduino/hardware/avr/1.8.6", "version": "1.8.6"}}`,
	}}
	svc := newTestService(t, runner)
	p := NewProfilesPage(svc)
	p.Init()

	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if !p.InputCaptured() {
		t.Fatal("expected input capture while naming the profile")
	}

	p.input.SetValue("nano-dev")
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected ProfilesChangedMsg command")
	}
	if _, ok := cmd().(app.ProfilesChangedMsg); !ok {
		t.Fatalf("expected ProfilesChangedMsg, got %T", cmd())
	}

	if len(p.profiles) != 3 {
		t.Fatalf("expected 3 profiles after create, got %d", len(p.profiles))
	}
	created := p.profiles[2]
	if created.Name != "nano-dev" {
		t.Fatalf("expected nano-dev, got %q", created.Name)
	}
	if created.FQBN != "arduino:avr:nano:cpu=atmega328" {
		t.Fatalf("unexpected fqbn %q", created.FQBN)
	}
}

func TestProfilesCreateEmptyNameIsNoop(t *testing.T) {
	svc := newTestService(t, &scriptedRunner{})
	p := NewProfilesPage(svc)
	p.Init()

	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	p.input.SetValue("   ")
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("expected no command for a blank name")
	}
	if len(p.profiles) != 2 {
		t.Fatalf("expected profile count unchanged, got %d", len(p.profiles))
	}
}

func TestProfilesViewMarksActive(t *testing.T) {
	svc := newTestService(t, &scriptedRunner{})
	p := NewProfilesPage(svc)
	p.Init()
	p.SetSize(80, 24)

	view := p.View()
	if !strings.Contains(view, "release") || !strings.Contains(view, "debug") {
		t.Fatalf("expected both profiles in view:\n%s", view)
	}
	if !strings.Contains(view, "●") {
		t.Fatalf("expected active marker in view:\n%s", view)
	}
}
