package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// NotifyLevel grades a notification.
type NotifyLevel int

const (
	NotifyInfo NotifyLevel = iota
	NotifyWarn
	NotifyError
)

// NotifyMsg carries a user-facing notification into the TUI.
type NotifyMsg struct {
	Level NotifyLevel
	Text  string
}

// Sender is the part of tea.Program the notifier needs.
type Sender interface {
	Send(tea.Msg)
}

// Notifier forwards service notifications into the running program. The
// program only exists after the model is built, so the target is attached
// late; messages raised before that are dropped.
type Notifier struct {
	mu     sync.Mutex
	target Sender
}

// SetTarget attaches the running program.
func (n *Notifier) SetTarget(s Sender) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.target = s
}

func (n *Notifier) send(level NotifyLevel, text string) {
	n.mu.Lock()
	target := n.target
	n.mu.Unlock()
	if target != nil {
		target.Send(NotifyMsg{Level: level, Text: text})
	}
}

// Info implements vault.Notifier.
func (n *Notifier) Info(msg string) { n.send(NotifyInfo, msg) }

// Warn implements vault.Notifier.
func (n *Notifier) Warn(msg string) { n.send(NotifyWarn, msg) }

// Error implements vault.Notifier.
func (n *Notifier) Error(msg string) { n.send(NotifyError, msg) }
