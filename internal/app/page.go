package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/devista-consulting/arduino-sketch-vault/internal/ide"
	"github.com/devista-consulting/arduino-sketch-vault/internal/replay"
)

// PageID identifies each page in the application.
type PageID int

const (
	ProfilesPage PageID = iota
	HistoryPage
	BoardPage
	PortsPage
	SettingsPage
)

var PageOrder = []PageID{
	ProfilesPage,
	HistoryPage,
	BoardPage,
	PortsPage,
	SettingsPage,
}

// Page is the interface every page in the application implements.
type Page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Page, tea.Cmd)
	View() string
	Name() string
	ShortHelp() []key.Binding
	SetSize(width, height int)
}

// InputCapturer is an optional interface for pages with text inputs.
// When InputCaptured returns true, the app forwards all keys directly
// to the page instead of processing shortcuts like q, ?, left, etc.
type InputCapturer interface {
	InputCaptured() bool
}

// SelectionMsg is broadcast to all pages after each watch-loop poll.
// Sel is nil when the bridge is unreachable.
type SelectionMsg struct {
	Sel *ide.Selection
}

// ApplyProfileMsg asks the app to apply the named profile to the IDE.
// Pages emit it; the model runs the apply and broadcasts the result.
type ApplyProfileMsg struct {
	Name string
}

// ProfileAppliedMsg is broadcast when an apply finishes.
type ProfileAppliedMsg struct {
	Name   string
	Result replay.Result
	Err    error
}

// ProfilesChangedMsg tells pages the profile document changed and lists
// should be reloaded.
type ProfilesChangedMsg struct{}

// ClearHistoryMsg asks the app to confirm and clear the change history.
type ClearHistoryMsg struct{}

// HistoryClearedMsg is broadcast after the history was wiped.
type HistoryClearedMsg struct{}
