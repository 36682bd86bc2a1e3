package pages

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/devista-consulting/arduino-sketch-vault/internal/app"
	"github.com/devista-consulting/arduino-sketch-vault/internal/changelog"
	"github.com/devista-consulting/arduino-sketch-vault/internal/ui"
	"github.com/devista-consulting/arduino-sketch-vault/internal/vault"
)

type HistoryPage struct {
	svc           *vault.Service
	entries       []changelog.Entry
	viewport      viewport.Model
	width, height int
	message       string
}

func NewHistoryPage(svc *vault.Service) *HistoryPage {
	return &HistoryPage{
		svc:      svc,
		viewport: viewport.New(0, 0),
	}
}

func (p *HistoryPage) Init() tea.Cmd {
	p.refresh()
	return nil
}

func (p *HistoryPage) refresh() {
	count := len(p.entries)
	p.entries = p.svc.History()
	p.viewport.SetContent(p.renderEntries())
	if len(p.entries) != count {
		p.viewport.GotoTop()
	}
}

func (p *HistoryPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			if len(p.entries) == 0 {
				return p, nil
			}
			return p, func() tea.Msg { return app.ClearHistoryMsg{} }
		case "r":
			p.refresh()
			p.message = ""
			return p, nil
		}

	case app.SelectionMsg:
		p.refresh()
		return p, nil

	case app.HistoryClearedMsg:
		p.entries = nil
		p.viewport.SetContent("")
		p.message = "History cleared"
		return p, nil
	}

	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

// renderEntries lays out the log newest-first.
func (p *HistoryPage) renderEntries() string {
	var b strings.Builder
	for i := len(p.entries) - 1; i >= 0; i-- {
		e := p.entries[i]
		ts := ui.DimStyle.Render(e.Timestamp.Format("Jan 02 15:04:05"))
		b.WriteString(fmt.Sprintf("%s  %s\n", ts, headline(e)))
		if s := e.Summary(); s != "" {
			b.WriteString("                 " + s + "\n")
		}
	}
	return b.String()
}

func headline(e changelog.Entry) string {
	switch e.ChangeType {
	case changelog.ChangeInitial:
		return "Watching " + ui.BoldStyle.Render(boardLabel(e))
	case changelog.ChangePort:
		return "Port changed on " + boardLabel(e)
	case changelog.ChangeFQBN:
		return "Board set to " + ui.BoldStyle.Render(e.FQBN)
	default:
		return "Configuration changed on " + ui.BoldStyle.Render(boardLabel(e))
	}
}

func boardLabel(e changelog.Entry) string {
	if e.Board.Name != "" {
		return e.Board.Name
	}
	return e.Board.FQBN
}

func (p *HistoryPage) View() string {
	var inner strings.Builder

	if len(p.entries) == 0 {
		inner.WriteString("No changes recorded yet.\n\n")
		inner.WriteString(ui.DimStyle.Render("Board and port changes made in the IDE will show up here.") + "\n")
	} else {
		inner.WriteString(p.viewport.View())
	}

	if p.message != "" {
		inner.WriteString("\n" + p.message)
	}

	return ui.Panel(fmt.Sprintf("History (%d)", len(p.entries)), inner.String(), p.width, 0, false)
}

func (p *HistoryPage) Name() string { return "History" }

func (p *HistoryPage) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		key.NewBinding(key.WithKeys("↑/↓"), key.WithHelp("↑/↓", "scroll")),
	}
}

func (p *HistoryPage) SetSize(w, h int) {
	p.width = w
	p.height = h
	vpHeight := h - 6
	if vpHeight < 3 {
		vpHeight = 3
	}
	p.viewport.Width = w - 4
	p.viewport.Height = vpHeight
	p.viewport.SetContent(p.renderEntries())
}
