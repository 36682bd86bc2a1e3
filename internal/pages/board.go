package pages

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/devista-consulting/arduino-sketch-vault/internal/app"
	"github.com/devista-consulting/arduino-sketch-vault/internal/fqbn"
	"github.com/devista-consulting/arduino-sketch-vault/internal/ide"
	"github.com/devista-consulting/arduino-sketch-vault/internal/ui"
)

// BoardPage shows the IDE's current board selection as seen by the watch
// loop. It is read-only.
type BoardPage struct {
	sel           *ide.Selection
	seen          bool
	width, height int
}

func NewBoardPage() *BoardPage {
	return &BoardPage{}
}

func (p *BoardPage) Init() tea.Cmd { return nil }

func (p *BoardPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	if msg, ok := msg.(app.SelectionMsg); ok {
		p.sel = msg.Sel
		p.seen = true
	}
	return p, nil
}

func (p *BoardPage) View() string {
	var inner strings.Builder

	switch {
	case !p.seen:
		inner.WriteString("Waiting for the first poll...\n")
	case p.sel == nil || p.sel.Board.FQBN == "":
		inner.WriteString("  " + ui.WarnBadge("No Board") + "\n\n")
		inner.WriteString("The IDE bridge is unreachable or no board is selected.\n")
	default:
		inner.WriteString("  " + ui.SuccessBadge("Connected") + "\n\n")

		name := p.sel.Board.Name
		if name == "" {
			name = "(unnamed)"
		}
		inner.WriteString(ui.Kv("Board", ui.BoldStyle.Render(name)) + "\n")
		inner.WriteString(ui.Kv("FQBN", p.sel.Board.FQBN) + "\n")
		inner.WriteString(ui.Kv("Platform", fqbn.ExtractPlatformID(p.sel.Board.FQBN)) + "\n")

		if p.sel.Port != nil {
			port := p.sel.Port.Address
			if p.sel.Port.Protocol != "" {
				port += " (" + p.sel.Port.Protocol + ")"
			}
			inner.WriteString(ui.Kv("Port", port) + "\n")
		} else {
			inner.WriteString(ui.Kv("Port", ui.DimStyle.Render("not selected")) + "\n")
		}

		if len(p.sel.Options) > 0 {
			inner.WriteString("\n  " + ui.BoldStyle.Render("Board options") + "\n")
			names := make([]string, 0, len(p.sel.Options))
			for n := range p.sel.Options {
				names = append(names, n)
			}
			sort.Strings(names)
			for _, n := range names {
				st := p.sel.Options[n]
				label := st.Label
				if label == "" {
					label = n
				}
				value := st.ValueLabel
				if value == "" {
					value = st.Value
				}
				if !st.Selected {
					value = ui.DimStyle.Render(value + " (default)")
				}
				inner.WriteString(fmt.Sprintf("    %-24s %s\n", label, value))
			}
		}
	}

	return ui.Panel("Board", inner.String(), p.width, 0, false)
}

func (p *BoardPage) Name() string { return "Board" }

func (p *BoardPage) ShortHelp() []key.Binding { return nil }

func (p *BoardPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}
