package pages

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/devista-consulting/arduino-sketch-vault/internal/app"
	"github.com/devista-consulting/arduino-sketch-vault/internal/serial"
	"github.com/devista-consulting/arduino-sketch-vault/internal/ui"
)

type portsLoadedMsg struct {
	ports []serial.PortInfo
	err   error
}

func loadPorts() tea.Msg {
	ports, err := serial.ListPorts()
	return portsLoadedMsg{ports: ports, err: err}
}

type PortsPage struct {
	ports         []serial.PortInfo
	loadErr       error
	loaded        bool
	selected      string // address the IDE has selected, from the watch loop
	width, height int
}

func NewPortsPage() *PortsPage {
	return &PortsPage{}
}

func (p *PortsPage) Init() tea.Cmd {
	return loadPorts
}

func (p *PortsPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "r" {
			return p, loadPorts
		}

	case portsLoadedMsg:
		p.ports = msg.ports
		p.loadErr = msg.err
		p.loaded = true
		return p, nil

	case app.SelectionMsg:
		p.selected = ""
		if msg.Sel != nil && msg.Sel.Port != nil {
			p.selected = msg.Sel.Port.Address
		}
		return p, nil
	}
	return p, nil
}

func (p *PortsPage) View() string {
	var inner strings.Builder

	switch {
	case !p.loaded:
		inner.WriteString("Scanning serial ports...\n")
	case p.loadErr != nil:
		inner.WriteString(fmt.Sprintf("Could not enumerate ports: %v\n", p.loadErr))
	case len(p.ports) == 0:
		inner.WriteString("No serial ports found.\n\n")
		inner.WriteString(ui.DimStyle.Render("Connect a board and press r to rescan.") + "\n")
	default:
		for _, port := range p.ports {
			marker := "  "
			line := port.Describe()
			if port.Name == p.selected {
				marker = ui.AccentStyle.Render("● ")
				line = ui.BoldStyle.Render(line) + ui.DimStyle.Render("  selected in IDE")
			}
			inner.WriteString(marker + line + "\n")
		}
	}

	return ui.Panel(fmt.Sprintf("Serial Ports (%d)", len(p.ports)), inner.String(), p.width, 0, false)
}

func (p *PortsPage) Name() string { return "Ports" }

func (p *PortsPage) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
	}
}

func (p *PortsPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}
