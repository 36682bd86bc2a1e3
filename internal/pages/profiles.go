package pages

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/devista-consulting/arduino-sketch-vault/internal/app"
	"github.com/devista-consulting/arduino-sketch-vault/internal/fqbn"
	"github.com/devista-consulting/arduino-sketch-vault/internal/sketch"
	"github.com/devista-consulting/arduino-sketch-vault/internal/ui"
	"github.com/devista-consulting/arduino-sketch-vault/internal/vault"
)

type ProfilesPage struct {
	svc           *vault.Service
	profiles      []sketch.Profile
	active        string
	loadErr       error
	cursor        int
	creating      bool
	input         textinput.Model
	message       string
	width, height int
}

func NewProfilesPage(svc *vault.Service) *ProfilesPage {
	ti := textinput.New()
	ti.Placeholder = "profile name"
	ti.CharLimit = 64
	return &ProfilesPage{
		svc:   svc,
		input: ti,
	}
}

func (p *ProfilesPage) Init() tea.Cmd {
	p.reload()
	return nil
}

func (p *ProfilesPage) reload() {
	p.profiles, p.active, p.loadErr = p.svc.Profiles()
	if p.cursor >= len(p.profiles) {
		p.cursor = len(p.profiles) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p *ProfilesPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if p.creating {
			switch msg.String() {
			case "enter":
				name := strings.TrimSpace(p.input.Value())
				p.creating = false
				p.input.Blur()
				if name == "" {
					return p, nil
				}
				if err := p.svc.CreateProfileFromCurrent(name); err != nil {
					p.message = fmt.Sprintf("Could not create %q: %v", name, err)
					return p, nil
				}
				p.message = fmt.Sprintf("Profile %q created from the current selection", name)
				p.reload()
				return p, func() tea.Msg { return app.ProfilesChangedMsg{} }
			case "esc":
				p.creating = false
				p.input.Blur()
				return p, nil
			}
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			return p, cmd
		}

		switch msg.String() {
		case "down":
			if p.cursor < len(p.profiles)-1 {
				p.cursor++
			}
		case "up":
			if p.cursor > 0 {
				p.cursor--
			}
		case "enter", "a":
			if len(p.profiles) == 0 {
				return p, nil
			}
			name := p.profiles[p.cursor].Name
			p.message = fmt.Sprintf("Applying %q...", name)
			return p, func() tea.Msg { return app.ApplyProfileMsg{Name: name} }
		case "n":
			p.creating = true
			p.input.SetValue("")
			p.message = ""
			return p, p.input.Focus()
		case "r":
			p.reload()
			p.message = ""
		}

	case app.ProfileAppliedMsg:
		p.reload()
		switch {
		case msg.Err != nil:
			p.message = fmt.Sprintf("Apply failed: %v", msg.Err)
		case msg.Result.Success:
			p.message = fmt.Sprintf("Profile %q applied", msg.Name)
		default:
			p.message = fmt.Sprintf("Profile %q did not fully apply", msg.Name)
		}
		return p, nil

	case app.ProfilesChangedMsg, app.SelectionMsg:
		// The watch loop may rewrite the active profile behind our back.
		p.reload()
		return p, nil
	}

	return p, nil
}

func (p *ProfilesPage) View() string {
	var inner strings.Builder

	switch {
	case p.loadErr != nil:
		inner.WriteString(fmt.Sprintf("Could not read %s: %v\n", sketch.FileName, p.loadErr))
	case len(p.profiles) == 0:
		inner.WriteString("No build profiles found.\n\n")
		inner.WriteString(ui.DimStyle.Render("Press n to snapshot the IDE's current board as a profile.") + "\n")
	default:
		for i, prof := range p.profiles {
			cursor := "  "
			if i == p.cursor {
				cursor = ui.BoldStyle.Render("> ")
			}
			marker := "  "
			if prof.Name == p.active {
				marker = ui.AccentStyle.Render("● ")
			}
			line := fmt.Sprintf("%s%s%-18s %s", cursor, marker, prof.Name, ui.DimStyle.Render(fqbn.FormatSummary(prof.FQBN, 2)))
			inner.WriteString(line)
			inner.WriteString("\n")
		}
	}

	if p.creating {
		inner.WriteString("\n")
		inner.WriteString("New profile name:\n")
		inner.WriteString(p.input.View())
		inner.WriteString("\n")
	}

	if p.message != "" {
		inner.WriteString("\n" + p.message)
	}

	return ui.Panel("Profiles", inner.String(), p.width, 0, false)
}

func (p *ProfilesPage) Name() string { return "Profiles" }

func (p *ProfilesPage) ShortHelp() []key.Binding {
	if p.creating {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "create")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	}
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new from IDE")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
}

func (p *ProfilesPage) InputCaptured() bool {
	return p.creating
}

func (p *ProfilesPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}
