package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/devista-consulting/arduino-sketch-vault/internal/ui"
)

// ConfirmResultMsg is sent when the user answers a confirm overlay.
type ConfirmResultMsg struct {
	OK bool
}

// Confirm is a modal yes/no overlay.
type Confirm struct {
	question string
	width    int
	height   int
}

// NewConfirm creates a confirm overlay for the given question.
func NewConfirm(question string) *Confirm {
	return &Confirm{question: question}
}

// SetSize sets the available dimensions.
func (c *Confirm) SetSize(w, h int) {
	c.width = w
	c.height = h
}

// Update handles input for the overlay. Only y confirms; n and esc decline.
func (c *Confirm) Update(msg tea.Msg) (*Confirm, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "y", "Y", "enter":
			return c, func() tea.Msg { return ConfirmResultMsg{OK: true} }
		case "n", "N", "esc":
			return c, func() tea.Msg { return ConfirmResultMsg{OK: false} }
		}
	}
	return c, nil
}

// View renders the overlay box.
func (c *Confirm) View() string {
	boxWidth := c.width - 4
	if boxWidth > 50 {
		boxWidth = 50
	}
	if boxWidth < 24 {
		boxWidth = 24
	}

	var b strings.Builder
	b.WriteString(c.question)
	b.WriteString("\n\n")
	b.WriteString(ui.BoldStyle.Render("[y]") + " yes   " + ui.BoldStyle.Render("[n]") + " no")

	return lipgloss.NewStyle().
		Width(boxWidth).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ui.Warning).
		Padding(1, 2).
		Render(b.String())
}
