package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/devista-consulting/arduino-sketch-vault/internal/ui"
)

const sidebarWidth = 22 // 20 content + 2 border/padding

func renderSketchBar(sketchName, boardSummary, notice string, noticeLevel NotifyLevel, width int, sidebarFocused bool) string {
	sketchDisplay := sketchName
	if sketchDisplay == "" {
		sketchDisplay = "(none)"
	}
	boardDisplay := boardSummary
	if boardDisplay == "" {
		boardDisplay = "(none)"
	}
	content := fmt.Sprintf("Sketch: %s  Board: %s", sketchDisplay, boardDisplay)
	if notice != "" {
		var style lipgloss.Style
		switch noticeLevel {
		case NotifyWarn:
			style = ui.NoticeWarnStyle
		case NotifyError:
			style = ui.NoticeErrStyle
		default:
			style = ui.NoticeInfoStyle
		}
		content += "  " + style.Render(notice)
	} else if sidebarFocused {
		content += ui.DimStyle.Render("  [p] profile")
	}
	return ui.StatusBarStyle.Width(width).Render(content)
}

func renderSidebar(pages []PageID, active PageID, pageMap map[PageID]Page, height int, focused bool) string {
	var b strings.Builder
	title := "sketchvault"
	if focused {
		title = ui.BoldStyle.Render("sketchvault [FOCUSED]")
	} else {
		title = ui.TitleStyle.Render("sketchvault")
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	for _, id := range pages {
		p := pageMap[id]
		if id == active {
			b.WriteString(ui.SidebarActiveStyle.Render("▸ " + p.Name()))
		} else {
			b.WriteString(ui.SidebarItemStyle.Render("  " + p.Name()))
		}
		b.WriteString("\n")
	}

	style := ui.SidebarStyle.Height(height)
	if focused {
		style = style.BorderForeground(ui.Primary)
	}
	return style.Render(b.String())
}

func renderStatusBar(pageHelp []key.Binding, width int, focus FocusArea) string {
	var parts []string

	// Focus-specific instructions
	if focus == FocusSidebar {
		parts = append(parts,
			ui.StatusKey("↑/↓", "navigate"),
			ui.StatusKey("enter", "select"),
			ui.StatusKey("p", "profile"),
		)
	} else {
		// Page-specific keys when content is focused
		for _, kb := range pageHelp {
			if kb.Enabled() {
				parts = append(parts, ui.StatusKey(kb.Help().Key, kb.Help().Desc))
			}
		}
	}

	// Always add global keys
	parts = append(parts,
		ui.StatusKey("tab", "focus"),
		ui.StatusKey("?", "help"),
		ui.StatusKey("q", "quit"),
	)

	line := strings.Join(parts, "  ")
	return ui.StatusBarStyle.Width(width).Render(line)
}

func renderLayout(sketchBar, sidebar, content, statusBar string) string {
	main := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)
	return lipgloss.JoinVertical(lipgloss.Left, sketchBar, main, statusBar)
}
