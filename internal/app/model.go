package app

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/devista-consulting/arduino-sketch-vault/internal/config"
	"github.com/devista-consulting/arduino-sketch-vault/internal/fqbn"
	"github.com/devista-consulting/arduino-sketch-vault/internal/ui"
	"github.com/devista-consulting/arduino-sketch-vault/internal/vault"
)

type FocusArea int

const (
	FocusSidebar FocusArea = iota
	FocusContent
)

// watchTickMsg fires the next watch-loop poll.
type watchTickMsg struct{}

type Model struct {
	pages      map[PageID]Page
	activePage PageID
	focus      FocusArea
	width      int
	height     int
	showHelp   bool

	svc        *vault.Service
	cfg        *config.Config
	sketchRoot string
	sketchName string

	boardSummary string
	notice       string
	noticeLevel  NotifyLevel

	picker  *Picker
	confirm *Confirm

	watchInterval time.Duration
}

func New(pages map[PageID]Page, svc *vault.Service, cfg *config.Config, sketchRoot, sketchName string) Model {
	interval := time.Duration(cfg.WatchIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = time.Duration(config.DefaultWatchIntervalMS) * time.Millisecond
	}
	return Model{
		pages:         pages,
		svc:           svc,
		cfg:           cfg,
		sketchRoot:    sketchRoot,
		sketchName:    sketchName,
		watchInterval: interval,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.pollCmd()}
	for _, p := range m.pages {
		if cmd := p.Init(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// pollCmd runs one watch-loop iteration off the event loop and reports the
// observed selection back as a SelectionMsg.
func (m Model) pollCmd() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		sel := svc.Poll()
		svc.ObserveSelection(sel)
		return SelectionMsg{Sel: sel}
	}
}

func (m Model) nextTick() tea.Cmd {
	return tea.Tick(m.watchInterval, func(time.Time) tea.Msg {
		return watchTickMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		contentWidth := m.width - sidebarWidth
		contentHeight := m.height - 2 - 1 // status bar + sketch bar
		for _, p := range m.pages {
			p.SetSize(contentWidth, contentHeight)
		}
		return m, nil

	case watchTickMsg:
		return m, m.pollCmd()

	case SelectionMsg:
		if msg.Sel != nil && msg.Sel.Board.FQBN != "" {
			m.boardSummary = fqbn.FormatSummary(msg.Sel.Board.FQBN, 2)
		}
		cmds := []tea.Cmd{m.nextTick()}
		cmds = append(cmds, m.broadcast(msg)...)
		return m, tea.Batch(cmds...)

	case NotifyMsg:
		m.notice = msg.Text
		m.noticeLevel = msg.Level
		return m, nil

	case ApplyProfileMsg:
		svc := m.svc
		name := msg.Name
		return m, func() tea.Msg {
			res, err := svc.ApplyNamed(name)
			return ProfileAppliedMsg{Name: name, Result: res, Err: err}
		}

	case ProfileAppliedMsg:
		m.noticeForApply(msg)
		if msg.Err == nil && msg.Result.Success {
			m.cfg.LastProfile = msg.Name
			config.Save(*m.cfg, m.sketchRoot, false)
		}
		return m, tea.Batch(m.broadcast(msg)...)

	case ClearHistoryMsg:
		m.confirm = NewConfirm("Clear the change history?")
		return m, nil

	case ConfirmResultMsg:
		m.confirm = nil
		if !msg.OK {
			return m, nil
		}
		if err := m.svc.ClearHistory(); err != nil {
			m.notice = "could not clear history: " + err.Error()
			m.noticeLevel = NotifyError
			return m, nil
		}
		m.notice = "history cleared"
		m.noticeLevel = NotifyInfo
		return m, tea.Batch(m.broadcast(HistoryClearedMsg{})...)

	case PickerSelectedMsg:
		m.picker = nil
		return m, func() tea.Msg { return ApplyProfileMsg{Name: msg.Value} }

	case PickerClosedMsg:
		m.picker = nil
		return m, nil

	case tea.KeyMsg:
		// When an overlay is open, it gets every key
		if m.confirm != nil {
			var cmd tea.Cmd
			m.confirm, cmd = m.confirm.Update(msg)
			return m, cmd
		}
		if m.picker != nil {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}

		// When a page has an active text input, forward all keys
		// directly to the page — only ctrl+c still quits.
		if m.focus == FocusContent {
			if ic, ok := m.pages[m.activePage].(InputCapturer); ok && ic.InputCaptured() {
				if msg.String() == "ctrl+c" {
					return m, tea.Quit
				}
				page := m.pages[m.activePage]
				newPage, cmd := page.Update(msg)
				m.pages[m.activePage] = newPage
				return m, cmd
			}
		}

		// Any keypress dismisses a lingering notice
		m.notice = ""

		// Global key handling
		switch {
		case key.Matches(msg, GlobalKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, GlobalKeys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, GlobalKeys.ToggleFocus):
			if m.focus == FocusSidebar {
				m.focus = FocusContent
				return m, nil
			}
			// When content focused, fall through to page handler
		}

		// Sidebar-only shortcuts
		if m.focus == FocusSidebar {
			if key.Matches(msg, GlobalKeys.ProfilePicker) {
				m.openProfilePicker()
				return m, nil
			}
		}

		// Handle arrow keys based on focus
		if m.focus == FocusSidebar {
			switch msg.String() {
			case "up":
				m.prevPage()
				return m, nil
			case "down":
				m.nextPage()
				return m, nil
			case "enter", "right":
				m.focus = FocusContent
				return m, nil
			}
		} else if m.focus == FocusContent {
			if msg.String() == "left" {
				m.focus = FocusSidebar
				return m, nil
			}
		}
	}

	// Key messages: only forward to active page when content is focused
	if _, isKey := msg.(tea.KeyMsg); isKey {
		if m.focus != FocusContent {
			return m, nil
		}
		page := m.pages[m.activePage]
		newPage, cmd := page.Update(msg)
		m.pages[m.activePage] = newPage
		return m, cmd
	}

	// Non-key messages (command results, etc.): forward to all pages
	// so responses reach the page that initiated the command
	return m, tea.Batch(m.broadcast(msg)...)
}

func (m *Model) broadcast(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	for id, page := range m.pages {
		newPage, cmd := page.Update(msg)
		m.pages[id] = newPage
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func (m *Model) openProfilePicker() {
	profiles, active, err := m.svc.Profiles()
	if err != nil {
		m.notice = "could not read profiles: " + err.Error()
		m.noticeLevel = NotifyError
		return
	}
	var items []PickerItem
	for _, p := range profiles {
		desc := fqbn.FormatSummary(p.FQBN, 1)
		if p.Name == active {
			desc += " (active)"
		}
		items = append(items, PickerItem{Label: p.Name, Value: p.Name, Desc: desc})
	}
	picker := NewPicker("Apply Profile")
	picker.SetItems(items)
	contentWidth := m.width - sidebarWidth
	contentHeight := m.height - 2 - 1
	picker.SetSize(contentWidth, contentHeight)
	m.picker = picker
}

func (m *Model) noticeForApply(msg ProfileAppliedMsg) {
	switch {
	case msg.Err != nil:
		m.notice = msg.Err.Error()
		m.noticeLevel = NotifyError
	case msg.Result.Success:
		m.notice = "profile \"" + msg.Name + "\" applied"
		m.noticeLevel = NotifyInfo
	case msg.Result.BoardSelected:
		m.notice = "profile \"" + msg.Name + "\" partially applied"
		m.noticeLevel = NotifyWarn
	default:
		m.notice = "profile \"" + msg.Name + "\" could not be applied"
		m.noticeLevel = NotifyError
	}
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	contentWidth := m.width - sidebarWidth
	contentHeight := m.height - 2 - 1 // status bar + sketch bar

	page := m.pages[m.activePage]

	sketchBar := renderSketchBar(m.sketchName, m.boardSummary, m.notice, m.noticeLevel, m.width, m.focus == FocusSidebar)
	sidebar := renderSidebar(PageOrder, m.activePage, m.pages, contentHeight, m.focus == FocusSidebar)
	content := ui.ContentStyle.
		Width(contentWidth).
		Height(contentHeight).
		Render(page.View())

	// Overlays sit centered on the content area
	if m.picker != nil {
		m.picker.SetSize(contentWidth, contentHeight)
		content = lipgloss.Place(
			contentWidth, contentHeight,
			lipgloss.Center, lipgloss.Center,
			m.picker.View(),
		)
	} else if m.confirm != nil {
		m.confirm.SetSize(contentWidth, contentHeight)
		content = lipgloss.Place(
			contentWidth, contentHeight,
			lipgloss.Center, lipgloss.Center,
			m.confirm.View(),
		)
	}

	statusBar := renderStatusBar(page.ShortHelp(), m.width, m.focus)

	return renderLayout(sketchBar, sidebar, content, statusBar)
}

func (m *Model) nextPage() {
	for i, id := range PageOrder {
		if id == m.activePage {
			m.activePage = PageOrder[(i+1)%len(PageOrder)]
			return
		}
	}
}

func (m *Model) prevPage() {
	for i, id := range PageOrder {
		if id == m.activePage {
			m.activePage = PageOrder[(i-1+len(PageOrder))%len(PageOrder)]
			return
		}
	}
}
