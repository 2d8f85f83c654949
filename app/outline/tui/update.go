package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lexcodex/outlinemap/outline"
)

// InboundMsg carries one message from the source into the event loop.
type InboundMsg struct {
	Message outline.Message
}

// SourceDoneMsg reports that the source stopped.
type SourceDoneMsg struct {
	Err error
}

type toastExpiredMsg struct{ id int }

// Init fulfills the Bubble Tea Model interface.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForMessage(m.inbox), waitForDone(m.done))
}

// Update applies incoming Bubble Tea messages to the panel.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case InboundMsg:
		next, cmd := m.route(msg.Message)
		return next, tea.Batch(cmd, waitForMessage(m.inbox))
	case SourceDoneMsg:
		m.status.provider = "stopped"
		if msg.Err != nil {
			m.status.provider = "failed"
			m.logger.Printf("[panel] source stopped: %v", msg.Err)
		}
		return m, nil
	case toastExpiredMsg:
		if msg.id == m.toastID {
			m.toast = ""
		}
		return m, nil
	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.body.Width = msg.Width
	m.body.Height = max(1, msg.Height-2)
	m.help.Width = msg.Width
	m.filter.Width = max(10, msg.Width-4)
	m.ready = true
	return m.rebuild(), nil
}

// route hands msg to the router and applies whatever it asked of the panel.
func (m Model) route(msg outline.Message) (Model, tea.Cmd) {
	if m.status.provider == "connecting" {
		m.status.provider = "live"
	}
	if err := m.router.Handle(msg); err != nil {
		m.logger.Printf("[panel] %v", err)
	}
	req := m.surface.drain()
	m = m.rebuild()

	var cmds []tea.Cmd
	if req.focusFilter {
		var cmd tea.Cmd
		m, cmd = m.startFilter()
		cmds = append(cmds, cmd)
	}
	if req.scroll != nil {
		m = m.scrollTo(req.scroll, req.scrollOffset)
	}
	if req.toast != "" {
		m.toast = req.toast
		m.toastID++
		id := m.toastID
		cmds = append(cmds, tea.Tick(req.toastFor, func(time.Time) tea.Msg {
			return toastExpiredMsg{id: id}
		}))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		return m.moveCursor(-1), nil
	case key.Matches(msg, m.keys.Down):
		return m.moveCursor(1), nil
	case key.Matches(msg, m.keys.PageUp):
		return m.moveCursor(-max(1, m.body.Height)), nil
	case key.Matches(msg, m.keys.PageDown):
		return m.moveCursor(max(1, m.body.Height)), nil
	case key.Matches(msg, m.keys.Top):
		return m.moveCursor(-len(m.rows)), nil
	case key.Matches(msg, m.keys.Bottom):
		return m.moveCursor(len(m.rows)), nil
	case key.Matches(msg, m.keys.Parent):
		if m.selected == nil || m.selected.Parent() == m.tree.Root {
			return m, nil
		}
		if idx := indexOf(m.rows, m.selected.Parent()); idx >= 0 {
			return m.selectRow(idx), nil
		}
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		if m.selected != nil {
			m.selected.Toggle()
		}
		return m.rebuild(), nil
	case key.Matches(msg, m.keys.Goto):
		if m.selected != nil && m.gotoGate.Allow() {
			m.selected.Activate()
		}
		return m, nil
	case key.Matches(msg, m.keys.Deeper):
		return m.changeDepth(1)
	case key.Matches(msg, m.keys.Shallower):
		return m.changeDepth(-1)
	case key.Matches(msg, m.keys.Follow):
		node := m.tree.FindClass(outline.ClassFocus)
		if node == nil {
			node = m.tree.FindClass(outline.ClassInView)
		}
		if node == nil {
			return m, nil
		}
		if idx := indexOf(m.rows, node); idx >= 0 {
			m = m.selectRow(idx)
		}
		return m.scrollTo(node, outline.ScrollOffset), nil
	case key.Matches(msg, m.keys.Filter):
		return m.startFilter()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case msg.Type == tea.KeyEsc && m.filter.Value() != "":
		m.filter.SetValue("")
		return m.rebuild(), nil
	}
	return m, nil
}

// changeDepth goes through the router like a provider-sent changeDepth.
func (m Model) changeDepth(delta int) (tea.Model, tea.Cmd) {
	msg, err := outline.NewMessage(outline.MessageChangeDepth, outline.ChangeDepthData{Delta: delta})
	if err != nil {
		return m, nil
	}
	return m.route(msg)
}

func (m Model) startFilter() (Model, tea.Cmd) {
	m.filtering = true
	m.filter.Focus()
	return m, textinput.Blink
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		return m.rebuild(), nil
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m.rebuild(), nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m.rebuild(), cmd
}

// waitForMessage adapts the inbox channel to a Bubble Tea command.
func waitForMessage(ch <-chan outline.Message) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return InboundMsg{Message: msg}
	}
}

func waitForDone(ch <-chan error) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return SourceDoneMsg{Err: <-ch}
	}
}
