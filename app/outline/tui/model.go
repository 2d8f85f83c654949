package tui

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lexcodex/outlinemap/host"
	"github.com/lexcodex/outlinemap/internal/schedule"
	"github.com/lexcodex/outlinemap/outline"
)

// gotoWindow is the minimum spacing between two navigation requests.
const gotoWindow = 150 * time.Millisecond

// Options configures a panel session.
type Options struct {
	Source host.Source
	// Title is shown in the status bar, usually the outlined file.
	Title string
	// Initial messages are routed before anything from Source, typically the
	// workspace config.
	Initial []outline.Message
	Logger  *log.Logger
}

// Run shows the outline panel until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	if opts.Source == nil {
		return fmt.Errorf("source is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inbox := make(chan outline.Message, 64)
	done := make(chan error, 1)
	poster := newAsyncPoster(ctx, opts.Source, logger)
	go func() {
		done <- opts.Source.Run(ctx, func(msg outline.Message) {
			select {
			case inbox <- msg:
			case <-ctx.Done():
			}
		})
	}()

	program := tea.NewProgram(
		NewModel(opts, poster, inbox, done),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	_, err := program.Run()
	return err
}

// Model is the Bubble Tea model of the outline panel. The outline tree is
// only touched from Update.
type Model struct {
	tree    *outline.Tree
	router  *outline.Router
	surface *surface
	logger  *log.Logger

	inbox <-chan outline.Message
	done  <-chan error

	body   *viewport.Model
	filter textinput.Model
	help   help.Model
	keys   KeyMap
	status StatusBar

	rows      []row
	cursor    int
	selected  *outline.RenderedNode
	filtering bool
	gotoGate  *schedule.Throttler

	toast   string
	toastID int

	width  int
	height int
	ready  bool
}

// NewModel builds a panel whose navigation requests go to poster and whose
// inbound messages arrive on inbox. done reports the source stopping; both
// channels may be nil.
func NewModel(opts Options, poster outline.Poster, inbox <-chan outline.Message, done <-chan error) Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	tree := outline.NewTree(outline.NewSettings(outline.DefaultConfig()), poster, logger)
	surf := &surface{}

	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "filter symbols"

	v := viewport.New(0, 0)

	m := Model{
		tree:     tree,
		router:   outline.NewRouter(tree, surf, logger),
		surface:  surf,
		logger:   logger,
		inbox:    inbox,
		done:     done,
		body:     &v,
		filter:   input,
		help:     help.New(),
		keys:     Keys,
		status:   StatusBar{title: opts.Title, provider: "connecting"},
		gotoGate: schedule.NewThrottler(gotoWindow),
	}
	for _, msg := range opts.Initial {
		if err := m.router.Handle(msg); err != nil {
			logger.Printf("[panel] initial %s: %v", msg.Type, err)
		}
	}
	m.surface.drain()
	return m.rebuild()
}

// Tree exposes the live outline.
func (m Model) Tree() *outline.Tree { return m.tree }

// Selected returns the node under the cursor, nil when the outline is empty.
func (m Model) Selected() *outline.RenderedNode { return m.selected }

// Toast returns the notification currently shown.
func (m Model) Toast() string { return m.toast }

// rebuild recomputes the visible rows, keeping the cursor on the selected node
// or on its nearest visible ancestor.
func (m Model) rebuild() Model {
	prev := m.cursor
	m.rows = visibleRows(m.tree.Root, m.filter.Value())
	idx := indexOf(m.rows, m.selected)
	if idx < 0 {
		idx = min(prev, len(m.rows)-1)
	}
	if idx < 0 {
		idx = 0
	}
	m.cursor = idx
	m.selected = nil
	if len(m.rows) > 0 {
		m.selected = m.rows[idx].node
	}
	m.status.depth = m.tree.Settings().Load()
	m.status.rows = len(m.rows)
	m.status.cursor = m.cursor
	m.body.SetContent(m.renderRows())
	return m
}

// moveCursor moves the cursor by delta rows and keeps it on screen.
func (m Model) moveCursor(delta int) Model {
	if len(m.rows) == 0 {
		return m
	}
	return m.selectRow(max(0, min(len(m.rows)-1, m.cursor+delta)))
}

func (m Model) selectRow(idx int) Model {
	m.cursor = idx
	m.selected = m.rows[idx].node
	m.status.cursor = idx
	m.body.SetContent(m.renderRows())
	if idx < m.body.YOffset {
		m.body.SetYOffset(idx)
	} else if h := m.body.Height; h > 0 && idx >= m.body.YOffset+h {
		m.body.SetYOffset(idx - h + 1)
	}
	return m
}

// scrollTo places node at offset (fraction of the body height) from the top.
func (m Model) scrollTo(node *outline.RenderedNode, offset float64) Model {
	idx := indexOf(m.rows, node)
	if idx < 0 {
		return m
	}
	m.body.SetYOffset(idx - int(offset*float64(m.body.Height)))
	return m
}
