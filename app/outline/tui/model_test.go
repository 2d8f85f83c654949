package tui

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/outlinemap/outline"
)

type recordingPoster struct {
	posted []outline.OutboundMessage
}

func (p *recordingPoster) Post(msg outline.OutboundMessage) error {
	p.posted = append(p.posted, msg)
	return nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func symbol(kind outline.SymbolKind, name string, line int, children ...outline.SymbolNode) outline.SymbolNode {
	return outline.SymbolNode{
		Kind:     kind,
		Name:     name,
		Expand:   true,
		Range:    outline.Range{Start: outline.Position{Line: line, Character: 2}, End: outline.Position{Line: line + 3}},
		Children: children,
	}
}

func insertMessage(t *testing.T, nodes ...outline.SymbolNode) outline.Message {
	t.Helper()
	msg, err := outline.NewMessage(outline.MessageUpdate, outline.UpdateData{Patches: []outline.Patch{{
		Selector: outline.RootSelector,
		Type:     outline.PatchInsert,
		Nodes:    nodes,
	}}})
	require.NoError(t, err)
	return msg
}

func newTestModel(t *testing.T, nodes ...outline.SymbolNode) (Model, *recordingPoster) {
	t.Helper()
	poster := &recordingPoster{}
	m := NewModel(Options{Title: "main.go", Logger: quietLogger()}, poster, nil, nil)
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 12})
	if len(nodes) > 0 {
		m = update(t, m, InboundMsg{Message: insertMessage(t, nodes...)})
	}
	return m, poster
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func rowNames(m Model) []string {
	names := make([]string, 0, len(m.rows))
	for _, r := range m.rows {
		names = append(names, r.node.Name)
	}
	return names
}

func TestPanelShowsInboundSymbols(t *testing.T) {
	m, _ := newTestModel(t,
		symbol(outline.KindClass, "Server", 1, symbol(outline.KindMethod, "Start", 2)),
		symbol(outline.KindFunction, "main", 10),
	)
	require.Equal(t, []string{"Server", "Start", "main"}, rowNames(m))
	require.Equal(t, "Server", m.Selected().Name)

	view := m.View()
	require.Contains(t, view, "Server")
	require.Contains(t, view, "main.go")
	require.Equal(t, "live", m.status.provider)
}

func TestPanelToggleHidesChildren(t *testing.T) {
	m, _ := newTestModel(t,
		symbol(outline.KindClass, "Server", 1, symbol(outline.KindMethod, "Start", 2)),
	)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, []string{"Server"}, rowNames(m))
	require.False(t, m.Selected().Expand)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, []string{"Server", "Start"}, rowNames(m))
}

func TestPanelCursorMovement(t *testing.T) {
	m, _ := newTestModel(t,
		symbol(outline.KindClass, "A", 1, symbol(outline.KindMethod, "a1", 2)),
		symbol(outline.KindClass, "B", 10),
	)
	m = update(t, m, keyRunes("j"))
	require.Equal(t, "a1", m.Selected().Name)
	m = update(t, m, keyRunes("h"))
	require.Equal(t, "A", m.Selected().Name)
	m = update(t, m, keyRunes("G"))
	require.Equal(t, "B", m.Selected().Name)
	m = update(t, m, keyRunes("j"))
	require.Equal(t, "B", m.Selected().Name)
	m = update(t, m, keyRunes("g"))
	require.Equal(t, "A", m.Selected().Name)
}

func TestPanelGotoPostsRangeStart(t *testing.T) {
	m, poster := newTestModel(t, symbol(outline.KindFunction, "main", 7))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, poster.posted, 1)
	require.Equal(t, outline.MessageGoto, poster.posted[0].Type)
	require.Equal(t, outline.GotoData{Position: outline.Position{Line: 7, Character: 2}}, poster.posted[0].Data)

	// A second request inside the throttle window is dropped.
	update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, poster.posted, 1)
}

func TestPanelDepthKeysRouteChangeDepth(t *testing.T) {
	m, _ := newTestModel(t,
		symbol(outline.KindClass, "Server", 1, symbol(outline.KindMethod, "Start", 2)),
	)
	next, cmd := m.Update(keyRunes("-"))
	m = next.(Model)
	require.NotNil(t, cmd)
	require.Equal(t, "Depth: 1", m.Toast())
	require.Equal(t, []string{"Server"}, rowNames(m))
	require.Equal(t, 1, m.Tree().Settings().Load().MaxDepth)

	m = update(t, m, keyRunes("+"))
	require.Equal(t, "Depth: 2", m.Toast())
	require.Equal(t, []string{"Server", "Start"}, rowNames(m))

	expired := update(t, m, toastExpiredMsg{id: m.toastID - 1})
	require.Equal(t, "Depth: 2", expired.Toast())
	expired = update(t, m, toastExpiredMsg{id: m.toastID})
	require.Empty(t, expired.Toast())
}

func TestPanelFilter(t *testing.T) {
	m, _ := newTestModel(t,
		symbol(outline.KindClass, "Server", 1, symbol(outline.KindMethod, "Start", 2)),
		symbol(outline.KindFunction, "main", 10),
	)
	m = update(t, m, keyRunes("/"))
	require.True(t, m.filtering)
	m = update(t, m, keyRunes("sta"))
	require.Equal(t, []string{"Server", "Start"}, rowNames(m))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.filtering)
	require.Equal(t, []string{"Server", "Start"}, rowNames(m))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, []string{"Server", "Start", "main"}, rowNames(m))
}

func TestPanelFocusMessageOpensFilter(t *testing.T) {
	m, _ := newTestModel(t, symbol(outline.KindFunction, "main", 1))
	m = update(t, m, InboundMsg{Message: outline.Message{Type: outline.MessageFocus}})
	require.True(t, m.filtering)
	require.Contains(t, m.View(), "/")
}

func TestPanelScrollFollowsFocus(t *testing.T) {
	var nodes []outline.SymbolNode
	for i := 0; i < 40; i++ {
		nodes = append(nodes, symbol(outline.KindFunction, "f"+strings.Repeat("x", i), i*4))
	}
	nodes[30].Focus = true
	m, _ := newTestModel(t, nodes...)

	msg, err := outline.NewMessage(outline.MessageScroll, outline.ScrollData{Follow: "focus"})
	require.NoError(t, err)
	m = update(t, m, InboundMsg{Message: msg})

	// The body is 10 rows tall, so row 30 lands 3 rows below the top.
	require.Equal(t, 27, m.body.YOffset)
	require.Equal(t, nodes[0].Name, m.Selected().Name)
}

func TestPanelKeepsSelectionAcrossPatches(t *testing.T) {
	m, _ := newTestModel(t,
		symbol(outline.KindClass, "A", 1),
		symbol(outline.KindClass, "B", 5),
	)
	m = update(t, m, keyRunes("j"))
	require.Equal(t, "B", m.Selected().Name)

	before := symbol(outline.KindClass, "A", 1)
	msg, err := outline.NewMessage(outline.MessageUpdate, outline.UpdateData{Patches: []outline.Patch{{
		Selector: outline.RootSelector,
		Type:     outline.PatchInsert,
		Nodes:    []outline.SymbolNode{symbol(outline.KindClass, "Z", 0)},
		Before:   &before,
	}}})
	require.NoError(t, err)
	m = update(t, m, InboundMsg{Message: msg})
	require.Equal(t, []string{"Z", "A", "B"}, rowNames(m))
	require.Equal(t, "B", m.Selected().Name)
	require.Equal(t, 2, m.cursor)
}

func TestPanelSourceDone(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, SourceDoneMsg{})
	require.Equal(t, "stopped", m.status.provider)
	m = update(t, m, SourceDoneMsg{Err: io.ErrUnexpectedEOF})
	require.Equal(t, "failed", m.status.provider)
}

func TestAsyncPosterForwards(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan outline.OutboundMessage, 1)
	poster := newAsyncPoster(ctx, outline.PosterFunc(func(msg outline.OutboundMessage) error {
		got <- msg
		return nil
	}), quietLogger())
	require.NoError(t, poster.Post(outline.NewGotoMessage(outline.Position{Line: 3})))

	select {
	case msg := <-got:
		require.Equal(t, outline.MessageGoto, msg.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("message not forwarded")
	}
}

func TestRenderPlain(t *testing.T) {
	m, _ := newTestModel(t,
		symbol(outline.KindClass, "Server", 1, symbol(outline.KindMethod, "Start", 2)),
	)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	out := RenderPlain(m.Tree())
	require.Equal(t, "+ Class Server\n  - Method Start [expand]\n", out)
}
