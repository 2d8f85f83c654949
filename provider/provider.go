// Package provider is a built-in symbol provider: it asks a language server
// for the symbols of one file and streams the changes to the outline panel
// as patch messages.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.lsp.dev/protocol"

	"github.com/lexcodex/outlinemap/internal/schedule"
	"github.com/lexcodex/outlinemap/outline"
)

// Config selects the language server and the file to outline.
type Config struct {
	Server   ServerConfig
	File     string
	Debounce time.Duration
	Debug    bool
}

// symbolSource is what the provider needs from a language server.
type symbolSource interface {
	Sync(ctx context.Context, file, text string) error
	DocumentSymbols(ctx context.Context, file string) ([]protocol.DocumentSymbol, error)
	Diagnostics(file string) []protocol.Diagnostic
	Close() error
}

// Provider keeps the last outline it sent so every refresh only ships the
// difference.
type Provider struct {
	cfg    Config
	logger *log.Logger

	source   symbolSource
	deliver  func(outline.Message)
	refresh  *schedule.Debouncer
	decorate *schedule.Debouncer

	mu      sync.Mutex
	current []outline.SymbolNode
	decor   map[string]Decoration
	focus   []string
}

// New returns a provider for cfg. Nothing starts until Run.
func New(cfg Config, logger *log.Logger) *Provider {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 300 * time.Millisecond
	}
	return &Provider{cfg: cfg, logger: logger, decor: map[string]Decoration{}}
}

// Run starts the language server, sends the initial outline and then follows
// file changes and diagnostics until ctx is done.
func (p *Provider) Run(ctx context.Context, deliver func(outline.Message)) error {
	if p.cfg.File == "" {
		return errors.New("provider: file is required")
	}
	file, err := filepath.Abs(p.cfg.File)
	if err != nil {
		return fmt.Errorf("provider: %w", err)
	}
	p.cfg.File = file

	p.deliver = deliver
	p.refresh = schedule.NewDebouncer(p.cfg.Debounce, func() {
		if err := p.Refresh(ctx); err != nil {
			p.logger.Printf("[provider] refresh: %v", err)
		}
	})
	defer p.refresh.Cancel()
	p.decorate = schedule.NewDebouncer(p.cfg.Debounce, p.Redecorate)
	defer p.decorate.Cancel()

	if p.source == nil {
		client, err := startLSPClient(ctx, p.cfg.Server, p.logger, func(protocol.DocumentURI) {
			p.decorate.Trigger()
		})
		if err != nil {
			return err
		}
		p.source = client
	}
	defer p.source.Close()

	if err := p.Refresh(ctx); err != nil {
		return err
	}
	return p.watch(ctx)
}

// watch follows writes to the outlined file. Editors that save by renaming
// replace the inode, so the parent directory is watched instead of the file.
func (p *Provider) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("provider: watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(p.cfg.File)); err != nil {
		return fmt.Errorf("provider: watch %s: %w", p.cfg.File, err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != p.cfg.File {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				p.refresh.Trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Printf("[provider] watcher: %v", err)
		}
	}
}

// Refresh re-reads the file, fetches its symbols and diagnostics and sends
// whatever changed since the last refresh.
func (p *Provider) Refresh(ctx context.Context) error {
	text, err := os.ReadFile(p.cfg.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", p.cfg.File, err)
	}
	if err := p.source.Sync(ctx, p.cfg.File, string(text)); err != nil {
		return fmt.Errorf("sync %s: %w", p.cfg.File, err)
	}
	symbols, err := p.source.DocumentSymbols(ctx, p.cfg.File)
	if err != nil {
		return fmt.Errorf("symbols %s: %w", p.cfg.File, err)
	}
	diags := convertDiagnostics(p.source.Diagnostics(p.cfg.File))

	p.mu.Lock()
	defer p.mu.Unlock()
	next := withFocus(Unique(convertSymbols(symbols)), p.focus)
	p.publishLocked(next, Decorate(next, diags))
	return nil
}

// Redecorate recomputes diagnostic badges from the diagnostics the server
// last published, without touching the document.
func (p *Provider) Redecorate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.source == nil {
		return
	}
	diags := convertDiagnostics(p.source.Diagnostics(p.cfg.File))
	p.publishLocked(p.current, Decorate(p.current, diags))
}

// Post receives outbound panel messages. A goto moves the focus attribute to
// the innermost symbol at the position and asks the panel to follow it.
func (p *Provider) Post(msg outline.OutboundMessage) error {
	if msg.Type != outline.MessageGoto {
		return nil
	}
	data, ok := msg.Data.(outline.GotoData)
	if !ok {
		return fmt.Errorf("goto: unexpected payload %T", msg.Data)
	}
	if p.cfg.Debug {
		p.logger.Printf("[provider] goto %d:%d", data.Position.Line, data.Position.Character)
	}

	p.mu.Lock()
	p.focus = focusPath(p.current, data.Position)
	next := withFocus(p.current, p.focus)
	p.publishLocked(next, p.decor)
	p.mu.Unlock()

	scroll, err := outline.NewMessage(outline.MessageScroll, outline.ScrollData{Follow: "focus"})
	if err != nil {
		return err
	}
	p.send(scroll)
	return nil
}

func (p *Provider) publishLocked(next []outline.SymbolNode, decor map[string]Decoration) {
	patches := Diff(p.current, next)
	patches = append(patches, DiffDecorations(next, p.decor, decor)...)
	p.current = next
	p.decor = decor
	if len(patches) == 0 {
		return
	}
	msg, err := outline.NewMessage(outline.MessageUpdate, outline.UpdateData{Patches: patches})
	if err != nil {
		p.logger.Printf("[provider] encode update: %v", err)
		return
	}
	if p.cfg.Debug {
		p.logger.Printf("[provider] sending %d patches", len(patches))
	}
	p.send(msg)
}

func (p *Provider) send(msg outline.Message) {
	if p.deliver != nil {
		p.deliver(msg)
	}
}
