// Package host connects the outline panel to whatever produces its messages:
// an external provider process speaking JSON-RPC, or a recorded message log.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/lexcodex/outlinemap/outline"
)

// JSON-RPC methods spoken with an external provider.
const (
	MethodMessage = "outline/message"
	MethodGoto    = "outline/goto"
)

// ErrNotConnected is returned by Post before the provider is connected.
var ErrNotConnected = errors.New("host: provider not connected")

// Source produces inbound panel messages and accepts outbound ones.
type Source interface {
	outline.Poster
	Run(ctx context.Context, deliver func(outline.Message)) error
}

// BridgeConfig describes the external provider process.
type BridgeConfig struct {
	Command string
	Args    []string
	Dir     string
	Debug   bool
}

// Bridge runs an external provider and relays notifications both ways. The
// provider sends outline/message notifications whose params are a Message;
// the panel sends outline/<type> notifications for outbound messages.
type Bridge struct {
	cfg    BridgeConfig
	logger *log.Logger

	mu        sync.Mutex
	conn      *jsonrpc2.Conn
	connected chan struct{}
	once      sync.Once
}

// NewBridge returns a bridge for cfg. Nothing starts until Run.
func NewBridge(cfg BridgeConfig, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.Default()
	}
	return &Bridge{cfg: cfg, logger: logger, connected: make(chan struct{})}
}

// Run starts the provider process and serves it until ctx is done or the
// process closes its output.
func (b *Bridge) Run(ctx context.Context, deliver func(outline.Message)) error {
	if b.cfg.Command == "" {
		return errors.New("host: provider command is required")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, b.cfg.Command, b.cfg.Args...)
	cmd.Dir = b.cfg.Dir
	cmd.Stderr = b.logger.Writer()
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("host: start %s: %w", b.cfg.Command, err)
	}
	b.logger.Printf("[host] started provider %s (pid %d)", b.cfg.Command, cmd.Process.Pid)

	serveErr := b.Serve(ctx, &pipe{reader: stdout, writer: stdin}, deliver)
	stopped := ctx.Err() != nil
	cancel()
	if err := cmd.Wait(); err != nil && !stopped {
		b.logger.Printf("[host] provider exited: %v", err)
	}
	return serveErr
}

// Serve speaks the bridge protocol over rwc until ctx is done or the peer
// hangs up.
func (b *Bridge) Serve(ctx context.Context, rwc io.ReadWriteCloser, deliver func(outline.Message)) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
		return b.handle(req, deliver)
	}))

	b.mu.Lock()
	b.conn = conn
	b.mu.Unlock()
	b.once.Do(func() { close(b.connected) })

	select {
	case <-ctx.Done():
	case <-conn.DisconnectNotify():
	}

	b.mu.Lock()
	b.conn = nil
	b.mu.Unlock()
	_ = conn.Close()
	return nil
}

// Connected is closed once Serve has a live connection.
func (b *Bridge) Connected() <-chan struct{} {
	return b.connected
}

func (b *Bridge) handle(req *jsonrpc2.Request, deliver func(outline.Message)) (interface{}, error) {
	if req.Method != MethodMessage {
		if req.Notif {
			return nil, nil
		}
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not handled"}
	}
	if req.Params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing message"}
	}
	var msg outline.Message
	if err := json.Unmarshal(*req.Params, &msg); err != nil {
		b.logger.Printf("[host] bad message: %v", err)
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	if b.cfg.Debug {
		b.logger.Printf("[host] received %s", msg.Type)
	}
	deliver(msg)
	return nil, nil
}

// Post forwards an outbound panel message to the provider as a notification.
func (b *Bridge) Post(msg outline.OutboundMessage) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	method := "outline/" + string(msg.Type)
	if msg.Type == outline.MessageGoto {
		method = MethodGoto
	}
	if err := conn.Notify(context.Background(), method, msg.Data); err != nil {
		return fmt.Errorf("host: post %s: %w", msg.Type, err)
	}
	return nil
}

type pipe struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (p *pipe) Read(b []byte) (int, error)  { return p.reader.Read(b) }
func (p *pipe) Write(b []byte) (int, error) { return p.writer.Write(b) }
func (p *pipe) Close() error {
	_ = p.reader.Close()
	return p.writer.Close()
}
