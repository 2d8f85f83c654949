package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"
)

// ServerConfig describes how to spin up a language server process.
type ServerConfig struct {
	Command    string
	Args       []string
	RootDir    string
	LanguageID string
}

// lspClient is the small slice of an LSP client the provider needs: open a
// document, ask for its symbols and collect published diagnostics.
type lspClient struct {
	cfg    ServerConfig
	cmd    *exec.Cmd
	conn   *jsonrpc2.Conn
	cancel context.CancelFunc
	logger *log.Logger

	mu            sync.Mutex
	versions      map[protocol.DocumentURI]int32
	diagnostics   map[protocol.DocumentURI][]protocol.Diagnostic
	onDiagnostics func(protocol.DocumentURI)
}

// startLSPClient launches the configured server and performs the handshake.
func startLSPClient(ctx context.Context, cfg ServerConfig, logger *log.Logger, onDiagnostics func(protocol.DocumentURI)) (*lspClient, error) {
	if cfg.Command == "" {
		return nil, errors.New("command is required for LSP client")
	}
	if cfg.LanguageID == "" {
		return nil, errors.New("language id is required for LSP client")
	}
	root := cfg.RootDir
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = absRoot

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, err
	}

	client := &lspClient{
		cfg:           cfg,
		cmd:           cmd,
		cancel:        cancel,
		logger:        logger,
		versions:      make(map[protocol.DocumentURI]int32),
		diagnostics:   make(map[protocol.DocumentURI][]protocol.Diagnostic),
		onDiagnostics: onDiagnostics,
	}

	stream := jsonrpc2.NewBufferedStream(&stdioReadWriteCloser{reader: stdout, writer: stdin}, jsonrpc2.VSCodeObjectCodec{})
	client.conn = jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(client.handle))

	go func() {
		if _, err := io.Copy(logger.Writer(), stderr); err != nil && !errors.Is(err, os.ErrClosed) {
			logger.Printf("[lsp] stderr: %v", err)
		}
	}()

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start %s: %w", cfg.Command, err)
	}
	if err := client.initialize(ctx, absRoot); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("initialize %s: %w", cfg.Command, err)
	}
	return client, nil
}

func (c *lspClient) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case "textDocument/publishDiagnostics":
		if req.Params == nil {
			return nil, nil
		}
		var params protocol.PublishDiagnosticsParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.diagnostics[params.URI] = params.Diagnostics
		notify := c.onDiagnostics
		c.mu.Unlock()
		if notify != nil {
			notify(params.URI)
		}
		return nil, nil
	case "workspace/configuration":
		var params struct {
			Items []json.RawMessage `json:"items"`
		}
		if req.Params != nil {
			_ = json.Unmarshal(*req.Params, &params)
		}
		return make([]interface{}, len(params.Items)), nil
	case "window/workDoneProgress/create", "client/registerCapability", "client/unregisterCapability":
		return nil, nil
	}
	if req.Notif {
		return nil, nil
	}
	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not handled"}
}

func (c *lspClient) initialize(ctx context.Context, root string) error {
	params := &protocol.InitializeParams{
		ProcessID: int32(os.Getpid()),
		RootURI:   protocol.DocumentURI(pathToURI(root)),
		ClientInfo: &protocol.ClientInfo{
			Name:    "outlinemap",
			Version: "0.1",
		},
		Capabilities: protocol.ClientCapabilities{
			TextDocument: &protocol.TextDocumentClientCapabilities{
				DocumentSymbol: &protocol.DocumentSymbolClientCapabilities{
					HierarchicalDocumentSymbolSupport: true,
				},
				PublishDiagnostics: &protocol.PublishDiagnosticsClientCapabilities{},
			},
		},
	}
	var result protocol.InitializeResult
	if err := c.conn.Call(ctx, "initialize", params, &result); err != nil {
		return err
	}
	return c.conn.Notify(ctx, "initialized", &protocol.InitializedParams{})
}

// Sync hands the current contents of file to the server. Reopening with a
// bumped version avoids depending on the server's incremental sync mode.
func (c *lspClient) Sync(ctx context.Context, file string, text string) error {
	uri := protocol.DocumentURI(pathToURI(file))
	c.mu.Lock()
	version, opened := c.versions[uri]
	version++
	c.versions[uri] = version
	c.mu.Unlock()

	if opened {
		closeParams := protocol.DidCloseTextDocumentParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		}
		if err := c.conn.Notify(ctx, "textDocument/didClose", closeParams); err != nil {
			return err
		}
	}
	params := protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: protocol.LanguageIdentifier(c.cfg.LanguageID),
			Version:    version,
			Text:       text,
		},
	}
	return c.conn.Notify(ctx, "textDocument/didOpen", params)
}

// DocumentSymbols returns the symbol tree of file. Servers answering with
// flat SymbolInformation lists get their entries as top-level symbols.
func (c *lspClient) DocumentSymbols(ctx context.Context, file string) ([]protocol.DocumentSymbol, error) {
	params := protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(pathToURI(file))},
	}
	var raw json.RawMessage
	if err := c.conn.Call(ctx, "textDocument/documentSymbol", params, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var docSymbols []protocol.DocumentSymbol
	if err := json.Unmarshal(raw, &docSymbols); err == nil && hierarchical(raw) {
		return docSymbols, nil
	}
	var infoSymbols []protocol.SymbolInformation
	if err := json.Unmarshal(raw, &infoSymbols); err != nil {
		return nil, errors.New("document symbol response not understood")
	}
	out := make([]protocol.DocumentSymbol, 0, len(infoSymbols))
	for _, sym := range infoSymbols {
		out = append(out, protocol.DocumentSymbol{
			Name:           sym.Name,
			Kind:           sym.Kind,
			Detail:         sym.ContainerName,
			Range:          sym.Location.Range,
			SelectionRange: sym.Location.Range,
		})
	}
	return out, nil
}

// Diagnostics returns the last diagnostics published for file.
func (c *lspClient) Diagnostics(file string) []protocol.Diagnostic {
	uri := protocol.DocumentURI(pathToURI(file))
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]protocol.Diagnostic, len(c.diagnostics[uri]))
	copy(out, c.diagnostics[uri])
	return out
}

// Close terminates the underlying process and JSON-RPC connection.
func (c *lspClient) Close() error {
	if c == nil {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	if c.cmd != nil && c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
		_, _ = c.cmd.Process.Wait()
	}
	return nil
}

// hierarchical tells DocumentSymbol answers from SymbolInformation ones: only
// the latter carry a location.
func hierarchical(raw json.RawMessage) bool {
	var probe []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil || len(probe) == 0 {
		return true
	}
	_, hasLocation := probe[0]["location"]
	return !hasLocation
}

type stdioReadWriteCloser struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (s *stdioReadWriteCloser) Read(p []byte) (int, error)  { return s.reader.Read(p) }
func (s *stdioReadWriteCloser) Write(p []byte) (int, error) { return s.writer.Write(p) }
func (s *stdioReadWriteCloser) Close() error {
	_ = s.reader.Close()
	return s.writer.Close()
}

func pathToURI(path string) string {
	path = filepath.Clean(path)
	if runtime.GOOS == "windows" {
		path = strings.ReplaceAll(path, "\\", "/")
		return "file:///" + strings.ReplaceAll(path, ":", "%3A")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "file://" + path
}
