package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lexcodex/outlinemap/app/outline/tui"
	"github.com/lexcodex/outlinemap/host"
	"github.com/lexcodex/outlinemap/internal/config"
	"github.com/lexcodex/outlinemap/outline"
	"github.com/lexcodex/outlinemap/provider"
)

var cfg = config.DefaultConfig()

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "outlinemap",
		Short:         "Live symbol outline panel for the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Load()
		},
	}
	root.PersistentFlags().StringVar(&cfg.Workspace, "workspace", cfg.Workspace, "Workspace directory")
	root.PersistentFlags().StringVar(&cfg.ConfigPath, "config", "", "Config file (default <workspace>/.outlinemap/config.yaml)")
	root.PersistentFlags().StringVar(&cfg.LogPath, "log", "", "Log file (default <workspace>/.outlinemap/outlinemap.log)")
	root.PersistentFlags().IntVar(&cfg.Depth, "depth", 0, "Maximum expanded depth, 0 for unlimited")
	root.PersistentFlags().BoolVar(&cfg.Debug, "debug", false, "Verbose logging")

	root.AddCommand(newViewCmd(), newReplayCmd(), newConfigCmd())
	return root
}

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Show the live outline of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			cfg.File = file
			if err := cfg.Normalize(); err != nil {
				return err
			}
			logger, closeLog, err := openLog(cfg.LogPath, cfg.Debug)
			if err != nil {
				return err
			}
			defer closeLog()

			source, err := buildSource(cfg, logger)
			if err != nil {
				return err
			}
			initial, err := cfg.ConfigMessage()
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), tui.Options{
				Source:  source,
				Title:   relativeTo(cfg.Workspace, cfg.File),
				Initial: []outline.Message{initial},
				Logger:  logger,
			})
		},
	}
	cmd.Flags().StringVar(&cfg.Provider.Command, "provider", "", "Provider command (a language server unless --external)")
	cmd.Flags().StringSliceVar(&cfg.Provider.Args, "provider-arg", nil, "Provider argument (repeatable)")
	cmd.Flags().StringVar(&cfg.Provider.Language, "language", "", "LSP language id (default from the file extension)")
	cmd.Flags().BoolVar(&cfg.Provider.External, "external", false, "Provider speaks outline messages over JSON-RPC")
	return cmd
}

func newReplayCmd() *cobra.Command {
	var interactive bool
	cmd := &cobra.Command{
		Use:   "replay [messages.jsonl]",
		Short: "Apply a recorded message log and print the resulting outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			msgs, err := host.ReadMessages(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if interactive {
				logger, closeLog, err := openLog(cfg.LogPath, cfg.Debug)
				if err != nil {
					return err
				}
				defer closeLog()
				return tui.Run(cmd.Context(), tui.Options{
					Source: host.NewReplay(msgs, logger),
					Title:  filepath.Base(args[0]),
					Logger: logger,
				})
			}
			return replay(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), msgs)
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Open the panel instead of printing")
	return cmd
}

// replay routes msgs through a headless outline configured from cfg and
// prints the result.
func replay(cfg config.Config, out, errOut io.Writer, msgs []outline.Message) error {
	logger := log.New(io.Discard, "", 0)
	if cfg.Debug {
		logger.SetOutput(errOut)
	}
	initial, err := cfg.ConfigMessage()
	if err != nil {
		return err
	}
	source := host.NewReplay(msgs, logger)
	tree := outline.NewTree(nil, source, logger)
	router := outline.NewRouter(tree, nil, logger)
	if err := router.Handle(initial); err != nil {
		return err
	}
	failed := 0
	if err := source.Run(context.Background(), func(msg outline.Message) {
		if err := router.Handle(msg); err != nil {
			failed++
			fmt.Fprintf(errOut, "%s: %v\n", msg.Type, err)
		}
	}); err != nil {
		return err
	}
	fmt.Fprint(out, tui.RenderPlain(tree))
	if failed > 0 {
		return fmt.Errorf("%d of %d messages failed", failed, len(msgs))
	}
	return nil
}

// buildSource picks the message source configured for cfg.
func buildSource(cfg config.Config, logger *log.Logger) (host.Source, error) {
	if cfg.Provider.External {
		if cfg.Provider.Command == "" {
			return nil, fmt.Errorf("--provider is required with --external")
		}
		return host.NewBridge(host.BridgeConfig{
			Command: cfg.Provider.Command,
			Args:    cfg.Provider.Args,
			Dir:     cfg.Workspace,
			Debug:   cfg.Debug,
		}, logger), nil
	}
	language := cfg.Provider.Language
	if language == "" {
		language = languageFor(cfg.File)
	}
	command := cfg.Provider.Command
	if command == "" {
		command = defaultServers[language]
	}
	if command == "" {
		return nil, fmt.Errorf("no language server known for %s; pass --provider", filepath.Base(cfg.File))
	}
	return provider.New(provider.Config{
		Server: provider.ServerConfig{
			Command:    command,
			Args:       cfg.Provider.Args,
			RootDir:    cfg.Workspace,
			LanguageID: language,
		},
		File:     cfg.File,
		Debounce: cfg.Debounce,
		Debug:    cfg.Debug,
	}, logger), nil
}

var languageIDs = map[string]string{
	".go":   "go",
	".py":   "python",
	".rs":   "rust",
	".ts":   "typescript",
	".tsx":  "typescriptreact",
	".js":   "javascript",
	".jsx":  "javascriptreact",
	".c":    "c",
	".h":    "c",
	".cc":   "cpp",
	".cpp":  "cpp",
	".hpp":  "cpp",
	".java": "java",
	".lua":  "lua",
	".md":   "markdown",
}

var defaultServers = map[string]string{
	"go":     "gopls",
	"python": "pylsp",
	"rust":   "rust-analyzer",
	"c":      "clangd",
	"cpp":    "clangd",
}

func languageFor(file string) string {
	if id, ok := languageIDs[strings.ToLower(filepath.Ext(file))]; ok {
		return id
	}
	return "plaintext"
}

// openLog sends logs to path since the terminal belongs to the panel.
func openLog(path string, debug bool) (*log.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	flags := log.LstdFlags
	if debug {
		flags |= log.Lmicroseconds
	}
	return log.New(f, "", flags), func() { _ = f.Close() }, nil
}

func relativeTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
