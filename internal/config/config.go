package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lexcodex/outlinemap/outline"
)

// Config captures every knob shared by the outlinemap commands. Flags write
// into it directly; the workspace file fills whatever the flags left unset.
type Config struct {
	Workspace  string
	ConfigPath string
	LogPath    string
	File       string
	Depth      int
	Debug      bool
	Debounce   time.Duration
	Colors     map[string]string
	Provider   ProviderConfig
}

// ProviderConfig selects the process producing outline messages. By default
// Command is a language server; with External set it speaks outline messages
// over JSON-RPC itself.
type ProviderConfig struct {
	Command  string   `yaml:"command"`
	Args     []string `yaml:"args,omitempty"`
	Language string   `yaml:"language,omitempty"`
	External bool     `yaml:"external,omitempty"`
}

// FileConfig is the persisted part of Config.
type FileConfig struct {
	Depth    int               `yaml:"depth,omitempty"`
	Debug    bool              `yaml:"debug,omitempty"`
	Debounce time.Duration     `yaml:"debounce,omitempty"`
	Colors   map[string]string `yaml:"colors,omitempty"`
	Provider ProviderConfig    `yaml:"provider"`
}

// DefaultColors is the palette used when the workspace file sets none. Values
// are lipgloss colors.
func DefaultColors() map[string]string {
	return map[string]string{
		outline.ColorFocusingItem:     "12",
		outline.ColorVisibleRange:     "8",
		string(outline.KindModule):    "13",
		string(outline.KindNamespace): "13",
		string(outline.KindPackage):   "13",
		string(outline.KindClass):     "11",
		string(outline.KindStruct):    "11",
		string(outline.KindInterface): "14",
		string(outline.KindEnum):      "11",
		string(outline.KindMethod):    "5",
		string(outline.KindFunction):  "5",
		string(outline.KindField):     "4",
		string(outline.KindProperty):  "4",
		string(outline.KindVariable):  "4",
		string(outline.KindConstant):  "6",
		string(outline.KindRegion):    "2",
	}
}

// DefaultConfig infers defaults from the current working directory. Errors
// from os.Getwd are ignored so callers can override manually. Paths left
// empty resolve under the workspace's .outlinemap directory.
func DefaultConfig() Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return Config{Workspace: cwd}
}

// Normalize makes every path absolute and fills missing defaults.
func (c *Config) Normalize() error {
	if c.Workspace == "" {
		return fmt.Errorf("workspace path required")
	}
	absWorkspace, err := filepath.Abs(c.Workspace)
	if err != nil {
		return fmt.Errorf("resolve workspace: %w", err)
	}
	c.Workspace = absWorkspace
	c.ConfigPath = c.resolve(c.ConfigPath, filepath.Join(".outlinemap", "config.yaml"))
	c.LogPath = c.resolve(c.LogPath, filepath.Join(".outlinemap", "outlinemap.log"))
	if c.File != "" {
		c.File = c.resolve(c.File, "")
	}
	if c.Depth < 0 {
		c.Depth = 0
	}
	if c.Debounce <= 0 {
		c.Debounce = 300 * time.Millisecond
	}
	if len(c.Colors) == 0 {
		c.Colors = DefaultColors()
	}
	return nil
}

func (c *Config) resolve(path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.Workspace, path)
	}
	return path
}

// Load resolves the config path, merges the workspace file into c and
// normalizes the result.
func (c *Config) Load() error {
	if c.Workspace == "" {
		return fmt.Errorf("workspace path required")
	}
	absWorkspace, err := filepath.Abs(c.Workspace)
	if err != nil {
		return fmt.Errorf("resolve workspace: %w", err)
	}
	c.Workspace = absWorkspace
	c.ConfigPath = c.resolve(c.ConfigPath, filepath.Join(".outlinemap", "config.yaml"))
	fc, err := LoadFile(c.ConfigPath)
	if err != nil {
		return err
	}
	c.Merge(fc)
	return c.Normalize()
}

// Merge fills the fields still at their zero value from fc.
func (c *Config) Merge(fc FileConfig) {
	if c.Depth == 0 {
		c.Depth = fc.Depth
	}
	c.Debug = c.Debug || fc.Debug
	if c.Debounce <= 0 {
		c.Debounce = fc.Debounce
	}
	if len(c.Colors) == 0 && len(fc.Colors) > 0 {
		c.Colors = make(map[string]string, len(fc.Colors))
		for k, v := range fc.Colors {
			c.Colors[k] = v
		}
	}
	if c.Provider.Command == "" {
		c.Provider.Command = fc.Provider.Command
		if len(c.Provider.Args) == 0 {
			c.Provider.Args = fc.Provider.Args
		}
	}
	if c.Provider.Language == "" {
		c.Provider.Language = fc.Provider.Language
	}
	c.Provider.External = c.Provider.External || fc.Provider.External
}

// FileConfig returns the persisted view of c.
func (c Config) FileConfig() FileConfig {
	return FileConfig{
		Depth:    c.Depth,
		Debug:    c.Debug,
		Debounce: c.Debounce,
		Colors:   c.Colors,
		Provider: c.Provider,
	}
}

// ConfigMessage is the config message that puts c into effect on a panel.
func (c Config) ConfigMessage() (outline.Message, error) {
	data := outline.ConfigData{Color: c.Colors, Debug: &c.Debug}
	if c.Depth > 0 {
		depth := float64(c.Depth)
		data.Depth = &depth
	}
	return outline.NewMessage(outline.MessageConfig, data)
}

// LoadFile reads the workspace configuration. A missing file yields an empty
// configuration.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path required")
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return FileConfig{}, nil
	}
	if err != nil {
		return FileConfig{}, err
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// SaveFile persists cfg for future sessions.
func SaveFile(path string, cfg FileConfig) error {
	if path == "" {
		return fmt.Errorf("config path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
