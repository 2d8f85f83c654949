package outline

import (
	"math"
	"strings"
	"sync/atomic"
)

// Unlimited is the max depth used when no limit is configured.
const Unlimited = math.MaxInt

// Special color keys; every other key in a color map is a symbol kind.
const (
	ColorFocusingItem = "focusingItem"
	ColorVisibleRange = "visibleRange"
)

// Config is an immutable snapshot of the panel settings.
type Config struct {
	MaxDepth int
	Debug    bool
	Colors   map[string]string
}

// DefaultConfig has no depth limit, debug off and no colors.
func DefaultConfig() Config {
	return Config{MaxDepth: Unlimited}
}

// Limited reports whether a max depth is in force.
func (c Config) Limited() bool { return c.MaxDepth != Unlimited }

// Collapsed reports whether a node at depth is shown collapsed regardless of
// its own expand flag.
func (c Config) Collapsed(depth int) bool {
	return depth >= c.MaxDepth
}

// KindColor returns the configured color for kind, matching case-insensitively.
func (c Config) KindColor(kind SymbolKind) (string, bool) {
	if color, ok := c.Colors[string(kind)]; ok {
		return color, true
	}
	for key, color := range c.Colors {
		if key == ColorFocusingItem || key == ColorVisibleRange {
			continue
		}
		if strings.EqualFold(key, string(kind)) {
			return color, true
		}
	}
	return "", false
}

// Settings is the single process-wide holder of the current Config. The
// router is its only writer.
type Settings struct {
	current atomic.Pointer[Config]
}

// NewSettings seeds a holder with cfg.
func NewSettings(cfg Config) *Settings {
	s := &Settings{}
	s.Store(cfg)
	return s
}

// Load returns the current snapshot.
func (s *Settings) Load() Config {
	if s == nil {
		return DefaultConfig()
	}
	if cfg := s.current.Load(); cfg != nil {
		return *cfg
	}
	return DefaultConfig()
}

// Store replaces the current snapshot. The color map is copied.
func (s *Settings) Store(cfg Config) {
	colors := make(map[string]string, len(cfg.Colors))
	for k, v := range cfg.Colors {
		colors[k] = v
	}
	cfg.Colors = colors
	if cfg.MaxDepth < 1 {
		cfg.MaxDepth = 1
	}
	s.current.Store(&cfg)
}
