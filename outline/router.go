package outline

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"
)

const (
	// ScrollOffset is where a followed node lands, as a fraction of the
	// viewport height from the top.
	ScrollOffset = 0.33
	// NotifyDuration is how long the depth notification stays visible.
	NotifyDuration = 3 * time.Second
)

// Surface is the part of the hosting panel the router drives.
type Surface interface {
	// ScrollTo positions node at offset (fraction of the viewport height).
	ScrollTo(node *RenderedNode, offset float64)
	// Notify shows a transient message that dismisses itself after d.
	Notify(text string, d time.Duration)
	// FocusFilter moves input focus to the filter widget.
	FocusFilter()
}

// Router dispatches inbound messages to the tree and the surface.
type Router struct {
	tree    *Tree
	surface Surface
	logger  *log.Logger
}

// NewRouter returns a router for tree. surface may be nil for headless use.
func NewRouter(tree *Tree, surface Surface, logger *log.Logger) *Router {
	if logger == nil {
		logger = log.Default()
	}
	return &Router{tree: tree, surface: surface, logger: logger}
}

// Handle dispatches one message. Unknown types are ignored. A malformed
// message is reported and dropped; it never leaves the router unusable.
func (r *Router) Handle(msg Message) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s message: panic: %v", msg.Type, rec)
		}
	}()
	if r.tree.settings.Load().Debug {
		r.logger.Printf("[outline] received %s message (%d bytes)", msg.Type, len(msg.Data))
	}
	switch msg.Type {
	case MessageUpdate:
		var data UpdateData
		if err := decode(msg, &data); err != nil {
			return err
		}
		res := r.tree.ApplyBatch(data.Patches)
		if res.Failed > 0 {
			return fmt.Errorf("update message: %d of %d patches failed", res.Failed, len(data.Patches))
		}
	case MessageScroll:
		var data ScrollData
		if err := decode(msg, &data); err != nil {
			return err
		}
		r.scroll(data)
	case MessageConfig:
		var data ConfigData
		if err := decode(msg, &data); err != nil {
			return err
		}
		r.configure(data)
	case MessageChangeDepth:
		var data ChangeDepthData
		if err := decode(msg, &data); err != nil {
			return err
		}
		r.changeDepth(data.Delta)
	case MessageFocus:
		if r.surface != nil {
			r.surface.FocusFilter()
		}
	}
	return nil
}

func (r *Router) scroll(data ScrollData) {
	if r.surface == nil || data.Follow == "" {
		return
	}
	var node *RenderedNode
	if class, ok := ParseClass(data.Follow); ok {
		node = r.tree.FindClass(class)
	} else {
		node = r.tree.Find(data.Follow)
	}
	if node == nil {
		return
	}
	r.surface.ScrollTo(node, ScrollOffset)
}

// configure replaces the whole configuration: colors are not merged, and a
// missing depth or debug flag falls back to its default.
func (r *Router) configure(data ConfigData) {
	cfg := DefaultConfig()
	cfg.Colors = data.Color
	if data.Depth != nil && *data.Depth >= 1 && !math.IsInf(*data.Depth, 1) {
		cfg.MaxDepth = int(math.Min(*data.Depth, float64(Unlimited)))
	}
	if data.Debug != nil {
		cfg.Debug = *data.Debug
	}
	r.tree.settings.Store(cfg)
	r.tree.Sweep()
}

// changeDepth moves the max depth by delta, never below 1. Starting from no
// limit, a negative delta counts down from the deepest rendered node.
func (r *Router) changeDepth(delta int) {
	cfg := r.tree.settings.Load()
	current := cfg.MaxDepth
	if !cfg.Limited() {
		if delta >= 0 {
			r.notifyDepth(cfg)
			return
		}
		current = max(1, r.tree.MaxRenderedDepth())
	}
	switch {
	case delta > 0 && current > Unlimited-delta:
		cfg.MaxDepth = Unlimited
	default:
		cfg.MaxDepth = max(1, current+delta)
	}
	r.tree.settings.Store(cfg)
	r.tree.Sweep()
	r.notifyDepth(cfg)
}

func (r *Router) notifyDepth(cfg Config) {
	if r.surface == nil {
		return
	}
	depth := "unlimited"
	if cfg.Limited() {
		depth = strconv.Itoa(cfg.MaxDepth)
	}
	r.surface.Notify("Depth: "+depth, NotifyDuration)
}

func decode(msg Message, v any) error {
	if len(msg.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return fmt.Errorf("%s message: %w", msg.Type, err)
	}
	return nil
}
