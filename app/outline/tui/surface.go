package tui

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/lexcodex/outlinemap/outline"
)

// surface records what the router asked of the panel during one message. The
// model drains it right after routing and turns it into view changes and
// commands.
type surface struct {
	scroll       *outline.RenderedNode
	scrollOffset float64
	toast        string
	toastFor     time.Duration
	focusFilter  bool
}

func (s *surface) ScrollTo(node *outline.RenderedNode, offset float64) {
	s.scroll = node
	s.scrollOffset = offset
}

func (s *surface) Notify(text string, d time.Duration) {
	s.toast = text
	s.toastFor = d
}

func (s *surface) FocusFilter() {
	s.focusFilter = true
}

func (s *surface) drain() surface {
	out := *s
	*s = surface{}
	return out
}

var errPosterFull = errors.New("outbound queue full")

// asyncPoster hands outbound messages to a worker goroutine. Sources may
// answer a post by delivering inbound messages, which the event loop must be
// free to receive.
type asyncPoster struct {
	queue chan outline.OutboundMessage
}

func newAsyncPoster(ctx context.Context, target outline.Poster, logger *log.Logger) *asyncPoster {
	p := &asyncPoster{queue: make(chan outline.OutboundMessage, 32)}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-p.queue:
				if err := target.Post(msg); err != nil {
					logger.Printf("[panel] post %s: %v", msg.Type, err)
				}
			}
		}
	}()
	return p
}

func (p *asyncPoster) Post(msg outline.OutboundMessage) error {
	select {
	case p.queue <- msg:
		return nil
	default:
		return errPosterFull
	}
}
