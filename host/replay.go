package host

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/lexcodex/outlinemap/outline"
)

const maxLogLine = 16 << 20

// ReadMessages parses a message log: one JSON message per line. Blank lines
// and lines starting with '#' are skipped.
func ReadMessages(r io.Reader) ([]outline.Message, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), maxLogLine)
	var msgs []outline.Message
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var msg outline.Message
		if err := json.Unmarshal([]byte(text), &msg); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		msgs = append(msgs, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Replay plays a recorded message log into the panel and keeps whatever the
// panel posts back.
type Replay struct {
	msgs   []outline.Message
	logger *log.Logger

	mu     sync.Mutex
	posted []outline.OutboundMessage
}

// NewReplay returns a source that delivers msgs once, in order.
func NewReplay(msgs []outline.Message, logger *log.Logger) *Replay {
	if logger == nil {
		logger = log.Default()
	}
	return &Replay{msgs: msgs, logger: logger}
}

// Run delivers every message unless ctx ends first.
func (r *Replay) Run(ctx context.Context, deliver func(outline.Message)) error {
	for _, msg := range r.msgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		deliver(msg)
	}
	return nil
}

// Post records msg; a replay has nobody to answer.
func (r *Replay) Post(msg outline.OutboundMessage) error {
	r.mu.Lock()
	r.posted = append(r.posted, msg)
	r.mu.Unlock()
	r.logger.Printf("[host] replay: dropped outbound %s", msg.Type)
	return nil
}

// Posted returns the outbound messages received so far.
func (r *Replay) Posted() []outline.OutboundMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]outline.OutboundMessage(nil), r.posted...)
}
