package outline

// AttributeChange is published after every attribute write on a node.
type AttributeChange struct {
	Node *RenderedNode
	Attr Attr
	// Name is the property name as written, useful for AttrUnknown.
	Name string
}

// Bus delivers attribute changes to subscribers synchronously, in the same
// turn as the write.
type Bus struct {
	subscribers []func(AttributeChange)
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(AttributeChange)) func() {
	b.subscribers = append(b.subscribers, fn)
	idx := len(b.subscribers) - 1
	return func() {
		if idx < len(b.subscribers) {
			b.subscribers[idx] = nil
		}
	}
}

// observe attaches n to the bus and publishes its observed attributes once so
// subscribers can derive initial state.
func (b *Bus) observe(n *RenderedNode) {
	if b == nil {
		return
	}
	n.bus = b
	for _, attr := range observedAttrs {
		b.publish(AttributeChange{Node: n, Attr: attr, Name: attr.String()})
	}
}

func (b *Bus) publish(change AttributeChange) {
	if b == nil {
		return
	}
	for _, fn := range b.subscribers {
		if fn != nil {
			fn(change)
		}
	}
}
