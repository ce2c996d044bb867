// Package bus is a small retained publish/subscribe bus. Boot and bring-up
// publish their results here so diagnostics and user code can observe core
// state without polling the packages that own it.
package bus

import (
	"sync"
)

// -----------------------------------------------------------------------------
// Topics
// -----------------------------------------------------------------------------

// Topic is a path of comparable tokens (strings or ints). In subscription
// patterns "+" matches one token and a trailing "#" matches any remainder,
// including none.
type Topic []any

const (
	One  = "+"
	Rest = "#"
)

// T builds a topic.
func T(tokens ...any) Topic { return Topic(tokens) }

func (t Topic) Len() int     { return len(t) }
func (t Topic) At(i int) any { return t[i] }

// -----------------------------------------------------------------------------
// Message / Subscription
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
}

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type node struct {
	children map[any]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(tok any, create bool) *node {
	if c, ok := n.children[tok]; ok || !create {
		return c
	}
	if n.children == nil {
		n.children = make(map[any]*node)
	}
	c := &node{}
	n.children[tok] = c
	return c
}

type Bus struct {
	mu   sync.Mutex
	root *node
	qLen int
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{root: &node{}, qLen: queueLen}
}

// Publish delivers msg to every matching subscriber. A retained message is
// stored for later subscribers; a retained nil payload clears it.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msg.Retained {
		n := b.root
		for _, tok := range msg.Topic {
			n = n.child(tok, true)
		}
		if msg.Payload == nil {
			n.retained = nil
		} else {
			n.retained = msg
		}
	}
	deliverMatching(b.root, msg, 0)
}

func deliverMatching(n *node, msg *Message, i int) {
	if n == nil {
		return
	}
	if rest := n.children[Rest]; rest != nil {
		deliver(rest.subs, msg)
	}
	if i == len(msg.Topic) {
		deliver(n.subs, msg)
		return
	}
	deliverMatching(n.children[msg.Topic[i]], msg, i+1)
	deliverMatching(n.children[One], msg, i+1)
}

func deliver(subs []*Subscription, msg *Message) {
	for _, s := range subs {
		select {
		case s.ch <- msg:
		default:
			// drop oldest if queue full
			select {
			case <-s.ch:
			default:
			}
			s.ch <- msg
		}
	}
}

func (b *Bus) subscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range sub.topic {
		n = n.child(tok, true)
	}
	n.subs = append(n.subs, sub)
	retainedMatching(b.root, sub.topic, 0, sub)
}

func retainedMatching(n *node, pattern Topic, i int, sub *Subscription) {
	if n == nil {
		return
	}
	if i == len(pattern) {
		if n.retained != nil {
			deliver([]*Subscription{sub}, n.retained)
		}
		return
	}
	switch pattern[i] {
	case Rest:
		retainedAll(n, sub)
	case One:
		for tok, c := range n.children {
			if tok != One && tok != Rest {
				retainedMatching(c, pattern, i+1, sub)
			}
		}
	default:
		retainedMatching(n.children[pattern[i]], pattern, i+1, sub)
	}
}

func retainedAll(n *node, sub *Subscription) {
	if n.retained != nil {
		deliver([]*Subscription{sub}, n.retained)
	}
	for _, c := range n.children {
		retainedAll(c, sub)
	}
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range sub.topic {
		if n = n.child(tok, false); n == nil {
			return
		}
	}
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus  *Bus
	id   string
	mu   sync.Mutex
	subs []*Subscription
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// Retain publishes payload as the retained state of topic.
func (c *Connection) Retain(topic Topic, payload any) {
	c.bus.Publish(&Message{Topic: topic, Payload: payload, Retained: true})
}

// Subscribe registers a subscription owned by this connection.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	c.bus.subscribe(sub)
	return sub
}

// Unsubscribe removes a subscription owned by this connection.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	close(sub.ch)
}

// Disconnect closes all subscriptions.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, sub := range subs {
		c.bus.unsubscribe(sub)
		close(sub.ch)
	}
}
