package smp

import "github.com/esoule/rtems/schedapi"

// Context is the generic half of an SMP instance's schedapi.Context: the
// Scheduled chain, kept in priority order (highest at head, lowest at
// tail) by order, and the idle thread owning each processor. A concrete
// policy embeds *Context into its own context type alongside its own
// ready structure.
type Context struct {
	head, tail Node
	order      func(a, b Node) bool
	idle       map[schedapi.CPU]schedapi.Thread
}

// NewContext returns an empty Context whose Scheduled chain is kept
// ordered by order(a, b): true iff a belongs strictly before b. order
// must be a strict total order (ties already broken, e.g. by a sequence
// number on the concrete node) — spec.md §4.5's "order(a,b) → bool
// (strict LIFO or FIFO within equal priority)".
func NewContext(order func(a, b Node) bool) *Context {
	return &Context{order: order, idle: make(map[schedapi.CPU]schedapi.Thread)}
}

// RegisterIdle records cpu's idle thread, the fallback heir when the
// Scheduled chain loses its last occupant for that processor.
func (c *Context) RegisterIdle(cpu schedapi.CPU, idle schedapi.Thread) {
	c.idle[cpu] = idle
}

func (c *Context) IdleFor(cpu schedapi.CPU) schedapi.Thread { return c.idle[cpu] }

// InsertScheduled inserts n into the Scheduled chain at the position
// order dictates.
func (c *Context) InsertScheduled(n Node) {
	var prev Node
	cur := c.head
	for cur != nil && c.order(cur, n) {
		prev = cur
		cur = cur.Next()
	}
	n.SetPrev(prev)
	n.SetNext(cur)
	if prev != nil {
		prev.SetNext(n)
	} else {
		c.head = n
	}
	if cur != nil {
		cur.SetPrev(n)
	} else {
		c.tail = n
	}
}

// ExtractScheduled unlinks n from the Scheduled chain.
func (c *Context) ExtractScheduled(n Node) {
	if p := n.Prev(); p != nil {
		p.SetNext(n.Next())
	} else {
		c.head = n.Next()
	}
	if nx := n.Next(); nx != nil {
		nx.SetPrev(n.Prev())
	} else {
		c.tail = n.Prev()
	}
	n.SetNext(nil)
	n.SetPrev(nil)
}

// HighestScheduled returns the head of the Scheduled chain, or nil.
func (c *Context) HighestScheduled() Node { return c.head }

// LowestScheduled returns the lowest-ranked Scheduled node for which
// filter reports true (scanning from the tail), or nil if none qualifies.
// A nil filter matches every node.
func (c *Context) LowestScheduled(filter func(Node) bool) Node {
	for n := c.tail; n != nil; n = n.Prev() {
		if filter == nil || filter(n) {
			return n
		}
	}
	return nil
}

// ScheduledCount reports how many nodes are currently in the Scheduled
// chain, used by tests and invariant checks (spec.md §8 property 2).
func (c *Context) ScheduledCount() int {
	n := 0
	for cur := c.head; cur != nil; cur = cur.Next() {
		n++
	}
	return n
}
