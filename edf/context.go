package edf

import "github.com/esoule/rtems/schedapi"

// context is this policy's schedapi.Context: the deadline-ordered ready
// tree plus the single implicit processor this instance dispatches onto.
type context struct {
	ready      rbtree
	appendSeq  int64
	prependSeq int64

	cpu  schedapi.CPU
	idle schedapi.Thread
}

func newContext() *context {
	c := &context{}
	c.ready.less = func(a, b *node) bool {
		switch {
		case a.priority != b.priority:
			return a.priority < b.priority
		default:
			return a.sequence < b.sequence
		}
	}
	return c
}

// insert stamps n's tie-break sequence and inserts it into the ready
// tree: prepend gives it a fresh, strictly decreasing sequence so it
// sorts ahead of every existing peer at the same deadline key (spec.md
// §4.1's "prepend places it at the head ... instead of the tail"),
// append gives it a fresh, strictly increasing one so it sorts behind
// them (FIFO).
func (c *context) insert(n *node, prepend bool) {
	if prepend {
		c.prependSeq--
		n.sequence = c.prependSeq
	} else {
		c.appendSeq++
		n.sequence = c.appendSeq
	}
	c.ready.insert(n)
}

func (c *context) extract(n *node) {
	c.ready.remove(n)
}

func (c *context) highestReady() *node {
	return c.ready.leftmost()
}
