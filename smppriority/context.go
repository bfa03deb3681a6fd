package smppriority

import (
	"math/bits"

	"github.com/esoule/rtems/priority"
	"github.com/esoule/rtems/smp"
)

// chain is an intrusive doubly-linked FIFO for one priority level's ready
// nodes, identical in shape to uniprocessor's (package-private, so not
// shared directly, but grounded on the same source).
type chain struct {
	head, tail *node
}

func (c *chain) empty() bool { return c.head == nil }

func (c *chain) pushBack(n *node) {
	n.readyPrev = c.tail
	n.readyNext = nil
	if c.tail != nil {
		c.tail.readyNext = n
	} else {
		c.head = n
	}
	c.tail = n
}

func (c *chain) pushFront(n *node) {
	n.readyNext = c.head
	n.readyPrev = nil
	if c.head != nil {
		c.head.readyPrev = n
	} else {
		c.tail = n
	}
	c.head = n
}

func (c *chain) remove(n *node) {
	if n.readyPrev != nil {
		n.readyPrev.readyNext = n.readyNext
	} else {
		c.head = n.readyNext
	}
	if n.readyNext != nil {
		n.readyNext.readyPrev = n.readyPrev
	} else {
		c.tail = n.readyPrev
	}
	n.readyNext, n.readyPrev = nil, nil
}

// context is this policy's schedapi.Context: smp.Context's Scheduled
// chain plus a fixed array of ready chains and an occupancy bitmap,
// exactly as uniprocessor's, but shared across every processor this
// instance owns.
type context struct {
	*smp.Context

	levels int
	chains []chain
	bitmap []uint64
}

func newContext(levels int) *context {
	return &context{
		levels: levels,
		chains: make([]chain, levels),
		bitmap: make([]uint64, (levels+63)/64),
	}
}

func (c *context) setBit(level int)   { c.bitmap[level/64] |= 1 << uint(level%64) }
func (c *context) clearBit(level int) { c.bitmap[level/64] &^= 1 << uint(level%64) }

func (c *context) highestOccupiedLevel() (int, bool) {
	for word, bitset := range c.bitmap {
		if bitset == 0 {
			continue
		}
		return word*64 + bits.TrailingZeros64(bitset), true
	}
	return 0, false
}

func (c *context) level(p priority.Priority) int {
	lvl := int(p)
	if lvl < 0 {
		lvl = 0
	}
	if lvl >= c.levels {
		lvl = c.levels - 1
	}
	return lvl
}

// insertReady places n within its priority level's chain, honoring
// whichever end PrepareReinsert's sequence stamp called for: a prepend
// stamp is always negative (nextPrependSequence), an append stamp always
// positive (nextAppendSequence), so the sign alone says which end n
// belongs at without needing a separate prepend parameter threaded
// through smp.Hooks.
func (c *context) insertReady(n *node) {
	lvl := c.level(n.priority)
	if n.sequence < 0 {
		c.chains[lvl].pushFront(n)
	} else {
		c.chains[lvl].pushBack(n)
	}
	c.setBit(lvl)
}

func (c *context) extractReady(n *node) {
	lvl := c.level(n.priority)
	c.chains[lvl].remove(n)
	if c.chains[lvl].empty() {
		c.clearBit(lvl)
	}
}

func (c *context) highestReady() *node {
	lvl, ok := c.highestOccupiedLevel()
	if !ok {
		return nil
	}
	return c.chains[lvl].head
}
