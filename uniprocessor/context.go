package uniprocessor

import (
	"math/bits"

	"github.com/esoule/rtems/priority"
	"github.com/esoule/rtems/schedapi"
)

// context is this policy's schedapi.Context: the fixed array of FIFO
// chains plus an occupancy bitmap for O(1) highest-priority lookup
// (spec.md §4.3), and the single implicit processor this uniprocessor
// instance dispatches onto.
type context struct {
	levels int
	chains []chain
	bitmap []uint64

	cpu  schedapi.CPU
	idle schedapi.Thread
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

// highestOccupiedLevel returns the lowest-numbered (i.e. highest-priority,
// under priority.Default's convention) occupied chain, scanning the bitmap
// word by word the way the source uses a CLZ instruction per bitmap word.
func (c *context) highestOccupiedLevel() (int, bool) {
	for word, bitset := range c.bitmap {
		if bitset == 0 {
			continue
		}
		return word*64 + bits.TrailingZeros64(bitset), true
	}
	return 0, false
}

// highestReady returns the node at the head of the highest occupied chain,
// or nil if the ready set is empty.
func (c *context) highestReady() *node {
	level, ok := c.highestOccupiedLevel()
	if !ok {
		return nil
	}
	return c.chains[level].head
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

func (c *context) insert(n *node, prepend bool) {
	lvl := c.level(n.priority)
	if prepend {
		c.chains[lvl].pushFront(n)
	} else {
		c.chains[lvl].pushBack(n)
	}
	c.setBit(lvl)
}

func (c *context) extract(n *node) {
	lvl := c.level(n.priority)
	c.chains[lvl].remove(n)
	if c.chains[lvl].empty() {
		c.clearBit(lvl)
	}
}
