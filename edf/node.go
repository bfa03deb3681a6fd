package edf

import (
	"github.com/esoule/rtems/priority"
	"github.com/esoule/rtems/schedapi"
)

// node is this policy's concrete scheduler node: the common fields plus
// the intrusive red-black tree linkage (spec.md §4.4). sequence breaks
// ties between equal-deadline nodes, since a bare less-than on priority
// alone cannot distinguish two nodes carrying the same deadline-derived
// key and the tree requires a strict order: positive values (from
// context.appendSeq) place later arrivals after earlier ones at the same
// key; negative values (from context.prependSeq) place a freshly
// prepended node ahead of every peer seen so far, including earlier
// prepends, the same signed-counter convention smppriority's node uses.
type node struct {
	owner    schedapi.Thread
	state    schedapi.NodeState
	priority priority.Priority
	sequence int64

	left, right, parent *node
	red                 bool
}

func (n *node) Owner() schedapi.Thread          { return n.owner }
func (n *node) State() schedapi.NodeState       { return n.state }
func (n *node) SetState(s schedapi.NodeState)   { n.state = s }
func (n *node) Priority() priority.Priority     { return n.priority }
func (n *node) SetPriority(p priority.Priority) { n.priority = p }

var _ schedapi.Node = (*node)(nil)
