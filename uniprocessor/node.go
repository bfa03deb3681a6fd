package uniprocessor

import (
	"github.com/esoule/rtems/priority"
	"github.com/esoule/rtems/schedapi"
)

// node is this policy's concrete scheduler node: the common fields plus the
// intrusive chain linkage for one priority level's FIFO.
//
// Unlike the SMP skeleton (spec.md §4.5), this policy uses only two of the
// three node states: Blocked and Ready. The source's uniprocessor priority
// scheduler never removes the currently executing thread's node from its
// ready chain — "Scheduled" is purely a derived fact (whichever node sits
// at the head of the highest occupied chain is the heir), not a distinct
// linkage state, so there is nothing for a third state to track here.
type node struct {
	owner    schedapi.Thread
	state    schedapi.NodeState
	priority priority.Priority

	next, prev *node
}

func (n *node) Owner() schedapi.Thread          { return n.owner }
func (n *node) State() schedapi.NodeState       { return n.state }
func (n *node) SetState(s schedapi.NodeState)   { n.state = s }
func (n *node) Priority() priority.Priority     { return n.priority }
func (n *node) SetPriority(p priority.Priority) { n.priority = p }

var _ schedapi.Node = (*node)(nil)
