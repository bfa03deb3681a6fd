// Package smppriority is the one concrete global fixed-priority SMP
// policy built on top of the smp package's templates (spec.md §4.5 "each concrete SMP
// policy supplies its own ready structure"): its ready set reuses
// uniprocessor's array-of-FIFO-chains-plus-bitmap shape, made
// processor-agnostic since any of an instance's processors may draw from
// it, while the Scheduled chain and heir-update protocol are smp's.
package smppriority

import (
	"github.com/esoule/rtems/priority"
	"github.com/esoule/rtems/schedapi"
	"github.com/esoule/rtems/smp"
)

// node is this policy's concrete scheduler node. It carries the full
// three-state machine (spec.md §4.5), a CPU slot meaningful only while
// Scheduled, a sequence number breaking ties among equal-priority peers
// (ascending: smaller sorts first; appends count up from 1 and prepends
// count down from -1, see sequence.go), and two
// independent link pairs: readyNext/readyPrev thread the node through its
// priority level's ready chain, schedNext/schedPrev satisfy smp.Node for
// the Scheduled chain. A node is only ever linked into one structure at a
// time, but keeping the pairs distinct (rather than one pair reused
// through smp.Node's interface-typed accessors) avoids a typed-nil trap:
// a nil *node boxed into the smp.Node interface is not itself nil.
type node struct {
	owner    schedapi.Thread
	state    schedapi.NodeState
	priority priority.Priority
	sequence int64

	cpu                  schedapi.CPU
	schedNext, schedPrev smp.Node
	readyNext, readyPrev *node
}

func (n *node) Owner() schedapi.Thread          { return n.owner }
func (n *node) State() schedapi.NodeState       { return n.state }
func (n *node) SetState(s schedapi.NodeState)   { n.state = s }
func (n *node) Priority() priority.Priority     { return n.priority }
func (n *node) SetPriority(p priority.Priority) { n.priority = p }
func (n *node) CPU() schedapi.CPU               { return n.cpu }
func (n *node) SetCPU(c schedapi.CPU)           { n.cpu = c }
func (n *node) Next() smp.Node                  { return n.schedNext }
func (n *node) SetNext(v smp.Node)              { n.schedNext = v }
func (n *node) Prev() smp.Node                  { return n.schedPrev }
func (n *node) SetPrev(v smp.Node)              { n.schedPrev = v }

var _ smp.Node = (*node)(nil)
