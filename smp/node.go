// Package smp implements the three-state (Blocked/Scheduled/Ready) node
// machine and Enqueue/Block/Yield/ChangePriority templates shared by every
// multiprocessor scheduling policy (spec.md §4.5). It owns the
// priority-ordered Scheduled chain and the heir-update fence+IPI protocol;
// each concrete policy supplies its own ready structure and a strict
// ordering relation through the Hooks interface.
package smp

import "github.com/esoule/rtems/schedapi"

// Node extends schedapi.Node with the linkage a concrete policy's node
// type must carry to participate in the Scheduled chain and this
// package's processor-allocation bookkeeping: which CPU currently hosts
// it (meaningful only while Scheduled), and the intrusive Next/Prev pair
// the Scheduled chain threads through. A concrete node is free to reuse
// this same pair for its own ready-side linkage when Ready, since a node
// is never on both structures at once, but is not required to: a node
// type whose ready structure also needs concrete (non-interface) pointer
// types, to avoid boxing a nil pointer into a non-nil interface value,
// should keep a second, private pair instead (see smppriority/node.go).
type Node interface {
	schedapi.Node

	CPU() schedapi.CPU
	SetCPU(schedapi.CPU)

	Next() Node
	SetNext(Node)
	Prev() Node
	SetPrev(Node)
}
