package smp

import "github.com/esoule/rtems/schedapi"

// Hooks is what a concrete SMP policy supplies to drive the templates in
// skeleton.go: its ready-structure operations plus the ordering relation
// this package's Scheduled chain is kept under (spec.md §4.5
// "Parameterization").
type Hooks interface {
	// Order reports whether a belongs strictly before b in the shared
	// total order (priority, with ties already broken by the concrete
	// node's own tie-break field).
	Order(a, b Node) bool

	InsertReady(ctx schedapi.Context, n Node)
	ExtractFromReady(ctx schedapi.Context, n Node)
	// GetHighestReady returns the highest-ranked ready node, or nil if
	// the ready structure is empty.
	GetHighestReady(ctx schedapi.Context) Node

	// PrepareReinsert stamps any tie-break state (e.g. a sequence number)
	// a concrete node needs before being re-inserted into an
	// order-maintained structure, honoring prepend the way the owning
	// structure's tie-break convention requires. Called before every
	// Yield and ChangePriority reinsertion.
	PrepareReinsert(n Node, prepend bool)
}
