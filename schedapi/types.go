// Package schedapi defines the contracts the scheduler core consumes from
// and exposes to its external collaborators (the thread object, the
// per-processor record) and the static configuration model (the scheduler
// table and processor-assignment array). It contains no scheduling
// decisions of its own; those live in kernel and the policy packages.
package schedapi

import "github.com/esoule/rtems/priority"

// NodeState is the per-thread, per-scheduler state tag. Exactly one of
// these three values holds at any time (spec.md §3 invariant 2), and
// transitions between them are restricted to the six-edge matrix of
// spec.md §3 invariant 6.
type NodeState uint8

const (
	// NodeBlocked: the node is linked into neither the ready nor the
	// scheduled structure.
	NodeBlocked NodeState = iota
	// NodeScheduled: the node is promised to a processor.
	NodeScheduled
	// NodeReady: the node is runnable but not currently promised to a processor.
	NodeReady
)

func (s NodeState) String() string {
	switch s {
	case NodeBlocked:
		return "Blocked"
	case NodeScheduled:
		return "Scheduled"
	case NodeReady:
		return "Ready"
	default:
		return "Unknown"
	}
}

// Node is the per-thread scheduler node lifecycle contract (spec.md §3,
// §4.2). Concrete policies embed these fields into their own node types,
// along with policy-specific linkage (chain pointers, tree pointers, an
// assigned-CPU slot); outside a policy package, a Node is only ever used
// through this interface, mirroring the vtable-plus-context-downcast
// structure the C original uses for the same purpose (see Design Notes in
// SPEC_FULL.md §9 / DESIGN.md).
type Node interface {
	// Owner returns the thread this node belongs to; a node always belongs
	// to exactly one thread for its whole lifetime (spec.md §3 invariant 1).
	Owner() Thread
	State() NodeState
	SetState(NodeState)
	Priority() priority.Priority
	SetPriority(priority.Priority)
}

// Thread is the scheduler's contract with the thread object, which is
// otherwise out of scope for this core (spec.md §1, §6 "Sideways (to the
// thread module)").
type Thread interface {
	CurrentPriority() priority.Priority
	SetCurrentPriority(priority.Priority)
	// IsPreemptible reports whether this thread may be forced off a
	// processor by a higher-priority arrival.
	IsPreemptible() bool

	SchedulerNode() Node
	SetSchedulerNode(Node)

	// Instance is the scheduler instance this thread is currently bound
	// to; nil before the first Set call installs one.
	Instance() *Instance
	SetInstance(*Instance)

	// SetMigrating toggles the migration barrier bit: while set, this
	// thread must not become heir on any processor (spec.md §5 "Migration
	// barrier").
	SetMigrating(bool)
	IsMigrating() bool
}

// CPU is the scheduler's contract with the per-processor record, otherwise
// out of scope for this core (spec.md §6 "Sideways (to per-CPU module)").
type CPU interface {
	Index() int

	Executing() Thread
	SetExecuting(Thread)

	Heir() Thread
	SetHeir(Thread)

	DispatchNecessary() bool
	SetDispatchNecessary(bool)

	// Instance is the scheduler instance currently bound to this
	// processor; nil if none is bound yet.
	Instance() *Instance
	SetInstance(*Instance)

	// SendInterrupt requests an inter-processor interrupt so this CPU
	// re-reads Heir/DispatchNecessary at its next safe point. Fire-and-
	// forget: spec.md §4.7.
	SendInterrupt()
}

// Context is the policy-specific ready/scheduled-structure container. Each
// policy defines its own concrete context type and type-asserts it back out
// of the Instance it was invoked through; callers outside a policy package
// never inspect a Context's contents.
type Context interface{}

// Ops is the capability set every policy implements (spec.md §2, §4.1).
// newPriority/prepend follow the source's _Scheduler_Change_priority
// contract: the caller guarantees the thread is Ready before calling
// ChangePriority, and that newPriority differs from the node's current
// priority.
type Ops interface {
	Schedule(inst *Instance, thread Thread)
	Yield(inst *Instance, thread Thread)
	Block(inst *Instance, thread Thread)
	Unblock(inst *Instance, thread Thread, prepend bool)
	ChangePriority(inst *Instance, thread Thread, newPriority priority.Priority, prepend bool)
	// UpdatePriority updates the scheduler's record of a thread's priority
	// when the thread is not currently Ready (the caller guarantees this);
	// unlike ChangePriority it never needs to re-order a ready structure.
	UpdatePriority(inst *Instance, thread Thread, newPriority priority.Priority)
	NodeInitialize(inst *Instance, thread Thread) Node
	NodeDestroy(inst *Instance, node Node)
	PriorityCompare(p1, p2 priority.Priority) int
	ReleaseJob(inst *Instance, thread Thread, length uint64)
	Tick(inst *Instance, thread Thread)
	StartIdle(inst *Instance, thread Thread, cpu CPU)
}

// SMPOps additionally exposes affinity queries (spec.md §4.1, §4.6). Every
// policy in this module implements it, including the single-processor
// uniprocessor and edf policies.
type SMPOps interface {
	Ops
	GetAffinity(inst *Instance, thread Thread, set *CPUSet) bool
	SetAffinity(inst *Instance, thread Thread, set CPUSet) bool
}

// CPUSet is a fixed-size processor bitmask used by affinity queries. 64
// processors is comfortably beyond any configuration this core targets.
type CPUSet struct {
	bits uint64
}

func (s *CPUSet) Clear() { s.bits = 0 }

func (s *CPUSet) Set(i int) { s.bits |= 1 << uint(i) }

func (s CPUSet) IsSet(i int) bool { return s.bits&(1<<uint(i)) != 0 }

// Equal reports whether two sets have identical membership.
func (s CPUSet) Equal(o CPUSet) bool { return s.bits == o.bits }
