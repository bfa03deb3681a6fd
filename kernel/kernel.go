// Package kernel implements the scheduler indirection layer (spec.md
// §4.1): the kernel-facing entry points that resolve a thread's (or
// processor's) bound scheduler instance and forward to its policy vtable.
// Every exported method here is total on valid inputs and returns no error:
// precondition violations are debug-assertion failures (spec.md §7), not
// errors, because the scheduler's callers are expected to have already
// validated thread state before invoking it under an interrupt-disabled
// critical section (spec.md §5).
package kernel

import (
	"sort"

	"github.com/esoule/rtems/diag"
	"github.com/esoule/rtems/priority"
	"github.com/esoule/rtems/schedapi"
)

// Kernel is the top-level indirection: a static Table plus the ordered list
// of processors it dispatches Tick across.
type Kernel struct {
	Table *schedapi.Table
	cpus  []schedapi.CPU // kept sorted by Index ascending
}

// New builds a Kernel over table, iterating cpus in ascending Index order
// for Tick (spec.md §8 property 6).
func New(table *schedapi.Table, cpus []schedapi.CPU) *Kernel {
	sorted := append([]schedapi.CPU(nil), cpus...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index() < sorted[j].Index() })
	return &Kernel{Table: table, cpus: sorted}
}

// resolve returns the instance a thread is currently bound to, asserting
// that one exists: calling any op before a thread has been bound via Set is
// a precondition violation.
func resolve(thread schedapi.Thread) *schedapi.Instance {
	inst := thread.Instance()
	diag.Assert(inst != nil, "thread %v has no bound scheduler instance", thread)
	return inst
}

// Schedule performs the general scheduling decision for thread: spec.md §4.1.
func (k *Kernel) Schedule(thread schedapi.Thread) {
	inst := resolve(thread)
	inst.Ops.Schedule(inst, thread)
}

// Yield voluntarily transfers the processor away from thread.
func (k *Kernel) Yield(thread schedapi.Thread) {
	inst := resolve(thread)
	inst.Ops.Yield(inst, thread)
}

// Block removes thread from scheduling consideration.
func (k *Kernel) Block(thread schedapi.Thread) {
	inst := resolve(thread)
	inst.Ops.Block(inst, thread)
}

// Unblock adds thread back into scheduling consideration; prepend places it
// at the head of its priority group's FIFO order instead of the tail.
func (k *Kernel) Unblock(thread schedapi.Thread, prepend bool) {
	inst := resolve(thread)
	inst.Ops.Unblock(inst, thread, prepend)
}

// ChangePriority propagates a priority change of a Ready (or Scheduled)
// thread to the scheduler. The caller must ensure newPriority differs from
// the thread's current priority (spec.md §4.1).
func (k *Kernel) ChangePriority(thread schedapi.Thread, newPriority priority.Priority, prepend bool) {
	inst := resolve(thread)
	inst.Ops.ChangePriority(inst, thread, newPriority, prepend)
	thread.SetCurrentPriority(newPriority)
}

// UpdatePriority updates the scheduler's record of a not-ready thread's
// priority.
func (k *Kernel) UpdatePriority(thread schedapi.Thread, newPriority priority.Priority) {
	inst := resolve(thread)
	inst.Ops.UpdatePriority(inst, thread, newPriority)
	thread.SetCurrentPriority(newPriority)
}

// ReleaseJob informs the scheduler of a new job release (used by EDF to
// recompute a deadline-derived priority); length is the job's period, in
// scheduler-defined time units.
func (k *Kernel) ReleaseJob(thread schedapi.Thread, length uint64) {
	inst := resolve(thread)
	inst.Ops.ReleaseJob(inst, thread, length)
}

// StartIdle binds thread to inst as the initial idle thread for cpu.
func (k *Kernel) StartIdle(inst *schedapi.Instance, thread schedapi.Thread, cpu schedapi.CPU) {
	inst.Ops.StartIdle(inst, thread, cpu)
}

// Tick visits every processor exactly once, in ascending index order
// (spec.md §8 property 6); for each processor with a bound scheduler and an
// executing thread, it invokes that scheduler's Tick.
func (k *Kernel) Tick() {
	for _, cpu := range k.cpus {
		inst := cpu.Instance()
		if inst == nil {
			continue
		}
		exec := cpu.Executing()
		if exec == nil {
			continue
		}
		inst.Ops.Tick(inst, exec)
	}
}

// Set re-binds thread to a different scheduler instance. Ordering is
// non-negotiable (spec.md §4.1): mark migrating, destroy the old node,
// rebind, initialize the new node, re-install the current priority, clear
// migrating.
func (k *Kernel) Set(target *schedapi.Instance, thread schedapi.Thread) {
	current := thread.Instance()
	if current == target {
		return
	}

	thread.SetMigrating(true)

	if current != nil {
		node := thread.SchedulerNode()
		current.Ops.NodeDestroy(current, node)
	}

	thread.SetInstance(target)

	node := target.Ops.NodeInitialize(target, thread)
	thread.SetSchedulerNode(node)

	k.UpdatePriority(thread, thread.CurrentPriority())

	thread.SetMigrating(false)
}

// GetAffinity reports, in set, every processor owned by thread's scheduler.
// It returns false if the scheduler's Ops does not implement
// schedapi.SMPOps.
func (k *Kernel) GetAffinity(thread schedapi.Thread, set *schedapi.CPUSet) bool {
	inst := resolve(thread)
	ops, ok := inst.SMPOps()
	if !ok {
		return false
	}
	return ops.GetAffinity(inst, thread, set)
}

// SetAffinity requests that thread's scheduler restrict it to set. It
// returns false if the scheduler does not support affinity queries, or if
// the request is rejected (spec.md §4.6, §7).
func (k *Kernel) SetAffinity(thread schedapi.Thread, set schedapi.CPUSet) bool {
	inst := resolve(thread)
	ops, ok := inst.SMPOps()
	if !ok {
		return false
	}
	return ops.SetAffinity(inst, thread, set)
}

// Compare routes a priority comparison through thread's scheduler's own
// comparator; raw Priority values must never be compared directly (spec.md
// §9 Design Notes).
func (k *Kernel) Compare(thread schedapi.Thread, p1, p2 priority.Priority) int {
	inst := resolve(thread)
	return inst.Ops.PriorityCompare(p1, p2)
}

// IsHigher reports whether p1 is strictly higher priority than p2 under
// thread's scheduler.
func (k *Kernel) IsHigher(thread schedapi.Thread, p1, p2 priority.Priority) bool {
	return k.Compare(thread, p1, p2) > 0
}

// IsLower reports whether p1 is strictly lower priority than p2 under
// thread's scheduler.
func (k *Kernel) IsLower(thread schedapi.Thread, p1, p2 priority.Priority) bool {
	return k.Compare(thread, p1, p2) < 0
}

// HighestOfTwo returns whichever of p1, p2 is higher priority under
// thread's scheduler, preferring p1 on a tie.
func (k *Kernel) HighestOfTwo(thread schedapi.Thread, p1, p2 priority.Priority) priority.Priority {
	if k.IsHigher(thread, p2, p1) {
		return p2
	}
	return p1
}

// SetIfHigher sets thread's priority to newPriority only if it is strictly
// higher than the thread's current priority.
func (k *Kernel) SetIfHigher(thread schedapi.Thread, newPriority priority.Priority) {
	if k.IsHigher(thread, newPriority, thread.CurrentPriority()) {
		thread.SetCurrentPriority(newPriority)
	}
}

// ChangeIfHigher propagates newPriority to the scheduler (as ChangePriority
// would) only if it is strictly higher than the thread's current priority.
func (k *Kernel) ChangeIfHigher(thread schedapi.Thread, newPriority priority.Priority, prepend bool) {
	if k.IsHigher(thread, newPriority, thread.CurrentPriority()) {
		k.ChangePriority(thread, newPriority, prepend)
	}
}
