// Package uniprocessor implements the fixed-priority scheduling policy
// (spec.md §4.3): a fixed array of FIFO chains indexed by priority level
// plus an occupancy bitmap, giving O(1) enqueue, dequeue, and
// highest-priority lookup. This is the policy a single-processor
// configuration's one Instance runs, and it never promotes a node to
// schedapi.NodeScheduled: only Blocked and Ready are used (see node.go).
package uniprocessor

import (
	"github.com/esoule/rtems/diag"
	"github.com/esoule/rtems/priority"
	"github.com/esoule/rtems/schedapi"
)

// Policy configures one uniprocessor instance's fixed-priority scheduling:
// the number of distinct priority levels its bitmap and chain array cover.
type Policy struct {
	Levels int
}

// New returns a Policy with the given number of priority levels, where
// level 0 is the highest priority under priority.Default's convention.
func New(levels int) *Policy {
	return &Policy{Levels: levels}
}

// NewContext returns a fresh, empty ready structure sized for p, to be
// installed as an Instance's Context.
func (p *Policy) NewContext() schedapi.Context {
	return newContext(p.Levels)
}

func ctxOf(inst *schedapi.Instance) *context {
	c, ok := inst.Context.(*context)
	diag.Assert(ok, "uniprocessor: instance %q has no *context installed", inst.Name)
	return c
}

// nodeOf downcasts a schedapi.Node back to this policy's concrete type,
// mirroring the source's void*-to-struct-pointer downcast through a node's
// embedded Scheduler_Node header.
func nodeOf(n schedapi.Node) *node {
	nn, ok := n.(*node)
	diag.Assert(ok, "uniprocessor: node %v does not belong to this policy", n)
	return nn
}

// setHeir installs candidate as cpu's heir and raises dispatch_necessary iff
// it differs from the processor's current heir and either force is set or
// the processor's currently executing thread is preemptible (spec.md §4.4,
// §8 property 1; schedulerimpl.h's _Scheduler_Update_heir gates on
// `force_dispatch || executing->is_preemptible` in exactly this shape).
func setHeir(cpu schedapi.CPU, candidate schedapi.Thread, force bool) {
	if cpu.Heir() == candidate {
		return
	}
	cpu.SetHeir(candidate)
	if force || cpu.Executing().IsPreemptible() {
		cpu.SetDispatchNecessary(true)
	}
}

// updateHeir recomputes and installs the heir for c's bound processor from
// the current highest-ready node, falling back to the idle thread when the
// ready set is empty. force mirrors _Scheduler_Generic_block's call to its
// schedule hook with force_dispatch = true: a Block always forces dispatch
// of whatever is now chosen, since the previously executing thread is gone
// regardless of its own preemptibility; every other caller passes false,
// leaving dispatch gated on the executing thread's preemptibility.
func (c *context) updateHeir(force bool) {
	if c.cpu == nil {
		return
	}
	if n := c.highestReady(); n != nil {
		setHeir(c.cpu, n.owner, force)
		return
	}
	setHeir(c.cpu, c.idle, force)
}

// Schedule re-evaluates this instance's heir from the current ready set.
// thread is the op's formal argument (mirroring the source's
// _Scheduler_Schedule(the_thread)), but a uniprocessor instance has one
// processor and one heir shared by every thread bound to it, so the result
// does not otherwise depend on which thread triggered the call.
func (p *Policy) Schedule(inst *schedapi.Instance, thread schedapi.Thread) {
	ctxOf(inst).updateHeir(false)
}

// NodeInitialize allocates and returns a new Blocked node for thread.
func (p *Policy) NodeInitialize(inst *schedapi.Instance, thread schedapi.Thread) schedapi.Node {
	return &node{owner: thread, state: schedapi.NodeBlocked, priority: thread.CurrentPriority()}
}

// NodeDestroy releases n. n must be Blocked (spec.md §3 invariant: a node
// may only be destroyed once it carries no ready/scheduled linkage).
func (p *Policy) NodeDestroy(inst *schedapi.Instance, n schedapi.Node) {
	nn := nodeOf(n)
	diag.Assert(nn.state == schedapi.NodeBlocked, "uniprocessor: destroying non-Blocked node for %v", nn.owner)
}

// PriorityCompare implements this policy's total order: lower numeric
// values are higher priority (priority.Default's convention), which the
// bitmap's lowest-occupied-level scan in context.highestOccupiedLevel
// depends on directly.
func (p *Policy) PriorityCompare(p1, p2 priority.Priority) int {
	return priority.Default(p1, p2)
}

// StartIdle binds cpu to this instance and installs thread as both the
// initial executing thread and heir, with no dispatch required yet.
func (p *Policy) StartIdle(inst *schedapi.Instance, thread schedapi.Thread, cpu schedapi.CPU) {
	c := ctxOf(inst)
	c.cpu = cpu
	c.idle = thread
	cpu.SetInstance(inst)
	cpu.SetExecuting(thread)
	cpu.SetHeir(thread)
}

// Unblock inserts thread's node into the ready set and re-evaluates the
// processor's heir (spec.md §8 scenario S1).
func (p *Policy) Unblock(inst *schedapi.Instance, thread schedapi.Thread, prepend bool) {
	c := ctxOf(inst)
	n := nodeOf(thread.SchedulerNode())
	diag.Assert(n.state == schedapi.NodeBlocked, "uniprocessor: unblocking non-Blocked node for %v", thread)
	n.state = schedapi.NodeReady
	c.insert(n, prepend)
	c.updateHeir(false)
}

// Block removes thread's node from the ready set and re-evaluates the
// processor's heir, falling back to the idle thread if nothing remains
// ready. force_dispatch is always set here: the thread that was executing
// is gone regardless of whether it was preemptible.
func (p *Policy) Block(inst *schedapi.Instance, thread schedapi.Thread) {
	c := ctxOf(inst)
	n := nodeOf(thread.SchedulerNode())
	diag.Assert(n.state == schedapi.NodeReady, "uniprocessor: blocking non-Ready node for %v", thread)
	c.extract(n)
	n.state = schedapi.NodeBlocked
	c.updateHeir(true)
}

// Yield moves thread's node to the tail of its priority level's FIFO and
// re-evaluates the heir (spec.md §8 scenario S2).
func (p *Policy) Yield(inst *schedapi.Instance, thread schedapi.Thread) {
	c := ctxOf(inst)
	n := nodeOf(thread.SchedulerNode())
	diag.Assert(n.state == schedapi.NodeReady, "uniprocessor: yielding non-Ready node for %v", thread)
	c.extract(n)
	c.insert(n, false)
	c.updateHeir(false)
}

// ChangePriority re-homes thread's node to newPriority's chain, placing it
// at the head if prepend, and re-evaluates the heir.
func (p *Policy) ChangePriority(inst *schedapi.Instance, thread schedapi.Thread, newPriority priority.Priority, prepend bool) {
	c := ctxOf(inst)
	n := nodeOf(thread.SchedulerNode())
	diag.Assert(n.state == schedapi.NodeReady, "uniprocessor: changing priority of non-Ready node for %v", thread)
	c.extract(n)
	n.priority = newPriority
	c.insert(n, prepend)
	c.updateHeir(false)
}

// UpdatePriority updates the priority recorded on a node that is not
// currently Ready; there is no ready structure to re-order.
func (p *Policy) UpdatePriority(inst *schedapi.Instance, thread schedapi.Thread, newPriority priority.Priority) {
	n := nodeOf(thread.SchedulerNode())
	n.priority = newPriority
}

// ReleaseJob is a no-op for this fixed-priority policy: job releases only
// affect deadline-derived priorities, which belong to the edf policy.
func (p *Policy) ReleaseJob(inst *schedapi.Instance, thread schedapi.Thread, length uint64) {
}

// TimeSliced is an optional capability a Thread may implement to receive
// time-slice accounting from Tick; this policy has no opinion on quantum
// length, only on what happens once a thread's slice is exhausted.
type TimeSliced interface {
	// TickConsumeTimeslice decrements the thread's remaining timeslice by
	// one tick and reports whether it has just been exhausted.
	TickConsumeTimeslice() bool
}

// Tick charges thread's current tick against its timeslice (if it
// implements TimeSliced) and yields it once exhausted, so equal-priority
// round-robin happens without this policy needing its own timer state.
func (p *Policy) Tick(inst *schedapi.Instance, thread schedapi.Thread) {
	ts, ok := thread.(TimeSliced)
	if !ok {
		return
	}
	if ts.TickConsumeTimeslice() {
		p.Yield(inst, thread)
	}
}

// GetAffinity reports the single implicit processor this instance owns.
func (p *Policy) GetAffinity(inst *schedapi.Instance, thread schedapi.Thread, set *schedapi.CPUSet) bool {
	c := ctxOf(inst)
	set.Clear()
	if c.cpu != nil {
		set.Set(c.cpu.Index())
	}
	return true
}

// SetAffinity accepts only a request that still includes this instance's
// single processor; anything else is rejected (spec.md §4.6, §7), since a
// uniprocessor policy has no other processor to reassign thread to.
func (p *Policy) SetAffinity(inst *schedapi.Instance, thread schedapi.Thread, set schedapi.CPUSet) bool {
	c := ctxOf(inst)
	if c.cpu == nil {
		return false
	}
	return set.IsSet(c.cpu.Index())
}

var (
	_ schedapi.Ops    = (*Policy)(nil)
	_ schedapi.SMPOps = (*Policy)(nil)
)
