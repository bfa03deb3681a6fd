// Package edf implements the earliest-deadline-first scheduling policy
// (spec.md §4.4): a red-black tree ready set keyed by a deadline-derived
// priority, giving O(log n) insert/extract. The leftmost (heir) pick is
// O(log n) as well: the tree keeps no cached minimum, so each pick walks
// down from the root.
package edf

import (
	"github.com/esoule/rtems/diag"
	"github.com/esoule/rtems/priority"
	"github.com/esoule/rtems/schedapi"
)

// Policy is the earliest-deadline-first scheduling policy. It carries no
// configuration of its own: unlike uniprocessor's fixed level count, the
// ready tree has no fixed size.
type Policy struct{}

// New returns an EDF policy.
func New() *Policy { return &Policy{} }

// NewContext returns a fresh, empty ready tree to be installed as an
// Instance's Context.
func (p *Policy) NewContext() schedapi.Context { return newContext() }

func ctxOf(inst *schedapi.Instance) *context {
	c, ok := inst.Context.(*context)
	diag.Assert(ok, "edf: instance %q has no *context installed", inst.Name)
	return c
}

func nodeOf(n schedapi.Node) *node {
	nn, ok := n.(*node)
	diag.Assert(ok, "edf: node %v does not belong to this policy", n)
	return nn
}

// setHeir installs candidate as cpu's heir and raises dispatch_necessary iff
// it differs from the processor's current heir and either force is set or
// the processor's currently executing thread is preemptible (mirrors
// uniprocessor.setHeir; schedulerimpl.h's _Scheduler_Update_heir gates on
// `force_dispatch || executing->is_preemptible`).
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
// ready tree is empty. force mirrors _Scheduler_Generic_block's call to its
// schedule hook with force_dispatch = true: Block always forces dispatch of
// whatever is now chosen, since the previously executing thread is gone
// regardless of its own preemptibility; every other caller passes false.
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

// Schedule re-evaluates this instance's heir from the current ready tree,
// the same single-processor reconciliation uniprocessor.Policy.Schedule
// performs.
func (p *Policy) Schedule(inst *schedapi.Instance, thread schedapi.Thread) {
	ctxOf(inst).updateHeir(false)
}

// NodeInitialize allocates and returns a new Blocked node for thread, with
// its deadline key seeded from the thread's current priority.
func (p *Policy) NodeInitialize(inst *schedapi.Instance, thread schedapi.Thread) schedapi.Node {
	return &node{owner: thread, state: schedapi.NodeBlocked, priority: thread.CurrentPriority()}
}

// NodeDestroy releases n, which must be Blocked.
func (p *Policy) NodeDestroy(inst *schedapi.Instance, n schedapi.Node) {
	nn := nodeOf(n)
	diag.Assert(nn.state == schedapi.NodeBlocked, "edf: destroying non-Blocked node for %v", nn.owner)
}

// PriorityCompare implements the same "smaller number is higher priority"
// convention as every other policy in this module (priority.Default). The
// tree's own less() function (context.go) consumes this convention
// directly rather than through an explicit sign flip at each comparison,
// which is the same correction scheduleredf.c performs once, inline in
// its own RBTree_Compare shim, to reconcile the library's ascending-order
// contract with the deadline field's "smaller is more urgent" sense.
func (p *Policy) PriorityCompare(p1, p2 priority.Priority) int {
	return priority.Default(p1, p2)
}

// StartIdle binds cpu to this instance and installs thread as both the
// initial executing thread and heir.
func (p *Policy) StartIdle(inst *schedapi.Instance, thread schedapi.Thread, cpu schedapi.CPU) {
	c := ctxOf(inst)
	c.cpu = cpu
	c.idle = thread
	cpu.SetInstance(inst)
	cpu.SetExecuting(thread)
	cpu.SetHeir(thread)
}

// Unblock inserts thread's node into the ready tree and re-evaluates the
// processor's heir. prepend places it ahead of any existing peer sharing
// its deadline key instead of behind them (spec.md §4.1).
func (p *Policy) Unblock(inst *schedapi.Instance, thread schedapi.Thread, prepend bool) {
	c := ctxOf(inst)
	n := nodeOf(thread.SchedulerNode())
	diag.Assert(n.state == schedapi.NodeBlocked, "edf: unblocking non-Blocked node for %v", thread)
	n.state = schedapi.NodeReady
	c.insert(n, prepend)
	c.updateHeir(false)
}

// Block removes thread's node from the ready tree and re-evaluates the
// processor's heir, falling back to the idle thread if the tree is empty.
// force_dispatch is always set here: the thread that was executing is gone
// regardless of whether it was preemptible.
func (p *Policy) Block(inst *schedapi.Instance, thread schedapi.Thread) {
	c := ctxOf(inst)
	n := nodeOf(thread.SchedulerNode())
	diag.Assert(n.state == schedapi.NodeReady, "edf: blocking non-Ready node for %v", thread)
	c.extract(n)
	n.state = schedapi.NodeBlocked
	c.updateHeir(true)
}

// Yield re-inserts thread's node under a fresh arrival sequence number, so
// a peer with an identical deadline key now sorts ahead of it, and
// re-evaluates the heir.
func (p *Policy) Yield(inst *schedapi.Instance, thread schedapi.Thread) {
	c := ctxOf(inst)
	n := nodeOf(thread.SchedulerNode())
	diag.Assert(n.state == schedapi.NodeReady, "edf: yielding non-Ready node for %v", thread)
	c.extract(n)
	c.insert(n, false)
	c.updateHeir(false)
}

// ChangePriority re-homes thread's node under newPriority's deadline key
// and re-evaluates the heir. prepend places it ahead of any existing peer
// sharing newPriority instead of behind them (spec.md §4.5 "Change
// priority: ... else symmetric on ready").
func (p *Policy) ChangePriority(inst *schedapi.Instance, thread schedapi.Thread, newPriority priority.Priority, prepend bool) {
	c := ctxOf(inst)
	n := nodeOf(thread.SchedulerNode())
	diag.Assert(n.state == schedapi.NodeReady, "edf: changing priority of non-Ready node for %v", thread)
	c.extract(n)
	n.priority = newPriority
	c.insert(n, prepend)
	c.updateHeir(false)
}

// UpdatePriority updates the deadline key recorded on a node that is not
// currently Ready; there is no tree linkage to re-order.
func (p *Policy) UpdatePriority(inst *schedapi.Instance, thread schedapi.Thread, newPriority priority.Priority) {
	n := nodeOf(thread.SchedulerNode())
	n.priority = newPriority
}

// ReleaseJob adjusts thread's deadline key by length (its next job's
// relative deadline, in scheduler-defined time units) and, if the node is
// currently Ready, re-inserts it so the tree reflects the new key
// (spec.md §4.4).
func (p *Policy) ReleaseJob(inst *schedapi.Instance, thread schedapi.Thread, length uint64) {
	n := nodeOf(thread.SchedulerNode())
	newPriority := n.priority + priority.Priority(length)
	n.priority = newPriority
	thread.SetCurrentPriority(newPriority)
	if n.state != schedapi.NodeReady {
		return
	}
	c := ctxOf(inst)
	c.extract(n)
	c.insert(n, false)
	c.updateHeir(false)
}

// Tick is a no-op: this policy enforces deadlines via ReleaseJob, not
// time-slice accounting.
func (p *Policy) Tick(inst *schedapi.Instance, thread schedapi.Thread) {}

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
// single processor.
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
