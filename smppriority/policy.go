package smppriority

import (
	"github.com/esoule/rtems/diag"
	"github.com/esoule/rtems/priority"
	"github.com/esoule/rtems/schedapi"
	"github.com/esoule/rtems/smp"
)

// Policy is the concrete global fixed-priority SMP policy.
type Policy struct {
	Levels int
}

// New returns a Policy with the given number of priority levels.
func New(levels int) *Policy { return &Policy{Levels: levels} }

// NewContext returns a fresh, empty ready/scheduled structure to be
// installed as an Instance's Context.
func (p *Policy) NewContext() schedapi.Context {
	ctx := newContext(p.Levels)
	ctx.Context = smp.NewContext(order)
	return ctx
}

func ctxOf(inst *schedapi.Instance) *context {
	c, ok := inst.Context.(*context)
	diag.Assert(ok, "smppriority: instance %q has no *context installed", inst.Name)
	return c
}

func nodeOf(n schedapi.Node) *node {
	nn, ok := n.(*node)
	diag.Assert(ok, "smppriority: node %v does not belong to this policy", n)
	return nn
}

func order(a, b smp.Node) bool {
	an, bn := a.(*node), b.(*node)
	if an.priority != bn.priority {
		return an.priority < bn.priority
	}
	return an.sequence < bn.sequence
}

// Order implements smp.Hooks.
func (p *Policy) Order(a, b smp.Node) bool { return order(a, b) }

// InsertReady implements smp.Hooks.
func (p *Policy) InsertReady(ctx schedapi.Context, n smp.Node) {
	c := ctx.(*context)
	c.insertReady(n.(*node))
}

// ExtractFromReady implements smp.Hooks.
func (p *Policy) ExtractFromReady(ctx schedapi.Context, n smp.Node) {
	c := ctx.(*context)
	c.extractReady(n.(*node))
}

// GetHighestReady implements smp.Hooks.
func (p *Policy) GetHighestReady(ctx schedapi.Context) smp.Node {
	c := ctx.(*context)
	n := c.highestReady()
	if n == nil {
		return nil
	}
	return n
}

// PrepareReinsert implements smp.Hooks: stamps a fresh sequence number so
// the node sorts after (append/FIFO) or before (prepend/LIFO-at-the-tie)
// every other node currently sharing its priority.
func (p *Policy) PrepareReinsert(n smp.Node, prepend bool) {
	nn := n.(*node)
	if prepend {
		nn.sequence = nextPrependSequence()
	} else {
		nn.sequence = nextAppendSequence()
	}
}

// Schedule re-evaluates the heir of whichever processor currently hosts
// thread's node. A node that is Ready or Blocked owns no processor, so
// there is nothing to recompute for it.
func (p *Policy) Schedule(inst *schedapi.Instance, thread schedapi.Thread) {
	n := nodeOf(thread.SchedulerNode())
	if n.state != schedapi.NodeScheduled || n.cpu == nil {
		return
	}
	smp.UpdateHeir(n.cpu, n.owner, nil)
}

// NodeInitialize allocates and returns a new Blocked node for thread.
func (p *Policy) NodeInitialize(inst *schedapi.Instance, thread schedapi.Thread) schedapi.Node {
	return &node{owner: thread, state: schedapi.NodeBlocked, priority: thread.CurrentPriority(), sequence: nextAppendSequence()}
}

// NodeDestroy releases n, which must be Blocked.
func (p *Policy) NodeDestroy(inst *schedapi.Instance, n schedapi.Node) {
	nn := nodeOf(n)
	diag.Assert(nn.state == schedapi.NodeBlocked, "smppriority: destroying non-Blocked node for %v", nn.owner)
}

// PriorityCompare implements the "smaller number is higher priority"
// convention shared by every policy in this module.
func (p *Policy) PriorityCompare(p1, p2 priority.Priority) int {
	return priority.Default(p1, p2)
}

// StartIdle binds cpu to this instance, installs thread as both its
// initial executing thread and heir, and registers thread as the idle
// fallback for cpu, inserting its node directly into the Scheduled chain
// (spec.md §8 scenario S3's starting condition: idles begin Scheduled).
func (p *Policy) StartIdle(inst *schedapi.Instance, thread schedapi.Thread, cpu schedapi.CPU) {
	c := ctxOf(inst)
	n := nodeOf(thread.SchedulerNode())
	n.state = schedapi.NodeScheduled
	n.cpu = cpu
	c.Context.InsertScheduled(n)
	c.Context.RegisterIdle(cpu, thread)
	cpu.SetInstance(inst)
	cpu.SetExecuting(thread)
	cpu.SetHeir(thread)
}

// Unblock enqueues thread's node (spec.md §4.5 Enqueue template).
func (p *Policy) Unblock(inst *schedapi.Instance, thread schedapi.Thread, prepend bool) {
	c := ctxOf(inst)
	n := nodeOf(thread.SchedulerNode())
	diag.Assert(n.state == schedapi.NodeBlocked, "smppriority: unblocking non-Blocked node for %v", thread)
	p.PrepareReinsert(n, prepend)
	smp.Enqueue(c.Context, p, c, n, nil)
}

// Block removes thread's node from whichever structure holds it and, if
// it was Scheduled, promotes the highest ready node (or the idle
// fallback) onto the freed processor.
func (p *Policy) Block(inst *schedapi.Instance, thread schedapi.Thread) {
	c := ctxOf(inst)
	n := nodeOf(thread.SchedulerNode())
	diag.Assert(n.state != schedapi.NodeBlocked, "smppriority: blocking already-Blocked node for %v", thread)
	smp.Block(c.Context, p, c, n, nil)
}

// Yield reinserts thread's node in place under a fresh sequence number.
func (p *Policy) Yield(inst *schedapi.Instance, thread schedapi.Thread) {
	c := ctxOf(inst)
	n := nodeOf(thread.SchedulerNode())
	smp.Yield(c.Context, p, c, n, nil)
}

// ChangePriority installs newPriority and reinserts thread's node under
// the updated key.
func (p *Policy) ChangePriority(inst *schedapi.Instance, thread schedapi.Thread, newPriority priority.Priority, prepend bool) {
	c := ctxOf(inst)
	n := nodeOf(thread.SchedulerNode())
	n.priority = newPriority
	smp.ChangePriority(c.Context, p, c, n, prepend, nil)
}

// UpdatePriority updates the priority recorded on a node that is not
// currently Ready or Scheduled; there is no linkage to re-order.
func (p *Policy) UpdatePriority(inst *schedapi.Instance, thread schedapi.Thread, newPriority priority.Priority) {
	n := nodeOf(thread.SchedulerNode())
	n.priority = newPriority
}

// ReleaseJob is a no-op for this fixed-priority policy.
func (p *Policy) ReleaseJob(inst *schedapi.Instance, thread schedapi.Thread, length uint64) {}

// Tick is a no-op: time-slicing is left to a concrete deployment's own
// accounting, exactly as uniprocessor's optional TimeSliced capability,
// omitted here since no spec scenario exercises SMP round-robin.
func (p *Policy) Tick(inst *schedapi.Instance, thread schedapi.Thread) {}

// GetAffinity reports every processor inst owns (spec.md §4.6).
func (p *Policy) GetAffinity(inst *schedapi.Instance, thread schedapi.Thread, set *schedapi.CPUSet) bool {
	return smp.GetAffinity(inst, set)
}

// SetAffinity accepts a request iff it still includes every processor
// inst owns (spec.md §4.6).
func (p *Policy) SetAffinity(inst *schedapi.Instance, thread schedapi.Thread, set schedapi.CPUSet) bool {
	return smp.SetAffinity(inst, set)
}

var (
	_ schedapi.Ops    = (*Policy)(nil)
	_ schedapi.SMPOps = (*Policy)(nil)
	_ smp.Hooks       = (*Policy)(nil)
)
