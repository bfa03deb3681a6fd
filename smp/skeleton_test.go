package smp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esoule/rtems/priority"
	"github.com/esoule/rtems/schedapi"
	"github.com/esoule/rtems/schedapi/schedapitest"
	"github.com/esoule/rtems/smp"
)

// fakeNode and fakeReady below are a minimal, test-only Hooks
// implementation exercising the generic smp templates directly, without
// committing to any one concrete ready-structure shape (that is
// smppriority's job).
type fakeNode struct {
	owner    schedapi.Thread
	state    schedapi.NodeState
	priority priority.Priority
	sequence int

	cpu        schedapi.CPU
	next, prev smp.Node
}

func (n *fakeNode) Owner() schedapi.Thread          { return n.owner }
func (n *fakeNode) State() schedapi.NodeState       { return n.state }
func (n *fakeNode) SetState(s schedapi.NodeState)   { n.state = s }
func (n *fakeNode) Priority() priority.Priority     { return n.priority }
func (n *fakeNode) SetPriority(p priority.Priority) { n.priority = p }
func (n *fakeNode) CPU() schedapi.CPU               { return n.cpu }
func (n *fakeNode) SetCPU(c schedapi.CPU)           { n.cpu = c }
func (n *fakeNode) Next() smp.Node                  { return n.next }
func (n *fakeNode) SetNext(v smp.Node)              { n.next = v }
func (n *fakeNode) Prev() smp.Node                  { return n.prev }
func (n *fakeNode) SetPrev(v smp.Node)              { n.prev = v }

var _ smp.Node = (*fakeNode)(nil)

// fakeReady is an unordered slice scanned linearly; it stands in for
// whatever ordered structure a real policy would use.
type fakeReady struct {
	nodes []*fakeNode
}

type fakeHooks struct {
	seq int
}

func order(a, b smp.Node) bool {
	an, bn := a.(*fakeNode), b.(*fakeNode)
	if an.priority != bn.priority {
		return an.priority < bn.priority
	}
	return an.sequence < bn.sequence
}

func (h *fakeHooks) Order(a, b smp.Node) bool { return order(a, b) }

func (h *fakeHooks) InsertReady(ctx schedapi.Context, n smp.Node) {
	r := ctx.(*fakeReady)
	r.nodes = append(r.nodes, n.(*fakeNode))
}

func (h *fakeHooks) ExtractFromReady(ctx schedapi.Context, n smp.Node) {
	r := ctx.(*fakeReady)
	for i, cur := range r.nodes {
		if cur == n {
			r.nodes = append(r.nodes[:i], r.nodes[i+1:]...)
			return
		}
	}
}

func (h *fakeHooks) GetHighestReady(ctx schedapi.Context) smp.Node {
	r := ctx.(*fakeReady)
	if len(r.nodes) == 0 {
		return nil
	}
	best := r.nodes[0]
	for _, n := range r.nodes[1:] {
		if order(n, best) {
			best = n
		}
	}
	return best
}

func (h *fakeHooks) PrepareReinsert(n smp.Node, prepend bool) {
	h.seq++
	n.(*fakeNode).sequence = h.seq
}

func newIdleNode(owner schedapi.Thread, cpu schedapi.CPU) *fakeNode {
	return &fakeNode{owner: owner, state: schedapi.NodeScheduled, priority: 1 << 30, cpu: cpu}
}

// TestScenario_S3_SMPEnqueuePromotion mirrors spec.md §8 S3: two idles
// are Scheduled on two CPUs; unblocking a higher-priority thread displaces
// the lower-ranked of the two idles.
func TestScenario_S3_SMPEnqueuePromotion(t *testing.T) {
	smpCtx := smp.NewContext(order)
	ready := &fakeReady{}
	hooks := &fakeHooks{}

	cpu0 := schedapitest.NewCPU(0)
	cpu1 := schedapitest.NewCPU(1)

	idleI := schedapitest.NewThread("I", 5)
	idleJ := schedapitest.NewThread("J", 5)
	nodeI := newIdleNode(idleI, cpu0)
	nodeJ := newIdleNode(idleJ, cpu1)
	nodeI.sequence = 1 // arrived second; tie-break makes I the lowest-ranked (tail)

	smpCtx.InsertScheduled(nodeI)
	smpCtx.InsertScheduled(nodeJ)
	smpCtx.RegisterIdle(cpu0, idleI)
	smpCtx.RegisterIdle(cpu1, idleJ)
	cpu0.SetHeir(idleI)
	cpu1.SetHeir(idleJ)

	a := schedapitest.NewThread("A", 1)
	nodeA := &fakeNode{owner: a, state: schedapi.NodeBlocked, priority: 1}

	smp.Enqueue(smpCtx, hooks, ready, nodeA, cpu0)

	assert.Equal(t, schedapi.NodeScheduled, nodeA.State())
	require.Len(t, ready.nodes, 1, "the displaced idle must now be the sole ready node")
	assert.Equal(t, schedapi.NodeReady, ready.nodes[0].State())
	assert.Equal(t, idleI, ready.nodes[0].owner)
	assert.Equal(t, cpu0, nodeA.CPU())
	assert.Equal(t, schedapi.Thread(a), cpu0.Heir())
	assert.True(t, cpu0.DispatchNecessary())
}

// TestScenario_S4_SMPEnqueueNotPromoted mirrors spec.md §8 S4: both CPUs
// already hold higher-priority threads than the arriving one, so it joins
// the ready structure without disturbing either heir.
func TestScenario_S4_SMPEnqueueNotPromoted(t *testing.T) {
	smpCtx := smp.NewContext(order)
	ready := &fakeReady{}
	hooks := &fakeHooks{}

	cpu0 := schedapitest.NewCPU(0)
	cpu1 := schedapitest.NewCPU(1)

	a := schedapitest.NewThread("A", 1)
	b := schedapitest.NewThread("B", 2)
	nodeA := &fakeNode{owner: a, state: schedapi.NodeScheduled, priority: 1, cpu: cpu0}
	nodeB := &fakeNode{owner: b, state: schedapi.NodeScheduled, priority: 2, cpu: cpu1, sequence: 1}
	smpCtx.InsertScheduled(nodeA)
	smpCtx.InsertScheduled(nodeB)
	cpu0.SetHeir(a)
	cpu1.SetHeir(b)
	cpu0.SetDispatchNecessary(false)
	cpu1.SetDispatchNecessary(false)

	c := schedapitest.NewThread("C", 3)
	nodeC := &fakeNode{owner: c, state: schedapi.NodeBlocked, priority: 3}

	smp.Enqueue(smpCtx, hooks, ready, nodeC, cpu0)

	assert.Equal(t, schedapi.NodeReady, nodeC.State())
	require.Len(t, ready.nodes, 1)
	assert.Same(t, nodeC, ready.nodes[0])
	assert.Equal(t, schedapi.Thread(a), cpu0.Heir())
	assert.Equal(t, schedapi.Thread(b), cpu1.Heir())
	assert.False(t, cpu0.DispatchNecessary())
	assert.False(t, cpu1.DispatchNecessary())
}

// TestScenario_S5_BlockOfLowestScheduled continues S3: blocking the
// promoted thread returns the displaced idle to Scheduled and restores
// its CPU's heir.
func TestScenario_S5_BlockOfLowestScheduled(t *testing.T) {
	smpCtx := smp.NewContext(order)
	ready := &fakeReady{}
	hooks := &fakeHooks{}

	cpu0 := schedapitest.NewCPU(0)
	cpu1 := schedapitest.NewCPU(1)
	idleI := schedapitest.NewThread("I", 5)
	idleJ := schedapitest.NewThread("J", 5)
	nodeI := newIdleNode(idleI, cpu0)
	nodeJ := newIdleNode(idleJ, cpu1)
	nodeI.sequence = 1
	smpCtx.InsertScheduled(nodeI)
	smpCtx.InsertScheduled(nodeJ)
	smpCtx.RegisterIdle(cpu0, idleI)
	smpCtx.RegisterIdle(cpu1, idleJ)
	cpu0.SetHeir(idleI)
	cpu1.SetHeir(idleJ)

	a := schedapitest.NewThread("A", 1)
	nodeA := &fakeNode{owner: a, state: schedapi.NodeBlocked, priority: 1}
	smp.Enqueue(smpCtx, hooks, ready, nodeA, cpu0)
	require.Equal(t, schedapi.Thread(a), cpu0.Heir())
	cpu0.SetDispatchNecessary(false)

	smp.Block(smpCtx, hooks, ready, nodeA, cpu0)

	assert.Equal(t, schedapi.NodeBlocked, nodeA.State())
	assert.Empty(t, ready.nodes, "the idle must have returned to Scheduled, not stayed Ready")
	assert.Equal(t, schedapi.Thread(idleI), cpu0.Heir())
	assert.True(t, cpu0.DispatchNecessary())
}

func TestChangePriority_ReinsertsReadyNodeUnderNewPriority(t *testing.T) {
	smpCtx := smp.NewContext(order)
	ready := &fakeReady{}
	hooks := &fakeHooks{}

	cpu0 := schedapitest.NewCPU(0)
	a := schedapitest.NewThread("A", 5)
	nodeA := &fakeNode{owner: a, state: schedapi.NodeReady, priority: 5}
	ready.nodes = append(ready.nodes, nodeA)

	nodeA.priority = 1
	smp.ChangePriority(smpCtx, hooks, ready, nodeA, false, cpu0)

	require.Len(t, ready.nodes, 1)
	assert.Equal(t, priority.Priority(1), ready.nodes[0].priority)
}
