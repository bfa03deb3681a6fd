package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esoule/rtems/kernel"
	"github.com/esoule/rtems/priority"
	"github.com/esoule/rtems/schedapi"
	"github.com/esoule/rtems/schedapi/schedapitest"
)

// fakeNode is the minimal schedapi.Node used by the fakeOps below.
type fakeNode struct {
	owner    schedapi.Thread
	state    schedapi.NodeState
	priority priority.Priority
}

func (n *fakeNode) Owner() schedapi.Thread          { return n.owner }
func (n *fakeNode) State() schedapi.NodeState       { return n.state }
func (n *fakeNode) SetState(s schedapi.NodeState)   { n.state = s }
func (n *fakeNode) Priority() priority.Priority     { return n.priority }
func (n *fakeNode) SetPriority(p priority.Priority) { n.priority = p }

// fakeOps records every call it receives, for assertions about ordering and
// forwarding, and implements schedapi.SMPOps so affinity tests can exercise
// the SMPOps type-assertion path too.
type fakeOps struct {
	calls       []string
	destroyed   []schedapi.Node
	initialized []schedapi.Thread
}

func (f *fakeOps) Schedule(inst *schedapi.Instance, thread schedapi.Thread) {
	f.calls = append(f.calls, "schedule:"+thread.(*schedapitest.Thread).Name)
}
func (f *fakeOps) Yield(inst *schedapi.Instance, thread schedapi.Thread) {
	f.calls = append(f.calls, "yield:"+thread.(*schedapitest.Thread).Name)
}
func (f *fakeOps) Block(inst *schedapi.Instance, thread schedapi.Thread) {
	f.calls = append(f.calls, "block:"+thread.(*schedapitest.Thread).Name)
}
func (f *fakeOps) Unblock(inst *schedapi.Instance, thread schedapi.Thread, prepend bool) {
	f.calls = append(f.calls, "unblock:"+thread.(*schedapitest.Thread).Name)
}
func (f *fakeOps) ChangePriority(inst *schedapi.Instance, thread schedapi.Thread, newPriority priority.Priority, prepend bool) {
	f.calls = append(f.calls, "change_priority:"+thread.(*schedapitest.Thread).Name)
}
func (f *fakeOps) UpdatePriority(inst *schedapi.Instance, thread schedapi.Thread, newPriority priority.Priority) {
	f.calls = append(f.calls, "update_priority:"+thread.(*schedapitest.Thread).Name)
	if n := thread.SchedulerNode(); n != nil {
		n.SetPriority(newPriority)
	}
}
func (f *fakeOps) NodeInitialize(inst *schedapi.Instance, thread schedapi.Thread) schedapi.Node {
	f.initialized = append(f.initialized, thread)
	f.calls = append(f.calls, "node_initialize:"+thread.(*schedapitest.Thread).Name)
	return &fakeNode{owner: thread, state: schedapi.NodeBlocked, priority: thread.CurrentPriority()}
}
func (f *fakeOps) NodeDestroy(inst *schedapi.Instance, node schedapi.Node) {
	f.destroyed = append(f.destroyed, node)
	f.calls = append(f.calls, "node_destroy")
}
func (f *fakeOps) PriorityCompare(p1, p2 priority.Priority) int { return priority.Default(p1, p2) }
func (f *fakeOps) ReleaseJob(inst *schedapi.Instance, thread schedapi.Thread, length uint64) {
	f.calls = append(f.calls, "release_job")
}
func (f *fakeOps) Tick(inst *schedapi.Instance, thread schedapi.Thread) {
	f.calls = append(f.calls, "tick:"+thread.(*schedapitest.Thread).Name)
}
func (f *fakeOps) StartIdle(inst *schedapi.Instance, thread schedapi.Thread, cpu schedapi.CPU) {
	f.calls = append(f.calls, "start_idle")
}
func (f *fakeOps) GetAffinity(inst *schedapi.Instance, thread schedapi.Thread, set *schedapi.CPUSet) bool {
	set.Clear()
	for _, p := range inst.Processors {
		set.Set(p.Index())
	}
	return true
}
func (f *fakeOps) SetAffinity(inst *schedapi.Instance, thread schedapi.Thread, set schedapi.CPUSet) bool {
	return true
}

var _ schedapi.SMPOps = (*fakeOps)(nil)

func newInstance(name string, ops *fakeOps) *schedapi.Instance {
	return &schedapi.Instance{Name: name, Ops: ops}
}

func TestKernel_ForwardsToBoundInstance(t *testing.T) {
	ops := &fakeOps{}
	inst := newInstance("S", ops)
	th := schedapitest.NewThread("A", 5)
	th.SetInstance(inst)

	k := kernel.New(schedapi.NewTable(schedapi.WithInstance(inst)), nil)
	k.Schedule(th)
	k.Yield(th)
	k.Block(th)
	k.Unblock(th, false)

	assert.Equal(t, []string{"schedule:A", "yield:A", "block:A", "unblock:A"}, ops.calls)
}

func TestKernel_Set_MigrationOrdering(t *testing.T) {
	opsS1 := &fakeOps{}
	opsS2 := &fakeOps{}
	s1 := newInstance("S1", opsS1)
	s2 := newInstance("S2", opsS2)

	th := schedapitest.NewThread("T", 3)
	th.SetInstance(s1)
	th.SetSchedulerNode(&fakeNode{owner: th, state: schedapi.NodeBlocked, priority: 3})

	k := kernel.New(schedapi.NewTable(schedapi.WithInstance(s1), schedapi.WithInstance(s2)), nil)

	k.Set(s2, th)

	require.False(t, th.IsMigrating(), "migrating flag must be cleared once Set returns")
	assert.Equal(t, s2, th.Instance())
	assert.Equal(t, []string{"node_destroy"}, opsS1.calls)
	require.Len(t, opsS2.calls, 2)
	assert.Equal(t, "node_initialize:T", opsS2.calls[0])
	assert.Equal(t, "update_priority:T", opsS2.calls[1])
	assert.Equal(t, priority.Priority(3), th.SchedulerNode().Priority())
}

func TestKernel_Set_NoopWhenSameInstance(t *testing.T) {
	ops := &fakeOps{}
	inst := newInstance("S", ops)
	th := schedapitest.NewThread("A", 5)
	th.SetInstance(inst)

	k := kernel.New(schedapi.NewTable(schedapi.WithInstance(inst)), nil)
	k.Set(inst, th)

	assert.Empty(t, ops.calls)
}

func TestKernel_ChangeIfHigherAndSetIfHigher(t *testing.T) {
	ops := &fakeOps{}
	inst := newInstance("S", ops)
	th := schedapitest.NewThread("A", 5)
	th.SetInstance(inst)

	k := kernel.New(schedapi.NewTable(schedapi.WithInstance(inst)), nil)

	k.SetIfHigher(th, 10) // 10 is lower priority than 5 under Default (bigger number, lower priority)
	assert.Equal(t, priority.Priority(5), th.CurrentPriority())

	k.SetIfHigher(th, 1) // higher priority
	assert.Equal(t, priority.Priority(1), th.CurrentPriority())

	k.ChangeIfHigher(th, 9, false) // lower than 1, no-op
	assert.Empty(t, ops.calls)

	k.ChangeIfHigher(th, 0, true) // higher than 1
	require.Len(t, ops.calls, 1)
	assert.Equal(t, "change_priority:A", ops.calls[0])
	assert.Equal(t, priority.Priority(0), th.CurrentPriority())
}

func TestKernel_Tick_VisitsEveryProcessorOnceInOrder(t *testing.T) {
	ops := &fakeOps{}
	inst := newInstance("S", ops)

	cpu0 := schedapitest.NewCPU(0)
	cpu1 := schedapitest.NewCPU(1)
	cpu2 := schedapitest.NewCPU(2)
	// deliberately registered out of index order
	k := kernel.New(schedapi.NewTable(schedapi.WithInstance(inst)), []schedapi.CPU{cpu2, cpu0, cpu1})

	thA := schedapitest.NewThread("A", 1)
	thB := schedapitest.NewThread("B", 1)
	cpu0.SetInstance(inst)
	cpu0.SetExecuting(thA)
	cpu1.SetInstance(inst)
	cpu1.SetExecuting(thB)
	// cpu2 has no bound instance: must be skipped without panicking.

	k.Tick()

	assert.Equal(t, []string{"tick:A", "tick:B"}, ops.calls)
}

func TestKernel_Affinity_ForwardsToSMPOps(t *testing.T) {
	ops := &fakeOps{}
	inst := newInstance("S", ops)
	th := schedapitest.NewThread("A", 1)
	th.SetInstance(inst)

	k := kernel.New(schedapi.NewTable(schedapi.WithInstance(inst)), nil)
	var set schedapi.CPUSet
	assert.True(t, k.GetAffinity(th, &set), "fakeOps implements SMPOps")
	assert.True(t, k.SetAffinity(th, set))
}
