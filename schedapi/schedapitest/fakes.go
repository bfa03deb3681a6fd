// Package schedapitest provides minimal, non-hot-path fake implementations
// of schedapi.Thread and schedapi.CPU for use by every policy package's
// tests, so each one isn't reinventing the same boilerplate (the teacher
// pack follows the same pattern of a small shared test-double type per
// module, e.g. logiface-testsuite for the logiface family).
package schedapitest

import (
	"fmt"

	"github.com/esoule/rtems/priority"
	"github.com/esoule/rtems/schedapi"
)

// Thread is a fake schedapi.Thread, identified by Name for readable test
// failures.
type Thread struct {
	Name        string
	priority    priority.Priority
	preemptible bool
	node        schedapi.Node
	instance    *schedapi.Instance
	migrating   bool
}

// NewThread returns a fake thread with the given priority, preemptible by
// default.
func NewThread(name string, p priority.Priority) *Thread {
	return &Thread{Name: name, priority: p, preemptible: true}
}

func (t *Thread) String() string                        { return t.Name }
func (t *Thread) CurrentPriority() priority.Priority     { return t.priority }
func (t *Thread) SetCurrentPriority(p priority.Priority) { t.priority = p }
func (t *Thread) IsPreemptible() bool                    { return t.preemptible }
func (t *Thread) SetPreemptible(v bool)                  { t.preemptible = v }
func (t *Thread) SchedulerNode() schedapi.Node           { return t.node }
func (t *Thread) SetSchedulerNode(n schedapi.Node)       { t.node = n }
func (t *Thread) Instance() *schedapi.Instance           { return t.instance }
func (t *Thread) SetInstance(inst *schedapi.Instance)    { t.instance = inst }
func (t *Thread) SetMigrating(v bool)                    { t.migrating = v }
func (t *Thread) IsMigrating() bool                      { return t.migrating }

// CPU is a fake schedapi.CPU.
type CPU struct {
	index             int
	executing         schedapi.Thread
	heir              schedapi.Thread
	dispatchNecessary bool
	instance          *schedapi.Instance
	InterruptsSent    int
}

// NewCPU returns a fake CPU with the given index.
func NewCPU(index int) *CPU {
	return &CPU{index: index}
}

func (c *CPU) Index() int                          { return c.index }
func (c *CPU) Executing() schedapi.Thread           { return c.executing }
func (c *CPU) SetExecuting(t schedapi.Thread)       { c.executing = t }
func (c *CPU) Heir() schedapi.Thread                { return c.heir }
func (c *CPU) SetHeir(t schedapi.Thread)            { c.heir = t }
func (c *CPU) DispatchNecessary() bool              { return c.dispatchNecessary }
func (c *CPU) SetDispatchNecessary(v bool)          { c.dispatchNecessary = v }
func (c *CPU) Instance() *schedapi.Instance         { return c.instance }
func (c *CPU) SetInstance(inst *schedapi.Instance)  { c.instance = inst }
func (c *CPU) SendInterrupt()                       { c.InterruptsSent++ }

func (c *CPU) String() string { return fmt.Sprintf("cpu%d", c.index) }

var (
	_ schedapi.Thread = (*Thread)(nil)
	_ schedapi.CPU    = (*CPU)(nil)
)
