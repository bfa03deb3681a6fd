package schedapi

import "fmt"

// Instance is a control block for one configured scheduler: a policy
// vtable, its context, and (on SMP configurations) the processors it owns.
// The kernel holds a static table of these; exactly one is selected per
// thread (spec.md §3 "Scheduler instance").
type Instance struct {
	// Index is this instance's position in the owning Table, used to
	// derive its object id.
	Index int
	// Name is a human-readable label, used only in diagnostics.
	Name string

	Ops     Ops
	Context Context

	// Processors lists the CPUs owned by this instance. Empty on a
	// uniprocessor configuration, where exactly one implicit CPU (index 0)
	// is always implied regardless of this slice.
	Processors []CPU
}

// ID returns this instance's stable object id.
func (inst *Instance) ID() ObjectID {
	return BuildID(inst.Index)
}

// OwnsProcessor reports whether cpu is one of this instance's processors.
func (inst *Instance) OwnsProcessor(cpu CPU) bool {
	for _, p := range inst.Processors {
		if p == cpu {
			return true
		}
	}
	return false
}

// ProcessorCount returns the number of processors owned by this instance.
func (inst *Instance) ProcessorCount() int {
	return len(inst.Processors)
}

// SMPOps type-asserts this instance's Ops to SMPOps, for callers that only
// make sense on an SMP-capable instance (affinity queries).
func (inst *Instance) SMPOps() (SMPOps, bool) {
	ops, ok := inst.Ops.(SMPOps)
	return ops, ok
}

// Assignment binds one processor index to a scheduler instance at startup
// (spec.md §3 "Scheduler assignment (SMP)", §6 "Configuration").
type Assignment struct {
	CPUIndex int
	Instance *Instance
	// Mandatory means the system must fail to start if CPUIndex is absent.
	Mandatory bool
}

// Table is the process-wide static configuration: the scheduler instances
// and, on SMP, the processor-assignment array (spec.md §6 "Configuration").
// Once built it is never mutated; Design Notes §9 calls for modeling it as
// a constant or once-initialized structure threaded through the kernel
// rather than a hidden mutable global.
type Table struct {
	Instances   []*Instance
	Assignments []Assignment
}

// TableOption configures a Table under construction, following the
// functional-options shape used throughout the teacher pack's own
// constructors (e.g. eventloop.NewLoop(opts...)).
type TableOption func(*Table)

// WithInstance appends inst to the table, assigning it the next free index.
func WithInstance(inst *Instance) TableOption {
	return func(t *Table) {
		inst.Index = len(t.Instances)
		t.Instances = append(t.Instances, inst)
	}
}

// WithAssignment appends a to the table's processor-assignment array.
func WithAssignment(a Assignment) TableOption {
	return func(t *Table) {
		t.Assignments = append(t.Assignments, a)
	}
}

// NewTable builds a Table from a sequence of options.
func NewTable(opts ...TableOption) *Table {
	t := &Table{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get resolves an instance by its object id.
func (t *Table) Get(id ObjectID) (*Instance, bool) {
	if !IsIDValid(id) {
		return nil, false
	}
	idx := GetIndexByID(id)
	if idx < 0 || idx >= len(t.Instances) {
		return nil, false
	}
	return t.Instances[idx], true
}

// Validate checks that every mandatory processor assignment has a backing
// CPU among cpus, per spec.md §7 "No processor available for a mandatory
// assignment": startup-time fatal, surfaced here as a plain error since
// this module has no confdefs-style fatal-error generator of its own.
func (t *Table) Validate(cpus []CPU) error {
	for _, a := range t.Assignments {
		if !a.Mandatory {
			continue
		}
		found := false
		for _, c := range cpus {
			if c.Index() == a.CPUIndex {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("schedapi: mandatory processor %d for scheduler %q is absent", a.CPUIndex, a.Instance.Name)
		}
	}
	return nil
}

// ObjectID is a stable identifier for a scheduler instance, computed from
// its table index plus a fixed base, so external code may refer to
// schedulers by id (spec.md §6 "Identifiers").
type ObjectID uint32

// The id encodes (api-tag, class-tag, node, index+1), following the shape
// described in spec.md §6 and implemented by _Scheduler_Build_id in
// schedulerimpl.h. The exact bit widths are this module's own choice (the
// original's depend on a whole object-id subsystem out of scope here); what
// is preserved is the encoding shape: a fixed tag prefix plus a 1-based
// index suffix.
const (
	objectAPIInternal  ObjectID = 1
	objectClassSched   ObjectID = 1
	objectNodeSingle   ObjectID = 1
	objectIndexBits             = 16
	objectIndexMask    ObjectID = (1 << objectIndexBits) - 1
	objectIDBase                = objectNodeSingle<<28 | objectAPIInternal<<24 | objectClassSched<<16
)

// BuildID computes the stable object id for the scheduler at table index.
func BuildID(index int) ObjectID {
	return objectIDBase | (ObjectID(index+1) & objectIndexMask)
}

// GetIndexByID extracts the table index encoded in id, without validating
// the tag prefix; callers that need validation should call IsIDValid first.
func GetIndexByID(id ObjectID) int {
	return int(id&objectIndexMask) - 1
}

// IsIDValid reports whether id carries this module's scheduler tag prefix.
func IsIDValid(id ObjectID) bool {
	return id&^objectIndexMask == objectIDBase
}
