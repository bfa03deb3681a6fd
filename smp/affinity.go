package smp

import "github.com/esoule/rtems/schedapi"

// GetAffinity clears set and sets a bit for every processor owned by
// inst (spec.md §4.6).
func GetAffinity(inst *schedapi.Instance, set *schedapi.CPUSet) bool {
	set.Clear()
	for _, cpu := range inst.Processors {
		set.Set(cpu.Index())
	}
	return true
}

// SetAffinity succeeds iff, for every processor inst owns, the
// corresponding bit in set is requested: a request that leaves out any of
// inst's processors is rejected, while bits for processors inst does not
// own are ignored (spec.md §4.6).
func SetAffinity(inst *schedapi.Instance, set schedapi.CPUSet) bool {
	for _, cpu := range inst.Processors {
		if !set.IsSet(cpu.Index()) {
			return false
		}
	}
	return true
}
