// Package priority defines the opaque priority handle shared by every
// scheduling policy and the total-order comparator indirection that lets a
// policy pick which direction on the numeric axis counts as "higher",
// without ever being compared directly by callers.
package priority

// Priority is an opaque numeric handle. Its only guaranteed meaning is the
// total order a Comparator imposes on it; code outside a policy must never
// compare two Priority values with <, >, or == for scheduling purposes.
type Priority int64

// Comparator orders two priorities in the intuitive sense: the sign of the
// return value follows the usual three-way-compare convention (negative if
// p1 is lower priority than p2, zero if equal, positive if p1 is higher),
// but the mapping from Priority's numeric encoding onto that sign is left
// entirely to the policy.
type Comparator func(p1, p2 Priority) int

// Default is the comparator used by both the uniprocessor and EDF policies
// in this module: smaller numeric values encode higher (more urgent)
// priority, matching the RTEMS convention where priority 0 is the most
// urgent. EDF reuses the same field to hold a deadline-derived key, so this
// comparator doubles as "earlier deadline wins".
func Default(p1, p2 Priority) int {
	return int(p2 - p1)
}

// IsHigher reports whether p1 is strictly higher priority than p2 under cmp.
func IsHigher(cmp Comparator, p1, p2 Priority) bool {
	return cmp(p1, p2) > 0
}

// IsLower reports whether p1 is strictly lower priority than p2 under cmp.
func IsLower(cmp Comparator, p1, p2 Priority) bool {
	return cmp(p1, p2) < 0
}

// HighestOfTwo returns whichever of p1, p2 is the higher priority under cmp,
// preferring p1 on a tie.
func HighestOfTwo(cmp Comparator, p1, p2 Priority) Priority {
	if IsHigher(cmp, p2, p1) {
		return p2
	}
	return p1
}
