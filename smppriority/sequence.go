package smppriority

import "sync/atomic"

// appendCounter and prependCounter back the arrival-order tie-break used
// by order() (policy.go): append moves strictly forward from 1 so later
// arrivals sort after earlier ones at the same priority (FIFO);
// prepend moves strictly backward from -1 so a freshly prepended node
// always sorts ahead of every node seen so far, including earlier
// prepends, regardless of which instance it belongs to. A single
// process-wide pair keeps the comparison total across every Policy
// value without threading a counter through each Instance's Context.
var (
	appendCounter  int64
	prependCounter int64
)

func nextAppendSequence() int64 { return atomic.AddInt64(&appendCounter, 1) }

func nextPrependSequence() int64 { return atomic.AddInt64(&prependCounter, -1) }
