package affinitypool

import (
	"sync"
	"sync/atomic"
)

// affinityRouter maps a TaskKey to a queue index, sticky after the first
// submission converges (spec §4.3). Grounded on two pack sources: the
// atomic-CAS idle-worker reservation in internal/scheduler/bitmask.go (the
// same "claim by CAS, retry on race" shape) and the round-robin
// idx := total % numWorkers routing in
// momentics/hioload-ws/internal/concurrency/executor.go.
//
// runnableToQueueIndex grows monotonically for the pool's lifetime and is
// never evicted, per spec §3 — an implementation may bound memory by
// evicting least-recently-used keys at the cost of re-randomizing affinity
// on re-entry (spec §9); this implementation does not, matching the
// teacher's own unbounded maps (e.g. internal/scheduler's per-worker
// sequence slices never shrink either).
type affinityRouter struct {
	n                int
	mask             uint64 // n-1, valid only when powerOfTwo is true
	powerOfTwo       bool
	executionCounter atomic.Uint64
	index            sync.Map // int64 TaskKey -> int (queue index)
}

func newAffinityRouter(n int) *affinityRouter {
	r := &affinityRouter{n: n}
	if n > 0 && n&(n-1) == 0 {
		r.powerOfTwo = true
		r.mask = uint64(n - 1) // #nosec G115 -- n validated positive by caller
	}
	return r
}

// route returns the queue index for key, creating a new sticky mapping via
// put-if-absent on a fresh key. The race note from spec §4.3 applies
// verbatim: two concurrent first-time routes of the same key may each
// compute a distinct candidate index; sync.Map.LoadOrStore returns the
// value that actually won the race to every caller, so at most one
// submission ever executes on the "wrong" (losing) queue — the primitive
// spec §9's second open question requires.
func (r *affinityRouter) route(key int64) int {
	if v, ok := r.index.Load(key); ok {
		return v.(int)
	}

	candidate := r.nextIndex()
	actual, _ := r.index.LoadOrStore(key, candidate)
	return actual.(int)
}

func (r *affinityRouter) nextIndex() int {
	seq := r.executionCounter.Add(1)
	if r.powerOfTwo {
		return int(seq & r.mask) // #nosec G115 -- masked into [0, n)
	}
	return int(seq % uint64(r.n)) // #nosec G115 -- modulo into [0, n)
}
