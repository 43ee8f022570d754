package affinitypool

import (
	"sync/atomic"

	"github.com/RamSinha/affinitypool/internal/mathutil"
)

// cacheLinePadding prevents false sharing between fields that are written
// by different goroutines, the same trick the teacher's MPMC ring buffer
// uses for its head/tail counters.
const cacheLinePadding = 64

// queueSlot is one cell of the ring buffer. sequence coordinates producers
// and the single consumer the same way LMAX-style disruptors do: a slot is
// only readable once its sequence equals the consumer's expected position.
type queueSlot struct {
	sequence atomic.Uint64
	task     Task
	_        [cacheLinePadding - 16]byte
}

// boundedQueue is a fixed-capacity FIFO supporting many concurrent
// producers and exactly one consumer (spec §3/§4.1). The backing ring is
// allocated at the next power of two at or above the caller's requested
// capacity so index arithmetic can use a mask instead of a modulo,
// mirroring internal/scheduler/mpmc.go's ring buffer in the teacher repo —
// simplified here because this queue only ever has one consumer, so the
// head side needs no CAS: the owning worker is the sole writer of head.
// The rounding is purely an allocation/indexing detail: requestedCapacity,
// not the ring's (possibly larger) allocated size, is what add() enforces
// as the "size <= C" bound spec §3/§4.1 names.
type boundedQueue struct {
	ring []queueSlot
	mask uint64

	_    [cacheLinePadding]byte
	tail atomic.Uint64
	_    [cacheLinePadding - 8]byte
	head atomic.Uint64
	_    [cacheLinePadding - 8]byte

	capacity          int // allocated ring size, a power of two; indexing only
	requestedCapacity int // caller's configured C; the enforced back-pressure bound
}

func newBoundedQueue(capacity int) *boundedQueue {
	if capacity < 1 {
		capacity = 1
	}
	requested := capacity
	allocated := mathutil.NextPowerOfTwo(capacity)
	ring := make([]queueSlot, allocated)
	for i := range ring {
		ring[i].sequence.Store(uint64(i)) // #nosec G115 -- i bounded by ring length
	}
	q := &boundedQueue{
		ring:              ring,
		mask:              uint64(allocated - 1), // #nosec G115 -- allocated validated positive
		capacity:          allocated,
		requestedCapacity: requested,
	}
	return q
}

// emptyTask is the sentinel poll() returns in place of a nil Task.
var emptyTask Task

// add enqueues task at the tail. Returns false if the queue is at
// requestedCapacity — the pool's sole back-pressure signal. Safe for any
// number of concurrent producers: tail and head are reloaded every
// iteration, so a producer that loses the capacity check's race against a
// concurrent add retries against a freshly read pair rather than acting on
// a stale one.
func (q *boundedQueue) add(task Task) bool {
	for {
		tail := q.tail.Load()
		head := q.head.Load()
		if tail-head >= uint64(q.requestedCapacity) { // #nosec G115 -- requestedCapacity validated positive
			return false // at configured capacity, independent of the ring's allocated size
		}

		slot := &q.ring[tail&q.mask]
		seq := slot.sequence.Load()

		diff := int64(seq) - int64(tail) // #nosec G115 -- sequence comparison, may be negative
		switch {
		case diff == 0:
			if q.tail.CompareAndSwap(tail, tail+1) {
				slot.task = task
				slot.sequence.Store(tail + 1)
				return true
			}
		case diff < 0:
			return false // consumer hasn't freed this slot yet: ring is full
		default:
			// another producer is mid-publish into this slot; retry
		}
	}
}

// poll dequeues from the head. Must only be called by the single owning
// consumer (the Worker). Returns (emptyTask, false) if the queue is empty.
func (q *boundedQueue) poll() (Task, bool) {
	head := q.head.Load()
	slot := &q.ring[head&q.mask]
	seq := slot.sequence.Load()

	diff := int64(seq) - int64(head+1) // #nosec G115 -- sequence comparison, may be negative
	if diff != 0 {
		return emptyTask, false
	}

	task := slot.task
	slot.task = emptyTask
	slot.sequence.Store(head + q.mask + 1)
	q.head.Store(head + 1)
	return task, true
}

// isEmpty may be consulted by any thread; the snapshot may be stale the
// instant it's returned.
func (q *boundedQueue) isEmpty() bool {
	return q.head.Load() >= q.tail.Load()
}

// len returns the approximate number of queued tasks.
func (q *boundedQueue) len() int {
	tail := q.tail.Load()
	head := q.head.Load()
	if tail > head {
		return int(tail - head) // #nosec G115 -- tail > head guarantees result fits in int
	}
	return 0
}
