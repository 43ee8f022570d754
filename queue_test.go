package affinitypool

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestBoundedQueue_BasicAddPoll(t *testing.T) {
	q := newBoundedQueue(8)

	for i := range 5 {
		if !q.add(TaskFunc(func() {})) {
			t.Fatalf("add %d: expected success", i)
		}
	}

	for i := range 5 {
		if _, ok := q.poll(); !ok {
			t.Fatalf("poll %d: expected a task", i)
		}
	}

	if _, ok := q.poll(); ok {
		t.Fatal("poll on empty queue should fail")
	}
}

func TestBoundedQueue_RoundsCapacityUpToPowerOfTwo(t *testing.T) {
	q := newBoundedQueue(5)
	if q.capacity != 8 {
		t.Fatalf("expected allocated ring size 8, got %d", q.capacity)
	}
	if q.requestedCapacity != 5 {
		t.Fatalf("expected requestedCapacity to stay 5, got %d", q.requestedCapacity)
	}
}

func TestBoundedQueue_EnforcesRequestedCapacityNotAllocatedSize(t *testing.T) {
	// capacity 5 rounds the backing ring up to 8 slots, but add() must
	// still refuse a 6th task: size <= requestedCapacity, not <= ring size.
	q := newBoundedQueue(5)
	for i := range 5 {
		if !q.add(TaskFunc(func() {})) {
			t.Fatalf("add %d: expected success within requested capacity", i)
		}
	}
	if q.add(TaskFunc(func() {})) {
		t.Fatal("add beyond requestedCapacity should fail even though the ring has spare slots")
	}

	if _, ok := q.poll(); !ok {
		t.Fatal("expected a task to poll")
	}
	if !q.add(TaskFunc(func() {})) {
		t.Fatal("add after a poll frees one slot should succeed again")
	}
}

func TestBoundedQueue_FullReturnsFalse(t *testing.T) {
	q := newBoundedQueue(4)
	for i := range 4 {
		if !q.add(TaskFunc(func() {})) {
			t.Fatalf("add %d: expected success", i)
		}
	}
	if q.add(TaskFunc(func() {})) {
		t.Fatal("add on full queue should fail")
	}
}

func TestBoundedQueue_FIFOOrder(t *testing.T) {
	q := newBoundedQueue(16)
	var order []int
	for i := range 10 {
		i := i
		q.add(TaskFunc(func() { order = append(order, i) }))
	}
	for range 10 {
		task, ok := q.poll()
		if !ok {
			t.Fatal("expected task")
		}
		task.Run()
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("expected FIFO order, got %v", order)
		}
	}
}

func TestBoundedQueue_ConcurrentProducersSingleConsumer(t *testing.T) {
	q := newBoundedQueue(1024)
	const producers = 8
	const perProducer = 200

	var accepted atomic.Int64
	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perProducer {
				if q.add(TaskFunc(func() {})) {
					accepted.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	drained := 0
	for {
		if _, ok := q.poll(); !ok {
			break
		}
		drained++
	}

	if int64(drained) != accepted.Load() {
		t.Fatalf("drained %d, accepted %d", drained, accepted.Load())
	}
}

func TestBoundedQueue_IsEmptyAndLen(t *testing.T) {
	q := newBoundedQueue(8)
	if !q.isEmpty() {
		t.Fatal("new queue should be empty")
	}
	q.add(TaskFunc(func() {}))
	q.add(TaskFunc(func() {}))
	if q.isEmpty() {
		t.Fatal("queue with items should not be empty")
	}
	if q.len() != 2 {
		t.Fatalf("expected len 2, got %d", q.len())
	}
	q.poll()
	if q.len() != 1 {
		t.Fatalf("expected len 1 after one poll, got %d", q.len())
	}
}
