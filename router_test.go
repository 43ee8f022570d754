package affinitypool

import (
	"sync"
	"testing"
)

func TestAffinityRouter_ConvergesOnSameQueue(t *testing.T) {
	r := newAffinityRouter(8)

	first := r.route(42)
	for i := range 100 {
		if got := r.route(42); got != first {
			t.Fatalf("iteration %d: expected queue %d, got %d", i, first, got)
		}
	}
}

func TestAffinityRouter_DistinctKeysCanLandOnDifferentQueues(t *testing.T) {
	r := newAffinityRouter(8)
	seen := map[int]bool{}
	for key := int64(0); key < 64; key++ {
		seen[r.route(key)] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected routing to spread across queues, only used %d", len(seen))
	}
}

func TestAffinityRouter_IndexWithinBounds(t *testing.T) {
	r := newAffinityRouter(5) // not a power of two: exercises the modulo fallback
	for key := int64(0); key < 200; key++ {
		idx := r.route(key)
		if idx < 0 || idx >= 5 {
			t.Fatalf("index %d out of bounds for n=5", idx)
		}
	}
}

func TestAffinityRouter_ConcurrentFirstRouteConverges(t *testing.T) {
	r := newAffinityRouter(16)
	const racers = 50

	results := make([]int, racers)
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := range racers {
		go func(i int) {
			defer wg.Done()
			results[i] = r.route(7)
		}(i)
	}
	wg.Wait()

	want := results[0]
	for i, got := range results {
		if got != want {
			t.Fatalf("racer %d: expected every concurrent first-route of the same key to agree, got %d want %d", i, got, want)
		}
	}
}
