// Package affinitypool provides a fixed-parallelism worker pool that pins
// each submitted task deterministically to one of N single-consumer work
// queues, each drained by a dedicated worker goroutine.
//
// The goal is cache locality: a task identity that is submitted repeatedly
// always lands on the same queue and therefore, when paired with a
// [ThreadFactory] that honors CPU affinity, on the same core. This trades
// fairness and work-stealing (neither of which this pool implements) for
// predictable, low-contention execution of short, CPU-bound work.
//
// # Basic usage
//
//	p, err := affinitypool.New(4, affinitypool.WithGroupSize(64))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.ShutdownNow()
//
//	err = p.Execute(myTask, affinitypool.WithKey(orderID))
//	var rejected *affinitypool.RejectionError
//	if errors.As(err, &rejected) {
//	    // queue full or pool not running
//	}
//
// # Lifecycle
//
// A Pool moves through a strictly monotonic sequence of states: Running,
// ShuttingDown, ShutDown, Terminated. [Pool.Shutdown] drains each worker's
// queue before it exits; [Pool.ShutdownNow] interrupts every worker and
// discards whatever remains queued. [Pool.AwaitTermination] blocks until
// the pool reaches Terminated or a deadline passes.
//
// # Affinity
//
// Task identity is derived by the caller-supplied key (see [WithKey]); two
// submissions with an equal key converge onto the same queue after the
// first submission routes it, with one narrow exception documented on
// [Pool.Execute] for racing first-time submissions of the same key.
//
// # CPU pinning
//
// The pool itself never touches OS thread affinity — that is the job of
// the [ThreadFactory] supplied at construction. The default factory runs
// each worker on a plain goroutine with no pinning. The factory installed
// by [WithCPUAffinityStrategies] (see internal/cpu) locks each worker's
// goroutine to its own OS thread and, for the same-core and different-core
// strategies on Linux and Windows, pins that thread to a specific logical
// CPU.
package affinitypool
