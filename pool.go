package affinitypool

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pool is a fixed-parallelism executor: N single-consumer queues, each
// drained by exactly one worker goroutine for the Pool's lifetime (workers
// are replaced in place on abrupt exit, never added or removed). Grounded
// on pool/lib.go's Scheduler (bookkeeping mutex guarding a poolState,
// errgroup.Group joining worker goroutines) and
// UTC-Six/pool/worker_pool/pool_core.go's sync.Cond-based shutdown
// broadcast, adapted from dynamic autoscaling to this pool's fixed worker
// count and per-queue affinity routing.
type Pool struct {
	name          string
	n             int
	queues        []*boundedQueue
	workers       []*worker
	router        *affinityRouter
	threadFactory ThreadFactory
	wait          WaitStrategy

	state atomic.Int32 // PoolState

	mu sync.Mutex
	// cond is broadcast by Shutdown, ShutdownNow, and attemptTermination on
	// every state transition, so AwaitTermination only wakes on a real
	// change (or its own timer) rather than polling.
	cond *sync.Cond
	// liveWorkers counts workers currently running (started, not yet
	// exited); a replacement increments it back after an abrupt exit
	// decrements it. Exposed via Stats for diagnostics.
	liveWorkers int
	exitSignals []chan struct{}
	exitGroup   *errgroup.Group

	completed atomic.Int64
}

// New builds a Pool of n workers, each backed by its own bounded queue, and
// starts all of them immediately (there is no separate Start step: a Pool
// is Running the instant New returns successfully).
func New(n int, opts ...Option) (*Pool, error) {
	if n < 1 {
		return nil, invalidArgf("parallelism must be >= 1, got %d", n)
	}

	cfg := defaultPoolConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	wait, err := NewWaitStrategy(cfg.waitStrategy)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		name:          cfg.name,
		n:             n,
		queues:        make([]*boundedQueue, n),
		workers:       make([]*worker, n),
		router:        newAffinityRouter(n),
		threadFactory: cfg.threadFactory,
		wait:          wait,
		exitSignals:   make([]chan struct{}, n),
		exitGroup:     &errgroup.Group{},
	}
	p.cond = sync.NewCond(&p.mu)

	p.mu.Lock()
	for i := 0; i < n; i++ {
		p.queues[i] = newBoundedQueue(cfg.groupSize)
		p.spawnWorkerLocked(i, wait)
	}
	p.mu.Unlock()

	return p, nil
}

// spawnWorkerLocked starts a fresh worker for queue id, registering its
// exit with the pool's errgroup so attemptTermination can join it later.
// Caller must hold p.mu.
func (p *Pool) spawnWorkerLocked(id int, wait WaitStrategy) {
	w := newWorker(id, p.queues[id], p, wait)
	p.workers[id] = w

	exited := make(chan struct{})
	p.exitSignals[id] = exited
	p.exitGroup.Go(func() error {
		<-exited
		return nil
	})

	p.liveWorkers++
	w.start(p.threadFactory)
}

// Execute routes task onto the queue its key maps to and returns once it
// has been accepted. It never blocks waiting for the task to run.
//
// Two Execute calls that resolve to the same key converge on the same
// queue once the first has routed — except for a narrow race where two
// first-time submissions of the same key arrive concurrently: the
// affinityRouter guarantees only one queue ever wins for that key, so at
// most one of the two racing submissions executes on what becomes, after
// the race resolves, the "wrong" queue. Pass [WithKey] to make the key
// explicit; otherwise one is derived from task's own identity.
func (p *Pool) Execute(task Task, opts ...ExecuteOption) error {
	if isNilTask(task) {
		return invalidArgf("task must not be nil")
	}

	var eo executeOptions
	for _, opt := range opts {
		opt(&eo)
	}
	key := taskKey(task, eo)

	if PoolState(p.state.Load()) != StateRunning {
		return &RejectionError{PoolName: p.name, TaskKey: key, Reason: ErrPoolNotRunning}
	}

	idx := p.router.route(key)
	if !p.queues[idx].add(task) {
		return &RejectionError{PoolName: p.name, TaskKey: key, Reason: ErrQueueFull}
	}
	return nil
}

// Shutdown begins a graceful shutdown: the pool stops accepting new tasks
// but every worker keeps draining its own queue until empty before it
// exits. A no-op if the pool is not currently Running.
func (p *Pool) Shutdown() {
	if !p.state.CompareAndSwap(int32(StateRunning), int32(StateShuttingDown)) {
		return
	}
	debugLog("pool %q: shutdown requested, draining %d workers", p.name, p.n)
	p.mu.Lock()
	for _, w := range p.workers {
		if w != nil {
			w.stopIfIdle()
		}
	}
	p.cond.Broadcast()
	p.mu.Unlock()
	go p.attemptTermination()
}

// ShutdownNow forces every worker to stop as soon as it finishes whatever
// task it is currently executing (if any), discarding whatever remains
// queued. It always returns an empty slice: queued tasks are not handed
// back to the caller, only dropped (spec's ShutdownNow does not surface
// them either — there is nothing useful a caller could do with a Task
// whose affinity key has already been consumed).
func (p *Pool) ShutdownNow() []Task {
	old := PoolState(p.state.Load())
	if old >= StateShutDown {
		return nil
	}
	p.state.Store(int32(StateShutDown))
	debugLog("pool %q: shutdown-now requested, interrupting %d workers", p.name, p.n)

	p.mu.Lock()
	for _, w := range p.workers {
		if w != nil {
			w.stop()
		}
	}
	p.cond.Broadcast()
	p.mu.Unlock()

	go p.attemptTermination()
	return nil
}

// attemptTermination blocks until every worker goroutine the pool has ever
// spawned (including replacements created before shutdown began) has
// exited, then advances the pool's state to its terminal value. No more
// replacements are spawned once state has left Running, so the errgroup's
// set of tracked goroutines is fixed by the time this runs.
func (p *Pool) attemptTermination() {
	_ = p.exitGroup.Wait()

	p.mu.Lock()
	if PoolState(p.state.Load()) == StateShuttingDown {
		p.state.Store(int32(StateShutDown))
		p.cond.Broadcast()
	}
	p.state.Store(int32(StateTerminated))
	p.cond.Broadcast()
	p.mu.Unlock()
	debugLog("pool %q: terminated", p.name)
}

// onWorkerExit is worker.run's callback on its way out. A worker that
// exited abruptly (an unrecovered panic escaped its current task) is
// replaced in place, but only while the pool is still Running — once
// shutdown has begun, an exiting worker (abrupt or not) simply leaves its
// queue idle.
func (p *Pool) onWorkerExit(w *worker, abrupt bool) {
	p.mu.Lock()
	if ch := p.exitSignals[w.id]; ch != nil {
		close(ch)
	}
	p.liveWorkers--

	if abrupt && PoolState(p.state.Load()) == StateRunning {
		p.spawnWorkerLocked(w.id, w.wait)
	}
	p.mu.Unlock()
}

// onTaskComplete is called by worker.execute once a task's Run() returns
// without panicking. A panicking task never reaches this call, so
// Stats().Completed only ever counts tasks that ran to completion.
func (p *Pool) onTaskComplete() {
	p.completed.Add(1)
}

// loadState is the hot-path state read used by worker.shouldKeepRunning;
// it is a plain atomic load so it never contends with the bookkeeping lock.
func (p *Pool) loadState() PoolState {
	return PoolState(p.state.Load())
}

// IsShutdown reports whether the pool has fully stopped running workers
// and closed its submission gate — implemented literally as state ==
// ShutDown. It is false while ShuttingDown (workers still draining) and
// false again once Terminated (the pool is past shutdown, not merely shut
// down); callers that want "shutdown or further along" should also check
// [Pool.IsTerminated].
func (p *Pool) IsShutdown() bool {
	return PoolState(p.state.Load()) == StateShutDown
}

// IsTerminated reports whether the pool has reached its terminal state:
// every worker has exited and will not be replaced.
func (p *Pool) IsTerminated() bool {
	return PoolState(p.state.Load()) == StateTerminated
}

// AwaitTermination blocks until the pool reaches Terminated or timeout
// elapses, whichever comes first, reporting which one happened.
func (p *Pool) AwaitTermination(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	p.mu.Lock()
	defer p.mu.Unlock()

	for PoolState(p.state.Load()) != StateTerminated {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		timer := time.AfterFunc(remaining, p.cond.Broadcast)
		p.cond.Wait()
		timer.Stop()
	}
	return true
}

// Name returns the pool's configured identity (see [WithName]).
func (p *Pool) Name() string {
	return p.name
}
