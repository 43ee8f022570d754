package affinitypool

// PoolStats is a point-in-time snapshot of a Pool's activity, grounded on
// UTC-Six/pool/worker_pool/pool_stats.go's PoolStats struct (ActiveWorkers,
// QueuedTasks, Completed), extended with State since this pool's state is
// itself a first-class, externally observable value (spec §3).
type PoolStats struct {
	Parallelism   int
	LiveWorkers   int
	ActiveWorkers int
	QueuedTasks   int
	Completed     int64
	State         PoolState
}

// Stats returns a snapshot of the pool's current activity. It takes the
// bookkeeping lock only long enough to read the worker registry, the same
// brief hold pool_stats.go's Stats() takes around its own mutex — it never
// blocks on a queue poll or a task execution.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	live := p.liveWorkers
	active := 0
	for _, w := range p.workers {
		if w != nil && workerState(w.state.Load()) == workerInExecution {
			active++
		}
	}
	p.mu.Unlock()

	queued := 0
	for _, q := range p.queues {
		queued += q.len()
	}

	return PoolStats{
		Parallelism:   p.n,
		LiveWorkers:   live,
		ActiveWorkers: active,
		QueuedTasks:   queued,
		Completed:     p.completed.Load(),
		State:         PoolState(p.state.Load()),
	}
}

// QueueDepths returns the current approximate depth of each of the pool's
// N queues, indexed the same way the affinityRouter indexes them. Useful
// for observing affinity convergence: a task key that has converged keeps
// incrementing the same index.
func (p *Pool) QueueDepths() []int {
	depths := make([]int, len(p.queues))
	for i, q := range p.queues {
		depths[i] = q.len()
	}
	return depths
}
