package affinitypool

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is wrapped by constructors and Execute when given a
// value the core rejects synchronously: non-positive parallelism, an
// unrecognized wait-strategy or CPU-affinity token, or a nil task.
var ErrInvalidArgument = errors.New("affinitypool: invalid argument")

// ErrPoolNotRunning is wrapped into a *RejectionError when Execute is
// called while the pool's state is not Running.
var ErrPoolNotRunning = errors.New("affinitypool: pool is not running")

// ErrQueueFull is wrapped into a *RejectionError when the target queue has
// no room for another task.
var ErrQueueFull = errors.New("affinitypool: queue is full")

// RejectionError is returned by Execute when a task cannot be accepted.
// It carries the stringified task identity and the pool's identity so a
// caller can log or correlate the rejection, per spec §4.5/§7.
type RejectionError struct {
	PoolName string
	TaskKey  int64
	Reason   error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("affinitypool: pool %q rejected task %d: %v", e.PoolName, e.TaskKey, e.Reason)
}

func (e *RejectionError) Unwrap() error { return e.Reason }

func invalidArgf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
