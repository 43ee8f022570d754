package affinitypool

import (
	"reflect"
	"sync/atomic"
)

// noIdentityCounter mints one-off keys for tasks with no stable identity.
// Starting deep in the negative range (at -2^62 + 1) keeps it visually distinct
// from pointer-derived and caller-supplied keys in logs and tests.
var noIdentityCounter atomic.Int64

func freshKey() int64 {
	return noIdentityCounter.Add(1) - (1 << 62)
}

// Task is a unit of work submitted to the pool. Implementations are
// expected to be backed by a pointer (so two submissions of the very same
// *T converge on the same queue — see taskKey); value types and bare
// closures have no stable content-independent identity in Go and should be
// submitted with an explicit [WithKey] instead.
type Task interface {
	Run()
}

// TaskFunc adapts a plain function to the Task interface. Because a Go
// func value has no reliable identity (reflect explicitly declines to
// guarantee one), callers relying on affinity convergence across repeated
// submissions of a TaskFunc should pair it with [WithKey].
type TaskFunc func()

// Run invokes f.
func (f TaskFunc) Run() { f() }

// executeOptions carries the per-submission overrides accepted by
// [Pool.Execute].
type executeOptions struct {
	key    int64
	hasKey bool
}

// ExecuteOption configures a single Execute call.
type ExecuteOption func(*executeOptions)

// WithKey pins the affinity routing decision to an explicit key instead of
// deriving one from the task value's identity. Two Execute calls with the
// same key always converge on the same queue once the first has routed
// (spec §4.3); this is the recommended way to express "these two task
// submissions are the same logical unit of work" for closures, which have
// no other stable identity in Go.
func WithKey(key int64) ExecuteOption {
	return func(o *executeOptions) {
		o.key = key
		o.hasKey = true
	}
}

// isNilTask reports whether task is an empty handle: either the untyped nil
// interface, or a typed nil hiding behind the interface (a nil TaskFunc, a
// nil pointer/chan/map Task, and so on). Execute must reject these
// synchronously with InvalidArgument (spec §4.5/§7.1) rather than routing
// and enqueuing them, which would only surface the problem later as a panic
// inside task.Run() — indistinguishable from any other task failure and
// mishandled as abrupt worker termination instead of a rejected submission.
func isNilTask(task Task) bool {
	if task == nil {
		return true
	}
	v := reflect.ValueOf(task)
	switch v.Kind() {
	case reflect.Ptr, reflect.Chan, reflect.Map, reflect.UnsafePointer, reflect.Func, reflect.Slice, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// taskKey derives the affinity key for a task. An explicit WithKey always
// wins; otherwise a pointer-backed Task contributes its pointer address as
// a stable, content-independent identity (the Go analogue of the source
// spec's "identity hash of the handle" — see DESIGN.md). Anything else
// (value types, TaskFunc, plain closures) has no such identity, so it gets
// a key that is stable for the lifetime of that one call only; repeated
// submissions of structurally-equal-but-distinct closures will not
// converge, which is expected without an explicit key.
func taskKey(t Task, opts executeOptions) int64 {
	if opts.hasKey {
		return opts.key
	}

	v := reflect.ValueOf(t)
	switch v.Kind() {
	case reflect.Ptr, reflect.Chan, reflect.Map, reflect.UnsafePointer:
		return int64(v.Pointer()) // #nosec G115 -- truncation is acceptable, only used as a map key
	default:
		return freshKey()
	}
}
