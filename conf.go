package affinitypool

import (
	"runtime"

	"github.com/RamSinha/affinitypool/internal/cpu"
)

// PoolState is a totally ordered, monotonically non-decreasing lifecycle
// stage (spec §3, §4.5). The numeric rank is stored directly so
// comparisons ("has the pool at least started shutting down?") are a
// plain integer compare, the same "sealed state hierarchy as a ranked
// tagged variant" trick spec §9 calls for.
type PoolState int32

const (
	StateRunning PoolState = iota
	StateShuttingDown
	StateShutDown
	StateTerminated
)

func (s PoolState) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateShutDown:
		return "ShutDown"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// CPUAffinityStrategy is one token from spec §6's cpu-affinity-strategies
// list, passed opaquely through to the ThreadFactory.
type CPUAffinityStrategy int

const (
	AffinityAny CPUAffinityStrategy = iota
	AffinitySameCore
	AffinitySameSocket
	AffinityDifferentCore
	AffinityDifferentSocket
)

// ParseCPUAffinityStrategy maps a config token to a CPUAffinityStrategy,
// rejecting anything unrecognized with ErrInvalidArgument (spec §6).
func ParseCPUAffinityStrategy(token string) (CPUAffinityStrategy, error) {
	switch token {
	case "any":
		return AffinityAny, nil
	case "same-core":
		return AffinitySameCore, nil
	case "same-socket":
		return AffinitySameSocket, nil
	case "different-core":
		return AffinityDifferentCore, nil
	case "different-socket":
		return AffinityDifferentSocket, nil
	default:
		return 0, invalidArgf("unknown cpu-affinity-strategy %q", token)
	}
}

// ThreadFactory produces an OS thread bound to a supplied worker loop,
// honoring whatever affinity strategy it was configured with. The core
// treats it as wholly opaque: it calls NewThread exactly once per worker
// and never inspects the result (spec §6).
type ThreadFactory interface {
	NewThread(workerID int, runLoop func())
}

// goroutineThreadFactory is the zero-configuration default: each worker's
// loop runs on its own goroutine with no OS-level pinning. Pair with
// internal/cpu's factory (via WithCPUAffinityStrategies) for real pinning.
type goroutineThreadFactory struct{}

func (goroutineThreadFactory) NewThread(_ int, runLoop func()) {
	go runLoop()
}

// Option configures a Pool at construction time.
type Option func(*poolConfig)

type poolConfig struct {
	groupSize     int
	waitStrategy  WaitStrategyName
	threadFactory ThreadFactory
	name          string
}

func defaultPoolConfig() poolConfig {
	return poolConfig{
		groupSize:     runtime.GOMAXPROCS(0) * 16,
		waitStrategy:  WaitYield,
		threadFactory: goroutineThreadFactory{},
		name:          "affinity-pool",
	}
}

// WithGroupSize sets the per-queue capacity (spec §3's
// affinity_group_size). Must be >= 1.
func WithGroupSize(c int) Option {
	return func(cfg *poolConfig) {
		if c > 0 {
			cfg.groupSize = c
		}
	}
}

// WithWaitStrategyName selects the built-in WaitStrategy workers use
// between empty polls.
func WithWaitStrategyName(n WaitStrategyName) Option {
	return func(cfg *poolConfig) {
		cfg.waitStrategy = n
	}
}

// WithThreadFactory overrides how worker loops are bound to OS threads.
// Like every Option, later calls win over earlier ones.
func WithThreadFactory(f ThreadFactory) Option {
	return func(cfg *poolConfig) {
		if f != nil {
			cfg.threadFactory = f
		}
	}
}

// WithName sets the pool's identity, surfaced in RejectionError.
func WithName(name string) Option {
	return func(cfg *poolConfig) {
		if name != "" {
			cfg.name = name
		}
	}
}

// WithCPUAffinityStrategies builds the default internal/cpu.Factory
// ThreadFactory from a list of tokens (spec §6's cpu-affinity-strategies)
// and installs it in place of the zero-configuration goroutine factory.
// strategies[workerID % len(strategies)] picks the strategy for a given
// worker, the same cycling internal/cpu.Factory itself uses.
// Like every Option, a later WithThreadFactory or WithCPUAffinityStrategies
// call wins over an earlier one.
func WithCPUAffinityStrategies(strategies ...CPUAffinityStrategy) Option {
	converted := make([]cpu.Strategy, len(strategies))
	for i, s := range strategies {
		converted[i] = toInternalStrategy(s)
	}
	factory := cpu.NewFactory(converted)
	return func(cfg *poolConfig) {
		cfg.threadFactory = factory
	}
}

func toInternalStrategy(s CPUAffinityStrategy) cpu.Strategy {
	switch s {
	case AffinitySameCore:
		return cpu.SameCore
	case AffinitySameSocket:
		return cpu.SameSocket
	case AffinityDifferentCore:
		return cpu.DifferentCore
	case AffinityDifferentSocket:
		return cpu.DifferentSocket
	default:
		return cpu.Any
	}
}
