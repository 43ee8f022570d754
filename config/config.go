// Package config loads a Pool's construction parameters from a YAML or
// JSON file: parallelism bounds, per-queue capacity, the CPU-affinity
// strategy list, and the worker wait strategy.
//
// Grounded on nyasuto-chaos-kvs's internal/config/config.go: the same
// FileConfig-struct-with-yaml/json-tags shape, the same LoadFile extension
// dispatch between gopkg.in/yaml.v3 and encoding/json, and the same
// Validate-then-resolve-with-defaults two-step conversion.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RamSinha/affinitypool"
	"github.com/RamSinha/affinitypool/internal/mathutil"
)

// FileConfig is the on-disk shape of a pool's configuration.
type FileConfig struct {
	ParallelismMin        int      `yaml:"parallelism_min" json:"parallelism_min"`
	ParallelismFactor     float64  `yaml:"parallelism_factor" json:"parallelism_factor"`
	ParallelismMax        int      `yaml:"parallelism_max" json:"parallelism_max"`
	AffinityGroupSize     int      `yaml:"affinity_group_size" json:"affinity_group_size"`
	CPUAffinityStrategies []string `yaml:"cpu_affinity_strategies" json:"cpu_affinity_strategies"`
	WorkerWaitingStrategy string   `yaml:"worker_waiting_strategy" json:"worker_waiting_strategy"`
	Name                  string   `yaml:"name" json:"name"`
}

// LoadFile reads and parses path, dispatching on its extension the same
// way chaos-kvs's LoadFile does: .yaml/.yml via yaml.v3, .json via
// encoding/json, anything else is an error.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read file: %w", err)
	}

	var cfg FileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported format %q", ext)
	}

	return &cfg, nil
}

// Validate checks the raw field values before Resolve attempts to turn
// them into pool options, mirroring chaos-kvs's Validate: range and
// sign checks only, no cross-field defaulting.
func (f *FileConfig) Validate() error {
	if f.ParallelismMin < 0 {
		return fmt.Errorf("config: parallelism_min must be non-negative")
	}
	if f.ParallelismMax < 0 {
		return fmt.Errorf("config: parallelism_max must be non-negative")
	}
	if f.ParallelismMin > 0 && f.ParallelismMax > 0 && f.ParallelismMin > f.ParallelismMax {
		return fmt.Errorf("config: parallelism_min must be <= parallelism_max")
	}
	if f.ParallelismFactor < 0 {
		return fmt.Errorf("config: parallelism_factor must be non-negative")
	}
	if f.AffinityGroupSize < 0 {
		return fmt.Errorf("config: affinity_group_size must be non-negative")
	}
	return nil
}

// Resolve computes the pool's parallelism from
// clamp(ceil(NumCPU * parallelism_factor), parallelism_min, parallelism_max),
// rounds it up to a power of two, and converts the remaining tokens to
// affinitypool's enums, returning every unknown token wrapped in
// affinitypool.ErrInvalidArgument so callers can distinguish a malformed
// config file from other construction failures.
func (f *FileConfig) Resolve() (int, []affinitypool.Option, error) {
	if err := f.Validate(); err != nil {
		return 0, nil, err
	}

	n := f.parallelism()

	var opts []affinitypool.Option
	if f.AffinityGroupSize > 0 {
		opts = append(opts, affinitypool.WithGroupSize(f.AffinityGroupSize))
	}
	if f.Name != "" {
		opts = append(opts, affinitypool.WithName(f.Name))
	}

	if f.WorkerWaitingStrategy != "" {
		wait, err := affinitypool.ParseWaitStrategyName(f.WorkerWaitingStrategy)
		if err != nil {
			return 0, nil, err
		}
		opts = append(opts, affinitypool.WithWaitStrategyName(wait))
	}

	if len(f.CPUAffinityStrategies) > 0 {
		strategies := make([]affinitypool.CPUAffinityStrategy, len(f.CPUAffinityStrategies))
		for i, token := range f.CPUAffinityStrategies {
			s, err := affinitypool.ParseCPUAffinityStrategy(token)
			if err != nil {
				return 0, nil, err
			}
			strategies[i] = s
		}
		opts = append(opts, affinitypool.WithCPUAffinityStrategies(strategies...))
	}

	return n, opts, nil
}

func (f *FileConfig) parallelism() int {
	factor := f.ParallelismFactor
	if factor <= 0 {
		factor = 1.0
	}

	n := int(math.Ceil(float64(runtime.NumCPU()) * factor))
	if f.ParallelismMin > 0 && n < f.ParallelismMin {
		n = f.ParallelismMin
	}
	if f.ParallelismMax > 0 && n > f.ParallelismMax {
		n = f.ParallelismMax
	}
	if n < 1 {
		n = 1
	}

	return mathutil.NextPowerOfTwo(n)
}

// New loads path and constructs a ready-to-use Pool from it in one step.
func New(path string) (*affinitypool.Pool, error) {
	fc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	n, opts, err := fc.Resolve()
	if err != nil {
		return nil, err
	}
	return affinitypool.New(n, opts...)
}
