package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeTemp(t, "pool.yaml", `
parallelism_min: 2
parallelism_max: 16
parallelism_factor: 1.0
affinity_group_size: 32
worker_waiting_strategy: yield
cpu_affinity_strategies:
  - same-core
name: test-pool
`)

	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: unexpected error: %v", err)
	}
	if fc.ParallelismMin != 2 || fc.ParallelismMax != 16 {
		t.Fatalf("unexpected parallelism bounds: %+v", fc)
	}
	if fc.WorkerWaitingStrategy != "yield" {
		t.Fatalf("unexpected wait strategy: %q", fc.WorkerWaitingStrategy)
	}
}

func TestLoadFile_JSON(t *testing.T) {
	path := writeTemp(t, "pool.json", `{
		"parallelism_min": 1,
		"parallelism_max": 4,
		"affinity_group_size": 8,
		"worker_waiting_strategy": "busy-spin"
	}`)

	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: unexpected error: %v", err)
	}
	if fc.AffinityGroupSize != 8 {
		t.Fatalf("unexpected affinity_group_size: %d", fc.AffinityGroupSize)
	}
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	path := writeTemp(t, "pool.toml", "parallelism_min = 1")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestFileConfig_Validate(t *testing.T) {
	bad := &FileConfig{ParallelismMin: 8, ParallelismMax: 2}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error when parallelism_min > parallelism_max")
	}

	good := &FileConfig{ParallelismMin: 1, ParallelismMax: 8}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFileConfig_ResolveRoundsToPowerOfTwo(t *testing.T) {
	fc := &FileConfig{ParallelismMin: 5, ParallelismMax: 5, ParallelismFactor: 0}
	n, _, err := fc.Resolve()
	if err != nil {
		t.Fatalf("Resolve: unexpected error: %v", err)
	}
	if n&(n-1) != 0 {
		t.Fatalf("expected a power of two, got %d", n)
	}
	if n < 5 {
		t.Fatalf("expected n >= parallelism_min, got %d", n)
	}
}

func TestFileConfig_ResolveRejectsUnknownToken(t *testing.T) {
	fc := &FileConfig{ParallelismMin: 1, WorkerWaitingStrategy: "not-a-real-strategy"}
	if _, _, err := fc.Resolve(); err == nil {
		t.Fatal("expected error for unknown worker_waiting_strategy token")
	}
}
