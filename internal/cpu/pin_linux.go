//go:build linux

package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore pins the calling OS thread to cpuID. Must be called after
// runtime.LockOSThread(). Adapted from
// github.com/utkarsh5026/poolme/internal/cpu/affinity_linux.go.
func pinToCore(cpuID int) (uintptr, error) {
	numCPU := runtime.NumCPU()
	if cpuID < 0 || cpuID >= numCPU {
		cpuID %= numCPU
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)

	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return 0, err
	}
	return uintptr(cpuID), nil
}
