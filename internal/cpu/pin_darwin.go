//go:build darwin

package cpu

// pinToCore is a no-op on macOS: the kernel does not expose a stable
// thread-to-core affinity API to user space. runtime.LockOSThread (done
// by the caller) is the only guarantee available on this platform.
// Adapted from github.com/utkarsh5026/poolme/internal/cpu/affinity_darwin.go.
func pinToCore(cpuID int) (uintptr, error) {
	return 0, nil
}
