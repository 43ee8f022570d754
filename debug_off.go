//go:build !debug

package affinitypool

func debugLog(format string, args ...interface{}) {}
