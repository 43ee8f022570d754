//go:build debug

package affinitypool

import (
	"fmt"
	"log"
	"os"
)

var debugLogger = log.New(os.Stderr, "[AFFINITYPOOL DEBUG] ", log.Ltime|log.Lmicroseconds|log.Lshortfile)

// debugLog logs debug messages when built with -tags debug. Adapted from
// github.com/utkarsh5026/poolme's pool/debug.go and
// internal/scheduler/debug.go, which pair this logger with a call site in
// the production file rather than behind its own build tag — that pairing
// only compiles at all under -tags debug, so this copy adds the matching
// no-op in debug_off.go for a plain `go build`.
func debugLog(format string, args ...interface{}) {
	debugLogger.Output(2, fmt.Sprintf(format, args...))
}
