// Package debug provides the ambient, env-var-gated diagnostic logging used
// across aqua, adapted from the teacher's internal/debug package: no
// structured logging framework, just a mutex-guarded set of stderr/stdout
// print helpers gated by a debug flag and a quiet flag.
package debug

import (
	"fmt"
	"os"
	"sync"
)

var (
	enabled     = os.Getenv("AQUA_DEBUG") != ""
	verboseMode = false
	quietMode   = false
	logMutex    sync.Mutex
)

// Enabled reports whether debug output is active (env var or --verbose).
func Enabled() bool {
	logMutex.Lock()
	defer logMutex.Unlock()
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output for the process.
func SetVerbose(verbose bool) {
	logMutex.Lock()
	defer logMutex.Unlock()
	verboseMode = verbose
}

// SetQuiet suppresses normal (non-essential) output.
func SetQuiet(quiet bool) {
	logMutex.Lock()
	defer logMutex.Unlock()
	quietMode = quiet
}

// IsQuiet reports whether quiet mode is active.
func IsQuiet() bool {
	logMutex.Lock()
	defer logMutex.Unlock()
	return quietMode
}

// Logf writes a debug line to stderr, only when debug output is enabled.
func Logf(format string, args ...interface{}) {
	if Enabled() {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// PrintNormal writes to stdout unless quiet mode is enabled. Use for
// ordinary informational output that quiet mode should suppress.
func PrintNormal(format string, args ...interface{}) {
	if !IsQuiet() {
		fmt.Printf(format, args...)
	}
}

// PrintlnNormal is PrintNormal with a trailing newline.
func PrintlnNormal(args ...interface{}) {
	if !IsQuiet() {
		fmt.Println(args...)
	}
}
