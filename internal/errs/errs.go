// Package errs defines the coordination-kernel error taxonomy shared by
// storage, the coordinator, and the CLI rendering layer.
package errs

import "errors"

// Kind values, one per case in spec.md §7. They are compared with
// errors.Is, never by string, so wrapping with fmt.Errorf("%w", ...) is
// always safe.
var (
	ErrNotInitialized  = errors.New("not initialized")
	ErrNameConflict    = errors.New("name conflict")
	ErrNotJoined       = errors.New("not joined")
	ErrNoCurrentTask   = errors.New("no current task")
	ErrClaimFailed     = errors.New("claim failed")
	ErrDependencyUnmet = errors.New("dependency unmet")
	ErrLeaderContended = errors.New("leader contention")
	ErrStoreBusy       = errors.New("store busy")
	ErrSchemaError     = errors.New("schema error")

	// ErrNotFound is a lower-level sentinel surfaced by the storage layer
	// for lookups (GetTask, GetAgent, ...) that don't map to a named kind.
	ErrNotFound = errors.New("not found")
)

// Kind returns the short taxonomy name used in JSON error bodies
// ({"error": "<kind>", ...}), or "" if err doesn't match a known sentinel.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotInitialized):
		return "NotInitialized"
	case errors.Is(err, ErrNameConflict):
		return "NameConflict"
	case errors.Is(err, ErrNotJoined):
		return "NotJoined"
	case errors.Is(err, ErrNoCurrentTask):
		return "NoCurrentTask"
	case errors.Is(err, ErrClaimFailed):
		return "ClaimFailed"
	case errors.Is(err, ErrDependencyUnmet):
		return "DependencyUnmet"
	case errors.Is(err, ErrLeaderContended):
		return "LeaderContention"
	case errors.Is(err, ErrStoreBusy):
		return "StoreBusy"
	case errors.Is(err, ErrSchemaError):
		return "SchemaError"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	default:
		return ""
	}
}

// ExitCode maps a Kind to the CLI exit convention from spec.md §6: 0 on
// success, 1 on user error. The core never exits a process itself; this is
// used by cmd/aqua to pick os.Exit codes.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
