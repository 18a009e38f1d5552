//go:build !(unix || linux || darwin)

package coordinator

// processAlive has no portable zero-signal probe outside unix; treat the
// pid as alive so recovery never evicts an agent it can't actually check
// (spec.md §4.6 errs toward not recovering a merely-unprobeable agent).
func processAlive(pid int) bool {
	return true
}
