// Package identity resolves "who is calling" for the CLI (spec.md §6
// Identity resolution), external to the coordination kernel itself: the
// core only ever accepts an already-resolved agent id as a parameter.
// Resolution order, per spec.md: AQUA_AGENT_ID env var, then
// AQUA_SESSION_ID mapped to a session file, then the current TTY device
// name mapped to a session file, then the literal "default".
package identity

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
)

// SessionDir is the directory holding per-terminal identity files
// (spec.md §6 on-disk layout: ".aqua/sessions/<session>.agent").
func SessionDir(aquaDir string) string {
	return filepath.Join(aquaDir, "sessions")
}

func sessionFilePath(aquaDir, session string) string {
	return filepath.Join(SessionDir(aquaDir), session+".agent")
}

// Resolve walks the four-rung identity ladder from spec.md §6 and
// returns the agent id the caller should use. It never fails — the
// lowest rung, "default", always resolves — so callers distinguish "no
// identity configured" from a real error at the point they try to look
// the id up as a registered agent.
func Resolve(aquaDir string) string {
	if id := os.Getenv("AQUA_AGENT_ID"); id != "" {
		return id
	}
	if session := os.Getenv("AQUA_SESSION_ID"); session != "" {
		if id := readSessionFile(aquaDir, session); id != "" {
			return id
		}
	}
	if tty := currentTTYName(); tty != "" {
		if id := readSessionFile(aquaDir, tty); id != "" {
			return id
		}
	}
	return "default"
}

// BindSession records agentID as the identity for session (the
// AQUA_SESSION_ID value or a TTY device name), so a later Resolve call
// from the same terminal finds it without AQUA_AGENT_ID being set. This
// is the write side of the "session file" rung of the ladder; the core
// never calls it, only `aqua join` does.
func BindSession(aquaDir, session, agentID string) error {
	dir := SessionDir(aquaDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(sessionFilePath(aquaDir, session), []byte(agentID), 0o644)
}

// CurrentSessionName returns the session key Resolve would use for
// BindSession, following the same AQUA_SESSION_ID-then-TTY fallback
// (without the "default" rung, since there's nothing to bind a session
// file to at that point).
func CurrentSessionName() string {
	if session := os.Getenv("AQUA_SESSION_ID"); session != "" {
		return session
	}
	if tty := currentTTYName(); tty != "" {
		return tty
	}
	return ""
}

func readSessionFile(aquaDir, session string) string {
	data, err := os.ReadFile(sessionFilePath(aquaDir, session))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// currentTTYName returns a filesystem-safe identifier for the calling
// process's controlling terminal, or "" if stdin isn't a TTY (e.g.
// piped input, a background job). mattn/go-isatty is the same detector
// the corpus uses for other terminal-capability checks (color support).
func currentTTYName() string {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return ""
	}
	name, err := os.Readlink("/proc/self/fd/0")
	if err != nil || name == "" {
		return ""
	}
	return strings.ReplaceAll(strings.TrimPrefix(name, "/dev/"), "/", "_")
}
