package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveAgentIDEnvWins(t *testing.T) {
	t.Setenv("AQUA_AGENT_ID", "ag-abc123")
	t.Setenv("AQUA_SESSION_ID", "")
	require.Equal(t, "ag-abc123", Resolve(t.TempDir()))
}

func TestResolveSessionFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AQUA_AGENT_ID", "")
	t.Setenv("AQUA_SESSION_ID", "term1")
	require.NoError(t, BindSession(dir, "term1", "ag-xyz789"))
	require.Equal(t, "ag-xyz789", Resolve(dir))
}

func TestResolveDefaultFallback(t *testing.T) {
	t.Setenv("AQUA_AGENT_ID", "")
	t.Setenv("AQUA_SESSION_ID", "")
	// No TTY attached in test runs (stdin isn't a terminal), so this
	// should fall through to the literal default.
	require.Equal(t, "default", Resolve(t.TempDir()))
}
