package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aquacoord/aqua/internal/config"
	"github.com/aquacoord/aqua/internal/coordinator"
	"github.com/aquacoord/aqua/internal/errs"
	"github.com/aquacoord/aqua/internal/identity"
	"github.com/aquacoord/aqua/internal/render"
	"github.com/aquacoord/aqua/internal/storage/sqlite"
)

// aquaDirName is the on-disk layout root from spec.md §6.
const aquaDirName = ".aqua"

// findAquaDir walks upward from cwd looking for a .aqua directory,
// mirroring the teacher's auto-discovery of .beads/*.db. Returns "" if
// none is found within the filesystem root.
func findAquaDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, aquaDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// resolveAquaDir honors --db when given, else auto-discovers.
func resolveAquaDir() string {
	if dbFlag != "" {
		return dbFlag
	}
	return findAquaDir()
}

// requireAquaDir exits with errs.NotInitialized if no .aqua directory
// can be found (spec.md §7 NotInitialized: "store missing for the
// project").
func requireAquaDir() string {
	dir := resolveAquaDir()
	if dir == "" {
		render.FatalErr(errs.ErrNotInitialized)
	}
	return dir
}

// openCoordinator opens the store for an already-resolved .aqua
// directory and wraps it in a Coordinator built from that project's
// config (spec.md §10.3 file + env overrides layered on defaults).
func openCoordinator(ctx context.Context, aquaDir string) (*coordinator.Coordinator, func()) {
	cfg := config.Load(aquaDir)
	store, err := sqlite.Open(ctx, filepath.Join(aquaDir, "aqua.db"), sqlite.Options{
		BusyTimeoutMS: cfg.StoreBusyTimeoutMS,
	})
	if err != nil {
		render.FatalErr(err)
	}
	return coordinator.New(store, cfg), func() { _ = store.Close() }
}

// mustCoordinator is the one-liner most subcommands start with: find the
// project, open the store, hand back a ready Coordinator plus a deferred
// close.
func mustCoordinator(ctx context.Context) (*coordinator.Coordinator, func()) {
	return openCoordinator(ctx, requireAquaDir())
}

// currentAgentID resolves the caller's identity (spec.md §6 ladder) and
// verifies it names a currently-registered agent, surfacing NotJoined
// otherwise.
func currentAgentID(ctx context.Context, c *coordinator.Coordinator, aquaDir string) string {
	id := identity.Resolve(aquaDir)
	if _, err := c.Store.GetAgent(ctx, id); err != nil {
		render.FatalErr(errs.ErrNotJoined)
	}
	return id
}
