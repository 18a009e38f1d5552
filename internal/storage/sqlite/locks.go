package sqlite

import (
	"context"

	"github.com/aquacoord/aqua/internal/errs"
	"github.com/aquacoord/aqua/internal/types"
)

// LockFile records an advisory claim on a file path (spec.md §3 File
// lock: "the core never touches the filesystem; this is bookkeeping
// agents are expected to honor"). A UNIQUE violation on file_path
// surfaces as errs.ErrNameConflict, read by callers as "already locked".
func (s *SQLiteStorage) LockFile(ctx context.Context, path, agentID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO file_locks (file_path, agent_id, locked_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	`, path, agentID)
	return wrapDBError("lock file", err)
}

// UnlockFile releases agentID's lock on path. Unlocking a path locked by
// a different agent is a no-op error, not silently honored.
func (s *SQLiteStorage) UnlockFile(ctx context.Context, path, agentID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM file_locks WHERE file_path = ? AND agent_id = ?`, path, agentID)
	if err != nil {
		return wrapDBError("unlock file", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError("rows affected", err)
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListLocks lists all held file locks.
func (s *SQLiteStorage) ListLocks(ctx context.Context) ([]*types.FileLock, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT file_path, agent_id, locked_at FROM file_locks ORDER BY file_path`)
	if err != nil {
		return nil, wrapDBError("list locks", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.FileLock
	for rows.Next() {
		var l types.FileLock
		if err := rows.Scan(&l.FilePath, &l.AgentID, &l.LockedAt); err != nil {
			return nil, wrapDBError("scan lock row", err)
		}
		out = append(out, &l)
	}
	return out, wrapDBError("iterate lock rows", rows.Err())
}

// ReleaseLocksForAgent releases every lock held by agentID (spec.md §4 C7
// dead-agent recovery: a dead agent's file locks are released so other
// agents aren't blocked indefinitely).
func (s *SQLiteStorage) ReleaseLocksForAgent(ctx context.Context, agentID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM file_locks WHERE agent_id = ?`, agentID)
	return wrapDBError("release locks for agent", err)
}
