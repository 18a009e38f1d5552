package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aquacoord/aqua/internal/types"
)

// JoinAgent registers a new agent (spec.md §4 C6, §6 `aqua join`). The
// caller is expected to have already resolved a unique name and minted an
// id via internal/idgen; a UNIQUE violation here surfaces as
// errs.ErrNameConflict through wrapDBError.
func (s *SQLiteStorage) JoinAgent(ctx context.Context, a *types.Agent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agents (id, name, type, pid, status, last_heartbeat_at, registered_at,
			current_task_id, capabilities, metadata, last_progress, role)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?)
	`, a.ID, a.Name, string(a.Type), a.PID, string(a.Status), a.LastHeartbeatAt, a.RegisteredAt,
		a.CurrentTaskID, types.EncodeStringSet(a.Capabilities), types.EncodeStringMap(a.Metadata),
		a.LastProgress, a.Role)
	return wrapDBError("join agent", err)
}

// LeaveAgent removes an agent's registration (spec.md §6 `aqua leave`).
// Its claimed task, if any, is left in place for recovery to pick up —
// callers that want an immediate requeue should call AbandonTask first.
func (s *SQLiteStorage) LeaveAgent(ctx context.Context, agentID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM agents WHERE id = ?`, agentID)
	return wrapDBError("leave agent", err)
}

// Heartbeat refreshes an agent's liveness timestamp and optional progress
// note (spec.md §4 C6, §5 "an agent that stops heartbeating").
func (s *SQLiteStorage) Heartbeat(ctx context.Context, agentID string, progress string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE agents SET last_heartbeat_at = CURRENT_TIMESTAMP, status = 'active', last_progress = ?
		WHERE id = ?
	`, progress, agentID)
	if err != nil {
		return wrapDBError("heartbeat", err)
	}
	return rowsAffectedOrNotFound(res)
}

// SetLastHeartbeatAtForTesting backdates an agent's heartbeat column
// directly, bypassing the normal CURRENT_TIMESTAMP write. Exported only
// for recovery-sweep tests elsewhere in the module that need to force a
// stale heartbeat deterministically; not part of the storage.Store
// contract.
func (s *SQLiteStorage) SetLastHeartbeatAtForTesting(ctx context.Context, agentID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE agents SET last_heartbeat_at = ? WHERE id = ?`, at, agentID)
	if err != nil {
		return wrapDBError("set last heartbeat at", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (s *SQLiteStorage) scanAgent(row interface {
	Scan(dest ...interface{}) error
}) (*types.Agent, error) {
	var a types.Agent
	var pid sql.NullInt64
	var currentTaskID sql.NullString
	var capabilities, metadata string
	err := row.Scan(&a.ID, &a.Name, &a.Type, &pid, &a.Status, &a.LastHeartbeatAt, &a.RegisteredAt,
		&currentTaskID, &capabilities, &metadata, &a.LastProgress, &a.Role)
	if err != nil {
		return nil, err
	}
	a.PID = int(pid.Int64)
	a.CurrentTaskID = currentTaskID.String
	a.Capabilities = types.DecodeStringSet(capabilities)
	a.Metadata = types.DecodeStringMap(metadata)
	return &a, nil
}

const agentColumns = `id, name, type, pid, status, last_heartbeat_at, registered_at,
	current_task_id, capabilities, metadata, last_progress, role`

// GetAgent fetches an agent by id.
func (s *SQLiteStorage) GetAgent(ctx context.Context, agentID string) (*types.Agent, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = ?`, agentID)
	a, err := s.scanAgent(row)
	if err != nil {
		return nil, wrapDBError("get agent", err)
	}
	return a, nil
}

// GetAgentByName fetches an agent by its display name (used by
// Coordinator.Join to detect a name conflict).
func (s *SQLiteStorage) GetAgentByName(ctx context.Context, name string) (*types.Agent, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE name = ?`, name)
	a, err := s.scanAgent(row)
	if err != nil {
		return nil, wrapDBError("get agent by name", err)
	}
	return a, nil
}

// ListAgents lists all registered agents ordered by name.
func (s *SQLiteStorage) ListAgents(ctx context.Context) ([]*types.Agent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+agentColumns+` FROM agents ORDER BY name`)
	if err != nil {
		return nil, wrapDBError("list agents", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Agent
	for rows.Next() {
		a, err := s.scanAgent(rows)
		if err != nil {
			return nil, wrapDBError("scan agent row", err)
		}
		out = append(out, a)
	}
	return out, wrapDBError("iterate agent rows", rows.Err())
}

// SetCurrentTask records the task an agent currently holds. Used by the
// coordinator alongside the task claim write (spec.md §4 C5/C6
// atomicity note); not transactional on its own.
func (s *SQLiteStorage) SetCurrentTask(ctx context.Context, agentID, taskID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE agents SET current_task_id = ? WHERE id = ?`, taskID, agentID)
	if err != nil {
		return wrapDBError("set current task", err)
	}
	return rowsAffectedOrNotFound(res)
}

// ClearCurrentTask clears an agent's held task (spec.md §9: an agent may
// hold at most one task; clearing happens on complete/fail/abandon).
func (s *SQLiteStorage) ClearCurrentTask(ctx context.Context, agentID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE agents SET current_task_id = NULL WHERE id = ?`, agentID)
	if err != nil {
		return wrapDBError("clear current task", err)
	}
	return rowsAffectedOrNotFound(res)
}

// MarkAgentStatus transitions an agent's liveness status (used by
// recovery to mark dead agents, spec.md §4 C7; unresponsive agents are
// only logged as an event, not given a status).
func (s *SQLiteStorage) MarkAgentStatus(ctx context.Context, agentID string, status types.AgentStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE agents SET status = ? WHERE id = ?`, string(status), agentID)
	if err != nil {
		return wrapDBError("mark agent status", err)
	}
	return rowsAffectedOrNotFound(res)
}

func rowsAffectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError("rows affected", err)
	}
	if n == 0 {
		return wrapDBError("update", sql.ErrNoRows)
	}
	return nil
}
