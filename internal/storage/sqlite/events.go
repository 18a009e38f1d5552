package sqlite

import (
	"context"

	"github.com/aquacoord/aqua/internal/storage"
	"github.com/aquacoord/aqua/internal/types"
)

// AppendEvent inserts an immutable audit log entry (spec.md §4 C8). The
// events table has no update or delete path. Like the package's other
// single-statement writes it does not use withImmediateTx, since inserts
// don't need the write lock taken up front and contend far less than task
// claims.
func (s *SQLiteStorage) AppendEvent(ctx context.Context, e *types.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (timestamp, event_type, agent_id, task_id, detail)
		VALUES (?, ?, ?, ?, ?)
	`, e.Timestamp, e.EventType, e.AgentID, e.TaskID, types.EncodeStringMap(e.Detail))
	return wrapDBError("append event", err)
}

// ListEvents lists events matching filter, newest first (spec.md §4.8
// query filters: type, agent, task, time window).
func (s *SQLiteStorage) ListEvents(ctx context.Context, filter storage.EventFilter) ([]*types.Event, error) {
	query := `SELECT id, timestamp, event_type, agent_id, task_id, detail FROM events WHERE 1=1`
	var args []interface{}
	if filter.EventType != "" {
		query += ` AND event_type = ?`
		args = append(args, filter.EventType)
	}
	if filter.AgentID != "" {
		query += ` AND agent_id = ?`
		args = append(args, filter.AgentID)
	}
	if filter.TaskID != "" {
		query += ` AND task_id = ?`
		args = append(args, filter.TaskID)
	}
	if !filter.Since.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, filter.Since)
	}
	if !filter.Until.IsZero() {
		query += ` AND timestamp <= ?`
		args = append(args, filter.Until)
	}
	query += ` ORDER BY timestamp DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("list events", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Event
	for rows.Next() {
		var e types.Event
		var detail string
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.EventType, &e.AgentID, &e.TaskID, &detail); err != nil {
			return nil, wrapDBError("scan event row", err)
		}
		e.Detail = types.DecodeStringMap(detail)
		out = append(out, &e)
	}
	return out, wrapDBError("iterate event rows", rows.Err())
}
