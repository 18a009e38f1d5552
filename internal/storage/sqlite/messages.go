package sqlite

import (
	"context"
	"database/sql"

	"github.com/aquacoord/aqua/internal/types"
)

// SendMessage inserts a message and returns its id. An empty ToAgent is a
// broadcast (spec.md §3 Message, scenario S6).
func (s *SQLiteStorage) SendMessage(ctx context.Context, m *types.Message) (int64, error) {
	var toAgent sql.NullString
	if m.ToAgent != "" {
		toAgent = sql.NullString{String: m.ToAgent, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (from_agent, to_agent, content, message_type, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.FromAgent, toAgent, m.Content, m.MessageType, m.CreatedAt)
	if err != nil {
		return 0, wrapDBError("send message", err)
	}
	id, err := res.LastInsertId()
	return id, wrapDBError("message last insert id", err)
}

const messageColumns = `id, from_agent, to_agent, content, message_type, created_at`

func scanMessage(row interface {
	Scan(dest ...interface{}) error
}) (*types.Message, error) {
	var m types.Message
	var toAgent sql.NullString
	if err := row.Scan(&m.ID, &m.FromAgent, &toAgent, &m.Content, &m.MessageType, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.ToAgent = toAgent.String
	return &m, nil
}

// Inbox lists messages addressed to agentID directly or broadcast to
// everyone. When unreadOnly is true, messages already read by agentID
// (per message_reads) are excluded. ReadAt on each returned message
// reflects agentID's own read marker, not the sender's.
func (s *SQLiteStorage) Inbox(ctx context.Context, agentID string, unreadOnly bool) ([]*types.Message, error) {
	query := `
		SELECT m.id, m.from_agent, m.to_agent, m.content, m.message_type, m.created_at, r.read_at
		FROM messages m
		LEFT JOIN message_reads r ON r.message_id = m.id AND r.agent_id = ?
		WHERE (m.to_agent = ? OR m.to_agent IS NULL)
	`
	args := []interface{}{agentID, agentID}
	if unreadOnly {
		query += ` AND r.read_at IS NULL`
	}
	query += ` ORDER BY m.created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("inbox", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Message
	for rows.Next() {
		var m types.Message
		var toAgent sql.NullString
		var readAt sql.NullString
		if err := rows.Scan(&m.ID, &m.FromAgent, &toAgent, &m.Content, &m.MessageType, &m.CreatedAt, &readAt); err != nil {
			return nil, wrapDBError("scan inbox row", err)
		}
		m.ToAgent = toAgent.String
		m.ReadAt = parseNullableTimeString(readAt)
		out = append(out, &m)
	}
	return out, wrapDBError("iterate inbox rows", rows.Err())
}

// MarkMessageRead records agentID's read marker for messageID, idempotent
// on repeat calls (spec.md scenario S6: broadcast reads are independent
// per recipient).
func (s *SQLiteStorage) MarkMessageRead(ctx context.Context, messageID int64, agentID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO message_reads (message_id, agent_id, read_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (message_id, agent_id) DO UPDATE SET read_at = excluded.read_at
	`, messageID, agentID)
	return wrapDBError("mark message read", err)
}

// ListMessages lists the most recent messages across all agents, newest
// first, for `aqua events`-style auditing. limit <= 0 means no limit.
func (s *SQLiteStorage) ListMessages(ctx context.Context, limit int) ([]*types.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages ORDER BY created_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("list messages", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, wrapDBError("scan message row", err)
		}
		out = append(out, m)
	}
	return out, wrapDBError("iterate message rows", rows.Err())
}
