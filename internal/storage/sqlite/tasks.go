package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aquacoord/aqua/internal/errs"
	"github.com/aquacoord/aqua/internal/storage"
	"github.com/aquacoord/aqua/internal/types"
)

// AddTask inserts a new task in the pending state (spec.md §4 C5, §6
// `aqua add`).
func (s *SQLiteStorage) AddTask(ctx context.Context, t *types.Task) error {
	if err := types.ValidatePriority(t.Priority); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, created_by, created_at, updated_at,
			max_retries, tags, context, version, depends_on)
		VALUES (?, ?, ?, 'pending', ?, ?, ?, ?, ?, ?, ?, 1, ?)
	`, t.ID, t.Title, t.Description, t.Priority, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
		t.MaxRetries, types.EncodeStringSet(t.Tags), t.Context, types.EncodeStringSet(t.DependsOn))
	return wrapDBError("add task", err)
}

const taskColumns = `id, title, description, status, priority, created_by, claimed_by, claim_term,
	created_at, updated_at, claimed_at, completed_at, result, error, retry_count, max_retries,
	tags, context, version, depends_on`

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*types.Task, error) {
	var t types.Task
	var claimedBy sql.NullString
	var claimedAt, completedAt sql.NullString
	var tags, dependsOn string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.CreatedBy,
		&claimedBy, &t.ClaimTerm, &t.CreatedAt, &t.UpdatedAt, &claimedAt, &completedAt,
		&t.Result, &t.Error, &t.RetryCount, &t.MaxRetries, &tags, &t.Context, &t.Version, &dependsOn)
	if err != nil {
		return nil, err
	}
	t.ClaimedBy = claimedBy.String
	t.ClaimedAt = parseNullableTimeString(claimedAt)
	t.CompletedAt = parseNullableTimeString(completedAt)
	t.Tags = types.DecodeStringSet(tags)
	t.DependsOn = types.DecodeStringSet(dependsOn)
	return &t, nil
}

// GetTask fetches a task by id.
func (s *SQLiteStorage) GetTask(ctx context.Context, taskID string) (*types.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, taskID)
	t, err := scanTask(row)
	if err != nil {
		return nil, wrapDBError("get task", err)
	}
	return t, nil
}

// ListTasks lists tasks matching filter, newest first.
func (s *SQLiteStorage) ListTasks(ctx context.Context, filter storage.TaskFilter) ([]*types.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	var args []interface{}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.ClaimedBy != "" {
		query += ` AND claimed_by = ?`
		args = append(args, filter.ClaimedBy)
	}
	if filter.CreatedBy != "" {
		query += ` AND created_by = ?`
		args = append(args, filter.CreatedBy)
	}
	if filter.Tag != "" {
		query += ` AND tags LIKE ?`
		args = append(args, "%"+filter.Tag+"%")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("list tasks", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, wrapDBError("scan task row", err)
		}
		out = append(out, t)
	}
	return out, wrapDBError("iterate task rows", rows.Err())
}

// dependenciesSatisfied reports whether every task id in dependsOn is
// marked done (spec.md §4 C5 "a task is eligible for claim only once all
// of depends_on have status done").
func dependenciesSatisfied(ctx context.Context, tx *sql.Tx, dependsOn types.StringSet) (bool, error) {
	for _, dep := range dependsOn {
		var status string
		err := tx.QueryRowContext(ctx, `SELECT status FROM tasks WHERE id = ?`, dep).Scan(&status)
		if err == sql.ErrNoRows {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if status != string(types.TaskDone) {
			return false, nil
		}
	}
	return true, nil
}

// ClaimNextTask atomically selects and claims the highest-priority
// eligible pending task (spec.md §4 C5). Eligibility requires status
// pending and every dependency done; capableTags, when non-empty,
// restricts selection to tasks whose tags intersect it (spec.md §12
// advisory role preference extended to capability matching). term is the
// caller's current leader term, recorded on the claimed row as a fencing
// token (spec.md §3 Task, §9 "claim_term is recorded but current
// operations do not verify it").
func (s *SQLiteStorage) ClaimNextTask(ctx context.Context, agentID string, term int64, capableTags []string) (*types.Task, error) {
	var claimed *types.Task
	err := s.withImmediateTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks
			WHERE status = 'pending' ORDER BY priority DESC, created_at ASC`)
		if err != nil {
			return err
		}
		var candidates []*types.Task
		for rows.Next() {
			t, err := scanTask(rows)
			if err != nil {
				_ = rows.Close()
				return err
			}
			candidates = append(candidates, t)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		_ = rows.Close()

		for _, t := range candidates {
			if len(capableTags) > 0 && !tagsIntersect(t.Tags, capableTags) {
				continue
			}
			ok, err := dependenciesSatisfied(ctx, tx, t.DependsOn)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			res, err := tx.ExecContext(ctx, `
				UPDATE tasks SET status = 'claimed', claimed_by = ?, claim_term = ?,
					claimed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP, version = version + 1
				WHERE id = ? AND status = 'pending'
			`, agentID, term, t.ID)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				continue // lost a race to another claimant; try the next candidate
			}
			row := tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, t.ID)
			claimed, err = scanTask(row)
			return err
		}
		return errs.ErrClaimFailed
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func tagsIntersect(taskTags types.StringSet, capable []string) bool {
	for _, c := range capable {
		if taskTags.Contains(c) {
			return true
		}
	}
	return false
}

// ClaimSpecificTask claims taskID by agentID if it is currently pending
// and its dependencies are satisfied (spec.md §6 `aqua claim <id>`).
func (s *SQLiteStorage) ClaimSpecificTask(ctx context.Context, agentID, taskID string, term int64) (*types.Task, error) {
	var claimed *types.Task
	err := s.withImmediateTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, taskID)
		t, err := scanTask(row)
		if err == sql.ErrNoRows {
			return errs.ErrNotFound
		}
		if err != nil {
			return err
		}
		if t.Status != types.TaskPending {
			return errs.ErrClaimFailed
		}
		ok, err := dependenciesSatisfied(ctx, tx, t.DependsOn)
		if err != nil {
			return err
		}
		if !ok {
			return errs.ErrDependencyUnmet
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE tasks SET status = 'claimed', claimed_by = ?, claim_term = ?,
				claimed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP, version = version + 1
			WHERE id = ? AND status = 'pending'
		`, agentID, term, taskID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.ErrClaimFailed
		}
		row = tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, taskID)
		claimed, err = scanTask(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// CompleteTask marks a claimed task done (spec.md §6 `aqua done`). The
// claimed_by predicate ensures a caller can only complete the task it
// actually holds the claim on, not merely any task that happens to be in
// the claimed state.
func (s *SQLiteStorage) CompleteTask(ctx context.Context, taskID, agentID, result string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = 'done', result = ?, completed_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP, version = version + 1
		WHERE id = ? AND claimed_by = ? AND status = 'claimed'
	`, result, taskID, agentID)
	if err != nil {
		return wrapDBError("complete task", err)
	}
	return rowsAffectedOrClaimFailed(res)
}

// FailTask marks a claimed task failed: a terminal state for this attempt
// (spec.md §4.5 "done and failed are terminal for the current attempt").
// Unlike abandon, failure never re-queues on its own. Gated on claimed_by
// for the same reason as CompleteTask: a stale identity can't reach into
// a task another agent now holds.
func (s *SQLiteStorage) FailTask(ctx context.Context, taskID, agentID, errMsg string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = 'failed', error = ?, retry_count = retry_count + 1,
			updated_at = CURRENT_TIMESTAMP, version = version + 1
		WHERE id = ? AND claimed_by = ? AND status = 'claimed'
	`, errMsg, taskID, agentID)
	if err != nil {
		return wrapDBError("fail task", err)
	}
	return rowsAffectedOrClaimFailed(res)
}

// AbandonTask is the recovery-only transition from claimed to abandoned
// (spec.md §4.5): clears claimed_by, records the reason, and increments
// retry_count. The task stays abandoned, not pending, until
// RequeueAbandoned sweeps it back under the retry cap.
func (s *SQLiteStorage) AbandonTask(ctx context.Context, taskID, reason string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = 'abandoned', claimed_by = NULL, error = ?,
			retry_count = retry_count + 1, updated_at = CURRENT_TIMESTAMP, version = version + 1
		WHERE id = ? AND status = 'claimed'
	`, reason, taskID)
	if err != nil {
		return wrapDBError("abandon task", err)
	}
	return rowsAffectedOrClaimFailed(res)
}

// RequeueAbandoned flips every abandoned task with retry_count < max_retries
// back to pending (spec.md §4.5 requeue_abandoned). Tasks that have
// exhausted their retry budget remain abandoned for human attention.
// Returns the number of tasks requeued.
func (s *SQLiteStorage) RequeueAbandoned(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = 'pending', claimed_at = NULL,
			updated_at = CURRENT_TIMESTAMP, version = version + 1
		WHERE status = 'abandoned' AND retry_count < max_retries
	`)
	if err != nil {
		return 0, wrapDBError("requeue abandoned", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapDBError("rows affected", err)
	}
	return int(n), nil
}

// SetTaskProgress records a free-text progress note in a claimed task's
// context field without changing its status.
func (s *SQLiteStorage) SetTaskProgress(ctx context.Context, taskID, progress string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET context = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = 'claimed'
	`, progress, taskID)
	if err != nil {
		return wrapDBError("set task progress", err)
	}
	return rowsAffectedOrClaimFailed(res)
}

// ListAbandonedCandidates lists claimed tasks whose claimed_at predates
// now-claimTimeout: recovery treats these as stale regardless of whether
// the claiming agent is dead (spec.md §4 C7 stale-claim sweep).
func (s *SQLiteStorage) ListAbandonedCandidates(ctx context.Context, claimTimeout time.Duration) ([]*types.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE status = 'claimed' AND claimed_at IS NOT NULL
		AND claimed_at < datetime('now', ?)
	`, fmt.Sprintf("-%d seconds", int(claimTimeout.Seconds())))
	if err != nil {
		return nil, wrapDBError("list abandoned candidates", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, wrapDBError("scan task row", err)
		}
		out = append(out, t)
	}
	return out, wrapDBError("iterate task rows", rows.Err())
}

// TaskCounts returns a status-breakdown aggregate across all tasks,
// seeded at zero for every known status so a status with no rows still
// shows up (spec.md §6 `aqua tasks --counts`, grounded on the original
// Python implementation's get_task_counts).
func (s *SQLiteStorage) TaskCounts(ctx context.Context) (map[types.TaskStatus]int, error) {
	counts := map[types.TaskStatus]int{
		types.TaskPending:   0,
		types.TaskClaimed:   0,
		types.TaskDone:      0,
		types.TaskFailed:    0,
		types.TaskAbandoned: 0,
	}
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, wrapDBError("task counts", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, wrapDBError("scan task count row", err)
		}
		counts[types.TaskStatus(status)] = n
	}
	return counts, wrapDBError("iterate task count rows", rows.Err())
}

func rowsAffectedOrClaimFailed(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError("rows affected", err)
	}
	if n == 0 {
		return errs.ErrClaimFailed
	}
	return nil
}
