package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aquacoord/aqua/internal/errs"
	"github.com/aquacoord/aqua/internal/types"
)

// TryBecomeLeader attempts single-leader election with a lease (spec.md
// §4 C4): if no leader row exists, or the existing lease has expired, the
// caller becomes leader with a fresh term (a fencing token any stale
// former leader's writes can be checked against). Returns the resulting
// leader record and whether the caller won.
func (s *SQLiteStorage) TryBecomeLeader(ctx context.Context, agentID string, leaseDuration time.Duration) (*types.Leader, bool, error) {
	var result *types.Leader
	var won bool
	err := s.withImmediateTx(ctx, func(tx *sql.Tx) error {
		var l types.Leader
		err := tx.QueryRowContext(ctx, `SELECT agent_id, term, lease_expires_at, elected_at FROM leader WHERE id = 1`).
			Scan(&l.AgentID, &l.Term, &l.LeaseExpiresAt, &l.ElectedAt)
		now := time.Now().UTC()

		switch {
		case err == sql.ErrNoRows:
			newTerm := int64(1)
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO leader (id, agent_id, term, lease_expires_at, elected_at) VALUES (1, ?, ?, ?, ?)
			`, agentID, newTerm, now.Add(leaseDuration), now); err != nil {
				return err
			}
			result = &types.Leader{AgentID: agentID, Term: newTerm, LeaseExpiresAt: now.Add(leaseDuration), ElectedAt: now}
			won = true
			return nil
		case err != nil:
			return err
		}

		leaseLive := now.Before(l.LeaseExpiresAt)

		if leaseLive && l.AgentID == agentID {
			// Same leader renewing a still-valid lease: term is a fencing
			// token and must not move just because the incumbent re-elects.
			if _, err := tx.ExecContext(ctx, `
				UPDATE leader SET lease_expires_at = ? WHERE id = 1
			`, now.Add(leaseDuration)); err != nil {
				return err
			}
			result = &types.Leader{AgentID: agentID, Term: l.Term, LeaseExpiresAt: now.Add(leaseDuration), ElectedAt: l.ElectedAt}
			won = true
			return nil
		}

		if leaseLive {
			// Someone else holds a live lease.
			result = &l
			won = false
			return nil
		}

		// Lease expired: take over, fencing the write on the old term so a
		// concurrent takeover attempt can't both win.
		newTerm := l.Term + 1
		res, err := tx.ExecContext(ctx, `
			UPDATE leader SET agent_id = ?, term = ?, lease_expires_at = ?, elected_at = ? WHERE id = 1 AND term = ?
		`, agentID, newTerm, now.Add(leaseDuration), now, l.Term)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			// Lost the race to another takeover; re-read isn't needed here,
			// the caller simply didn't win this attempt.
			result = &l
			won = false
			return nil
		}
		result = &types.Leader{AgentID: agentID, Term: newTerm, LeaseExpiresAt: now.Add(leaseDuration), ElectedAt: now}
		won = true
		return nil
	})
	if err != nil {
		return nil, false, wrapDBError("try become leader", err)
	}
	return result, won, nil
}

// GetLeader fetches the current leader record, or nil if none has been
// elected yet.
func (s *SQLiteStorage) GetLeader(ctx context.Context) (*types.Leader, error) {
	var l types.Leader
	err := s.db.QueryRowContext(ctx, `SELECT agent_id, term, lease_expires_at, elected_at FROM leader WHERE id = 1`).
		Scan(&l.AgentID, &l.Term, &l.LeaseExpiresAt, &l.ElectedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBError("get leader", err)
	}
	return &l, nil
}

// RenewLease extends the lease for the current leader, fencing on term:
// a renewal from a stale (superseded) leader whose term no longer
// matches the stored term is rejected.
func (s *SQLiteStorage) RenewLease(ctx context.Context, agentID string, term int64, leaseDuration time.Duration) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE leader SET lease_expires_at = ? WHERE id = 1 AND agent_id = ? AND term = ?
	`, now.Add(leaseDuration), agentID, term)
	if err != nil {
		return wrapDBError("renew lease", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError("rows affected", err)
	}
	if n == 0 {
		return errs.ErrLeaderContended
	}
	return nil
}
