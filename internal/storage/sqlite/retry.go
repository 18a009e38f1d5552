package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/aquacoord/aqua/internal/errs"
)

// withImmediateTx acquires a dedicated connection from the pool, begins a
// transaction with sql.LevelSerializable (which the ncruces driver issues
// as BEGIN IMMEDIATE, taking SQLite's write lock up front rather than at
// the first write statement), and runs fn inside it. Contention on the
// write lock is retried with exponential backoff; exhausting the retry
// budget surfaces errs.ErrStoreBusy. Adapted from the teacher fork's
// beginImmediateWithRetry: a plain deferred *sql.Tx only takes the write
// lock at its first write, which defeats the point of BEGIN IMMEDIATE.
func (s *SQLiteStorage) withImmediateTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return wrapDBError("acquire connection", err)
	}
	defer func() { _ = conn.Close() }()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = time.Duration(s.maxRetries) * 200 * time.Millisecond
	retrier := backoff.WithMaxRetries(bo, uint64(s.maxRetries))

	var tx *sql.Tx
	beginErr := backoff.Retry(func() error {
		var err error
		tx, err = conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err != nil {
			return classifyBeginErr(err)
		}
		return nil
	}, retrier)
	if beginErr != nil {
		if isBusyErr(beginErr) {
			return &busyError{sentinel: errs.ErrStoreBusy, cause: beginErr}
		}
		return wrapDBError("begin immediate", beginErr)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapDBError("commit", err)
	}
	committed = true
	return nil
}

// busyError preserves the underlying driver error for logging while still
// satisfying errors.Is(err, errs.ErrStoreBusy).
type busyError struct {
	sentinel error
	cause    error
}

func (e *busyError) Error() string { return e.sentinel.Error() + ": " + e.cause.Error() }
func (e *busyError) Is(target error) bool {
	return errors.Is(e.sentinel, target)
}
func (e *busyError) Unwrap() error { return e.cause }

func classifyBeginErr(err error) error {
	// backoff.Retry stops immediately on a non-transient error; only busy
	// and locked conditions are worth retrying.
	if isBusyErr(err) {
		return err
	}
	return backoff.Permanent(err)
}

func isBusyErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "busy") || strings.Contains(msg, "locked")
}
