package sqlite

import (
	"context"
	"database/sql"
)

// migration is one forward-only, additive schema change. Adapted from the
// teacher's numbered migrations (e.g. 023_pinned_column.go): check whether
// the column/table already exists via pragma_table_info before applying,
// so re-running Open against an already-migrated database is a no-op.
type migration struct {
	version int
	apply   func(ctx context.Context, tx *sql.Tx) error
}

// migrations lists every migration in order. Add new ones to the end;
// never edit or remove an existing entry once it has shipped.
var migrations = []migration{
	{
		version: 1,
		apply: func(ctx context.Context, tx *sql.Tx) error {
			has, err := columnExists(ctx, tx, "agents", "role")
			if err != nil || has {
				return err
			}
			_, err = tx.ExecContext(ctx, `ALTER TABLE agents ADD COLUMN role TEXT NOT NULL DEFAULT ''`)
			return err
		},
	},
}

// SchemaVersion reports the currently applied schema_version (§12 `aqua
// doctor`). It is purely informational; callers never branch on it since
// migrate runs unconditionally on Open.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if err != nil {
		return 0, wrapDBError("schema version", err)
	}
	return version, nil
}

func columnExists(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// migrate applies every migration whose version is newer than the
// recorded schema_version, inside a single transaction.
func (s *SQLiteStorage) migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var current int
	row := tx.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`)
	if err := row.Scan(&current); err == sql.ErrNoRows {
		current = 0
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	applied := current
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := m.apply(ctx, tx); err != nil {
			return err
		}
		applied = m.version
	}
	if applied != current {
		if _, err := tx.ExecContext(ctx, `UPDATE schema_version SET version = ?`, applied); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
