package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/aquacoord/aqua/internal/errs"
)

// wrapDBError wraps a database error with operation context, translating
// driver-level conditions into the errs taxonomy so callers above this
// package never need to know this is SQLite: sql.ErrNoRows becomes
// errs.ErrNotFound, a UNIQUE constraint violation becomes
// errs.ErrNameConflict.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	if isUniqueConstraintErr(err) {
		return fmt.Errorf("%s: %w", op, errs.ErrNameConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueConstraintErr(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

func isNotFound(err error) bool {
	return errors.Is(err, errs.ErrNotFound)
}
