package sqlite

import (
	"database/sql"
	"time"
)

// parseNullableTimeString parses a nullable time string from a database
// TEXT column (claimed_at, completed_at when read back as sql.NullString
// rather than relying on the driver's DATETIME auto-conversion).
func parseNullableTimeString(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, ns.String); err == nil {
			return &t
		}
	}
	return nil
}

// parseTimeString parses a required (non-nullable) timestamp column.
// Returns the zero time if the stored value is unparseable.
func parseTimeString(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
