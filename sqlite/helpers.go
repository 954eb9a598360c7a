package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/evidex"
	"github.com/ncruces/go-sqlite3"
)

// parseRFC3339 parses an RFC3339 formatted timestamp string.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// appendPagination appends LIMIT and OFFSET clauses to a query builder if values are > 0.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	} else if offset > 0 {
		query.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}

// appendIn appends "column IN (?, ?, ...)" for values.
func appendIn[T any](query *strings.Builder, args *[]any, column string, values []T) {
	query.WriteString(column)
	query.WriteString(" IN (")
	for i, v := range values {
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString("?")
		*args = append(*args, v)
	}
	query.WriteString(")")
}

// storageError maps a driver error to the index error taxonomy.
// Failures that leave the store unusable are marked fatal.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *evidex.Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return evidex.Errorf(evidex.ETIMEOUT, "%s: %v", op, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, sqlite3.BUSY), errors.Is(err, sqlite3.LOCKED):
		return evidex.Errorf(evidex.ECONFLICT, "%s: %v", op, err)
	case errors.Is(err, sqlite3.FULL),
		errors.Is(err, sqlite3.CORRUPT),
		errors.Is(err, sqlite3.NOTADB),
		errors.Is(err, sqlite3.IOERR),
		errors.Is(err, sqlite3.READONLY),
		errors.Is(err, sqlite3.CANTOPEN):
		return evidex.Fatalf(evidex.ESTORAGE, "%s: %v", op, err)
	}
	return evidex.Errorf(evidex.ESTORAGE, "%s: %v", op, err)
}

// readError wraps a failed read so callers can tell an unavailable store
// from an empty result.
func readError(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *evidex.Error
	if errors.As(err, &e) || errors.Is(err, context.Canceled) {
		return err
	}
	return evidex.Errorf(evidex.EUNAVAILABLE, "%s: %v", op, err)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
