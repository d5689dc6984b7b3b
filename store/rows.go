package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spachava753/contactbridge/contacts"
)

// sqlRows adapts *sql.Rows to contacts.Rows. Each row is scanned into a fresh
// contacts.Record, so a returned Row outlives the following Next call.
type sqlRows struct {
	rows    *sql.Rows
	columns []string
	cur     contacts.Record
	err     error
	closed  bool
}

func newSQLRows(rows *sql.Rows) (*sqlRows, error) {
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("store: reading sqlite columns failed: %w", err)
	}
	return &sqlRows{rows: rows, columns: columns}, nil
}

func (r *sqlRows) Next() bool {
	if r.closed || r.err != nil {
		return false
	}
	if !r.rows.Next() {
		return false
	}

	values := make([]any, len(r.columns))
	valuePointers := make([]any, len(r.columns))
	for i := range values {
		valuePointers[i] = &values[i]
	}
	if err := r.rows.Scan(valuePointers...); err != nil {
		r.err = fmt.Errorf("store: scanning sqlite row failed: %w", err)
		return false
	}

	record := make(contacts.Record, len(r.columns))
	for i, column := range r.columns {
		record[column] = values[i]
	}
	r.cur = record
	return true
}

func (r *sqlRows) Row() contacts.Row { return r.cur }

// Err reports iteration failures. Cancellation and caller-side Close end the
// stream without an error.
func (r *sqlRows) Err() error {
	if r.err != nil {
		return r.err
	}
	if r.closed {
		return nil
	}
	if err := r.rows.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("store: iterating sqlite rows failed: %w", err)
	}
	return nil
}

func (r *sqlRows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.rows.Close()
}
