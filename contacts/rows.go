package contacts

import (
	"fmt"
	"strconv"
	"strings"
)

// Row gives named-column access to one data row. Both accessors report false
// for missing or NULL columns.
type Row interface {
	String(column string) (string, bool)
	Int(column string) (int64, bool)
}

// Rows is an ordered, releasable stream of data rows.
//
// A Row returned by Row must stay valid after the following call to Next.
// Next must return false once the stream has been closed, and Err must report
// nil when the only reason the stream ended is that it was closed.
type Rows interface {
	Next() bool
	Row() Row
	Err() error
	Close() error
}

// Record is a Row backed by a column map. Values may be nil, string, []byte,
// or any integer type.
type Record map[string]any

// String returns the column as a string.
func (r Record) String(column string) (string, bool) {
	switch v := r[column].(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		return string(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case int:
		return strconv.Itoa(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return fmt.Sprint(v), true
	}
}

// Int returns the column as an integer.
func (r Record) Int(column string) (int64, bool) {
	switch v := r[column].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	case string:
		return parseInt(v)
	case []byte:
		return parseInt(string(v))
	}
	return 0, false
}

func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// MemRows is a Rows over records already held in memory.
type MemRows struct {
	records []Record
	pos     int
	closed  bool
}

// NewMemRows returns a stream over records.
func NewMemRows(records ...Record) *MemRows {
	return &MemRows{records: records, pos: -1}
}

// Next advances to the next record.
func (m *MemRows) Next() bool {
	if m.closed || m.pos+1 >= len(m.records) {
		return false
	}
	m.pos++
	return true
}

// Row returns the current record.
func (m *MemRows) Row() Row {
	if m.pos < 0 || m.pos >= len(m.records) {
		return Record(nil)
	}
	return m.records[m.pos]
}

// Err always returns nil.
func (m *MemRows) Err() error { return nil }

// Close releases the stream.
func (m *MemRows) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MemRows) Closed() bool { return m.closed }

// cursor wraps Rows with a single step of rewind.
type cursor struct {
	rows   Rows
	cur    Row
	replay bool
}

func (c *cursor) next() bool {
	if c.replay {
		c.replay = false
		return c.cur != nil
	}
	if !c.rows.Next() {
		c.cur = nil
		return false
	}
	c.cur = c.rows.Row()
	return true
}

// back makes the following next call yield the current row again.
func (c *cursor) back() {
	c.replay = true
}
