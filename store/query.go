package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spachava753/contactbridge/contactkey"
	"github.com/spachava753/contactbridge/contacts"
	"github.com/spachava753/contactbridge/logging"
)

// SortField controls query ordering.
type SortField string

const (
	// SortByNone keeps the grouping key order.
	SortByNone SortField = ""
	// SortByDisplayName orders by display name before the grouping key.
	SortByDisplayName SortField = "display_name"
)

// SortOrder controls ascending/descending order.
type SortOrder string

const (
	// SortOrderAsc sorts ascending.
	SortOrderAsc SortOrder = "asc"
	// SortOrderDesc sorts descending.
	SortOrderDesc SortOrder = "desc"
)

// Sort controls QueryContacts ordering.
type Sort struct {
	By    SortField
	Order SortOrder
}

// Query selects contact rows.
type Query struct {
	// Search keeps rows whose display name starts with the term.
	Search string
	Sort   Sort
	// ForCount selects only identity columns, unordered.
	ForCount bool
}

var dataColumns = []string{
	contacts.ColumnID,
	contacts.ColumnContactID,
	contacts.ColumnRawContactID,
	contacts.ColumnLookupKey,
	contacts.ColumnDisplayName,
	contacts.ColumnMimeType,
	contacts.ColumnIsPrimary,
	contacts.ColumnData1,
	contacts.ColumnData2,
	contacts.ColumnData3,
	contacts.ColumnData4,
	contacts.ColumnData5,
	contacts.ColumnData6,
}

var idColumns = []string{
	contacts.ColumnContactID,
	contacts.ColumnRawContactID,
	contacts.ColumnLookupKey,
	contacts.ColumnDisplayName,
}

// QueryContacts returns the data rows of every contact matching q, ordered so
// that rows of one contact are adjacent. The caller owns the returned stream.
func (s *Store) QueryContacts(ctx context.Context, mode contactkey.Mode, q Query) (contacts.Rows, error) {
	if !mode.Valid() {
		return nil, &contacts.Error{Code: contacts.ErrorCodeValidation, Message: fmt.Sprintf("unknown mode %q", mode)}
	}
	orderBy, err := q.Sort.orderBy(mode)
	if err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	columns := dataColumns
	if q.ForCount {
		columns = idColumns
		orderBy = ""
	} else {
		placeholders := make([]string, len(contacts.DataMimeTypes))
		for i, mime := range contacts.DataMimeTypes {
			placeholders[i] = "?"
			args = append(args, mime)
		}
		where = append(where, contacts.ColumnMimeType+" IN ("+strings.Join(placeholders, ", ")+")")
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		where = append(where, contacts.ColumnDisplayName+` LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(term)+"%")
	}

	s.log.Debug("querying contacts",
		zap.String("mode", string(mode)),
		logging.Redact("search", q.Search),
		zap.Bool("for_count", q.ForCount),
	)
	return s.selectRows(ctx, columns, where, args, orderBy)
}

// FindContactByID returns the data rows of the contact addressed by keys.
func (s *Store) FindContactByID(ctx context.Context, keys contactkey.Keys) (contacts.Rows, error) {
	if !keys.Mode().Valid() {
		return nil, &contacts.Error{Code: contacts.ErrorCodeValidation, Message: fmt.Sprintf("unknown mode %q", keys.Mode())}
	}
	predicate, params := keys.Query()
	orderBy, err := Sort{}.orderBy(keys.Mode())
	if err != nil {
		return nil, err
	}
	s.log.Debug("finding contact", zap.String("keys", keys.String()))
	return s.selectRows(ctx, dataColumns, []string{predicate}, params, orderBy)
}

// Count returns the number of contacts whose display name starts with search,
// or of all contacts when search is empty.
func (s *Store) Count(ctx context.Context, mode contactkey.Mode, search string) (int, error) {
	rows, err := s.QueryContacts(ctx, mode, Query{Search: search, ForCount: true})
	if err != nil {
		return 0, err
	}
	return contacts.CountKeys(rows, mode)
}

func (s *Store) selectRows(ctx context.Context, columns []string, where []string, args []any, orderBy string) (contacts.Rows, error) {
	query := "SELECT " + strings.Join(columns, ", ") + " FROM data"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: sqlite query failed: %w", err)
	}
	return newSQLRows(rows)
}

// orderBy renders the ORDER BY clause. The grouping key always follows the
// sort field so rows of one contact stay adjacent, and within a contact the
// primary source comes first.
func (srt Sort) orderBy(mode contactkey.Mode) (string, error) {
	direction := "ASC"
	switch srt.Order {
	case "", SortOrderAsc:
	case SortOrderDesc:
		direction = "DESC"
	default:
		return "", &contacts.Error{Code: contacts.ErrorCodeValidation, Message: fmt.Sprintf("unknown sort order %q", srt.Order)}
	}

	var terms []string
	switch srt.By {
	case SortByNone:
	case SortByDisplayName:
		terms = append(terms, contacts.ColumnDisplayName+" COLLATE NOCASE "+direction)
	default:
		return "", &contacts.Error{Code: contacts.ErrorCodeValidation, Message: fmt.Sprintf("unknown sort field %q", srt.By)}
	}
	terms = append(terms,
		mode.GroupingColumn()+" ASC",
		contacts.ColumnIsPrimary+" DESC",
		contacts.ColumnRawContactID+" ASC",
		contacts.ColumnID+" ASC",
	)
	return strings.Join(terms, ", "), nil
}

func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}
