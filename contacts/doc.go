// Package contacts reconstructs logical contacts from the platform's
// row-oriented address-book data.
//
// The platform stores a contact as many data rows, one field kind per row: a
// structured-name row, one row per phone number, one row per email address,
// and so on. Under unified addressing a contact also spans several raw records
// from different accounts, each contributing its own rows. Aggregate walks an
// ordered Rows stream and folds it back into Contact values:
//
//	rows, err := st.QueryContacts(ctx, contactkey.ModeUnified, store.Query{})
//	if err != nil {
//		// handle
//	}
//	page, err := contacts.Aggregate(rows, contactkey.ModeUnified, 50, 100)
//
// # Pagination
//
// Offset and limit count logical contacts, not rows. Aggregate skips rows until
// it has seen offset distinct grouping keys, reads until it has seen one
// contact more than limit, and drops that last contact. The stream must be
// sorted by grouping key so that a contact's rows are contiguous.
//
// # Field merging
//
// Name fields are first-write-wins: when several raw records contribute a name
// row, the first row in stream order (the primary source) wins. The display
// name is taken from every row. Phone numbers, email addresses, and dated
// events are appended in stream order; rows without a value are skipped.
//
// # Resource handling
//
// Aggregate owns the stream for the duration of the call and closes it on
// every return path. A stream closed by the caller mid-run is treated as
// exhausted.
//
// # Transfer representation
//
// ToMap and FromMap convert between Contact and the loosely typed map used at
// the process boundary. Absent values are omitted from the map, never emitted
// as nil.
package contacts
