package contacts

import (
	"strconv"

	"github.com/spachava753/contactbridge/contactkey"
	"github.com/spachava753/contactbridge/datecomp"
	"github.com/spachava753/contactbridge/label"
)

// Aggregate folds rows into at most limit contacts, skipping the first offset
// contacts. Contacts are returned in the order their grouping key first
// appears in the stream. A negative offset or a limit below one yields an empty
// result. Rows is closed before Aggregate returns.
func Aggregate(rows Rows, mode contactkey.Mode, limit int, offset int) ([]Contact, error) {
	if rows == nil {
		return []Contact{}, nil
	}
	defer func() { _ = rows.Close() }()

	if !mode.Valid() {
		return nil, &Error{Code: ErrorCodeValidation, Message: "unknown mode " + strconv.Quote(string(mode))}
	}
	if limit < 1 || offset < 0 {
		return []Contact{}, nil
	}

	column := mode.GroupingColumn()
	cur := &cursor{rows: rows}

	if offset > 0 {
		// A contact spans several rows, so only distinct keys mark a boundary.
		// The loop overshoots into the first row of the next contact.
		skipped := make(map[string]struct{}, offset+1)
		for len(skipped) <= offset && cur.next() {
			key, ok := groupingKey(cur.cur, column)
			if !ok {
				continue
			}
			skipped[key] = struct{}{}
		}
		if len(skipped) > offset {
			cur.back()
		}
	}

	b := newBuilder(mode)
	for b.len() <= limit && cur.next() {
		key, ok := groupingKey(cur.cur, column)
		if !ok {
			continue
		}
		b.apply(b.contact(key), cur.cur)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Code: ErrorCodeStore, Message: "reading contact rows failed", Err: err}
	}

	// The extra contact only signals that more rows exist past the page.
	out := b.build()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountKeys returns the number of distinct grouping keys in rows and closes
// the stream.
func CountKeys(rows Rows, mode contactkey.Mode) (int, error) {
	if rows == nil {
		return 0, nil
	}
	defer func() { _ = rows.Close() }()

	if !mode.Valid() {
		return 0, &Error{Code: ErrorCodeValidation, Message: "unknown mode " + strconv.Quote(string(mode))}
	}
	column := mode.GroupingColumn()
	seen := map[string]struct{}{}
	for rows.Next() {
		if key, ok := groupingKey(rows.Row(), column); ok {
			seen[key] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return 0, &Error{Code: ErrorCodeStore, Message: "counting contact rows failed", Err: err}
	}
	return len(seen), nil
}

func groupingKey(r Row, column string) (string, bool) {
	if r == nil {
		return "", false
	}
	key, ok := r.String(column)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// builder accumulates contacts keyed by grouping key in first-seen order.
type builder struct {
	mode  contactkey.Mode
	order []*Contact
	byKey map[string]*Contact
}

func newBuilder(mode contactkey.Mode) *builder {
	return &builder{mode: mode, byKey: map[string]*Contact{}}
}

func (b *builder) len() int { return len(b.order) }

func (b *builder) contact(key string) *Contact {
	if c, ok := b.byKey[key]; ok {
		return c
	}
	c := &Contact{
		Mode:             b.mode,
		Identifier:       key,
		LinkedContactIDs: []string{},
		Phones:           []Item{},
		Emails:           []Item{},
		Dates:            []DateItem{},
	}
	b.byKey[key] = c
	b.order = append(b.order, c)
	return c
}

func (b *builder) apply(c *Contact, r Row) {
	rawID, hasRawID := r.Int(ColumnRawContactID)
	if hasRawID && c.SingleContactID == 0 {
		c.SingleContactID = rawID
	}
	if id, ok := r.Int(ColumnContactID); ok && c.UnifiedContactID == 0 {
		c.UnifiedContactID = id
	}
	if lk, ok := r.String(ColumnLookupKey); ok && lk != "" && c.LookupKey == "" {
		c.LookupKey = lk
	}
	if b.mode == contactkey.ModeUnified && hasRawID {
		c.LinkedContactIDs = appendUnique(c.LinkedContactIDs, strconv.FormatInt(rawID, 10))
	}

	// Every row of a contact carries the same display name.
	c.DisplayName, _ = r.String(ColumnDisplayName)

	mime, _ := r.String(ColumnMimeType)
	switch mime {
	case MimeTypeName:
		setOnce(&c.GivenName, r, ColumnGivenName)
		setOnce(&c.MiddleName, r, ColumnMiddleName)
		setOnce(&c.FamilyName, r, ColumnFamilyName)
		setOnce(&c.Prefix, r, ColumnPrefix)
		setOnce(&c.Suffix, r, ColumnSuffix)
	case MimeTypePhone:
		if v, ok := r.String(ColumnPhoneNumber); ok && v != "" {
			c.Phones = append(c.Phones, Item{Label: rowLabel(r, label.Phone, ColumnPhoneType, ColumnPhoneLabel), Value: v})
		}
	case MimeTypeEmail:
		if v, ok := r.String(ColumnEmailAddress); ok && v != "" {
			c.Emails = append(c.Emails, Item{Label: rowLabel(r, label.Email, ColumnEmailType, ColumnEmailLabel), Value: v})
		}
	case MimeTypeEvent:
		if date := rowDate(r); !date.IsZero() {
			c.Dates = append(c.Dates, DateItem{Label: rowLabel(r, label.Event, ColumnEventType, ColumnEventLabel), Date: date})
		}
	}
}

func (b *builder) build() []Contact {
	out := make([]Contact, 0, len(b.order))
	for _, c := range b.order {
		out = append(out, *c)
	}
	return out
}

func setOnce(field *string, r Row, column string) {
	if *field != "" {
		return
	}
	if v, ok := r.String(column); ok {
		*field = v
	}
}

// rowLabel treats a NULL type column as the custom sentinel, which is how the
// platform reads it.
func rowLabel(r Row, kind label.Kind, typeColumn string, labelColumn string) string {
	code, ok := r.Int(typeColumn)
	if !ok {
		code = int64(kind.CustomCode())
	}
	text, _ := r.String(labelColumn)
	return label.Decode(kind, int(code), text)
}

// rowDate prefers the stored year, month, and day columns. Rows written
// elsewhere only carry the date string, which goes through datecomp.Parse.
func rowDate(r Row) datecomp.Components {
	parts := map[string]any{}
	for key, column := range map[string]string{
		"year":  ColumnEventYear,
		"month": ColumnEventMonth,
		"day":   ColumnEventDay,
	} {
		if n, ok := r.Int(column); ok {
			parts[key] = n
		}
	}
	if len(parts) > 0 {
		return datecomp.FromMap(parts)
	}
	v, _ := r.String(ColumnEventDate)
	return datecomp.Parse(v)
}

func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}
