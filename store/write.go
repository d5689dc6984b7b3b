package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spachava753/contactbridge/contactkey"
	"github.com/spachava753/contactbridge/contacts"
	"github.com/spachava753/contactbridge/label"
)

// target is the raw record a write applies to.
type target struct {
	rawID     int64
	contactID int64
	lookupKey string
	primary   bool
}

// Save writes c to the store and returns its keys.
//
// A contact without any identity is created as a new raw record with a new
// aggregated contact and lookup key. Otherwise the name, phone, email, and
// event rows of the addressed raw record are replaced; in unified mode that
// is the contact's primary raw record. Items without a value are not written.
// A non-empty Avatar replaces the record's photo row.
func (s *Store) Save(ctx context.Context, c contacts.Contact) (contactkey.Keys, error) {
	if !c.Mode.Valid() {
		return contactkey.Keys{}, &contacts.Error{Code: contacts.ErrorCodeValidation, Message: fmt.Sprintf("unknown mode %q", c.Mode)}
	}

	var (
		t       target
		created bool
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if isNew(c) {
			created = true
			t, err = newTarget(ctx, tx)
		} else {
			var keys contactkey.Keys
			if keys, err = c.Keys(); err != nil {
				return err
			}
			if keys, err = keys.CheckValid(); err != nil {
				return err
			}
			t, err = resolveTarget(ctx, tx, keys)
		}
		if err != nil {
			return err
		}
		return writeRows(ctx, tx, t, c)
	})
	if err != nil {
		return contactkey.Keys{}, err
	}

	keys, err := contactkey.Of(c.Mode, contactkey.Bundle{
		UnifiedContactID: t.contactID,
		SingleContactID:  t.rawID,
		LookupKey:        t.lookupKey,
	})
	if err != nil {
		return contactkey.Keys{}, err
	}
	s.log.Info("contact saved", zap.String("keys", keys.String()), zap.Bool("created", created))
	return keys, nil
}

// Delete removes the contact addressed by keys: every raw record of the
// aggregated contact in unified mode, the single raw record otherwise.
func (s *Store) Delete(ctx context.Context, keys contactkey.Keys) error {
	keys, err := keys.CheckValid()
	if err != nil {
		return err
	}
	predicate, params := keys.Query()

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"DELETE FROM display_photos WHERE raw_contact_id IN (SELECT raw_contact_id FROM data WHERE "+predicate+")",
			params...)
		if err != nil {
			return fmt.Errorf("store: deleting display photos failed: %w", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM data WHERE "+predicate, params...)
		if err != nil {
			return fmt.Errorf("store: deleting contact rows failed: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("store: reading affected rows failed: %w", err)
		}
		if n == 0 {
			return notFound(keys)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("contact deleted", zap.String("keys", keys.String()))
	return nil
}

func isNew(c contacts.Contact) bool {
	return strings.TrimSpace(c.Identifier) == "" &&
		c.UnifiedContactID <= 0 &&
		c.SingleContactID <= 0 &&
		strings.TrimSpace(c.LookupKey) == ""
}

func newTarget(ctx context.Context, tx *sql.Tx) (target, error) {
	t := target{lookupKey: uuid.NewString(), primary: true}
	err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(raw_contact_id), 0) + 1, COALESCE(MAX(contact_id), 0) + 1 FROM data",
	).Scan(&t.rawID, &t.contactID)
	if err != nil {
		return target{}, fmt.Errorf("store: allocating contact ids failed: %w", err)
	}
	return t, nil
}

func resolveTarget(ctx context.Context, tx *sql.Tx, keys contactkey.Keys) (target, error) {
	predicate, params := keys.Query()
	var (
		t       target
		primary int64
	)
	err := tx.QueryRowContext(ctx,
		"SELECT raw_contact_id, contact_id, COALESCE(lookup, ''), is_primary FROM data WHERE "+predicate+
			" ORDER BY is_primary DESC, raw_contact_id ASC, _id ASC LIMIT 1",
		params...,
	).Scan(&t.rawID, &t.contactID, &t.lookupKey, &primary)
	if errors.Is(err, sql.ErrNoRows) {
		return target{}, notFound(keys)
	}
	if err != nil {
		return target{}, fmt.Errorf("store: resolving contact failed: %w", err)
	}
	t.primary = primary != 0
	return t, nil
}

func writeRows(ctx context.Context, tx *sql.Tx, t target, c contacts.Contact) error {
	kinds := append([]string(nil), contacts.DataMimeTypes...)
	if len(c.Avatar) > 0 {
		kinds = append(kinds, contacts.MimeTypePhoto)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(kinds)), ", ")
	args := []any{t.rawID}
	for _, kind := range kinds {
		args = append(args, kind)
	}
	_, err := tx.ExecContext(ctx,
		"DELETE FROM data WHERE raw_contact_id = ? AND mimetype IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("store: clearing contact rows failed: %w", err)
	}

	display := displayName(c)
	w := rowWriter{ctx: ctx, tx: tx, t: t, display: display}

	w.insert(contacts.MimeTypeName,
		[]string{
			contacts.ColumnNameDisplay, contacts.ColumnGivenName, contacts.ColumnFamilyName,
			contacts.ColumnPrefix, contacts.ColumnMiddleName, contacts.ColumnSuffix,
		},
		nullString(display), nullString(c.GivenName), nullString(c.FamilyName),
		nullString(c.Prefix), nullString(c.MiddleName), nullString(c.Suffix),
	)
	for _, phone := range c.Phones {
		w.item(contacts.MimeTypePhone, label.Phone, phone.Label, phone.Value)
	}
	for _, email := range c.Emails {
		w.item(contacts.MimeTypeEmail, label.Email, email.Label, email.Value)
	}
	for _, date := range c.Dates {
		if date.Date.IsZero() {
			continue
		}
		w.event(date)
	}
	if len(c.Avatar) > 0 {
		w.insert(contacts.MimeTypePhoto, []string{contacts.ColumnPhotoData}, c.Avatar)
	}
	if w.err != nil {
		return w.err
	}

	_, err = tx.ExecContext(ctx, "UPDATE data SET display_name = ? WHERE contact_id = ?", nullString(display), t.contactID)
	if err != nil {
		return fmt.Errorf("store: updating display name failed: %w", err)
	}
	return nil
}

// rowWriter inserts data rows for one raw record and keeps the first error.
type rowWriter struct {
	ctx     context.Context
	tx      *sql.Tx
	t       target
	display string
	err     error
}

func (w *rowWriter) item(mime string, kind label.Kind, lbl string, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	var typ, text any
	if enc, ok := label.Encode(kind, lbl); ok {
		typ = enc.Type
		text = nullString(enc.Label)
	}
	w.insert(mime, []string{contacts.ColumnData1, contacts.ColumnData2, contacts.ColumnData3}, value, typ, text)
}

// event writes the date string for readers of data1 and the components
// themselves, since month-only and year-plus-day dates do not survive Parse.
func (w *rowWriter) event(date contacts.DateItem) {
	var typ, text any
	if enc, ok := label.Encode(label.Event, date.Label); ok {
		typ = enc.Type
		text = nullString(enc.Label)
	}
	w.insert(contacts.MimeTypeEvent,
		[]string{
			contacts.ColumnEventDate, contacts.ColumnEventType, contacts.ColumnEventLabel,
			contacts.ColumnEventYear, contacts.ColumnEventMonth, contacts.ColumnEventDay,
		},
		date.Date.String(), typ, text,
		nullInt(date.Date.Year), nullInt(date.Date.Month), nullInt(date.Date.Day),
	)
}

func (w *rowWriter) insert(mime string, columns []string, values ...any) {
	if w.err != nil {
		return
	}
	names := append([]string{
		contacts.ColumnRawContactID,
		contacts.ColumnContactID,
		contacts.ColumnLookupKey,
		contacts.ColumnDisplayName,
		contacts.ColumnMimeType,
		contacts.ColumnIsPrimary,
	}, columns...)
	args := append([]any{
		w.t.rawID,
		w.t.contactID,
		nullString(w.t.lookupKey),
		nullString(w.display),
		mime,
		boolInt(w.t.primary),
	}, values...)

	query := "INSERT INTO data (" + strings.Join(names, ", ") + ") VALUES (" +
		strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ") + ")"
	if _, err := w.tx.ExecContext(w.ctx, query, args...); err != nil {
		w.err = fmt.Errorf("store: inserting %s row failed: %w", mime, err)
	}
}

func displayName(c contacts.Contact) string {
	if name := strings.TrimSpace(c.DisplayName); name != "" {
		return name
	}
	var parts []string
	for _, part := range []string{c.Prefix, c.GivenName, c.MiddleName, c.FamilyName, c.Suffix} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	for _, items := range [][]contacts.Item{c.Emails, c.Phones} {
		for _, item := range items {
			if v := strings.TrimSpace(item.Value); v != "" {
				return v
			}
		}
	}
	return ""
}

func notFound(keys contactkey.Keys) error {
	return &contacts.Error{Code: contacts.ErrorCodeNotFound, Message: "no contact for " + keys.String()}
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
