package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spachava753/contactbridge/contactkey"
	"github.com/spachava753/contactbridge/contacts"
)

// Avatar returns the photo of the contact addressed by keys, or nil when it
// has none. With highRes set, the full-size display photo of the primary raw
// record is preferred over the thumbnail stored in the photo data row.
func (s *Store) Avatar(ctx context.Context, keys contactkey.Keys, highRes bool) ([]byte, error) {
	keys, err := keys.CheckValid()
	if err != nil {
		return nil, err
	}
	predicate, params := keys.Query()

	if highRes {
		photo, err := s.queryPhoto(ctx,
			"SELECT p.photo FROM display_photos p JOIN data d ON d.raw_contact_id = p.raw_contact_id"+
				" WHERE d."+predicate+" ORDER BY d.is_primary DESC, d._id ASC LIMIT 1",
			params...)
		if err != nil {
			return nil, err
		}
		if len(photo) > 0 {
			s.log.Debug("serving display photo", zap.String("keys", keys.String()), zap.Int("bytes", len(photo)))
			return photo, nil
		}
	}

	args := append([]any{contacts.MimeTypePhoto}, params...)
	photo, err := s.queryPhoto(ctx,
		"SELECT data15 FROM data WHERE mimetype = ? AND data15 IS NOT NULL AND "+predicate+
			" ORDER BY is_primary DESC, _id ASC LIMIT 1",
		args...)
	if err != nil {
		return nil, err
	}
	if len(photo) == 0 {
		return nil, nil
	}
	return photo, nil
}

// SetDisplayPhoto stores the full-size photo of the raw record addressed by
// keys, or of the primary raw record in unified mode.
func (s *Store) SetDisplayPhoto(ctx context.Context, keys contactkey.Keys, photo []byte) error {
	keys, err := keys.CheckValid()
	if err != nil {
		return err
	}
	if len(photo) == 0 {
		return &contacts.Error{Code: contacts.ErrorCodeValidation, Message: "display photo is empty"}
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		target, err := resolveTarget(ctx, tx, keys)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO display_photos (raw_contact_id, photo) VALUES (?, ?)"+
				" ON CONFLICT (raw_contact_id) DO UPDATE SET photo = excluded.photo",
			target.rawID, photo)
		if err != nil {
			return fmt.Errorf("store: writing display photo failed: %w", err)
		}
		return nil
	})
}

func (s *Store) queryPhoto(ctx context.Context, query string, args ...any) ([]byte, error) {
	var photo []byte
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&photo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: reading photo failed: %w", err)
	}
	return photo, nil
}
