// Package store keeps contact data rows in a sqlite database laid out like the
// platform contacts data view: one row per name, phone number, email address,
// event, or photo, keyed by raw contact id and aggregated contact id.
//
// Reads return contacts.Rows streams for contacts.Aggregate. Writes go through
// Save and Delete, which keep every row of a contact consistent.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/spachava753/contactbridge/logging"
)

const defaultBusyTimeout = 5 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS data (
	_id            INTEGER PRIMARY KEY AUTOINCREMENT,
	raw_contact_id INTEGER NOT NULL,
	contact_id     INTEGER NOT NULL,
	lookup         TEXT,
	display_name   TEXT,
	mimetype       TEXT NOT NULL,
	is_primary     INTEGER NOT NULL DEFAULT 0,
	data1, data2, data3, data4, data5, data6,
	data15         BLOB
);
CREATE INDEX IF NOT EXISTS data_contact_id ON data (contact_id);
CREATE INDEX IF NOT EXISTS data_raw_contact_id ON data (raw_contact_id);
CREATE INDEX IF NOT EXISTS data_lookup ON data (lookup);
CREATE TABLE IF NOT EXISTS display_photos (
	raw_contact_id INTEGER PRIMARY KEY,
	photo          BLOB NOT NULL
);
`

// Options configures Open.
type Options struct {
	// ReadOnly opens an existing database without write access.
	ReadOnly bool
	// BusyTimeout bounds how long a statement waits on a locked database.
	// Zero means five seconds.
	BusyTimeout time.Duration
	// Logger receives store diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// Store is a sqlite-backed contact store.
type Store struct {
	db       *sql.DB
	log      *zap.Logger
	readOnly bool
}

// Open opens the database at path, creating it and its schema unless
// opts.ReadOnly is set.
func Open(path string, opts Options) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store: database path is empty")
	}
	timeout := opts.BusyTimeout
	if timeout <= 0 {
		timeout = defaultBusyTimeout
	}
	mode := "rwc"
	if opts.ReadOnly {
		mode = "ro"
	}

	dsn := fmt.Sprintf("file:%s?mode=%s&_busy_timeout=%d", strings.ReplaceAll(path, " ", "%20"), mode, timeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: opening sqlite database failed: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: connecting to sqlite database failed: %w", err)
	}

	s := &Store{
		db:       db,
		log:      logging.OrNop(opts.Logger).With(zap.String("component", "store")),
		readOnly: opts.ReadOnly,
	}
	if !opts.ReadOnly {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: creating schema failed: %w", err)
		}
	}
	s.log.Debug("store opened", zap.String("path", path), zap.Bool("read_only", opts.ReadOnly))
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: closing sqlite database failed: %w", err)
	}
	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if s.readOnly {
		return fmt.Errorf("store: database is read-only")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: beginning transaction failed: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: committing transaction failed: %w", err)
	}
	return nil
}
