// Package sqlkv is a settings.Store over a two-column database/sql table.
// The SQLite and MySQL backends differ only in their Dialect.
package sqlkv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/AnnekeHeelsum/android-uploader/settings"
)

// Dialect holds the statements for one engine. Each is a format string with
// a single %s for the table name.
type Dialect struct {
	CreateTable string
	Get         string
	Upsert      string // args: key, value
	Delete      string // args: key
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidTable reports whether name is safe to splice into SQL.
func ValidTable(name string) bool {
	return identRe.MatchString(name)
}

// Store is a settings.Store over table.
type Store struct {
	db *sql.DB

	get    string
	upsert string
	delete string
}

// New creates table if needed and returns a Store. It takes ownership of db.
func New(ctx context.Context, db *sql.DB, d Dialect, table string) (*Store, error) {
	if !ValidTable(table) {
		return nil, fmt.Errorf("sqlkv: invalid table name %q", table)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(d.CreateTable, table)); err != nil {
		return nil, fmt.Errorf("sqlkv: create table %s: %w", table, err)
	}
	return &Store{
		db:     db,
		get:    fmt.Sprintf(d.Get, table),
		upsert: fmt.Sprintf(d.Upsert, table),
		delete: fmt.Sprintf(d.Delete, table),
	}, nil
}

// Get returns the value under key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, s.get, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", settings.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Apply writes the batch in one transaction.
func (s *Store) Apply(ctx context.Context, changes []settings.Change) (err error) {
	if len(changes) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, c := range changes {
		if c.Value == nil {
			_, err = tx.ExecContext(ctx, s.delete, c.Key)
		} else {
			_, err = tx.ExecContext(ctx, s.upsert, c.Key, *c.Value)
		}
		if err != nil {
			return fmt.Errorf("sqlkv: write %s: %w", c.Key, err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
