// db/sqlite/sqlite.go
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AnnekeHeelsum/android-uploader/db/sqlkv"
)

// Dialect is the SQLite flavor of the settings table.
var Dialect = sqlkv.Dialect{
	CreateTable: `CREATE TABLE IF NOT EXISTS %s (
		setting_key   TEXT PRIMARY KEY,
		setting_value TEXT NOT NULL
	)`,
	Get: `SELECT setting_value FROM %s WHERE setting_key = ?`,
	Upsert: `INSERT INTO %s (setting_key, setting_value) VALUES (?, ?)
		ON CONFLICT(setting_key) DO UPDATE SET setting_value = excluded.setting_value`,
	Delete: `DELETE FROM %s WHERE setting_key = ?`,
}

// Options configures the SQLite connection.
type Options struct {
	// WALMode enables Write-Ahead Logging. Ignored for in-memory databases.
	WALMode bool

	// BusyTimeout sets how long to wait when the database is locked (milliseconds).
	BusyTimeout int

	// Synchronous is one of "OFF", "NORMAL", "FULL", "EXTRA".
	Synchronous string
}

// DefaultOptions suits a single-process settings file:
// WAL, a 5 second busy timeout, NORMAL synchronous.
func DefaultOptions() Options {
	return Options{
		WALMode:     true,
		BusyTimeout: 5000,
		Synchronous: "NORMAL",
	}
}

// Connect opens the database at path and pings it. One connection is kept
// open so ":memory:" databases survive between statements.
//
// The caller is responsible for calling db.Close() when done.
func Connect(path string, opts Options, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", buildDSN(path, opts))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := applyPragmas(ctx, db, path, opts); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Open connects to path and returns a settings store over table.
func Open(ctx context.Context, path, table string, timeout time.Duration) (*sqlkv.Store, error) {
	db, err := Connect(path, DefaultOptions(), timeout)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	s, err := sqlkv.New(ctx, db, Dialect, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func buildDSN(path string, opts Options) string {
	var params []string
	if opts.BusyTimeout > 0 {
		params = append(params, fmt.Sprintf("_busy_timeout=%d", opts.BusyTimeout))
	}
	if len(params) == 0 {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

func applyPragmas(ctx context.Context, db *sql.DB, path string, opts Options) error {
	if opts.WALMode && !strings.Contains(path, ":memory:") {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("set journal_mode: %w", err)
		}
	}
	if opts.Synchronous != "" {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA synchronous=%s", opts.Synchronous)); err != nil {
			return fmt.Errorf("set synchronous: %w", err)
		}
	}
	return nil
}
