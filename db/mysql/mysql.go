// db/mysql/mysql.go
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/AnnekeHeelsum/android-uploader/db/sqlkv"
)

// Dialect is the MySQL flavor of the settings table. The key column is
// capped at 191 characters so it fits an index under utf8mb4.
var Dialect = sqlkv.Dialect{
	CreateTable: `CREATE TABLE IF NOT EXISTS %s (
		setting_key   VARCHAR(191) NOT NULL PRIMARY KEY,
		setting_value TEXT NOT NULL
	)`,
	Get: "SELECT setting_value FROM %s WHERE setting_key = ?",
	Upsert: `INSERT INTO %s (setting_key, setting_value) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value)`,
	Delete: "DELETE FROM %s WHERE setting_key = ?",
}

// Connect opens a MySQL connection pool using the given DSN and pings it.
//
// The caller is responsible for calling db.Close() when done.
//
// DSN format:
//
//	user:password@tcp(host:port)/dbname
func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Open connects with dsn and returns a settings store over table.
func Open(ctx context.Context, dsn, table string, timeout time.Duration) (*sqlkv.Store, error) {
	db, err := Connect(dsn, timeout)
	if err != nil {
		return nil, fmt.Errorf("mysql: connect: %w", err)
	}
	s, err := sqlkv.New(ctx, db, Dialect, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}
