package mysql

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/AnnekeHeelsum/android-uploader/settings/settingstest"
)

// Set UPLOADCFG_TEST_MYSQL_DSN (e.g. root:pw@tcp(localhost:3306)/test) to run.
func TestStore(t *testing.T) {
	dsn := os.Getenv("UPLOADCFG_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("UPLOADCFG_TEST_MYSQL_DSN not set")
	}

	table := fmt.Sprintf("uploadcfg_test_%d", time.Now().UnixNano())
	s, err := Open(context.Background(), dsn, table, 5*time.Second)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if db, err := Connect(dsn, 5*time.Second); err == nil {
			db.Exec("DROP TABLE " + table)
			db.Close()
		}
		s.Close()
	})

	settingstest.Contract(t, s)
}
