package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/AnnekeHeelsum/android-uploader/settings/settingstest"
)

func TestDatabaseFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"mongodb://db.example:27017/uploads", "uploads"},
		{"mongodb://u:p@db.example/uploads?authSource=admin", "uploads"},
		{"mongodb://db.example:27017", DefaultDatabase},
		{"mongodb://db.example/", DefaultDatabase},
		{"mongodb+srv://cluster.example/site", "site"},
	}
	for _, tt := range tests {
		if got := DatabaseFromURI(tt.uri); got != tt.want {
			t.Errorf("DatabaseFromURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

// Set UPLOADCFG_TEST_MONGO_URI to run.
func TestStore(t *testing.T) {
	uri := os.Getenv("UPLOADCFG_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("UPLOADCFG_TEST_MONGO_URI not set")
	}

	collection := fmt.Sprintf("uploadcfg_test_%d", time.Now().UnixNano())
	s, err := Open(uri, collection, 5*time.Second)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.coll.Drop(context.Background())
		s.Close()
	})

	settingstest.Contract(t, s)
}
