package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/AnnekeHeelsum/android-uploader/config"
	"github.com/AnnekeHeelsum/android-uploader/settings"
)

func TestOpen_LocalBackends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  config.StoreConfig
	}{
		{"memory", config.StoreConfig{Backend: config.BackendMemory}},
		{"file", config.StoreConfig{Backend: config.BackendFile, Path: filepath.Join(dir, "s.json")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.cfg, time.Second)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer s.Close()

			if err := s.Apply(ctx, []settings.Change{settings.SetBool(settings.APIEnabled, true)}); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if v, err := s.Get(ctx, settings.APIEnabled); err != nil || v != "true" {
				t.Fatalf("Get = %q, %v", v, err)
			}
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), config.StoreConfig{Backend: "etcd"}, time.Second); err == nil {
		t.Fatal("Open succeeded for unknown backend")
	}
}
