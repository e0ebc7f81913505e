package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, newFlags(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "dev" || cfg.LogLevel != "info" {
		t.Errorf("env/log_level = %q/%q", cfg.Env, cfg.LogLevel)
	}
	if cfg.Store.Backend != BackendFile || cfg.Store.Path != "uploader-settings.json" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.DBConnectTimeout != 10*time.Second {
		t.Errorf("db_connect_timeout = %v", cfg.DBConnectTimeout)
	}
}

func TestLoad_Precedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "uploadcfg.yaml")
	body := "store_backend: sqlite\nlog_level: debug\ndb_connect_timeout: 30\n"
	if err := os.WriteFile(file, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("UPLOADCFG_LOG_LEVEL", "warn")

	cfg, err := Load(nil, newFlags(t, "--config", file, "--store_path", "custom.db"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != BackendSQLite {
		t.Errorf("store_backend = %q, want sqlite from file", cfg.Store.Backend)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log_level = %q, want warn from env", cfg.LogLevel)
	}
	if cfg.Store.Path != "custom.db" {
		t.Errorf("store_path = %q, want custom.db from flag", cfg.Store.Path)
	}
	if cfg.DBConnectTimeout != 30*time.Second {
		t.Errorf("db_connect_timeout = %v, want 30s", cfg.DBConnectTimeout)
	}
}

func TestLoad_ImplicitFileFirstMatchOnly(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"uploadcfg.yaml": "log_level: debug\n",
		"uploadcfg.json": `{"log_level": "error", "env": "prod"}`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(nil, newFlags(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Env != "dev" {
		t.Fatalf("env/log_level = %q/%q, want dev/debug from uploadcfg.yaml only", cfg.Env, cfg.LogLevel)
	}
}

func TestLoad_SQLiteDefaultPath(t *testing.T) {
	cfg, err := Load(nil, newFlags(t, "--store_backend", "SQLite"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != BackendSQLite || cfg.Store.Path != "uploader-settings.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"redis without uri", []string{"--store_backend", "redis"}, "STORE_URI"},
		{"unknown backend", []string{"--store_backend", "etcd"}, "store_backend must be one of"},
		{"bad mongo uri", []string{"--store_backend", "mongo", "--store_uri", "http://db.example"}, "store_uri"},
		{"bad table", []string{"--store_backend", "postgres", "--store_uri", "postgres://db.example/x", "--store_namespace", "a-b"}, "store_namespace"},
		{"bad env", []string{"--env", "staging"}, "env must be"},
		{"bad log level", []string{"--log_level", "loud"}, "log_level"},
		{"missing config file", []string{"--config", "/nonexistent/uploadcfg.yaml"}, "read config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(nil, newFlags(t, tt.args...))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_BadTimeoutFallsBack(t *testing.T) {
	cfg, err := Load(nil, newFlags(t, "--db_connect_timeout", "soon"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBConnectTimeout != 10*time.Second {
		t.Errorf("db_connect_timeout = %v, want default", cfg.DBConnectTimeout)
	}
}

func TestDump_RedactsStoreURI(t *testing.T) {
	cfg := CoreConfig{Store: StoreConfig{Backend: BackendRedis, URI: "redis://:hunter2@cache.example:6379/0"}}
	if strings.Contains(cfg.Dump(), "hunter2") {
		t.Fatalf("Dump leaks password: %s", cfg.Dump())
	}
}

func TestParseTimeout(t *testing.T) {
	def := 7 * time.Second
	tests := []struct {
		raw     any
		want    time.Duration
		wantErr bool
	}{
		{"90s", 90 * time.Second, false},
		{"2m", 2 * time.Minute, false},
		{"120", 120 * time.Second, false},
		{"", def, false},
		{15, 15 * time.Second, false},
		{int64(3), 3 * time.Second, false},
		{1.5, 1500 * time.Millisecond, false},
		{nil, def, false},
		{"-5s", def, true},
		{"later", def, true},
		{0, def, true},
	}
	for _, tt := range tests {
		got, err := parseTimeout(tt.raw, def)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("parseTimeout(%v) = %v, %v; want %v, err=%v", tt.raw, got, err, tt.want, tt.wantErr)
		}
	}
}
