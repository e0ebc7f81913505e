// config/config.go
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/AnnekeHeelsum/android-uploader/logging"
	"github.com/AnnekeHeelsum/android-uploader/urlutil"
)

// EnvPrefix prefixes every environment variable, e.g. UPLOADCFG_STORE_URI.
const EnvPrefix = "UPLOADCFG"

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendMongo    = "mongo"
)

// Backends lists the accepted store_backend values.
var Backends = []string{BackendMemory, BackendFile, BackendSQLite, BackendRedis, BackendPostgres, BackendMySQL, BackendMongo}

// StoreConfig selects and addresses the settings backend.
type StoreConfig struct {
	Backend   string `mapstructure:"store_backend"`
	Path      string `mapstructure:"store_path"`      // file, sqlite
	URI       string `mapstructure:"store_uri"`       // redis, postgres, mysql, mongo
	Namespace string `mapstructure:"store_namespace"` // redis hash key, SQL table, Mongo collection
}

// CoreConfig holds the configuration of the uploadcfg tool.
type CoreConfig struct {
	// runtime
	Env      string `mapstructure:"env"`       // "dev" | "prod"
	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error …

	Store StoreConfig `mapstructure:",squash"`

	// parsed separately; accepts "10s" or plain seconds
	DBConnectTimeout time.Duration `mapstructure:"-"`

	// optional node-exporter textfile to write counters to after a run
	MetricsTextfile string `mapstructure:"metrics_textfile"`
}

// Dump returns a pretty JSON string of the config with store_uri credentials
// removed. Use at debug level only.
func (c CoreConfig) Dump() string {
	cp := c
	if cp.Store.URI != "" {
		cp.Store.URI = urlutil.Redact(cp.Store.URI)
	}
	b, _ := json.MarshalIndent(cp, "", "  ")
	return string(b)
}

// RegisterFlags defines the config flags on fs. Only flags the user sets
// explicitly override other sources.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Config file (default: ./uploadcfg.{yaml,yml,json,toml} if present)")
	fs.String("env", "dev", `Runtime environment "dev"|"prod"`)
	fs.String("log_level", "info", "Log level")

	fs.String("store_backend", BackendFile, "Settings backend: "+strings.Join(Backends, "|"))
	fs.String("store_path", "", "Settings file or SQLite database path")
	fs.String("store_uri", "", "Settings backend URI (redis, postgres, mysql DSN, mongo)")
	fs.String("store_namespace", "uploader_settings", "Redis hash key, SQL table, or Mongo collection")

	fs.String("db_connect_timeout", "10s", `Timeout for connecting to the settings backend (e.g. "10s")`)
	fs.String("metrics_textfile", "", "Write Prometheus counters to this file after each run")
}

// Load merges defaults → config file → env vars → explicit flags into one CoreConfig.
// Final precedence (highest wins): flags(explicit) > env > config > defaults.
// A .env file in the working directory is loaded first; real env still wins over it.
func Load(logger *zap.Logger, fs *pflag.FlagSet) (*CoreConfig, error) {
	if err := godotenv.Load(); err == nil && logger != nil {
		logger.Info("loaded .env file")
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, k := range allKeys() {
		_ = v.BindEnv(k)
	}

	explicit := ""
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			explicit = f.Value.String()
		}
	}
	if err := mergeConfigFile(logger, v, explicit); err != nil {
		return nil, err
	}

	setDefaults(v)

	if fs != nil {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Changed && f.Name != "config" {
				_ = v.BindPFlag(f.Name, f)
			}
		})
	}

	var cfg CoreConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	timeout, err := parseTimeout(v.Get("db_connect_timeout"), 10*time.Second)
	if err != nil && logger != nil {
		logger.Warn("invalid db_connect_timeout; using default 10s",
			zap.Any("value", v.Get("db_connect_timeout")), zap.Error(err))
	}
	cfg.DBConnectTimeout = timeout

	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	if cfg.Store.Path == "" {
		switch cfg.Store.Backend {
		case BackendFile:
			cfg.Store.Path = "uploader-settings.json"
		case BackendSQLite:
			cfg.Store.Path = "uploader-settings.db"
		}
	}

	if err := validateCoreConfig(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigFile merges the explicit file, or the first uploadcfg.* in the
// working directory that decodes, in yaml, yml, json, toml order. A missing explicit file is an error; an unreadable
// implicit one is only logged.
func mergeConfigFile(logger *zap.Logger, v *viper.Viper, explicit string) error {
	if explicit != "" {
		ext := strings.TrimPrefix(filepath.Ext(explicit), ".")
		b, err := os.ReadFile(explicit)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		v.SetConfigType(ext)
		if err := v.MergeConfig(bytes.NewReader(b)); err != nil {
			return fmt.Errorf("decode config file %s: %w", explicit, err)
		}
		if logger != nil {
			logger.Info("loaded config file", zap.String("file", explicit))
		}
		return nil
	}

	for _, ext := range [...]string{"yaml", "yml", "json", "toml"} {
		file := "uploadcfg." + ext
		b, err := os.ReadFile(file)
		if err != nil {
			if !os.IsNotExist(err) && logger != nil {
				logger.Warn("cannot read config file", zap.String("file", file), zap.Error(err))
			}
			continue
		}
		v.SetConfigType(ext)
		if err := v.MergeConfig(bytes.NewReader(b)); err != nil {
			if logger != nil {
				logger.Warn("cannot decode config file", zap.String("file", file), zap.Error(err))
			}
			continue
		}
		if logger != nil {
			logger.Info("loaded config file", zap.String("file", file))
		}
		break
	}
	return nil
}

func allKeys() []string {
	return []string{
		"env", "log_level",
		"store_backend", "store_path", "store_uri", "store_namespace",
		"db_connect_timeout", "metrics_textfile",
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")

	v.SetDefault("store_backend", BackendFile)
	v.SetDefault("store_path", "")
	v.SetDefault("store_uri", "")
	v.SetDefault("store_namespace", "uploader_settings")

	v.SetDefault("db_connect_timeout", "10s")
	v.SetDefault("metrics_textfile", "")
}

// parseTimeout accepts "90s"/"2m", plain seconds as a string or number, or a
// time.Duration. Empty or unknown types yield def without error.
func parseTimeout(raw any, def time.Duration) (time.Duration, error) {
	var d time.Duration
	switch t := raw.(type) {
	case time.Duration:
		d = t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return def, nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			d = time.Duration(n) * time.Second
		} else if d, err = time.ParseDuration(s); err != nil {
			return def, fmt.Errorf("cannot parse duration %q", s)
		}
	case int:
		d = time.Duration(t) * time.Second
	case int64:
		d = time.Duration(t) * time.Second
	case float64:
		d = time.Duration(t * float64(time.Second))
	default:
		return def, nil
	}
	if d <= 0 {
		return def, fmt.Errorf("duration must be >0")
	}
	return d, nil
}

var namespaceRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

func validateCoreConfig(cfg CoreConfig) error {
	var missing []string
	var invalid []string

	if cfg.Env != "dev" && cfg.Env != "prod" {
		invalid = append(invalid, `env must be "dev" or "prod"`)
	}
	if !logging.IsValidLogLevel(cfg.LogLevel) {
		invalid = append(invalid, "log_level must be one of "+strings.Join(logging.ValidLogLevels, ", "))
	}

	s := cfg.Store
	switch s.Backend {
	case BackendMemory:
	case BackendFile, BackendSQLite:
		if strings.TrimSpace(s.Path) == "" {
			missing = append(missing, EnvPrefix+"_STORE_PATH (or --store_path) for store_backend="+s.Backend)
		}
	case BackendRedis, BackendPostgres, BackendMySQL, BackendMongo:
		if strings.TrimSpace(s.URI) == "" {
			missing = append(missing, EnvPrefix+"_STORE_URI (or --store_uri) for store_backend="+s.Backend)
		}
		if s.Backend == BackendMongo && s.URI != "" {
			if err := urlutil.ValidateDocumentStoreURI(s.URI); err != nil {
				invalid = append(invalid, "store_uri: "+err.Error())
			}
		}
	default:
		invalid = append(invalid, "store_backend must be one of "+strings.Join(Backends, ", "))
	}

	switch s.Backend {
	case BackendSQLite, BackendPostgres, BackendMySQL, BackendMongo:
		if !namespaceRe.MatchString(s.Namespace) {
			invalid = append(invalid, "store_namespace must be a plain identifier for store_backend="+s.Backend)
		}
	case BackendRedis:
		if strings.TrimSpace(s.Namespace) == "" {
			missing = append(missing, "store_namespace for store_backend=redis")
		}
	}

	if cfg.DBConnectTimeout <= 0 {
		invalid = append(invalid, "db_connect_timeout must be > 0")
	}

	if len(missing) == 0 && len(invalid) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(invalid, ", "))
	}
	return fmt.Errorf("configuration errors: %s", strings.Join(parts, " | "))
}
