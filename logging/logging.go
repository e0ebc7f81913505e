// logging/logging.go
package logging

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AnnekeHeelsum/android-uploader/urlutil"
)

// ValidLogLevels are the levels accepted by log_level.
var ValidLogLevels = []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

// IsValidLogLevel is case-insensitive.
func IsValidLogLevel(level string) bool {
	return slices.Contains(ValidLogLevels, strings.ToLower(level))
}

// stderrConfig is the base for every logger of the tool. Stdout belongs to
// command output.
func stderrConfig(env string) zap.Config {
	var cfg zap.Config
	if env == "prod" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg
}

// BootstrapLogger logs warnings while the configuration is being loaded.
func BootstrapLogger() *zap.Logger {
	cfg := stderrConfig("dev")
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// BuildLogger builds the run logger: JSON in "prod", console otherwise.
// An unknown level falls back to info.
func BuildLogger(level, env string) (*zap.Logger, error) {
	cfg := stderrConfig(env)
	if err := cfg.Level.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: invalid log level %q (want one of %s); using info\n",
			level, strings.Join(ValidLogLevels, ", "))
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

// URI is a zap field for a URI that may embed credentials. User-info is
// replaced before the value reaches any encoder.
func URI(key, raw string) zap.Field {
	return zap.String(key, urlutil.Redact(raw))
}

// URIs is URI for a list.
func URIs(key string, raws []string) zap.Field {
	out := make([]string, len(raws))
	for i, r := range raws {
		out[i] = urlutil.Redact(r)
	}
	return zap.Strings(key, out)
}
