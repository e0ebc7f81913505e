// version/version.go
package version

import "runtime"

// Set at build time:
//
//	go build -ldflags "-X github.com/AnnekeHeelsum/android-uploader/version.Version=1.0.0 \
//	                   -X github.com/AnnekeHeelsum/android-uploader/version.Commit=abc123 \
//	                   -X github.com/AnnekeHeelsum/android-uploader/version.BuildTime=2026-01-15T10:30:00Z" \
//	    ./cmd/uploadcfg
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns the version line printed by "uploadcfg --version".
//
// Example output: "1.2.3 (abc123, built 2026-01-15T10:30:00Z, go1.24.1)"
func String() string {
	if Version == "dev" {
		return "dev (" + runtime.Version() + ")"
	}
	return Version + " (" + Commit + ", built " + BuildTime + ", " + runtime.Version() + ")"
}
