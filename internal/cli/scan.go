// internal/cli/scan.go
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// fileSource reads a payload from a file, or from stdin for "" and "-".
// Blank input is a cancelled scan.
type fileSource struct {
	path  string
	stdin io.Reader
}

func (s fileSource) Scan(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	var (
		b   []byte
		err error
	)
	if s.path == "" || s.path == "-" {
		b, err = io.ReadAll(s.stdin)
	} else {
		b, err = os.ReadFile(s.path)
	}
	if err != nil {
		return "", false, err
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", false, nil
	}
	return string(b), true, nil
}

// writerReporter prints diagnostics, one per line.
type writerReporter struct{ w io.Writer }

func (r writerReporter) Report(message string) {
	fmt.Fprintf(r.w, "configuration rejected: %s\n", message)
}
