package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveScan(t *testing.T) {
	before := testutil.ToFloat64(scans.WithLabelValues(OutcomeRejected))
	ObserveScan(OutcomeRejected)
	ObserveScan(OutcomeRejected)
	if got := testutil.ToFloat64(scans.WithLabelValues(OutcomeRejected)) - before; got != 2 {
		t.Fatalf("rejected delta = %v, want 2", got)
	}
}

func TestObserveTargetChange(t *testing.T) {
	before := testutil.ToFloat64(targetChanges.WithLabelValues("broker", "disabled"))
	ObserveTargetChange("broker", "disabled")
	if got := testutil.ToFloat64(targetChanges.WithLabelValues("broker", "disabled")) - before; got != 1 {
		t.Fatalf("broker/disabled delta = %v, want 1", got)
	}
}

func TestRegisterDefaultTwice(t *testing.T) {
	RegisterDefault(nil)
	RegisterDefault(nil)
}

func TestWriteTextfile(t *testing.T) {
	RegisterDefault(nil)
	ObserveScan(OutcomeApplied)

	path := filepath.Join(t.TempDir(), "uploadcfg.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `uploadcfg_scans_total{outcome="applied"}`) {
		t.Fatalf("textfile missing scan counter:\n%s", b)
	}
}
