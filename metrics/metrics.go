// metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Scan outcomes.
const (
	OutcomeApplied   = "applied"
	OutcomeRejected  = "rejected"
	OutcomeCancelled = "cancelled"
)

// scans counts handled scans by outcome.
var scans = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "uploadcfg_scans_total",
		Help: "Configuration scans handled, by outcome.",
	},
	[]string{"outcome"},
)

// targetChanges counts per-target actions of applied scans.
var targetChanges = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "uploadcfg_target_changes_total",
		Help: "Upload target changes from applied scans, by target and action.",
	},
	[]string{"target", "action"},
)

// RegisterDefault registers the process collector and the uploadcfg counters
// with the default registry. Call once at startup.
//
// It panics (or logs fatally) if registration fails for any reason other
// than the collector already being registered.
func RegisterDefault(logger *zap.Logger) {
	mustRegister(logger, "process collector", collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mustRegister(logger, "scan counter", scans)
	mustRegister(logger, "target change counter", targetChanges)
}

func mustRegister(logger *zap.Logger, name string, c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return
		}
		if logger != nil {
			logger.Fatal("failed to register "+name, zap.Error(err))
		} else {
			panic("metrics: failed to register " + name + ": " + err.Error())
		}
	}
}

// ObserveScan records one handled scan.
func ObserveScan(outcome string) {
	scans.WithLabelValues(outcome).Inc()
}

// ObserveTargetChange records the action taken for one target.
func ObserveTargetChange(target, action string) {
	targetChanges.WithLabelValues(target, action).Inc()
}

// WriteTextfile writes the default registry in the node-exporter textfile
// format. The file is replaced atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
