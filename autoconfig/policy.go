// autoconfig/policy.go
package autoconfig

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/AnnekeHeelsum/android-uploader/barcode"
	"github.com/AnnekeHeelsum/android-uploader/logging"
	"github.com/AnnekeHeelsum/android-uploader/metrics"
	"github.com/AnnekeHeelsum/android-uploader/settings"
)

// Source yields one scan. ok is false when the user cancelled.
type Source interface {
	Scan(ctx context.Context) (payload string, ok bool, err error)
}

// Reporter shows a diagnostic to the user.
type Reporter interface {
	Report(message string)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(message string)

// Report calls f(message).
func (f ReporterFunc) Report(message string) { f(message) }

// Outcome is how a cycle ended.
type Outcome int

const (
	Cancelled Outcome = iota
	Applied
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return metrics.OutcomeApplied
	case Rejected:
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeCancelled
	}
}

// Result describes one cycle. Err is set only when Outcome is Rejected.
type Result struct {
	Outcome Outcome
	Delta   Delta
	Err     *ValidationError
}

// Policy applies scans to a settings store. It is not safe for concurrent
// cycles; scans are handled one at a time.
type Policy struct {
	store    settings.Store
	reporter Reporter
	logger   *zap.Logger
}

// New returns a Policy writing to store. reporter and logger may be nil.
func New(store settings.Store, reporter Reporter, logger *zap.Logger) *Policy {
	if reporter == nil {
		reporter = ReporterFunc(func(string) {})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{store: store, reporter: reporter, logger: logger}
}

// HandleScan reads one scan from src and applies it. A cancelled scan is a
// no-op.
func (p *Policy) HandleScan(ctx context.Context, src Source) (Result, error) {
	payload, ok, err := src.Scan(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("scan: %w", err)
	}
	if !ok {
		metrics.ObserveScan(Cancelled.String())
		p.logger.Debug("scan cancelled")
		return Result{Outcome: Cancelled}, nil
	}
	return p.Apply(ctx, payload)
}

// Apply decodes raw, plans every target and commits the delta as one batch.
//
// A validation failure is reported once through the Reporter and returned
// in Result with a nil error; nothing is written. A store failure is
// returned as an error and is not reported.
func (p *Policy) Apply(ctx context.Context, raw string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	delta, err := Plan(barcode.Decode(raw))
	if err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return Result{}, err
		}
		p.reporter.Report(verr.Message)
		metrics.ObserveScan(Rejected.String())
		p.logger.Warn("scan rejected",
			zap.String("target", string(verr.Target)),
			zap.String("field", verr.Field),
			zap.String("reason", verr.Message))
		return Result{Outcome: Rejected, Err: verr}, nil
	}

	if changes := delta.Changes(); len(changes) > 0 {
		if err := p.store.Apply(ctx, changes); err != nil {
			return Result{}, fmt.Errorf("apply settings: %w", err)
		}
	}

	metrics.ObserveScan(Applied.String())
	actions := delta.Actions()
	for _, t := range Targets {
		metrics.ObserveTargetChange(string(t), actions[t].String())
	}
	if reason := delta.Broker.SkipReason; reason != nil {
		p.logger.Debug("broker left unchanged", zap.Error(reason))
	}
	p.logger.Info("scan applied",
		zap.Stringer("document_store", delta.DocumentStore.Action),
		logging.URI("document_store_uri", delta.DocumentStore.URI),
		zap.Stringer("api", delta.API.Action),
		logging.URIs("api_base_uris", delta.API.BaseURIs),
		zap.Stringer("broker", delta.Broker.Action),
		zap.String("broker_endpoint", delta.Broker.Credentials.Endpoint))

	return Result{Outcome: Applied, Delta: delta}, nil
}
