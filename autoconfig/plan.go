// autoconfig/plan.go
package autoconfig

import (
	"errors"
	"fmt"

	"github.com/AnnekeHeelsum/android-uploader/barcode"
	"github.com/AnnekeHeelsum/android-uploader/credentials"
	"github.com/AnnekeHeelsum/android-uploader/urlutil"
)

// ValidationError is the first syntax failure of a cycle. Message is what
// the user sees.
type ValidationError struct {
	Target  Target
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

func newValidationError(target Target, err error) *ValidationError {
	verr := &ValidationError{Target: target, Message: err.Error(), Err: err}
	var se *urlutil.SyntaxError
	if errors.As(err, &se) {
		verr.Field = se.Field
	}
	return verr
}

// Plan validates cfg and computes the delta for every target. It returns a
// *ValidationError for the first failing field, checking the document store
// before the API targets. Broker credential problems are never an error.
func Plan(cfg barcode.Config) (Delta, error) {
	var (
		d   Delta
		err error
	)
	if d.DocumentStore, err = planDocumentStore(cfg.DocumentStore); err != nil {
		return Delta{}, err
	}
	if d.API, err = planAPI(cfg.APITargets); err != nil {
		return Delta{}, err
	}
	d.Broker = planBroker(cfg.Broker)
	return d, nil
}

func planDocumentStore(c *barcode.DocumentStoreConfig) (DocumentStoreDelta, error) {
	if c == nil {
		return DocumentStoreDelta{Action: Disabled}, nil
	}
	// A section without a URI says nothing about the target.
	if c.URI == nil {
		return DocumentStoreDelta{Action: Unchanged}, nil
	}
	if err := urlutil.ValidateDocumentStoreURI(*c.URI); err != nil {
		return DocumentStoreDelta{}, newValidationError(TargetDocumentStore, err)
	}
	return DocumentStoreDelta{
		Action:                 Enabled,
		URI:                    *c.URI,
		Collection:             c.Collection,
		DeviceStatusCollection: c.DeviceStatusCollection,
	}, nil
}

func planAPI(targets []string) (APIDelta, error) {
	if len(targets) == 0 {
		return APIDelta{Action: Disabled}, nil
	}
	for i, uri := range targets {
		if err := urlutil.ValidateAPIURI(uri); err != nil {
			verr := newValidationError(TargetAPI, err)
			if len(targets) > 1 {
				verr.Message = fmt.Sprintf("%s (entry %d of %d)", verr.Message, i+1, len(targets))
			}
			return APIDelta{}, verr
		}
	}
	uris := make([]string, len(targets))
	copy(uris, targets)
	return APIDelta{Action: Enabled, BaseURIs: uris}, nil
}

// planBroker never fails. No user-info or malformed user-info is read as
// "this scan did not configure a broker".
// TODO: settle on one error policy for all targets; credential failures are
// silent here while URI syntax failures abort the cycle.
func planBroker(c *barcode.BrokerConfig) BrokerDelta {
	if c == nil {
		return BrokerDelta{Action: Disabled}
	}
	if c.URI == nil {
		return BrokerDelta{Action: Unchanged}
	}
	creds, err := credentials.Extract(*c.URI)
	if err != nil {
		return BrokerDelta{Action: Unchanged, SkipReason: err}
	}
	return BrokerDelta{Action: Enabled, Credentials: creds}
}
