// autoconfig/edit.go
package autoconfig

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AnnekeHeelsum/android-uploader/settings"
	"github.com/AnnekeHeelsum/android-uploader/urlutil"
)

// ErrUnknownKey is returned by Edit for a key outside settings.Keys.
var ErrUnknownKey = errors.New("autoconfig: unknown settings key")

// Edit writes one hand-entered value. URI-valued keys go through the same
// validators as a scan and return a *ValidationError when rejected. An
// empty value, or a URI list with nothing but separators, removes the key.
func Edit(ctx context.Context, store settings.Store, key, value string) error {
	if !settings.IsKey(key) {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return store.Apply(ctx, []settings.Change{settings.Unset(key)})
	}

	var change settings.Change
	switch key {
	case settings.APIBaseURIs:
		uris := urlutil.SplitURIs(value)
		if len(uris) == 0 {
			return store.Apply(ctx, []settings.Change{settings.Unset(key)})
		}
		api, err := planAPI(uris)
		if err != nil {
			return err
		}
		change = settings.Set(key, settings.EncodeURIList(api.BaseURIs))

	case settings.DocumentStoreURI:
		if err := urlutil.ValidateDocumentStoreURI(value); err != nil {
			return newValidationError(TargetDocumentStore, err)
		}
		change = settings.Set(key, value)

	case settings.BrokerEndpoint:
		if err := urlutil.ValidateBrokerEndpointURI(value); err != nil {
			return newValidationError(TargetBroker, err)
		}
		change = settings.Set(key, value)

	case settings.DocumentStoreEnabled, settings.APIEnabled, settings.BrokerEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: want true or false, got %q", key, value)
		}
		change = settings.SetBool(key, b)

	default:
		change = settings.Set(key, value)
	}

	return store.Apply(ctx, []settings.Change{change})
}
