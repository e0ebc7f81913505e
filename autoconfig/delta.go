// Package autoconfig turns a scanned configuration payload into settings
// changes for the uploader's three targets.
//
// A cycle is decode, plan, commit. Plan computes every target's delta before
// anything is written, so a validation failure leaves the store untouched.
// The document store and REST API sections fail the whole cycle on a syntax
// error. A broker URI whose credentials cannot be extracted only leaves the
// broker target unchanged.
package autoconfig

import (
	"github.com/AnnekeHeelsum/android-uploader/credentials"
	"github.com/AnnekeHeelsum/android-uploader/settings"
)

// Action is the per-target outcome of a cycle.
type Action int

const (
	// Unchanged leaves the target's stored settings as they are.
	Unchanged Action = iota
	// Disabled writes enabled=false and keeps the other fields.
	Disabled
	// Enabled writes enabled=true together with the target's fields.
	Enabled
)

func (a Action) String() string {
	switch a {
	case Disabled:
		return "disabled"
	case Enabled:
		return "enabled"
	default:
		return "unchanged"
	}
}

// Target names an upload destination.
type Target string

const (
	TargetDocumentStore Target = "document_store"
	TargetAPI           Target = "api"
	TargetBroker        Target = "broker"
)

// DocumentStoreDelta is the planned change for the document store. Nil
// collection names mean "no override" and remove any stored override.
type DocumentStoreDelta struct {
	Action                 Action
	URI                    string
	Collection             *string
	DeviceStatusCollection *string
}

// APIDelta is the planned change for the REST API target.
type APIDelta struct {
	Action   Action
	BaseURIs []string
}

// BrokerDelta is the planned change for the MQTT broker.
type BrokerDelta struct {
	Action      Action
	Credentials credentials.Credentials

	// SkipReason is the extraction error that left the broker unchanged.
	// It is logged, never reported.
	SkipReason error
}

// Delta is the outcome of one cycle for all three targets.
type Delta struct {
	DocumentStore DocumentStoreDelta
	API           APIDelta
	Broker        BrokerDelta
}

// Targets lists the targets in planning order.
var Targets = []Target{TargetDocumentStore, TargetAPI, TargetBroker}

// Actions returns the action per target.
func (d Delta) Actions() map[Target]Action {
	return map[Target]Action{
		TargetDocumentStore: d.DocumentStore.Action,
		TargetAPI:           d.API.Action,
		TargetBroker:        d.Broker.Action,
	}
}

// Changes converts d to the settings writes that commit it. Unchanged
// targets contribute nothing.
func (d Delta) Changes() []settings.Change {
	var out []settings.Change

	switch ds := d.DocumentStore; ds.Action {
	case Enabled:
		out = append(out,
			settings.SetBool(settings.DocumentStoreEnabled, true),
			settings.Set(settings.DocumentStoreURI, ds.URI),
			optional(settings.DocumentStoreCollection, ds.Collection),
			optional(settings.DocumentStoreDeviceStatusCollection, ds.DeviceStatusCollection),
		)
	case Disabled:
		out = append(out, settings.SetBool(settings.DocumentStoreEnabled, false))
	}

	switch api := d.API; api.Action {
	case Enabled:
		out = append(out,
			settings.SetBool(settings.APIEnabled, true),
			settings.Set(settings.APIBaseURIs, settings.EncodeURIList(api.BaseURIs)),
		)
	case Disabled:
		out = append(out, settings.SetBool(settings.APIEnabled, false))
	}

	switch b := d.Broker; b.Action {
	case Enabled:
		out = append(out,
			settings.SetBool(settings.BrokerEnabled, true),
			settings.Set(settings.BrokerEndpoint, b.Credentials.Endpoint),
			settings.Set(settings.BrokerUsername, b.Credentials.Username),
			settings.Set(settings.BrokerPassword, b.Credentials.Password),
		)
	case Disabled:
		out = append(out, settings.SetBool(settings.BrokerEnabled, false))
	}

	return out
}

func optional(key string, v *string) settings.Change {
	if v == nil {
		return settings.Unset(key)
	}
	return settings.Set(key, *v)
}
