// Package settings is the persisted key-value preferences of the uploader:
// which upload targets are enabled and how to reach them.
//
// Backends implement Store. The memory and JSON file stores live here; the
// database-backed stores live under db/.
package settings

import (
	"context"
	"errors"
)

// Keys written by the uploader.
const (
	DocumentStoreEnabled                = "document_store.enabled"
	DocumentStoreURI                    = "document_store.uri"
	DocumentStoreCollection             = "document_store.collection"
	DocumentStoreDeviceStatusCollection = "document_store.device_status_collection"

	APIEnabled  = "api.enabled"
	APIBaseURIs = "api.base_uris"

	BrokerEnabled  = "broker.enabled"
	BrokerEndpoint = "broker.endpoint"
	BrokerUsername = "broker.username"
	BrokerPassword = "broker.password"
)

// Keys lists every key in display order.
var Keys = []string{
	DocumentStoreEnabled, DocumentStoreURI, DocumentStoreCollection, DocumentStoreDeviceStatusCollection,
	APIEnabled, APIBaseURIs,
	BrokerEnabled, BrokerEndpoint, BrokerUsername, BrokerPassword,
}

// IsKey reports whether key is one of Keys.
func IsKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// IsSecret reports whether the value under key must not be displayed.
func IsSecret(key string) bool {
	return key == BrokerPassword
}

var (
	// ErrNotFound is returned by Get when the key has no value.
	ErrNotFound = errors.New("settings: key not found")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("settings: store is closed")
)

// Change is one pending write. A nil Value removes the key.
type Change struct {
	Key   string
	Value *string
}

// Set returns a Change that stores value under key.
func Set(key, value string) Change {
	return Change{Key: key, Value: &value}
}

// Unset returns a Change that removes key.
func Unset(key string) Change {
	return Change{Key: key}
}

// SetBool returns a Change that stores a boolean flag.
func SetBool(key string, v bool) Change {
	if v {
		return Set(key, "true")
	}
	return Set(key, "false")
}

// Store is a key-value settings backend.
//
// Apply commits a whole batch: implementations apply it atomically when the
// engine supports it and never leave a batch half-applied on error if they
// can avoid it. Applying the same batch twice yields the same stored state.
type Store interface {
	// Get returns the value under key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Apply writes changes in order.
	Apply(ctx context.Context, changes []Change) error

	// Close releases the backend.
	Close() error
}
