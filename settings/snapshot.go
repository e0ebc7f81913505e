// settings/snapshot.go
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Snapshot is the typed view of the stored settings.
type Snapshot struct {
	DocumentStore DocumentStoreSettings `json:"document_store"`
	API           APISettings           `json:"api"`
	Broker        BrokerSettings        `json:"broker"`
}

// DocumentStoreSettings holds the document store target. Nil collection
// names mean "no override".
type DocumentStoreSettings struct {
	Enabled                bool    `json:"enabled"`
	URI                    string  `json:"uri,omitempty"`
	Collection             *string `json:"collection,omitempty"`
	DeviceStatusCollection *string `json:"device_status_collection,omitempty"`
}

// APISettings holds the REST API target.
type APISettings struct {
	Enabled  bool     `json:"enabled"`
	BaseURIs []string `json:"base_uris,omitempty"`
}

// BrokerSettings holds the MQTT broker target.
type BrokerSettings struct {
	Enabled  bool   `json:"enabled"`
	Endpoint string `json:"endpoint,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// Load reads every key from s. Missing keys take their zero value.
func Load(ctx context.Context, s Store) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	r := reader{ctx: ctx, s: s}

	snap.DocumentStore.Enabled = r.boolean(DocumentStoreEnabled)
	snap.DocumentStore.URI = r.str(DocumentStoreURI)
	snap.DocumentStore.Collection = r.opt(DocumentStoreCollection)
	snap.DocumentStore.DeviceStatusCollection = r.opt(DocumentStoreDeviceStatusCollection)

	snap.API.Enabled = r.boolean(APIEnabled)
	if raw := r.str(APIBaseURIs); raw != "" {
		snap.API.BaseURIs, err = DecodeURIList(raw)
		if err != nil {
			return Snapshot{}, fmt.Errorf("settings: %s: %w", APIBaseURIs, err)
		}
	}

	snap.Broker.Enabled = r.boolean(BrokerEnabled)
	snap.Broker.Endpoint = r.str(BrokerEndpoint)
	snap.Broker.Username = r.str(BrokerUsername)
	snap.Broker.Password = r.str(BrokerPassword)

	if r.err != nil {
		return Snapshot{}, r.err
	}
	return snap, nil
}

// Redacted returns a copy safe to print.
func (s Snapshot) Redacted() Snapshot {
	cp := s
	if cp.Broker.Password != "" {
		cp.Broker.Password = "[REDACTED]"
	}
	return cp
}

// EncodeURIList is the stored form of api.base_uris.
func EncodeURIList(uris []string) string {
	b, _ := json.Marshal(uris)
	return string(b)
}

// DecodeURIList parses the stored form of api.base_uris.
func DecodeURIList(raw string) ([]string, error) {
	var uris []string
	if err := json.Unmarshal([]byte(raw), &uris); err != nil {
		return nil, err
	}
	return uris, nil
}

// reader keeps the first error so Load reads like a list of assignments.
type reader struct {
	ctx context.Context
	s   Store
	err error
}

func (r *reader) opt(key string) *string {
	if r.err != nil {
		return nil
	}
	v, err := r.s.Get(r.ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		r.err = fmt.Errorf("settings: get %s: %w", key, err)
		return nil
	}
	return &v
}

func (r *reader) str(key string) string {
	if v := r.opt(key); v != nil {
		return *v
	}
	return ""
}

func (r *reader) boolean(key string) bool {
	b, _ := strconv.ParseBool(r.str(key))
	return b
}
