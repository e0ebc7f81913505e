// barcode/encode.go
package barcode

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// ErrEmptyConfig is returned by Encode when no section is set.
var ErrEmptyConfig = errors.New("barcode: config has no sections")

type wirePayload struct {
	Mongo *wireDocumentStore `json:"mongo,omitempty"`
	Rest  *wireAPI           `json:"rest,omitempty"`
	MQTT  *wireBroker        `json:"mqtt,omitempty"`
}

type wireDocumentStore struct {
	URI                    *string `json:"uri,omitempty"`
	Collection             *string `json:"collection,omitempty"`
	DeviceStatusCollection *string `json:"device_status_collection,omitempty"`
}

type wireAPI struct {
	Endpoint []string `json:"endpoint"`
}

type wireBroker struct {
	URI *string `json:"uri,omitempty"`
}

// Encode renders cfg as the JSON payload Decode reads.
func Encode(cfg Config) (string, error) {
	if cfg.Empty() {
		return "", ErrEmptyConfig
	}

	var p wirePayload
	if d := cfg.DocumentStore; d != nil {
		p.Mongo = &wireDocumentStore{
			URI:                    d.URI,
			Collection:             d.Collection,
			DeviceStatusCollection: d.DeviceStatusCollection,
		}
	}
	if cfg.HasAPI() {
		p.Rest = &wireAPI{Endpoint: cfg.APITargets}
	}
	if b := cfg.Broker; b != nil {
		p.MQTT = &wireBroker{URI: b.URI}
	}

	out, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return string(out), nil
}

// QR renders payload as a PNG QR code of size×size pixels.
// Medium error correction keeps codes readable from a phone screen.
func QR(payload string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("render QR code: %w", err)
	}
	return png, nil
}
