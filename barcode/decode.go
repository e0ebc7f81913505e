// barcode/decode.go
package barcode

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/AnnekeHeelsum/android-uploader/urlutil"
	"github.com/tidwall/gjson"
	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
	"gopkg.in/yaml.v3"
)

// Decode parses a scanned payload. It is total: garbage, empty input, or a
// malformed section never fails, it just leaves that section nil. Real
// rejection happens later when each present section is validated.
func Decode(raw string) Config {
	doc, ok := normalize(raw)
	if !ok {
		return Config{}
	}
	root := gjson.Parse(doc)
	if !root.IsObject() {
		return Config{}
	}

	var cfg Config
	if s := root.Get(keyDocumentStore); s.IsObject() {
		cfg.DocumentStore = &DocumentStoreConfig{
			URI:                    optString(s.Get(keyURI)),
			Collection:             optString(s.Get(keyCollection)),
			DeviceStatusCollection: optString(s.Get(keyDeviceStatusCollection)),
		}
	}
	if s := root.Get(keyAPI); s.IsObject() {
		cfg.APITargets = endpoints(s.Get(keyEndpoint))
	}
	if s := root.Get(keyBroker); s.IsObject() {
		cfg.Broker = &BrokerConfig{URI: optString(s.Get(keyURI))}
	}
	return cfg
}

// normalize returns raw as strict JSON. Payloads typed by hand are often
// JSON5 or YAML, so those are tried in turn before giving up. The JSON5
// parser takes comments, unquoted keys and trailing commas, not
// single-quoted strings.
func normalize(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if gjson.Valid(raw) {
		return raw, true
	}

	for _, parse := range []func([]byte, any) error{json5.Unmarshal, yaml.Unmarshal} {
		v, ok := tryParse(parse, raw)
		if !ok {
			continue
		}
		if b, err := json.Marshal(jsonSafe(v)); err == nil {
			return string(b), true
		}
	}
	return "", false
}

// tryParse runs one fallback parser. They see arbitrary scanner output and
// some of them panic on it, which only rules out that parser.
func tryParse(parse func([]byte, any) error, raw string) (v any, ok bool) {
	defer func() {
		if recover() != nil {
			v, ok = nil, false
		}
	}()
	if err := parse([]byte(raw), &v); err != nil || v == nil {
		return nil, false
	}
	return v, true
}

// jsonSafe rewrites what json.Marshal refuses so one odd value cannot drop
// the whole payload. YAML mapping keys that are not strings are printed, and
// non-finite numbers become null.
func jsonSafe(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = jsonSafe(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = jsonSafe(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = jsonSafe(e)
		}
		return t
	case float64:
		if math.IsInf(t, 0) || math.IsNaN(t) {
			return nil
		}
	}
	return v
}

// optString returns a trimmed string value, or nil when r is missing, not a
// string, or blank.
func optString(r gjson.Result) *string {
	if r.Type != gjson.String {
		return nil
	}
	s := strings.TrimSpace(r.Str)
	if s == "" {
		return nil
	}
	return &s
}

// endpoints accepts either an array of strings or one delimiter-joined
// string. Each string is split again, so ["a b", "c"] yields three targets.
func endpoints(r gjson.Result) []string {
	var out []string
	switch {
	case r.IsArray():
		for _, e := range r.Array() {
			if e.Type == gjson.String {
				out = append(out, urlutil.SplitURIs(e.Str)...)
			}
		}
	case r.Type == gjson.String:
		out = urlutil.SplitURIs(r.Str)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
