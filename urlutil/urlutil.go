// urlutil/urlutil.go
package urlutil

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// Field names carried by SyntaxError. They name the setting the user has to fix.
const (
	FieldAPIURI           = "REST API URI"
	FieldDocumentStoreURI = "MongoDB URI"
	FieldBrokerEndpoint   = "MQTT endpoint"
)

// SyntaxError reports a candidate URI that failed a shape check.
// Error() is the message shown to the user; it never echoes the candidate,
// which may embed credentials.
type SyntaxError struct {
	Field  string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func syntaxErr(field, format string, args ...any) *SyntaxError {
	return &SyntaxError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// SplitURIs splits a delimiter-joined list of URIs on commas and whitespace,
// dropping empty elements. Order and duplicates are preserved.
func SplitURIs(combined string) []string {
	return strings.FieldsFunc(combined, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// parseCandidate runs the checks every validator shares: non-empty after
// trimming, no CR/LF, and parseable by net/url.
func parseCandidate(field, raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, syntaxErr(field, "empty")
	}
	if strings.ContainsAny(raw, "\r\n") {
		return nil, syntaxErr(field, "contains CR/LF")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, syntaxErr(field, "cannot be parsed as a URI")
	}
	return u, nil
}

// ValidateAPIURI reports whether raw is an absolute http(s) URI with a host.
// User-info is allowed: uploader API URIs carry the API secret there
// (https://secret@site.example/api/v1). Callers holding a delimiter-joined
// list split it with SplitURIs and validate each element.
//
// Examples:
//
//	ValidateAPIURI("https://site.example/api/v1")        // nil
//	ValidateAPIURI("https://secret@site.example/api/v1") // nil
//	ValidateAPIURI("site.example/api/v1")                // error (no scheme)
//	ValidateAPIURI("ftp://site.example")                 // error (scheme)
func ValidateAPIURI(raw string) error {
	u, err := parseCandidate(FieldAPIURI, raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return syntaxErr(FieldAPIURI, `scheme must be "http" or "https"`)
	}
	if u.Hostname() == "" {
		return syntaxErr(FieldAPIURI, "missing host")
	}
	return nil
}

// ValidateDocumentStoreURI does a shape check of a MongoDB connection string.
// It accepts mongodb:// and mongodb+srv:// and requires a host. Standard
// mongodb:// strings are additionally run through the driver's connection
// string parser so unknown options and bad host lists are caught. SRV strings
// are not handed to the driver because it resolves them over DNS.
func ValidateDocumentStoreURI(raw string) error {
	u, err := parseCandidate(FieldDocumentStoreURI, raw)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return syntaxErr(FieldDocumentStoreURI, "missing host")
	}

	switch u.Scheme {
	case "mongodb":
		cs, err := connstring.ParseAndValidate(lowerScheme(u.Scheme, raw))
		if err != nil {
			return syntaxErr(FieldDocumentStoreURI, "%s", driverReason(err))
		}
		if len(cs.Hosts) == 0 {
			return syntaxErr(FieldDocumentStoreURI, "missing host")
		}
	case "mongodb+srv":
		if strings.Contains(u.Host, ",") {
			return syntaxErr(FieldDocumentStoreURI, "mongodb+srv allows exactly one host")
		}
		if u.Port() != "" {
			return syntaxErr(FieldDocumentStoreURI, "mongodb+srv does not allow a port")
		}
	default:
		return syntaxErr(FieldDocumentStoreURI, `scheme must be "mongodb" or "mongodb+srv"`)
	}
	return nil
}

// lowerScheme replaces the scheme of raw with the already lowercased scheme
// from url.Parse. The driver only matches the lowercase prefix.
func lowerScheme(scheme, raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "://"); i >= 0 {
		return scheme + raw[i:]
	}
	return raw
}

// driverReason trims the driver's error down to its last clause. The full
// text can quote the connection string, credentials included.
func driverReason(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	if strings.Contains(msg, "@") {
		return "malformed connection string"
	}
	return msg
}

// ValidateBrokerEndpointURI reports whether raw is a broker endpoint of the
// form scheme://host:port. Credentials belong in the separate username and
// password settings, so an endpoint carrying user-info is rejected.
func ValidateBrokerEndpointURI(raw string) error {
	u, err := parseCandidate(FieldBrokerEndpoint, raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" {
		return syntaxErr(FieldBrokerEndpoint, "missing scheme")
	}
	if u.Opaque != "" || u.Hostname() == "" {
		return syntaxErr(FieldBrokerEndpoint, "missing host")
	}
	if u.User != nil {
		return syntaxErr(FieldBrokerEndpoint, "must not embed credentials")
	}
	port := u.Port()
	if port == "" {
		return syntaxErr(FieldBrokerEndpoint, "missing port")
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return syntaxErr(FieldBrokerEndpoint, "port must be in 1..65535")
	}
	return nil
}

// Redact returns raw with any user-info removed, for logs and displays.
// Strings that do not parse are replaced wholesale.
func Redact(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "[unparseable]"
	}
	if u.User == nil {
		return u.String()
	}
	u.User = url.User("xxxxx")
	return u.String()
}
