// Package params models the invocation parameters handed to a worker at
// startup: a read-only, URL-style query mapping. The bootstrapper reads a
// single designated key from it to decide which module to load.
package params

import (
	"net/url"
)

// ScriptKey is the module-selector key recognized in invocation parameters.
const ScriptKey = "script"

// DefaultModule is the module identifier used when the selector key is
// missing or empty.
const DefaultModule = "./ahmetkayaify.js"

// Params is a read-only view over a worker's invocation parameters.
type Params struct {
	values url.Values
}

// Parse decodes a raw query string (e.g. "script=./custom.js&seed=7") into
// Params. A leading '?' is tolerated so callers can pass a location search
// string verbatim.
func Parse(raw string) (Params, error) {
	if len(raw) > 0 && raw[0] == '?' {
		raw = raw[1:]
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return Params{}, err
	}
	return Params{values: values}, nil
}

// FromValues wraps existing url.Values. The values are copied so later
// mutation by the caller cannot leak into the worker.
func FromValues(values url.Values) Params {
	copied := make(url.Values, len(values))
	for k, v := range values {
		copied[k] = append([]string(nil), v...)
	}
	return Params{values: copied}
}

// Get returns the first value for key, or "" when absent.
func (p Params) Get(key string) string {
	return p.values.Get(key)
}

// Resolve returns the first value for key, or fallback when the key is
// missing or its value is empty.
func (p Params) Resolve(key, fallback string) string {
	if v := p.values.Get(key); v != "" {
		return v
	}
	return fallback
}

// Encode renders the parameters back into canonical query-string form.
// Used for logging worker identity.
func (p Params) Encode() string {
	return p.values.Encode()
}
