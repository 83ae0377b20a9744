// internal/generation/errors.go
package generation

import "fmt"

// SchemaErrorKind classifies how a generative response violated the output
// contract.
type SchemaErrorKind string

const (
	// SchemaMalformed: the response body was not parseable JSON at all.
	SchemaMalformed SchemaErrorKind = "malformed"
	// SchemaMissingField: a required field was absent or had the wrong type.
	SchemaMissingField SchemaErrorKind = "missing_field"
	// SchemaInvalidValue: a field parsed but held an unacceptable value
	// (empty required sequence, unknown enum token).
	SchemaInvalidValue SchemaErrorKind = "invalid_value"
)

// SchemaError reports a contract violation in a generative response,
// including the path of the offending field (e.g. "phases[0].exercises").
// These are logged for diagnosing prompt drift and always recovered via the
// fallback provider, never surfaced to end users as hard failures.
type SchemaError struct {
	Kind SchemaErrorKind
	Path string
	Msg  string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schema violation (%s): %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("schema violation (%s) at %s: %s", e.Kind, e.Path, e.Msg)
}

// TransportError reports that the generative service was unreachable,
// returned a non-success status, or timed out. Like SchemaError it is always
// recovered locally via fallback.
type TransportError struct {
	StatusCode int // 0 when the failure happened before a response arrived
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generative service transport failure (http %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generative service transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
