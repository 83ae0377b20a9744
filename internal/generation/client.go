// internal/generation/client.go
package generation

import "context"

// Request is one fully-built completion request: a fixed instruction block
// enforcing the output contract, a user block carrying the assessment
// document (or examination description), and, for the diagnosis variant,
// the media references to attach as distinct content parts.
type Request struct {
	Instructions string   // System block, constant template per pipeline
	UserContent  string   // Serialized assessment / examination framing
	MediaURLs    []string // Empty for the plan pipeline
	Temperature  float32
	MaxTokens    int
}

// TextGenerator is the boundary to the external generative service: text in,
// text out, plus optional media references. The pipeline imposes no
// transport beyond that; failures must be distinguishable from success via
// the returned error (*TransportError for unreachable/non-2xx/timeout).
type TextGenerator interface {
	Complete(ctx context.Context, req Request) (string, error)
}
