// Package embeddings generates vector embeddings over a TEI-compatible
// HTTP service.
//
// Each content type is bound to its own model and dimensionality by the
// content-type registry; the Provider hands out one embedder per type.
// Transient service failures are retried with bounded exponential backoff;
// persistent failures surface to the caller, which records them rather
// than retrying forever.
package embeddings
