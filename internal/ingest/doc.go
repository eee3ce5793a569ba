// Package ingest routes content chunks into per-domain collections.
//
// Each chunk is classified (or arrives pre-labeled), grouped by content
// type, embedded with the type's model, and upserted into the domain's
// collection for that type. Routing is strict: a chunk whose type has no
// collection in the domain's mapping is counted as failed, never written
// to a fallback collection. Failures are isolated per group so one bad
// type does not abort the rest of the batch.
package ingest
