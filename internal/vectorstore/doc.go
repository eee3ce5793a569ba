// Package vectorstore provides collection-agnostic vector storage.
//
// Every operation takes the collection name as an explicit per-call
// parameter; a Store holds no collection-specific instance state, so one
// Store instance safely serves an unbounded number of per-domain
// collections. Embedding happens in the callers (ingestion, search); the
// store only validates and moves vectors.
//
// Two implementations are provided:
//
//   - QdrantStore: external Qdrant over native gRPC (port 6334). Production
//     backend with server-side payload indexes and keyword filters.
//   - ChromemStore: embedded chromem-go with optional persistence. Local
//     and development backend, metadata-filtered in process.
//
// Both enforce the same write-side guards: a vector whose length does not
// match the collection's expected dimension, or that is all-zero, is
// rejected with ErrValidation before anything is stored.
package vectorstore
