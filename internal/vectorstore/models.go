package vectorstore

// Payload keys written for every stored point.
const (
	// PayloadDomainID scopes a point to its owning domain. Present on every
	// point and indexed for filtered search.
	PayloadDomainID = "domain_id"

	// PayloadContent carries the source chunk text.
	PayloadContent = "content"

	// PayloadContentType carries the classification label the chunk was
	// routed under.
	PayloadContentType = "content_type"

	// PayloadOrdinal carries the chunk's position within its source.
	PayloadOrdinal = "ordinal"
)

// Point is a vector plus payload destined for a collection.
type Point struct {
	// ID is the point identifier (UUID string).
	ID string

	// Vector is the embedding. Its length must match the target
	// collection's dimension.
	Vector []float32

	// Payload holds filterable metadata. PayloadDomainID is mandatory for
	// domain-scoped points.
	Payload map[string]interface{}
}

// ScoredPoint is a similarity search hit.
type ScoredPoint struct {
	// ID is the point identifier.
	ID string

	// Score is the similarity score (higher is more similar).
	Score float32

	// Payload holds the stored metadata.
	Payload map[string]interface{}
}

// Filter is a keyword-equality payload filter. All entries must match.
type Filter map[string]string
