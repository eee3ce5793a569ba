package ingest

import "github.com/fyrsmithlabs/retrievald/internal/contenttype"

// TypeCounts tracks per-type ingestion outcomes.
type TypeCounts struct {
	// Embedded is the number of chunks successfully embedded.
	Embedded int `json:"embedded"`

	// Stored is the number of chunks written to the vector store.
	Stored int `json:"stored"`

	// Failed is the number of chunks dropped: unroutable type, embedding
	// failure, validation rejection, or upsert failure.
	Failed int `json:"failed"`
}

// Report summarizes one Ingest call. Partial failure is reported here, not
// raised as an error: the caller decides whether a nonzero Failed count is
// fatal.
type Report struct {
	ByType map[contenttype.ContentType]TypeCounts `json:"by_type"`
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{ByType: make(map[contenttype.ContentType]TypeCounts)}
}

func (r *Report) addEmbedded(ct contenttype.ContentType, n int) {
	c := r.ByType[ct]
	c.Embedded += n
	r.ByType[ct] = c
}

func (r *Report) addStored(ct contenttype.ContentType, n int) {
	c := r.ByType[ct]
	c.Stored += n
	r.ByType[ct] = c
}

func (r *Report) addFailed(ct contenttype.ContentType, n int) {
	c := r.ByType[ct]
	c.Failed += n
	r.ByType[ct] = c
}

// TotalStored returns the number of chunks stored across all types.
func (r *Report) TotalStored() int {
	var n int
	for _, c := range r.ByType {
		n += c.Stored
	}
	return n
}

// TotalFailed returns the number of chunks dropped across all types.
func (r *Report) TotalFailed() int {
	var n int
	for _, c := range r.ByType {
		n += c.Failed
	}
	return n
}
