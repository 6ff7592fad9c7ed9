package domain

// Rejection records why a chunk was kept out of the vector store.
// Rejections are data, not errors; ingestion continues for other chunks.
type Rejection struct {
	// ID is the rejected chunk's identifier.
	ID string

	// Kind is the declared kind as read from metadata ("" when unmarked).
	Kind string

	// Reason is a human-readable explanation.
	Reason string
}

// InsertReport summarises one SimilarityIndex insert.
type InsertReport struct {
	Stored     int
	Rejected   int
	Rejections []Rejection
}

// EmbeddingFailure records a text the queue path could not embed.
type EmbeddingFailure struct {
	// Index is the text's position in the input slice.
	Index int

	// Err is the final error for that text.
	Err error
}

// IngestReport summarises one ingestion call.
type IngestReport struct {
	// DocumentID and Version identify the version that was written.
	DocumentID string
	Version    int

	// Unchanged is true when the content hash matched the latest version
	// and nothing was written.
	Unchanged bool

	// Fallback is true when hierarchical chunking failed and flat chunking was used.
	Fallback bool

	// Produced is the total number of chunks the chunker returned.
	Produced int
	Parents  int
	Children int

	// Embedded and Failed count retrievable chunks by embedding outcome.
	Embedded int
	Failed   int

	// Accepted and Rejected come from the chunk gate.
	Accepted int
	Rejected int

	// Rejections lists gate rejections with reasons.
	Rejections []Rejection

	// Failures lists per-chunk embedding failures on the queue path.
	Failures []EmbeddingFailure
}
