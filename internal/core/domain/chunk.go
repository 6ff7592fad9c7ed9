package domain

// ChunkKind tags a chunk with its role in the parent/child hierarchy.
type ChunkKind string

// Available chunk kinds.
const (
	// ChunkKindParent is a large context window. Parents are referenced by
	// children but never stored in the vector index or returned as answers.
	ChunkKindParent ChunkKind = "parent"

	// ChunkKindChild is a small retrievable window linked to one parent.
	ChunkKindChild ChunkKind = "child"

	// ChunkKindBasic is produced by flat chunking when the hierarchy fails.
	ChunkKindBasic ChunkKind = "basic"
)

// ParseChunkKind converts a metadata value into a ChunkKind.
// The second return value is false for anything that is not a known kind.
func ParseChunkKind(s string) (ChunkKind, bool) {
	switch ChunkKind(s) {
	case ChunkKindParent, ChunkKindChild, ChunkKindBasic:
		return ChunkKind(s), true
	default:
		return "", false
	}
}

// IsValid returns true if the kind is recognised.
func (k ChunkKind) IsValid() bool {
	_, ok := ParseChunkKind(string(k))
	return ok
}

// IsRetrievable returns true if chunks of this kind may enter the vector index.
func (k ChunkKind) IsRetrievable() bool {
	switch k {
	case ChunkKindChild, ChunkKindBasic:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k ChunkKind) String() string {
	return string(k)
}

// Chunk represents a bounded span of a document's text.
// Chunks are immutable once created; a new document version gets a new set.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the Document version that produced the chunk.
	DocumentID string

	// Kind is the chunk's role in the hierarchy.
	Kind ChunkKind

	// Content is the text content of this chunk.
	Content string

	// ParentID references a parent chunk. Always set for children, nil otherwise.
	ParentID *string

	// PreviousID and NextID link chunks of the same kind in document order.
	// They are nil at the two ends of the sequence.
	PreviousID *string
	NextID     *string

	// Position is the 0-based index within the chunk's kind sequence.
	Position int

	// IsFirst and IsLast mark the ends of the kind sequence.
	IsFirst bool
	IsLast  bool

	// Embedding is the vector representation, set for retrievable chunks only.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// IndexRecord is what the vector store persists for one retrievable chunk.
type IndexRecord struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  map[string]any
}
