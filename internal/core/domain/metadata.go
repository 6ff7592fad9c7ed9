package domain

import "fmt"

// Metadata keys written on every chunk handed to the vector store.
const (
	MetaSource          = "source"
	MetaChunkID         = "chunkId"
	MetaParentID        = "parentId"
	MetaChunkType       = "chunkType"
	MetaDocumentVersion = "documentVersion"
	MetaDocumentID      = "documentId"
	MetaTenant          = "tenantId"
	MetaPosition        = "positionIndex"
	MetaPreviousID      = "previousId"
	MetaNextID          = "nextId"
	MetaIsFirst         = "isFirst"
	MetaIsLast          = "isLast"

	// MetaChunkingStrategy is the legacy field older records used instead of chunkType.
	MetaChunkingStrategy = "chunkingStrategy"
)

// Filter is an equality filter over record metadata. All entries must match.
type Filter map[string]any

// Merge returns a new filter containing f overlaid with other.
// Keys in other win.
func (f Filter) Merge(other Filter) Filter {
	if len(f) == 0 && len(other) == 0 {
		return nil
	}
	merged := make(Filter, len(f)+len(other))
	for k, v := range f {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// Matches reports whether meta satisfies every entry of the filter.
// Values are compared by their printed form so an int filter matches an
// int64 stored value.
func (f Filter) Matches(meta map[string]any) bool {
	for k, want := range f {
		got, ok := meta[k]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}
