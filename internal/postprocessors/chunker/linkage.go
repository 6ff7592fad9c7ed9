package chunker

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// Link assigns PreviousID, NextID, IsFirst and IsLast over an ordered chunk
// sequence. The ends have nil links. Chunks of different kinds must be
// linked in separate calls.
func Link(chunks []domain.Chunk) {
	last := len(chunks) - 1
	for i := range chunks {
		chunks[i].PreviousID = nil
		chunks[i].NextID = nil
		if i > 0 {
			prev := chunks[i-1].ID
			chunks[i].PreviousID = &prev
		}
		if i < last {
			next := chunks[i+1].ID
			chunks[i].NextID = &next
		}
		chunks[i].IsFirst = i == 0
		chunks[i].IsLast = i == last
	}
}
