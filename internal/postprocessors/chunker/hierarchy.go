package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// wordSet returns the lowercased whitespace-separated words of s.
func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// overlapScore is |child ∩ parent| / |child|. An empty child scores 0.
func overlapScore(child, parent map[string]struct{}) float64 {
	if len(child) == 0 {
		return 0
	}
	shared := 0
	for w := range child {
		if _, ok := parent[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(child))
}

// FindParent returns the index of the parent whose content best covers the
// child's words. Ties go to the earliest parent. Returns -1 when there are
// no parents.
func FindParent(child string, parents []string) int {
	if len(parents) == 0 {
		return -1
	}
	words := make([]map[string]struct{}, len(parents))
	for i, p := range parents {
		words[i] = wordSet(p)
	}
	return bestParent(wordSet(child), words)
}

func bestParent(child map[string]struct{}, parents []map[string]struct{}) int {
	best, bestScore := 0, -1.0
	for i, words := range parents {
		if score := overlapScore(child, words); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// Hierarchical builds linked parent and child chunks.
// Every child references the parent that best covers its words.
// Returns domain.ErrChunking for content that yields no windows.
func (p *Processor) Hierarchical(doc *domain.Document) (parents, children []domain.Chunk, err error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil, fmt.Errorf("%w: document %q has no content", domain.ErrChunking, doc.Name)
	}

	parentTexts := nonBlank(splitFixed(doc.Content, p.parent))
	if len(parentTexts) == 0 {
		return nil, nil, fmt.Errorf("%w: no parent windows for %q", domain.ErrChunking, doc.Name)
	}
	childTexts := nonBlank(splitFixed(doc.Content, p.child))
	if len(childTexts) == 0 {
		return nil, nil, fmt.Errorf("%w: no child windows for %q", domain.ErrChunking, doc.Name)
	}

	parents = make([]domain.Chunk, len(parentTexts))
	parentWords := make([]map[string]struct{}, len(parentTexts))
	for i, text := range parentTexts {
		parents[i] = p.newChunk(doc, domain.ChunkKindParent, text, i)
		parentWords[i] = wordSet(text)
	}

	children = make([]domain.Chunk, len(childTexts))
	for i, text := range childTexts {
		children[i] = p.newChunk(doc, domain.ChunkKindChild, text, i)

		parentID := parents[bestParent(wordSet(text), parentWords)].ID
		children[i].ParentID = &parentID
	}

	Link(parents)
	Link(children)
	return parents, children, nil
}

// flat builds linked basic chunks from content-aware windows, dropping
// whitespace-only ones. Blank content yields a single empty chunk.
func (p *Processor) flat(doc *domain.Document) []domain.Chunk {
	texts := nonBlank(splitAware(doc.Content, p.flatWindow))
	if len(texts) == 0 {
		texts = []string{""}
	}
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = p.newChunk(doc, domain.ChunkKindBasic, text, i)
	}
	Link(chunks)
	return chunks
}

func (p *Processor) newChunk(doc *domain.Document, kind domain.ChunkKind, text string, position int) domain.Chunk {
	return domain.Chunk{
		ID:         p.newID(),
		DocumentID: doc.ID,
		Kind:       kind,
		Content:    text,
		Position:   position,
		Metadata: map[string]any{
			domain.MetaChunkType: kind.String(),
		},
	}
}

// nonBlank drops whitespace-only windows.
func nonBlank(texts []string) []string {
	out := texts[:0]
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out
}
