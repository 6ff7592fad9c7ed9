// Package annotate copies document and linkage fields into chunk metadata.
package annotate

import (
	"context"
	"maps"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Processor stamps each chunk's metadata with its document, tenant, kind,
// position and sequence links. Document metadata is copied first so chunk
// fields always win.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a new annotate processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "annotate"
}

// Process annotates chunks in place and returns them.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		c := &chunks[i]
		meta := make(map[string]any, len(doc.Metadata)+len(c.Metadata)+10)
		maps.Copy(meta, doc.Metadata)
		maps.Copy(meta, c.Metadata)

		meta[domain.MetaSource] = doc.Name
		meta[domain.MetaDocumentID] = doc.ID
		meta[domain.MetaDocumentVersion] = doc.Version
		meta[domain.MetaTenant] = doc.Tenant.String()
		meta[domain.MetaChunkID] = c.ID
		meta[domain.MetaChunkType] = c.Kind.String()
		meta[domain.MetaPosition] = c.Position
		meta[domain.MetaIsFirst] = c.IsFirst
		meta[domain.MetaIsLast] = c.IsLast
		setOptional(meta, domain.MetaParentID, c.ParentID)
		setOptional(meta, domain.MetaPreviousID, c.PreviousID)
		setOptional(meta, domain.MetaNextID, c.NextID)

		c.Metadata = meta
	}
	return chunks, nil
}

func setOptional(meta map[string]any, key string, value *string) {
	if value == nil {
		meta[key] = nil
		return
	}
	meta[key] = *value
}
