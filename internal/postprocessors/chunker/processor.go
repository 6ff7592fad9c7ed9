// Package chunker splits documents into parent and child chunks, falling
// back to content-aware flat windows when a hierarchy cannot be built.
package chunker

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Default window sizes and overlaps, in characters.
const (
	DefaultParentSize    = 1024
	DefaultParentOverlap = 128
	DefaultChildSize     = 256
	DefaultChildOverlap  = 32
	DefaultChunkSize     = 1000
	DefaultChunkOverlap  = 200
)

// Processor splits document content into chunks.
// It implements the PostProcessor interface.
type Processor struct {
	mode       domain.ChunkingMode
	parent     profile
	child      profile
	flatWindow profile
	newID      func() string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMode selects hierarchical or flat chunking.
func WithMode(mode domain.ChunkingMode) Option {
	return func(p *Processor) {
		if mode.IsValid() {
			p.mode = mode
		}
	}
}

// WithParentWindow sets the parent window size and overlap.
func WithParentWindow(size, overlap int) Option {
	return func(p *Processor) {
		p.parent = window(p.parent, size, overlap)
	}
}

// WithChildWindow sets the child window size and overlap.
func WithChildWindow(size, overlap int) Option {
	return func(p *Processor) {
		p.child = window(p.child, size, overlap)
	}
}

// WithChunkSize sets the flat window size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.flatWindow = window(p.flatWindow, size, -1)
	}
}

// WithOverlap sets the flat window overlap in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.flatWindow = window(p.flatWindow, 0, overlap)
	}
}

// WithIDGenerator replaces the chunk ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(p *Processor) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// window applies a size when positive and an overlap when non-negative.
func window(current profile, size, overlap int) profile {
	if size > 0 {
		current.size = size
	}
	if overlap >= 0 {
		current.overlap = overlap
	}
	return current
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		mode:       domain.ChunkingModeHierarchical,
		parent:     profile{size: DefaultParentSize, overlap: DefaultParentOverlap},
		child:      profile{size: DefaultChildSize, overlap: DefaultChildOverlap},
		flatWindow: profile{size: DefaultChunkSize, overlap: DefaultChunkOverlap},
		newID:      uuid.NewString,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed window size
	p.parent = normalise(p.parent)
	p.child = normalise(p.child)
	p.flatWindow = normalise(p.flatWindow)

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Mode returns the configured chunking mode.
func (p *Processor) Mode() domain.ChunkingMode {
	return p.mode
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
// In hierarchical mode parents come first, then children. If the hierarchy
// cannot be built the whole document is chunked flat instead.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("document is nil")
	}

	if p.mode == domain.ChunkingModeFlat {
		return p.Flat(doc), nil
	}

	parents, children, err := p.Hierarchical(doc)
	if err != nil {
		logger.Warn("hierarchical chunking failed for %q, using flat chunks: %v", doc.Name, err)
		return p.Flat(doc), nil
	}

	logger.Debug("chunker: %q -> %d parents, %d children", doc.Name, len(parents), len(children))
	return append(parents, children...), nil
}

// Flat builds linked basic chunks using content-aware windows.
func (p *Processor) Flat(doc *domain.Document) []domain.Chunk {
	chunks := p.flat(doc)
	logger.Debug("chunker: %q -> %d basic chunks", doc.Name, len(chunks))
	return chunks
}
