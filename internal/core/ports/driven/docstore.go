package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DocumentStore persists document versions and their chunks.
// Parent chunks live here only; they never reach the vector store.
type DocumentStore interface {
	// SaveDocument stores a document version.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// LatestVersion returns the highest version for (tenant, name).
	// Returns domain.ErrNotFound when the document has never been ingested.
	LatestVersion(ctx context.Context, tenant domain.Tenant, name string) (*domain.Document, error)

	// SaveChunks stores chunks for a document version.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunks retrieves all chunks for a document version, parents first.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// DeleteDocument removes a document version and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns every version stored for a tenant.
	ListDocuments(ctx context.Context, tenant domain.Tenant) ([]domain.Document, error)

	// CountDocuments returns the number of stored versions across tenants.
	CountDocuments(ctx context.Context) (int, error)
}
