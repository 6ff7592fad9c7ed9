package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// IngestRequest describes one document to ingest.
type IngestRequest struct {
	// Name identifies the document within a tenant (usually a file path).
	Name string

	// Content is the document text.
	Content string

	// Tenant scopes the document. Empty means global.
	Tenant domain.Tenant

	// Metadata is copied onto every chunk.
	Metadata map[string]any
}

// IngestService turns documents into indexed chunks.
type IngestService interface {
	// Ingest chunks, embeds and indexes a document. Content identical to the
	// latest stored version is a no-op; changed content creates a new version
	// and removes the previous version's records.
	Ingest(ctx context.Context, req IngestRequest) (*domain.IngestReport, error)

	// Delete removes every version of a document and its records.
	Delete(ctx context.Context, tenant domain.Tenant, name string) error
}
