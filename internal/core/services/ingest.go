package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/embedding"
	"github.com/custodia-labs/sercha-rag/internal/index"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultQueueThreshold is the retrievable chunk count above which
// ingestion embeds one chunk at a time.
const DefaultQueueThreshold = 50

// IngestService drives documents through chunking, embedding and indexing.
type IngestService struct {
	docStore       driven.DocumentStore
	pipeline       driven.PostProcessorPipeline
	embedder       *embedding.Generator
	index          *index.Index
	mode           domain.ChunkingMode
	queueThreshold int
	now            func() time.Time
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	docStore driven.DocumentStore,
	pipeline driven.PostProcessorPipeline,
	embedder *embedding.Generator,
	idx *index.Index,
) *IngestService {
	return &IngestService{
		docStore:       docStore,
		pipeline:       pipeline,
		embedder:       embedder,
		index:          idx,
		mode:           domain.ChunkingModeHierarchical,
		queueThreshold: DefaultQueueThreshold,
		now:            time.Now,
	}
}

// SetChunkingMode records the mode the pipeline's chunker runs in. Basic
// chunks from a hierarchical pipeline are reported as a fallback.
func (s *IngestService) SetChunkingMode(mode domain.ChunkingMode) {
	s.mode = mode
}

// SetQueueThreshold sets the chunk count above which the queue path is used.
func (s *IngestService) SetQueueThreshold(n int) {
	if n > 0 {
		s.queueThreshold = n
	}
}

// Ingest chunks, embeds and indexes one document version.
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (*domain.IngestReport, error) {
	logger.Section("Ingest")
	logger.Debug("Document: %q (tenant %s)", req.Name, req.Tenant)

	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: document name is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: document %q has no content", domain.ErrInvalidInput, req.Name)
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	hash := domain.HashContent(req.Content)
	prev, err := s.docStore.LatestVersion(ctx, req.Tenant, req.Name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load latest version: %w", err)
	}
	if prev != nil && prev.ContentHash == hash {
		logger.Info("%q unchanged at version %d", req.Name, prev.Version)
		return &domain.IngestReport{DocumentID: prev.ID, Version: prev.Version, Unchanged: true}, nil
	}

	doc := &domain.Document{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Tenant:      req.Tenant,
		Content:     req.Content,
		ContentHash: hash,
		Version:     1,
		Metadata:    maps.Clone(req.Metadata),
		CreatedAt:   s.now(),
	}
	if prev != nil {
		doc.Version = prev.Version + 1
	}

	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("process document: %w", err)
	}

	report := &domain.IngestReport{DocumentID: doc.ID, Version: doc.Version, Produced: len(chunks)}
	var retrievable []int
	for i, c := range chunks {
		switch c.Kind {
		case domain.ChunkKindParent:
			report.Parents++
		case domain.ChunkKindChild:
			report.Children++
		case domain.ChunkKindBasic:
			report.Fallback = s.mode == domain.ChunkingModeHierarchical
		}
		if c.Kind.IsRetrievable() {
			retrievable = append(retrievable, i)
		}
	}
	logger.Debug("Chunks: %d produced (%d parents, %d children), fallback=%t",
		report.Produced, report.Parents, report.Children, report.Fallback)

	if err := s.embed(ctx, chunks, retrievable, report); err != nil {
		return nil, err
	}

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
		s.rollback(ctx, doc)
		return nil, fmt.Errorf("save chunks: %w", err)
	}

	texts := make([]string, len(chunks))
	vectors := make([][]float32, len(chunks))
	metadatas := make([]map[string]any, len(chunks))
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
		vectors[i] = c.Embedding
		metadatas[i] = c.Metadata
		ids[i] = c.ID
	}
	inserted, err := s.index.AddDocuments(ctx, req.Tenant, texts, vectors, metadatas, ids)
	if err != nil {
		s.rollback(ctx, doc)
		return nil, fmt.Errorf("index chunks: %w", err)
	}
	report.Accepted = inserted.Stored
	report.Rejected = inserted.Rejected
	report.Rejections = inserted.Rejections

	if prev != nil {
		if err := s.removeVersion(ctx, prev); err != nil {
			logger.Warn("removing version %d of %q failed: %v", prev.Version, prev.Name, err)
		}
	}

	logger.Info("Ingested %q v%d: %d stored, %d rejected, %d embedding failures",
		doc.Name, doc.Version, report.Accepted, report.Rejected, report.Failed)
	return report, nil
}

// embed fills in embeddings for the retrievable chunks. Small documents go
// through the batch path and fail as a whole; larger ones use the queue
// path, which records per-chunk failures and leaves those chunks without
// an embedding.
func (s *IngestService) embed(ctx context.Context, chunks []domain.Chunk, retrievable []int, report *domain.IngestReport) error {
	if len(retrievable) == 0 {
		return nil
	}
	texts := make([]string, len(retrievable))
	for i, pos := range retrievable {
		texts[i] = chunks[pos].Content
	}

	if len(texts) <= s.queueThreshold {
		logger.Debug("Embedding %d chunks (batch)", len(texts))
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		for i, pos := range retrievable {
			chunks[pos].Embedding = vectors[i]
		}
		report.Embedded = len(vectors)
		return nil
	}

	logger.Debug("Embedding %d chunks (queue)", len(texts))
	result, err := s.embedder.EmbedQueue(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	for i, idx := range result.Indices {
		chunks[retrievable[idx]].Embedding = result.Embeddings[i]
	}
	for _, f := range result.Failures {
		report.Failures = append(report.Failures, domain.EmbeddingFailure{Index: retrievable[f.Index], Err: f.Err})
	}
	report.Embedded = len(result.Indices)
	report.Failed = len(result.Failures)
	return nil
}

// Delete removes every version of a document and its records.
func (s *IngestService) Delete(ctx context.Context, tenant domain.Tenant, name string) error {
	if s.docStore == nil {
		return errors.New("document store unavailable")
	}
	if s.index == nil {
		return domain.ErrStoreUnavailable
	}
	docs, err := s.docStore.ListDocuments(ctx, tenant)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	found := false
	for i := range docs {
		if docs[i].Name != name {
			continue
		}
		found = true
		if err := s.removeVersion(ctx, &docs[i]); err != nil {
			return err
		}
	}
	if !found {
		return fmt.Errorf("%w: document %q", domain.ErrNotFound, name)
	}
	logger.Info("Deleted %q", name)
	return nil
}

// removeVersion deletes a version's records from the vector store, then
// the version itself.
func (s *IngestService) removeVersion(ctx context.Context, doc *domain.Document) error {
	chunks, err := s.docStore.GetChunks(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("load chunks for %s: %w", doc.ID, err)
	}
	ids := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if c.Kind.IsRetrievable() {
			ids = append(ids, c.ID)
		}
	}
	if err := s.index.Delete(ctx, ids); err != nil {
		return fmt.Errorf("delete records for %s: %w", doc.ID, err)
	}
	if err := s.docStore.DeleteDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document %s: %w", doc.ID, err)
	}
	logger.Debug("Removed %q v%d (%d records)", doc.Name, doc.Version, len(ids))
	return nil
}

// rollback removes a version whose indexing did not complete, so the next
// ingest of the same content is not reported as unchanged.
func (s *IngestService) rollback(ctx context.Context, doc *domain.Document) {
	ctx = context.WithoutCancel(ctx)
	if err := s.removeVersion(ctx, doc); err != nil {
		logger.Warn("rolling back %q v%d failed: %v", doc.Name, doc.Version, err)
		if err := s.docStore.DeleteDocument(ctx, doc.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("deleting %q v%d failed: %v", doc.Name, doc.Version, err)
		}
	}
}

func (s *IngestService) ready() error {
	switch {
	case s.docStore == nil:
		return errors.New("document store unavailable")
	case s.pipeline == nil:
		return errors.New("post-processor pipeline unavailable")
	case s.embedder == nil:
		return domain.ErrEmbeddingUnavailable
	case s.index == nil:
		return domain.ErrStoreUnavailable
	}
	return nil
}
