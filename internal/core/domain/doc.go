// Package domain defines the core business entities for the ingestion
// and retrieval pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A versioned piece of raw text
//   - Chunk: A parent, child or basic span of a document
//   - IndexRecord: What the vector store persists for a retrievable chunk
//   - Settings: Chunking, embedding and vector store configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
