package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Document represents one version of an ingested document.
// A changed content hash produces a new Document with Version+1;
// existing versions are never mutated.
type Document struct {
	// ID is the unique identifier for this document version.
	ID string

	// Name is the document's unique name within a tenant (usually a file name).
	Name string

	// Tenant scopes the document to an isolation boundary.
	Tenant Tenant

	// Content is the raw text that was chunked.
	Content string

	// ContentHash is the hex-encoded SHA-256 of Content.
	ContentHash string

	// Version increases monotonically per (Tenant, Name), starting at 1.
	Version int

	// Metadata contains caller-supplied key-value pairs copied onto every chunk.
	Metadata map[string]any

	// CreatedAt is when this version was ingested.
	CreatedAt time.Time
}

// HashContent returns the hex-encoded SHA-256 digest used for version detection.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
