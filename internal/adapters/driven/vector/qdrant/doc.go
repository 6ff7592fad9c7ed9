// Package qdrant provides a VectorStore backed by a Qdrant collection over gRPC.
//
// Unlike the memory and SQLite stores it implements driven.NativeSearcher,
// so the index delegates similarity ranking to Qdrant's cosine search
// instead of scoring a sample of candidates in process.
//
// Points are keyed by a UUID derived from the record ID. The record ID and
// content travel in the payload alongside the metadata and are stripped
// again when points are read back. The collection is created on first
// insert, sized to the first embedding seen.
package qdrant
