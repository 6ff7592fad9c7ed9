// Package file provides the file-based ConfigStore.
//
// Settings live in ~/.sercha-rag/config.toml. Keys are addressed in dot
// notation ("embedding.provider") and written back as TOML tables.
package file
