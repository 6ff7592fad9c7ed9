// Package services implements the driving port interfaces.
// Services orchestrate the chunking pipeline, the embedding generator and
// the similarity index, and call driven ports (adapters) for storage.
//
// Services are pure Go with no CGO or external dependencies.
package services
