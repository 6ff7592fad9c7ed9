package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, backend or processor.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrChunking indicates the hierarchical chunker could not produce a
	// complete chunk set. Callers fall back to flat chunking.
	ErrChunking = errors.New("chunking failed")

	// ErrArityMismatch indicates parallel input slices of different lengths
	// or a missing required argument.
	ErrArityMismatch = errors.New("arity mismatch")

	// ErrStoreUnavailable indicates the vector database is unreachable or uninitialised.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingExhausted indicates an embedding call failed after every retry attempt.
	ErrEmbeddingExhausted = errors.New("embedding retries exhausted")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ProviderError is returned by embedding provider adapters when the remote
// API answers with a failure.
type ProviderError struct {
	// Provider names the adapter (e.g. "openai").
	Provider string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is reports 429 responses as ErrRateLimited.
func (e *ProviderError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// EmbeddingExhaustedError is returned when every retry attempt failed.
type EmbeddingExhaustedError struct {
	// Attempts is how many provider calls were made.
	Attempts int

	// Err is the error from the last attempt.
	Err error
}

// Error implements the error interface.
func (e *EmbeddingExhaustedError) Error() string {
	return fmt.Sprintf("embedding failed after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the last attempt's error.
func (e *EmbeddingExhaustedError) Unwrap() error {
	return e.Err
}

// Is matches ErrEmbeddingExhausted.
func (e *EmbeddingExhaustedError) Is(target error) bool {
	return target == ErrEmbeddingExhausted
}

// IsRateLimited returns true if the error indicates provider rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTransient returns true if retrying the call may succeed.
// Rate limits, timeouts, server errors and network failures are transient.
// Other 4xx responses and invalid input are permanent. Cancellation is
// never transient. Anything unrecognised is treated as transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	if errors.Is(err, ErrInvalidInput) {
		return false
	}

	var perr *ProviderError
	if errors.As(err, &perr) && perr.StatusCode > 0 {
		switch {
		case perr.StatusCode == http.StatusTooManyRequests,
			perr.StatusCode == http.StatusRequestTimeout,
			perr.StatusCode >= http.StatusInternalServerError:
			return true
		case perr.StatusCode >= http.StatusBadRequest:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	return true
}
