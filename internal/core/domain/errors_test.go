package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrChunking", ErrChunking},
		{"ErrArityMismatch", ErrArityMismatch},
		{"ErrStoreUnavailable", ErrStoreUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrEmbeddingExhausted", ErrEmbeddingExhausted},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestProviderError(t *testing.T) {
	t.Run("429 matches ErrRateLimited", func(t *testing.T) {
		err := fmt.Errorf("embed: %w", &ProviderError{
			Provider:   "openai",
			StatusCode: http.StatusTooManyRequests,
			Err:        errors.New("too many requests"),
		})
		assert.True(t, errors.Is(err, ErrRateLimited))
		assert.True(t, IsRateLimited(err))
	})

	t.Run("other statuses do not match ErrRateLimited", func(t *testing.T) {
		err := &ProviderError{Provider: "openai", StatusCode: http.StatusUnauthorized, Err: errors.New("bad key")}
		assert.False(t, errors.Is(err, ErrRateLimited))
	})

	t.Run("message includes status", func(t *testing.T) {
		err := &ProviderError{Provider: "ollama", StatusCode: 500, Err: errors.New("boom")}
		assert.Equal(t, "ollama: status 500: boom", err.Error())
	})

	t.Run("message without status", func(t *testing.T) {
		err := &ProviderError{Provider: "ollama", Err: errors.New("boom")}
		assert.Equal(t, "ollama: boom", err.Error())
	})

	t.Run("unwraps", func(t *testing.T) {
		inner := errors.New("inner")
		err := &ProviderError{Provider: "openai", Err: inner}
		assert.ErrorIs(t, err, inner)
	})
}

func TestEmbeddingExhaustedError(t *testing.T) {
	last := &ProviderError{Provider: "openai", StatusCode: 429, Err: errors.New("slow down")}
	err := fmt.Errorf("chunk 3: %w", &EmbeddingExhaustedError{Attempts: 5, Err: last})

	assert.ErrorIs(t, err, ErrEmbeddingExhausted)
	assert.ErrorIs(t, err, ErrRateLimited)

	var exhausted *EmbeddingExhaustedError
	assert.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 5, exhausted.Attempts)
	assert.Contains(t, err.Error(), "after 5 attempts")
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"rate limited sentinel", ErrRateLimited, true},
		{"429", &ProviderError{StatusCode: 429, Err: errors.New("x")}, true},
		{"408", &ProviderError{StatusCode: 408, Err: errors.New("x")}, true},
		{"500", &ProviderError{StatusCode: 500, Err: errors.New("x")}, true},
		{"503", &ProviderError{StatusCode: 503, Err: errors.New("x")}, true},
		{"400", &ProviderError{StatusCode: 400, Err: errors.New("x")}, false},
		{"401", &ProviderError{StatusCode: 401, Err: errors.New("x")}, false},
		{"403", &ProviderError{StatusCode: 403, Err: errors.New("x")}, false},
		{"invalid input", fmt.Errorf("embed: %w", ErrInvalidInput), false},
		{"cancelled", context.Canceled, false},
		{"deadline", fmt.Errorf("wait: %w", context.DeadlineExceeded), false},
		{"network", &url.Error{Op: "Post", URL: "http://x", Err: errors.New("connection refused")}, true},
		{"provider without status", &ProviderError{Provider: "ollama", Err: errors.New("reset")}, true},
		{"unknown", errors.New("something odd"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTransient(tt.err))
		})
	}
}
