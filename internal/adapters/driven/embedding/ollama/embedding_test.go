package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.NoError(t, svc.Close())

	svc = NewEmbeddingService(Config{BaseURL: "http://gpu-box:11434/"})
	assert.Equal(t, "http://gpu-box:11434", svc.baseURL)
}

func TestEmbeddingService_EmbedBatch(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/api/embed", r.URL.Path)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-minilm", req.Model)

		out := embedResponse{}
		for _, input := range req.Input {
			vec := []float32{1, 0}
			if input == "second" {
				vec = []float32{0, 1}
			}
			out.Embeddings = append(out.Embeddings, vec)
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL, Model: "all-minilm", Dimensions: 2})

	vec, err := svc.Embed(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)

	vectors, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vectors)
	assert.EqualValues(t, 2, requests.Load())

	vectors, err = svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.EqualValues(t, 2, requests.Load())
}

func TestEmbeddingService_Embed_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		message   string
		transient bool
	}{
		{"model missing", http.StatusNotFound, `{"error":"model \"x\" not found"}`, `model "x" not found`, false},
		{"overloaded", http.StatusServiceUnavailable, "", "Service Unavailable", true},
		{"empty embedding", http.StatusOK, `{"embeddings":[[]]}`, "empty embedding", true},
		{"count mismatch", http.StatusOK, `{"embeddings":[]}`, "got 0 embeddings for 1 inputs", true},
		{"bad json", http.StatusOK, `{"embeddings":`, "decode response", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc := NewEmbeddingService(Config{BaseURL: server.URL})
			_, err := svc.Embed(context.Background(), "text")

			var perr *domain.ProviderError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "ollama", perr.Provider)
			assert.Contains(t, err.Error(), tt.message)
			assert.Equal(t, tt.transient, domain.IsTransient(err))
		})
	}
}

func TestEmbeddingService_Embed_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	svc := NewEmbeddingService(Config{BaseURL: url})
	_, err := svc.Embed(context.Background(), "text")

	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Zero(t, perr.StatusCode)
	assert.True(t, domain.IsTransient(err))
}

func TestEmbeddingService_Embed_Canceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEmbeddingService(Config{BaseURL: server.URL}).Embed(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmbeddingService_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	assert.NoError(t, NewEmbeddingService(Config{BaseURL: server.URL}).Ping(context.Background()))
	err := NewEmbeddingService(Config{BaseURL: server.URL + "/nope"}).Ping(context.Background())
	assert.Error(t, err)
}
