package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func records(n int, tenant string) []domain.IndexRecord {
	out := make([]domain.IndexRecord, n)
	for i := range out {
		out[i] = domain.IndexRecord{
			ID:        fmt.Sprintf("%s-%d", tenant, i),
			Content:   fmt.Sprintf("chunk %d", i),
			Embedding: []float32{float32(i), 1},
			Metadata:  map[string]any{domain.MetaTenant: tenant, domain.MetaPosition: int64(i)},
		}
	}
	return out
}

func TestVectorStore_InsertGetDelete(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, records(3, "t1")))

	got, err := store.Get(ctx, []string{"t1-2", "missing", "t1-0"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t1-2", got[0].ID)
	assert.Equal(t, "t1-0", got[1].ID)

	require.NoError(t, store.Delete(ctx, []string{"t1-1", "missing"}))
	n, err := store.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := store.List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "t1-0", list[0].ID)
	assert.Equal(t, "t1-2", list[1].ID)
}

func TestVectorStore_InsertReplaces(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, records(2, "t1")))
	updated := records(1, "t1")
	updated[0].Content = "replaced"
	require.NoError(t, store.Insert(ctx, updated))

	list, err := store.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "replaced", list[0].Content)
}

func TestVectorStore_Filter(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, records(3, "t1")))
	require.NoError(t, store.Insert(ctx, records(2, "t2")))

	n, err := store.Count(ctx, domain.Filter{domain.MetaTenant: "t2"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := store.List(ctx, domain.Filter{domain.MetaTenant: "t1", domain.MetaPosition: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "t1-1", list[0].ID)
}

func TestVectorStore_Sample(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, records(100, "t1")))
	require.NoError(t, store.Insert(ctx, records(10, "t2")))

	sample, err := store.Sample(ctx, domain.Filter{domain.MetaTenant: "t1"}, 20)
	require.NoError(t, err)
	require.Len(t, sample, 20)
	seen := make(map[string]bool)
	for _, r := range sample {
		assert.Equal(t, "t1", r.Metadata[domain.MetaTenant])
		assert.False(t, seen[r.ID], "duplicate %s", r.ID)
		seen[r.ID] = true
	}

	all, err := store.Sample(ctx, domain.Filter{domain.MetaTenant: "t2"}, 50)
	require.NoError(t, err)
	assert.Len(t, all, 10)
}

func TestVectorStore_CopiesInput(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	in := records(1, "t1")
	require.NoError(t, store.Insert(ctx, in))
	in[0].Embedding[0] = 99
	in[0].Metadata[domain.MetaTenant] = "changed"

	got, err := store.Get(ctx, []string{"t1-0"})
	require.NoError(t, err)
	assert.Equal(t, float32(0), got[0].Embedding[0])
	assert.Equal(t, "t1", got[0].Metadata[domain.MetaTenant])
	assert.NoError(t, store.Close())
}
