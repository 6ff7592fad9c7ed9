package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		meta     map[string]any
		accepted bool
		kind     string
	}{
		{name: "child", meta: map[string]any{"chunkType": "child"}, accepted: true, kind: "child"},
		{name: "basic", meta: map[string]any{"chunkType": "basic"}, accepted: true, kind: "basic"},
		{name: "unmarked", meta: map[string]any{"source": "a.txt"}, accepted: true},
		{name: "nil metadata", meta: nil, accepted: true},
		{name: "nil kind", meta: map[string]any{"chunkType": nil}, accepted: true},
		{name: "empty kind", meta: map[string]any{"chunkType": ""}, accepted: true},
		{name: "parent", meta: map[string]any{"chunkType": "parent"}, accepted: false, kind: "parent"},
		{name: "typo", meta: map[string]any{"chunkType": "chlid"}, accepted: false, kind: "chlid"},
		{name: "upper case is unknown", meta: map[string]any{"chunkType": "Child"}, accepted: false, kind: "Child"},
		{name: "non-string kind", meta: map[string]any{"chunkType": 7}, accepted: false, kind: "7"},
		{name: "typed kind", meta: map[string]any{"chunkType": domain.ChunkKindChild}, accepted: true, kind: "child"},
		{name: "legacy parent", meta: map[string]any{"chunkingStrategy": "parent"}, accepted: false, kind: "parent"},
		{name: "legacy child", meta: map[string]any{"chunkingStrategy": "child"}, accepted: true, kind: "child"},
		{name: "chunkType wins over legacy", meta: map[string]any{"chunkType": "child", "chunkingStrategy": "parent"}, accepted: true, kind: "child"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Check(tt.meta)
			assert.Equal(t, tt.accepted, v.Accepted)
			assert.Equal(t, tt.kind, v.Kind)
			if tt.accepted {
				assert.Empty(t, v.Reason)
			} else {
				assert.NotEmpty(t, v.Reason, "every rejection carries a reason")
			}
		})
	}
}

func TestValidate_PartitionsEveryEntry(t *testing.T) {
	ids := []string{"p1", "c1", "b1", "x1", "u1"}
	metas := []map[string]any{
		{"chunkType": "parent"},
		{"chunkType": "child"},
		{"chunkType": "basic"},
		{"chunkType": "summary"},
		{},
	}

	accepted, rejected := Validate(ids, metas)

	assert.Equal(t, []int{1, 2, 4}, accepted)
	assert.Len(t, rejected, 2)
	assert.Equal(t, "p1", rejected[0].ID)
	assert.Equal(t, "parent", rejected[0].Kind)
	assert.Equal(t, "x1", rejected[1].ID)
	assert.Contains(t, rejected[1].Reason, "summary")
	assert.Equal(t, len(ids), len(accepted)+len(rejected))
}
