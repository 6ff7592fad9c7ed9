package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseChunkKind(t *testing.T) {
	tests := []struct {
		input    string
		expected ChunkKind
		ok       bool
	}{
		{"parent", ChunkKindParent, true},
		{"child", ChunkKindChild, true},
		{"basic", ChunkKindBasic, true},
		{"", "", false},
		{"Child", "", false},
		{"chlid", "", false},
		{"summary", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, ok := ParseChunkKind(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestChunkKind_IsRetrievable(t *testing.T) {
	assert.False(t, ChunkKindParent.IsRetrievable())
	assert.True(t, ChunkKindChild.IsRetrievable())
	assert.True(t, ChunkKindBasic.IsRetrievable())
	assert.False(t, ChunkKind("other").IsRetrievable())
}

func TestChunkKind_IsValid(t *testing.T) {
	assert.True(t, ChunkKindParent.IsValid())
	assert.False(t, ChunkKind("").IsValid())
	assert.Equal(t, "child", ChunkKindChild.String())
}
