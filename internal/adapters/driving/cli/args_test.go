package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestParseKeyValues(t *testing.T) {
	got, err := parseKeyValues([]string{"team=core", "year=2024", "draft=true", " spaced = value ", "url=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"team":   "core",
		"year":   2024,
		"draft":  true,
		"spaced": "value",
		"url":    "a=b",
	}, got)
}

func TestParseKeyValues_Empty(t *testing.T) {
	got, err := parseKeyValues(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseKeyValues_Invalid(t *testing.T) {
	for _, pair := range []string{"novalue", "=value", " =x"} {
		_, err := parseKeyValues([]string{pair})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, pair)
	}
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.md":         "a",
		"B.TXT":        "b",
		"nested/c.rst": "c",
		"code.go":      "x",
		".hidden/d.md": "d",
	})

	files, err := collectFiles([]string{dir}, defaultExtensions)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.md"),
		filepath.Join(dir, "B.TXT"),
		filepath.Join(dir, "nested", "c.rst"),
	}, files)
}

func TestCollectFiles_CustomExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.md": "a", "code.go": "x"})

	files, err := collectFiles([]string{dir}, []string{".go"})

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "code.go")}, files)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b c", truncate("a\n  b\tc", 10))
	assert.Equal(t, "hello...", truncate("hello world", 5))
	assert.Equal(t, "héllo...", truncate("héllo wörld", 5))
}
