package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashContent(t *testing.T) {
	t.Run("sha256 hex", func(t *testing.T) {
		// Well-known digest of the empty string.
		assert.Equal(t,
			"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
			HashContent(""))
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, HashContent("hello world"), HashContent("hello world"))
	})

	t.Run("content sensitive", func(t *testing.T) {
		assert.NotEqual(t, HashContent("hello world"), HashContent("hello world!"))
	})

	t.Run("length", func(t *testing.T) {
		assert.Len(t, HashContent("anything"), 64)
	})
}
