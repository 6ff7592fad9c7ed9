package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitFixed(t *testing.T) {
	tests := []struct {
		name string
		text string
		p    profile
		want []string
	}{
		{name: "empty", text: "", p: profile{size: 4, overlap: 1}, want: nil},
		{name: "shorter than window", text: "abc", p: profile{size: 4, overlap: 1}, want: []string{"abc"}},
		{name: "overlapping windows", text: "abcdefghij", p: profile{size: 4, overlap: 1}, want: []string{"abcd", "defg", "ghij"}},
		{name: "no overlap", text: "abcdef", p: profile{size: 2}, want: []string{"ab", "cd", "ef"}},
		{name: "multibyte runes", text: "héllo wörld", p: profile{size: 6}, want: []string{"héllo ", "wörld"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitFixed(tt.text, tt.p))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		lead string
		want contentClass
	}{
		{name: "prose", lead: "The quick brown fox jumps over the lazy dog.", want: classProse},
		{name: "fenced code", lead: "Example:\n```go\nx := 1\n```", want: classCode},
		{name: "go function", lead: "func main() {\n\tprintln(1)\n}", want: classCode},
		{name: "markdown table", lead: "| a | b |\n|---|---|\n| 1 | 2 |", want: classTable},
		{name: "tab separated table", lead: "a\tb\tc\n1\t2\t3", want: classTable},
		{name: "heading", lead: "# Introduction\nSome text follows.", want: classStructured},
		{name: "bullet list", lead: "Items:\n- one\n- two", want: classStructured},
		{name: "numbered list", lead: "Steps:\n1. open\n2. close", want: classStructured},
		{name: "hashtag is not a heading", lead: "#golang is fun", want: classProse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.lead))
		})
	}
}

func TestProfiles(t *testing.T) {
	table := profiles(profile{size: 1000, overlap: 200})

	assert.Equal(t, profile{size: 1000, overlap: 200}, table[classProse])
	assert.Equal(t, profile{size: 500, overlap: 100}, table[classStructured])
	assert.Equal(t, profile{size: 1500, overlap: 300}, table[classCode])
	assert.Equal(t, table[classCode], table[classTable])
}

func TestSplitAware_PullsBackToSentenceBoundary(t *testing.T) {
	text := "One two three. Four five six seven eight"

	windows := splitAware(text, profile{size: 20})

	assert.Equal(t, []string{"One two three. ", "Four five six seven ", "eight"}, windows)
}

func TestSplitAware_BlankLineBoundary(t *testing.T) {
	text := "aaaa aaaa aaaa aaa\n\nbbbb bbbb bbbb"

	windows := splitAware(text, profile{size: 22})

	assert.Equal(t, "aaaa aaaa aaaa aaa\n\n", windows[0])
	assert.Equal(t, text, strings.Join(windows, ""))
}

func TestSplitAware_KeepsWindowWhenBoundaryTooEarly(t *testing.T) {
	// The only boundary would discard more than 30% of the window.
	text := "Hi. abcdefghijklmnopqrstuvwxyz"

	windows := splitAware(text, profile{size: 20})

	assert.Equal(t, "Hi. abcdefghijklmnop", windows[0])
}

func TestSplitAware_OverlapAndCoverage(t *testing.T) {
	doc := loremDocument(400)

	windows := splitAware(doc.Content, profile{size: 120, overlap: 20})

	assert.Greater(t, len(windows), 1)
	assert.True(t, strings.HasPrefix(doc.Content, windows[0]))
	assert.True(t, strings.HasSuffix(doc.Content, windows[len(windows)-1]))
	for _, w := range windows {
		assert.LessOrEqual(t, len([]rune(w)), 120)
	}
}

func TestIsBoundary(t *testing.T) {
	runes := []rune("Yes! No? Ok. a\n\nb")

	assert.True(t, isBoundary(runes, 5))
	assert.True(t, isBoundary(runes, 9))
	assert.True(t, isBoundary(runes, 13))
	assert.True(t, isBoundary(runes, 16))
	assert.False(t, isBoundary(runes, 1))
	assert.False(t, isBoundary(runes, 0))
	assert.False(t, isBoundary(runes, 100))
}
