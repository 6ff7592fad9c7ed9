package chunker

import "strings"

// leadLength is how many runes of a window's start are scanned to classify it.
const leadLength = 200

// maxPullback is the largest fraction of a window that may be discarded to
// end it on a sentence boundary.
const maxPullback = 0.3

// contentClass is a coarse classification of a window's lead text.
type contentClass int

const (
	classProse contentClass = iota
	classStructured
	classCode
	classTable
)

// String returns the class name used in debug logs.
func (c contentClass) String() string {
	switch c {
	case classStructured:
		return "structured"
	case classCode:
		return "code"
	case classTable:
		return "table"
	default:
		return "prose"
	}
}

// profile is a window size and overlap in runes.
type profile struct {
	size    int
	overlap int
}

// profiles derives the small, medium and large profiles from a base window.
// Headings and lists get small windows so sections stay separate. Code and
// tables get large windows so blocks are not cut mid-way.
func profiles(base profile) map[contentClass]profile {
	small := normalise(profile{size: base.size / 2, overlap: base.overlap / 2})
	large := normalise(profile{size: base.size + base.size/2, overlap: base.overlap + base.overlap/2})
	medium := normalise(base)
	return map[contentClass]profile{
		classProse:      medium,
		classStructured: small,
		classCode:       large,
		classTable:      large,
	}
}

// normalise keeps a profile usable: a positive size and an overlap below it.
func normalise(p profile) profile {
	if p.size < 1 {
		p.size = 1
	}
	if p.overlap < 0 {
		p.overlap = 0
	}
	if p.overlap >= p.size {
		p.overlap = p.size / 4
	}
	return p
}

var codeMarkers = []string{"```", "func ", "def ", "class ", "import ", "package ", "#include", "};", "{\n", "=> "}

// classify scans lead text for code, table, heading and list markers.
// Code wins over tables, tables over headings and lists.
func classify(lead string) contentClass {
	for _, m := range codeMarkers {
		if strings.Contains(lead, m) {
			return classCode
		}
	}

	lines := strings.Split(lead, "\n")
	tableRows := 0
	structured := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "|") && strings.Count(trimmed, "|") >= 2 {
			tableRows++
			continue
		}
		if strings.Count(trimmed, "\t") >= 2 {
			tableRows++
			continue
		}
		if isHeading(trimmed) || isListItem(trimmed) {
			structured = true
		}
	}

	switch {
	case tableRows >= 2:
		return classTable
	case structured:
		return classStructured
	default:
		return classProse
	}
}

func isHeading(line string) bool {
	if !strings.HasPrefix(line, "#") {
		return false
	}
	rest := strings.TrimLeft(line, "#")
	return strings.HasPrefix(rest, " ")
}

func isListItem(line string) bool {
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "+ ") {
		return true
	}
	digits := 0
	for _, r := range line {
		if r < '0' || r > '9' {
			break
		}
		digits++
	}
	return digits > 0 && strings.HasPrefix(line[digits:], ". ")
}

// splitFixed splits text into rune windows of p.size that advance by
// p.size-p.overlap. The last window ends at the end of the text.
func splitFixed(text string, p profile) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	p = normalise(p)
	step := p.size - p.overlap

	windows := make([]string, 0, n/step+1)
	for start := 0; ; start += step {
		end := min(start+p.size, n)
		windows = append(windows, string(runes[start:end]))
		if end == n {
			break
		}
	}
	return windows
}

// splitAware splits text into windows whose profile is chosen per window
// from its lead text. Window ends are pulled back to a sentence boundary
// when that discards no more than 30% of the window.
func splitAware(text string, base profile) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	table := profiles(base)
	var windows []string
	start := 0
	for {
		lead := string(runes[start:min(start+leadLength, n)])
		p := table[classify(lead)]

		end := min(start+p.size, n)
		if end < n {
			end = pullBack(runes, start, end, p.size)
		}
		windows = append(windows, string(runes[start:end]))
		if end == n {
			break
		}

		next := end - p.overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return windows
}

// pullBack returns the latest sentence boundary in (start, end] that keeps at
// least 70% of the window, or end when there is none.
func pullBack(runes []rune, start, end, size int) int {
	limit := end - int(float64(size)*maxPullback)
	if limit <= start {
		limit = start + 1
	}
	for pos := end; pos >= limit; pos-- {
		if isBoundary(runes, pos) {
			return pos
		}
	}
	return end
}

// isBoundary reports whether the runes just before pos end a sentence:
// ". ", "! ", "? " or a blank line.
func isBoundary(runes []rune, pos int) bool {
	if pos < 2 || pos > len(runes) {
		return false
	}
	prev, last := runes[pos-2], runes[pos-1]
	switch {
	case last == ' ' && (prev == '.' || prev == '!' || prev == '?'):
		return true
	case last == '\n' && prev == '\n':
		return true
	default:
		return false
	}
}
