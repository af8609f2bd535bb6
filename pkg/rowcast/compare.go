package rowcast

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffGrids returns a line diff of two rendered grids. Every output line is prefixed
// with "- " (only in a), "+ " (only in b) or "  " (both).
func DiffGrids(a, b string) string {
	dmp := diffmatchpatch.New()
	charsA, charsB, lines := dmp.DiffLinesToChars(withTrailingNewline(a), withTrailingNewline(b))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(charsA, charsB, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix)
			out.WriteString(line)
		}
	}
	return strings.TrimRight(out.String(), "\n")
}

// ChangedLines counts lines that differ between two renderings.
func ChangedLines(a, b string) int {
	n := 0
	for _, line := range strings.Split(DiffGrids(a, b), "\n") {
		if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "+ ") {
			n++
		}
	}
	return n
}

func withTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
