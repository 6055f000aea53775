package diferenco

import (
	"fmt"
	"strings"
)

// DefaultContextLines is the number of unchanged lines of surrounding
// context displayed around each hunk.
const DefaultContextLines = 3

// File identifies one side of a Unified diff.
type File struct {
	Path string
	Hash string
	Mode uint32
}

// Unified represents a set of edits as a unified diff.
type Unified struct {
	From        *File
	To          *File
	IsBinary    bool
	Message     string
	Hunks       []*Hunk
}

// String converts a unified diff to the standard textual form for that diff.
func (u Unified) String() string {
	if len(u.Hunks) == 0 {
		return ""
	}
	b := new(strings.Builder)
	if u.From != nil {
		fmt.Fprintf(b, "--- %s\n", u.From.Path)
	} else {
		fmt.Fprint(b, "--- /dev/null\n")
	}
	if u.To != nil {
		fmt.Fprintf(b, "+++ %s\n", u.To.Path)
	} else {
		fmt.Fprint(b, "+++ /dev/null\n")
	}

	for _, hunk := range u.Hunks {
		fromCount, toCount := 0, 0
		for _, l := range hunk.Lines {
			switch l.Kind {
			case Delete:
				fromCount++
			case Insert:
				toCount++
			default:
				fromCount++
				toCount++
			}
		}
		fmt.Fprint(b, "@@")
		if fromCount != 1 {
			fmt.Fprintf(b, " -%d,%d", hunk.FromLine, fromCount)
		} else {
			fmt.Fprintf(b, " -%d", hunk.FromLine)
		}
		if toCount != 1 {
			fmt.Fprintf(b, " +%d,%d", hunk.ToLine, toCount)
		} else {
			fmt.Fprintf(b, " +%d", hunk.ToLine)
		}
		fmt.Fprint(b, " @@\n")
		for _, l := range hunk.Lines {
			switch l.Kind {
			case Delete:
				fmt.Fprintf(b, "-%s", l.Content)
			case Insert:
				fmt.Fprintf(b, "+%s", l.Content)
			default:
				fmt.Fprintf(b, " %s", l.Content)
			}
			if !strings.HasSuffix(l.Content, "\n") {
				fmt.Fprint(b, "\n\\ No newline at end of file\n")
			}
		}
	}
	return b.String()
}

// Hunk represents a contiguous set of line edits to apply.
type Hunk struct {
	FromLine int
	ToLine   int
	Lines    []Line
}

type Line struct {
	Kind    Operation
	Content string
}

// UnifiedDiff renders a and b as a unified diff between from and to, using
// Myers' algorithm over line tokens held by a private Sink.
func UnifiedDiff(from, to *File, a, b string) *Unified {
	sk := NewSink(NEWLINE_LF)
	linesA := sk.SplitLines(a)
	linesB := sk.SplitLines(b)
	changes := MyersDiff(linesA, linesB)
	return sk.ToUnified(from, to, changes, linesA, linesB, DefaultContextLines)
}
