package diff

import "fmt"

// DefaultContext is the number of unchanged lines shown around each change.
const DefaultContext = 3

// Hunk is a contiguous, context-padded grouping of diff lines around one or
// more changes, mirroring unified-diff presentation conventions.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// Header renders the standard unified-diff hunk header.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
}

// GroupHunks splits a flat diff into context-padded hunks. A diff with no
// changes, or one where every line is a change, yields a single hunk
// spanning the whole sequence. A context < 0 uses DefaultContext.
func GroupHunks(lines []Line, context int) []Hunk {
	if len(lines) == 0 {
		return nil
	}
	if context < 0 {
		context = DefaultContext
	}

	var changes []int
	for i, l := range lines {
		if l.Kind != Unchanged {
			changes = append(changes, i)
		}
	}
	if len(changes) == 0 || len(changes) == len(lines) {
		return []Hunk{makeHunk(lines, 0, len(lines)-1)}
	}

	var hunks []Hunk
	start := changes[0] - context
	if start < 0 {
		start = 0
	}
	end := changes[0] + context
	if end > len(lines)-1 {
		end = len(lines) - 1
	}

	for _, c := range changes[1:] {
		cs := c - context
		if cs < 0 {
			cs = 0
		}
		ce := c + context
		if ce > len(lines)-1 {
			ce = len(lines) - 1
		}
		// Overlapping or adjacent ranges merge into the current hunk.
		if cs <= end+1 {
			if ce > end {
				end = ce
			}
			continue
		}
		hunks = append(hunks, makeHunk(lines, start, end))
		start, end = cs, ce
	}
	hunks = append(hunks, makeHunk(lines, start, end))

	return hunks
}

// makeHunk builds a hunk over lines[start..end] inclusive. The old/new start
// comes from the first line in the slice that exists on that side; the
// counts exclude lines that exist only on the other side.
func makeHunk(lines []Line, start, end int) Hunk {
	h := Hunk{Lines: lines[start : end+1]}
	for _, l := range h.Lines {
		if h.OldStart == 0 && l.OldLine > 0 {
			h.OldStart = l.OldLine
		}
		if h.NewStart == 0 && l.NewLine > 0 {
			h.NewStart = l.NewLine
		}
		if l.Kind != Added {
			h.OldCount++
		}
		if l.Kind != Removed {
			h.NewCount++
		}
	}
	return h
}
