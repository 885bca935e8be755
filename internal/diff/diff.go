// Package diff computes line-level diffs between two text snapshots and
// groups them into contextual hunks for display.
package diff

import "strings"

// Kind classifies one diff line.
type Kind int

const (
	Unchanged Kind = iota
	Added
	Removed
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	}
	return "unchanged"
}

// Line is one line of a computed diff. OldLine and NewLine are 1-based;
// zero means the line does not exist on that side.
type Line struct {
	Kind    Kind
	Content string
	OldLine int
	NewLine int
}

// maxLCSCells bounds the dynamic-programming table. Beyond it the quadratic
// alignment is skipped in favor of the additive fallback.
const maxLCSCells = 100000

// Compute diffs two text snapshots line by line. An empty string stands for
// an absent snapshot (file did not exist in that state).
func Compute(oldText, newText string) []Line {
	oldLines := splitLines(oldText)
	newLines := splitLines(newText)

	switch {
	case len(oldLines) == 0 && len(newLines) == 0:
		return nil
	case len(oldLines) == 0:
		return allAdded(newLines, nil)
	case len(newLines) == 0:
		return allRemoved(oldLines, nil)
	}

	if len(oldLines)*len(newLines) > maxLCSCells {
		// Large inputs degrade to removed-then-added with no alignment
		// rather than paying for the quadratic table.
		return allAdded(newLines, allRemoved(oldLines, nil))
	}

	return lcsDiff(oldLines, newLines)
}

// lcsDiff aligns the two sides with a classic longest-common-subsequence
// table, then backtracks from the bottom-right corner. On a tie the
// backtrack prefers consuming a new line (emitting Added) over an old one.
func lcsDiff(oldLines, newLines []string) []Line {
	n, m := len(oldLines), len(newLines)

	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if oldLines[i-1] == newLines[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	var out []Line
	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && oldLines[i-1] == newLines[j-1]:
			out = append(out, Line{Kind: Unchanged, Content: oldLines[i-1], OldLine: i, NewLine: j})
			i--
			j--
		case j > 0 && (i == 0 || dp[i][j-1] >= dp[i-1][j]):
			out = append(out, Line{Kind: Added, Content: newLines[j-1], NewLine: j})
			j--
		default:
			out = append(out, Line{Kind: Removed, Content: oldLines[i-1], OldLine: i})
			i--
		}
	}

	// Backtracking produced the diff in reverse.
	for a, b := 0, len(out)-1; a < b; a, b = a+1, b-1 {
		out[a], out[b] = out[b], out[a]
	}
	return out
}

func allAdded(lines []string, out []Line) []Line {
	for i, l := range lines {
		out = append(out, Line{Kind: Added, Content: l, NewLine: i + 1})
	}
	return out
}

func allRemoved(lines []string, out []Line) []Line {
	for i, l := range lines {
		out = append(out, Line{Kind: Removed, Content: l, OldLine: i + 1})
	}
	return out
}

// splitLines normalizes line endings and splits. An empty input has no
// lines at all, as opposed to one empty line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}
