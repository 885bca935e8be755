package diff

import (
	"strings"
	"testing"
)

func TestGroupHunks_NoChanges(t *testing.T) {
	lines := Compute("a\nb\nc", "a\nb\nc")
	hunks := GroupHunks(lines, 3)
	if len(hunks) != 1 {
		t.Fatalf("got %d hunks, want 1 covering everything", len(hunks))
	}
	if len(hunks[0].Lines) != 3 {
		t.Errorf("hunk spans %d lines, want 3", len(hunks[0].Lines))
	}
}

func TestGroupHunks_AllChanged(t *testing.T) {
	lines := Compute("a\nb", "x\ny")
	hunks := GroupHunks(lines, 3)
	if len(hunks) != 1 {
		t.Fatalf("got %d hunks, want 1 when no unchanged lines exist", len(hunks))
	}
	if len(hunks[0].Lines) != len(lines) {
		t.Errorf("hunk spans %d lines, want %d", len(hunks[0].Lines), len(lines))
	}
}

func numberedLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "line" + string(rune('0'+i%10)) + strings.Repeat("x", i/10)
	}
	return lines
}

// twoChangeDiff builds a diff with changes at positions 0 and gap+1,
// separated by gap unchanged lines.
func twoChangeDiff(gap int) []Line {
	base := numberedLines(gap + 2)
	oldLines := append([]string{}, base...)
	newLines := append([]string{}, base...)
	newLines[0] = "changed-first"
	newLines[gap+1] = "changed-last"
	return Compute(strings.Join(oldLines, "\n"), strings.Join(newLines, "\n"))
}

func TestGroupHunks_NearbyChangesMerge(t *testing.T) {
	// Gap of 6 unchanged lines < 2*3+1, so one hunk.
	hunks := GroupHunks(twoChangeDiff(6), 3)
	if len(hunks) != 1 {
		t.Fatalf("got %d hunks, want changes within 2*context+1 merged into 1", len(hunks))
	}
}

func TestGroupHunks_ExactBoundaryGapSplits(t *testing.T) {
	// A gap of exactly 2*3+1 unchanged lines leaves one line outside
	// both context windows, so the hunks split.
	hunks := GroupHunks(twoChangeDiff(7), 3)
	if len(hunks) != 2 {
		t.Fatalf("got %d hunks, want 2 at the exact boundary gap", len(hunks))
	}
}

func TestGroupHunks_DistantChangesSplit(t *testing.T) {
	// Gap of 8 unchanged lines > 2*3+1, so two hunks.
	hunks := GroupHunks(twoChangeDiff(8), 3)
	if len(hunks) != 2 {
		t.Fatalf("got %d hunks, want 2", len(hunks))
	}
}

func TestGroupHunks_HeaderAndCounts(t *testing.T) {
	lines := Compute("a\nb\nc\nd\ne\nf\ng\nh\ni\nj", "a\nb\nc\nd\nX\nf\ng\nh\ni\nj")
	hunks := GroupHunks(lines, 3)
	if len(hunks) != 1 {
		t.Fatalf("got %d hunks, want 1", len(hunks))
	}
	h := hunks[0]

	// Change at line 5 with context 3: lines 2 through 8 on both sides.
	if h.OldStart != 2 || h.NewStart != 2 {
		t.Errorf("starts = (%d,%d), want (2,2)", h.OldStart, h.NewStart)
	}
	if h.OldCount != 7 || h.NewCount != 7 {
		t.Errorf("counts = (%d,%d), want (7,7)", h.OldCount, h.NewCount)
	}
	if got := h.Header(); got != "@@ -2,7 +2,7 @@" {
		t.Errorf("Header() = %q", got)
	}
}

func TestGroupHunks_EmptyDiff(t *testing.T) {
	if hunks := GroupHunks(nil, 3); hunks != nil {
		t.Errorf("got %v, want nil", hunks)
	}
}

func TestGroupHunks_ContextClampsAtEdges(t *testing.T) {
	// Change on the first line: the hunk cannot start before the sequence.
	lines := Compute("a\nb\nc\nd\ne", "X\nb\nc\nd\ne")
	hunks := GroupHunks(lines, 3)
	if len(hunks) != 1 {
		t.Fatalf("got %d hunks, want 1", len(hunks))
	}
	h := hunks[0]
	if h.Lines[0] != lines[0] {
		t.Error("hunk must clamp to the start of the sequence")
	}
	// Removed "a", added "X", then 3 context lines.
	if len(h.Lines) != 5 {
		t.Errorf("hunk spans %d lines, want 5", len(h.Lines))
	}
}
