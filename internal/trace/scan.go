package trace

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/johns/traceview/internal/archive"
)

const maxLineSize = 10 * 1024 * 1024 // 10MB

// ScanFile produces a lightweight session summary without reconstructing
// message content. A missing file yields a summary with only the identity
// fields populated and no error; malformed lines are skipped. Other I/O
// failures, including lines exceeding the scanner buffer, are returned.
func ScanFile(path, project, projectDir string) (SessionSummary, error) {
	sum := SessionSummary{
		FilePath:    path,
		ProjectName: project,
		ProjectDir:  projectDir,
	}

	rc, err := openTrace(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return sum, nil
		}
		return sum, fmt.Errorf("open trace %s: %w", path, err)
	}
	defer rc.Close()

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if skipRecordTypes[rec.Type] {
			continue
		}

		if ts := parseTimestamp(rec.Timestamp); !ts.IsZero() {
			if sum.Created.IsZero() || ts.Before(sum.Created) {
				sum.Created = ts
			}
			if sum.Modified.IsZero() || ts.After(sum.Modified) {
				sum.Modified = ts
			}
		}
		if sum.SessionID == "" && rec.SessionID != "" {
			sum.SessionID = rec.SessionID
		}
		if sum.GitBranch == "" && rec.GitBranch != "" {
			sum.GitBranch = rec.GitBranch
		}

		if rec.Message == nil {
			continue
		}

		switch rec.Type {
		case "user":
			text, echo := firstText(rec.Message)
			if echo || strings.TrimSpace(text) == "" {
				continue
			}
			sum.MessageCount++
			if sum.FirstPrompt == "" {
				sum.FirstPrompt = capLen(text, firstPromptMax)
			}
		case "assistant":
			// A terminal stop_reason marks the final fragment of one
			// assistant turn, so counting those avoids double-counting
			// multi-fragment turns without full grouping.
			if rec.Message.StopReason != "" {
				sum.MessageCount++
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("read trace %s: %w", path, err)
	}

	if sum.Modified.IsZero() {
		if info, err := os.Stat(path); err == nil {
			sum.Modified = info.ModTime()
		}
	}

	return sum, nil
}

// openTrace opens a trace file for reading, transparently decompressing
// archived .jsonl.zst traces.
func openTrace(path string) (io.ReadCloser, error) {
	if strings.HasSuffix(path, ".zst") {
		return archive.OpenReader(path)
	}
	return os.Open(path)
}

// capLen truncates s to at most max bytes, backing up so a multi-byte rune
// is never split.
func capLen(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
