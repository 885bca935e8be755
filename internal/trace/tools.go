package trace

import (
	"encoding/json"
	"strings"
)

// toolInput covers the input fields of every tool this package understands.
// Unknown tools keep their raw input for the summary fallback.
type toolInput struct {
	FilePath    string `json:"file_path"`
	Content     string `json:"content"`
	OldString   string `json:"old_string"`
	NewString   string `json:"new_string"`
	ReplaceAll  bool   `json:"replace_all"`
	Pattern     string `json:"pattern"`
	Path        string `json:"path"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Query       string `json:"query"`
}

// toolUsageFromBlock converts a tool_use content block into a ToolUsage,
// deriving file-change data for the file tools and a one-line summary for
// everything else. Inputs that are not JSON objects fall back to defaults.
func toolUsageFromBlock(b ContentBlock) ToolUsage {
	var in toolInput
	if len(b.Input) > 0 {
		// Tolerate any malformed input shape.
		_ = json.Unmarshal(b.Input, &in)
	}

	u := ToolUsage{Tool: b.Name}

	switch b.Name {
	case "Write":
		u.Action = ActionCreated
		u.FilePath = in.FilePath
		u.NewContent = truncateContent(in.Content)
		u.Summary = truncateSummary(in.FilePath)
	case "Edit":
		u.Action = ActionModified
		u.FilePath = in.FilePath
		u.OldContent = in.OldString
		u.NewContent = in.NewString
		u.ReplaceAll = in.ReplaceAll
		u.Summary = truncateSummary(in.FilePath)
	case "Read":
		u.Action = ActionRead
		u.FilePath = in.FilePath
		u.Summary = truncateSummary(in.FilePath)
	case "Grep":
		s := "\"" + in.Pattern + "\""
		if in.Path != "" {
			s += " in " + in.Path
		}
		u.Summary = truncateSummary(s)
	case "Glob":
		u.Summary = truncateSummary(in.Pattern)
	case "Bash":
		u.Summary = truncateSummary(in.Command)
	case "Task":
		u.Summary = truncateSummary(in.Description)
	case "WebSearch":
		u.Summary = truncateSummary(in.Query)
	default:
		u.Summary = truncateSummary(string(b.Input))
	}

	return u
}

// truncateContent caps Write content, appending a visible marker when the
// original exceeded the limit.
func truncateContent(s string) string {
	if len(s) <= writeContentMax {
		return s
	}
	return capLen(s, writeContentMax) + contentTruncationMarker
}

// truncateSummary caps a one-line summary at the display limit.
func truncateSummary(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= summaryMax {
		return s
	}
	return capLen(s, summaryMax-3) + "..."
}

// normalizePath converts backslashes to forward slashes so that paths from
// different platforms group together.
func normalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
