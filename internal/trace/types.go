package trace

import (
	"encoding/json"
	"time"
)

// Record represents a single line in a Claude Code JSONL trace file.
// Timestamps stay raw strings so that an unparsable value degrades to a
// zero time instead of dropping the whole line.
type Record struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Timestamp string          `json:"timestamp"`
	GitBranch string          `json:"gitBranch"`
	Message   *MessagePayload `json:"message,omitempty"`
}

// MessagePayload is the inner message object on user/assistant records.
type MessagePayload struct {
	Role       string          `json:"role"`
	Model      string          `json:"model,omitempty"`
	ID         string          `json:"id,omitempty"`
	StopReason string          `json:"stop_reason,omitempty"`
	Content    json.RawMessage `json:"content"` // string or []ContentBlock
	Usage      *Usage          `json:"usage,omitempty"`
}

// ContentBlock represents one block in a content array.
type ContentBlock struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	Thinking string          `json:"thinking,omitempty"`
	Name     string          `json:"name,omitempty"`  // tool name
	Input    json.RawMessage `json:"input,omitempty"` // tool input
}

// Usage tracks token consumption for an assistant record.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// FileActionType classifies what a tool invocation did to a file.
type FileActionType int

const (
	ActionNone FileActionType = iota
	ActionCreated
	ActionModified
	ActionRead
)

// actionRank defines the explicit significance order used when aggregating
// touched files: a lower rank wins. Created outranks Modified outranks Read.
var actionRank = map[FileActionType]int{
	ActionNone:     0,
	ActionCreated:  1,
	ActionModified: 2,
	ActionRead:     3,
}

// MoreSignificant reports whether a outranks b for file aggregation.
func (a FileActionType) MoreSignificant(b FileActionType) bool {
	return actionRank[a] < actionRank[b]
}

func (a FileActionType) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionModified:
		return "modified"
	case ActionRead:
		return "read"
	}
	return "none"
}

// ToolUsage records one tool invocation made by the assistant within a turn.
// MessageIndex and Timestamp are re-derived from the owning message after
// final ordering, so timeline consumers can sort on them directly.
type ToolUsage struct {
	Tool         string
	Summary      string
	FilePath     string
	Action       FileActionType
	OldContent   string
	NewContent   string
	ReplaceAll   bool
	MessageIndex int
	Timestamp    time.Time
}

// Message is one reconstructed logical turn, possibly merged from several
// raw assistant records sharing a message id.
type Message struct {
	Role         string
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	Timestamp    time.Time
	ToolUsages   []ToolUsage
}

// Conversation is the full-parse output: the ordered reconstructed turns of
// one session plus session-level metadata.
type Conversation struct {
	SessionID   string
	ProjectName string
	ProjectDir  string
	FilePath    string
	GitBranch   string
	FirstPrompt string
	Created     time.Time
	Modified    time.Time
	Messages    []Message
}

// SessionSummary is the fast-scan output. Its shape matches one entry of a
// precomputed project index file, so callers can treat the two as
// interchangeable.
type SessionSummary struct {
	SessionID    string
	FilePath     string
	ProjectName  string
	ProjectDir   string
	FirstPrompt  string
	MessageCount int
	Created      time.Time
	Modified     time.Time
	GitBranch    string
}

// FileTouched aggregates all tool invocations against one normalized path.
type FileTouched struct {
	Path   string
	Action FileActionType
	Count  int
}

// FileChangeEvent is one step in a single file's change timeline.
type FileChangeEvent struct {
	Step         int // 1-based
	Usage        ToolUsage
	LargeContent bool
	Preview      string // first lines of NewContent, set when LargeContent
}

// Bookkeeping record types that never contribute to a conversation.
var skipRecordTypes = map[string]bool{
	"queue":                 true,
	"file-history-snapshot": true,
	"progress":              true,
	"system":                true,
}

const (
	firstPromptMax        = 200
	summaryMax            = 80
	writeContentMax       = 200000
	largeContentThreshold = 5000
	previewLineCount      = 50
)

// contentTruncationMarker is appended to oversized Write content.
const contentTruncationMarker = "\n... [content truncated]"

// parseTimestamp parses an ISO-8601 timestamp, returning the zero time for
// anything it cannot understand.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

// contentBlocks extracts typed content blocks from a message payload.
// String content becomes a single text block. Elements that do not decode
// into the block shape are skipped rather than failing the payload.
func contentBlocks(msg *MessagePayload) []ContentBlock {
	if msg == nil || len(msg.Content) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(msg.Content, &s); err == nil {
		return []ContentBlock{{Type: "text", Text: s}}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(msg.Content, &raw); err != nil {
		return nil
	}

	var blocks []ContentBlock
	for _, item := range raw {
		var block ContentBlock
		if err := json.Unmarshal(item, &block); err != nil {
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks
}
