package trace

import (
	"strings"
	"testing"
	"time"
)

const testTrace = `{"type":"file-history-snapshot","uuid":"aaa","timestamp":"2026-03-01T10:00:00Z","sessionId":"test-session","gitBranch":"main"}
{"type":"user","timestamp":"2026-03-01T10:00:01Z","sessionId":"test-session","gitBranch":"main","message":{"role":"user","content":"<system-reminder>context</system-reminder>Implement the login page"}}
{"type":"assistant","timestamp":"2026-03-01T10:00:05Z","sessionId":"test-session","message":{"role":"assistant","id":"msg_1","model":"claude-opus-4-6","content":[{"type":"thinking","thinking":"hmm"},{"type":"text","text":"I'll start."}],"usage":{"input_tokens":100,"output_tokens":10}}}
{"type":"assistant","timestamp":"2026-03-01T10:00:06Z","sessionId":"test-session","message":{"role":"assistant","id":"msg_1","model":"claude-opus-4-6","stop_reason":"tool_use","content":[{"type":"text","text":"Created the page."},{"type":"tool_use","id":"toolu_1","name":"Write","input":{"file_path":"src\\login.tsx","content":"export default function Login() {}"}}],"usage":{"input_tokens":100,"output_tokens":50}}}
{"type":"user","timestamp":"2026-03-01T10:00:10Z","sessionId":"test-session","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"toolu_1","content":"ok"}]}}
{"type":"progress","timestamp":"2026-03-01T10:00:11Z"}
{"type":"assistant","timestamp":"2026-03-01T10:00:15Z","sessionId":"test-session","message":{"role":"assistant","model":"claude-opus-4-6","stop_reason":"end_turn","content":[{"type":"text","text":"All done."}],"usage":{"input_tokens":120,"output_tokens":30}}}
{"type":"user","timestamp":"2026-03-01T10:01:00Z","sessionId":"test-session","message":{"role":"user","content":"Thanks!"}}`

func mustParse(t *testing.T, input, project, projectDir string) Conversation {
	t.Helper()
	conv, err := Parse(strings.NewReader(input), project, projectDir)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return conv
}

func TestParse_Reconstruction(t *testing.T) {
	conv := mustParse(t, testTrace, "myproject", "-home-user-myproject")

	if conv.SessionID != "test-session" {
		t.Errorf("SessionID = %q, want %q", conv.SessionID, "test-session")
	}
	if conv.GitBranch != "main" {
		t.Errorf("GitBranch = %q, want %q", conv.GitBranch, "main")
	}
	if conv.FirstPrompt != "Implement the login page" {
		t.Errorf("FirstPrompt = %q", conv.FirstPrompt)
	}

	want := []struct {
		role string
		text string
	}{
		{"user", "Implement the login page"},
		{"assistant", "I'll start.\n\nCreated the page."},
		{"assistant", "All done."},
		{"user", "Thanks!"},
	}
	if len(conv.Messages) != len(want) {
		t.Fatalf("got %d messages, want %d", len(conv.Messages), len(want))
	}
	for i, w := range want {
		m := conv.Messages[i]
		if m.Role != w.role || m.Text != w.text {
			t.Errorf("message %d = (%s, %q), want (%s, %q)", i, m.Role, m.Text, w.role, w.text)
		}
	}

	if conv.Created != conv.Messages[0].Timestamp {
		t.Error("Created should be the first message's timestamp")
	}
	if conv.Modified != conv.Messages[3].Timestamp {
		t.Error("Modified should be the last message's timestamp")
	}
}

func TestParse_MergesFragments(t *testing.T) {
	conv := mustParse(t, testTrace, "", "")
	if len(conv.Messages) < 2 {
		t.Fatal("missing merged assistant message")
	}
	m := conv.Messages[1]

	if m.InputTokens != 100 {
		t.Errorf("InputTokens = %d, want max across fragments 100", m.InputTokens)
	}
	if m.OutputTokens != 50 {
		t.Errorf("OutputTokens = %d, want max across fragments 50", m.OutputTokens)
	}
	if m.Model != "claude-opus-4-6" {
		t.Errorf("Model = %q", m.Model)
	}

	// Earliest fragment timestamp wins.
	wantTS, _ := time.Parse(time.RFC3339, "2026-03-01T10:00:05Z")
	if !m.Timestamp.Equal(wantTS) {
		t.Errorf("Timestamp = %v, want %v", m.Timestamp, wantTS)
	}

	if len(m.ToolUsages) != 1 {
		t.Fatalf("got %d tool usages, want 1", len(m.ToolUsages))
	}
	u := m.ToolUsages[0]
	if u.Tool != "Write" || u.Action != ActionCreated {
		t.Errorf("usage = %s/%s, want Write/created", u.Tool, u.Action)
	}
	if u.MessageIndex != 1 {
		t.Errorf("MessageIndex = %d, want 1", u.MessageIndex)
	}
	if !u.Timestamp.Equal(m.Timestamp) {
		t.Error("usage timestamp should match owning message")
	}
}

func TestParse_ExcludesToolResultEchoes(t *testing.T) {
	conv := mustParse(t, testTrace, "", "")
	for i, m := range conv.Messages {
		if m.Role == "user" && strings.TrimSpace(m.Text) == "" {
			t.Errorf("message %d is an empty user message; echoes must be dropped", i)
		}
	}
}

func TestParse_DropsToolOnlyAssistantTurns(t *testing.T) {
	input := `{"type":"user","timestamp":"2026-03-01T10:00:00Z","sessionId":"s","message":{"role":"user","content":"go"}}
{"type":"assistant","timestamp":"2026-03-01T10:00:01Z","sessionId":"s","message":{"role":"assistant","id":"m1","content":[{"type":"tool_use","id":"t1","name":"Read","input":{"file_path":"a.go"}}]}}`

	conv := mustParse(t, input, "", "")
	if len(conv.Messages) != 1 {
		t.Fatalf("got %d messages, want 1 (tool-only turn dropped)", len(conv.Messages))
	}
	// The dropped turn takes its tool usages with it.
	if got := conv.FilesTouched(); len(got) != 0 {
		t.Errorf("FilesTouched = %v, want none", got)
	}
}

func TestParse_SyntheticIDsKeepRecordsSeparate(t *testing.T) {
	input := `{"type":"assistant","timestamp":"2026-03-01T10:00:00Z","sessionId":"s","message":{"role":"assistant","content":[{"type":"text","text":"one"}]}}
{"type":"assistant","timestamp":"2026-03-01T10:00:01Z","sessionId":"s","message":{"role":"assistant","content":[{"type":"text","text":"two"}]}}`

	conv := mustParse(t, input, "", "")
	if len(conv.Messages) != 2 {
		t.Fatalf("got %d messages, want 2 (no id means no grouping)", len(conv.Messages))
	}
}

func TestParse_SkipsMalformedLines(t *testing.T) {
	input := `not json at all
{"type":"user","timestamp":"2026-03-01T10:00:00Z","sessionId":"s","message":{"role":"user","content":"hello"}}
{"type":"user","timestamp":"2026-03-01T10:00:0`

	conv := mustParse(t, input, "", "")
	if len(conv.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(conv.Messages))
	}
	if conv.Messages[0].Text != "hello" {
		t.Errorf("text = %q", conv.Messages[0].Text)
	}
}

func TestParse_ToleratesBadTimestamp(t *testing.T) {
	input := `{"type":"user","timestamp":"garbage","sessionId":"s","message":{"role":"user","content":"hello"}}`

	conv := mustParse(t, input, "", "")
	if len(conv.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(conv.Messages))
	}
	if !conv.Messages[0].Timestamp.IsZero() {
		t.Error("unparsable timestamp should degrade to zero")
	}
}

func TestParse_DropsBlankNonEchoUserRecords(t *testing.T) {
	input := `{"type":"user","timestamp":"2026-03-01T10:00:00Z","sessionId":"s","message":{"role":"user","content":"<system-reminder>injected context only</system-reminder>"}}
{"type":"user","timestamp":"2026-03-01T10:00:01Z","sessionId":"s","message":{"role":"user","content":"real question"}}`

	conv := mustParse(t, input, "", "")
	if len(conv.Messages) != 1 {
		t.Fatalf("got %d messages, want 1 (markup-only user record dropped)", len(conv.Messages))
	}
	if conv.Messages[0].Text != "real question" {
		t.Errorf("text = %q", conv.Messages[0].Text)
	}
	if conv.FirstPrompt != "real question" {
		t.Errorf("FirstPrompt = %q", conv.FirstPrompt)
	}
}

func TestParseFile_MissingFile(t *testing.T) {
	conv, err := ParseFile("/nonexistent/trace.jsonl", "proj", "dir")
	if err != nil {
		t.Fatalf("missing file should not be an error, got %v", err)
	}
	if conv.FilePath != "/nonexistent/trace.jsonl" || conv.ProjectName != "proj" {
		t.Error("identity fields should survive a missing file")
	}
	if len(conv.Messages) != 0 {
		t.Errorf("got %d messages, want 0", len(conv.Messages))
	}
}

func TestParseFile_OversizedLineReturnsError(t *testing.T) {
	big := strings.Repeat("x", 11*1024*1024)
	input := `{"type":"user","timestamp":"2026-03-01T10:00:00Z","sessionId":"s","message":{"role":"user","content":"first"}}` + "\n" +
		`{"type":"user","timestamp":"2026-03-01T10:00:01Z","sessionId":"s","message":{"role":"user","content":"` + big + `"}}` + "\n" +
		`{"type":"user","timestamp":"2026-03-01T10:00:02Z","sessionId":"s","message":{"role":"user","content":"after the big line"}}`
	path := writeTrace(t, input)

	if _, err := ParseFile(path, "", ""); err == nil {
		t.Fatal("a line exceeding the scanner buffer must surface an error, not a short conversation")
	}
}
