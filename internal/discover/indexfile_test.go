package discover

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReadIndexFile(t *testing.T) {
	dir := t.TempDir()
	content := `{
		"version": 1,
		"entries": [
			{
				"sessionId": "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
				"fullPath": "/traces/aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee.jsonl",
				"firstPrompt": "Fix the login bug",
				"messageCount": 12,
				"created": "2026-03-01T10:00:00Z",
				"modified": "2026-03-01T11:30:00Z",
				"gitBranch": "fix/login",
				"projectPath": "/home/user/myproject"
			}
		]
	}`
	if err := os.WriteFile(filepath.Join(dir, "sessions-index.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	idx, err := ReadIndexFile(dir)
	if err != nil {
		t.Fatalf("ReadIndexFile: %v", err)
	}
	if idx == nil {
		t.Fatal("index should be found")
	}
	if idx.Version != 1 {
		t.Errorf("Version = %d, want 1", idx.Version)
	}
	if len(idx.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(idx.Entries))
	}

	e := idx.Entries[0]
	if e.FirstPrompt != "Fix the login bug" || e.MessageCount != 12 {
		t.Errorf("entry = %+v", e)
	}
}

func TestReadIndexFile_Missing(t *testing.T) {
	idx, err := ReadIndexFile(t.TempDir())
	if err != nil {
		t.Fatalf("missing index is not an error, got: %v", err)
	}
	if idx != nil {
		t.Error("missing index should return nil")
	}
}

func TestIndexEntry_Summary(t *testing.T) {
	created, _ := time.Parse(time.RFC3339, "2026-03-01T10:00:00Z")
	e := IndexEntry{
		SessionID:    "abc",
		FullPath:     "/traces/abc.jsonl",
		FirstPrompt:  "do things",
		MessageCount: 4,
		Created:      created,
		GitBranch:    "main",
	}

	sum := e.Summary("myproject", "-home-user-myproject")
	if sum.SessionID != "abc" || sum.FilePath != "/traces/abc.jsonl" {
		t.Errorf("summary identity = %+v", sum)
	}
	if sum.ProjectName != "myproject" || sum.ProjectDir != "-home-user-myproject" {
		t.Error("project identity not carried through")
	}
	if sum.MessageCount != 4 || sum.FirstPrompt != "do things" || !sum.Created.Equal(created) {
		t.Errorf("summary fields = %+v", sum)
	}
}
