package discover

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/johns/traceview/internal/trace"
)

// indexFileName is the precomputed per-project index an external tool may
// maintain alongside the trace files.
const indexFileName = "sessions-index.json"

// IndexFile is the companion index: a version number plus lightweight
// entries whose shape matches what a metadata scan would produce.
type IndexFile struct {
	Version int          `json:"version"`
	Entries []IndexEntry `json:"entries"`
}

// IndexEntry is one precomputed session summary.
type IndexEntry struct {
	SessionID    string    `json:"sessionId"`
	FullPath     string    `json:"fullPath,omitempty"`
	FirstPrompt  string    `json:"firstPrompt"`
	MessageCount int       `json:"messageCount"`
	Created      time.Time `json:"created"`
	Modified     time.Time `json:"modified"`
	GitBranch    string    `json:"gitBranch,omitempty"`
	ProjectPath  string    `json:"projectPath,omitempty"`
	IsSidechain  bool      `json:"isSidechain,omitempty"`
}

// ReadIndexFile loads the companion index from a project directory.
// A missing file is not an error; callers fall back to scanning.
func ReadIndexFile(projectDir string) (*IndexFile, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, indexFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read index file: %w", err)
	}

	var idx IndexFile
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse index file: %w", err)
	}
	return &idx, nil
}

// Summary converts a precomputed entry into the scan-output shape, so the
// two can be used interchangeably by callers.
func (e IndexEntry) Summary(project, projectDir string) trace.SessionSummary {
	return trace.SessionSummary{
		SessionID:    e.SessionID,
		FilePath:     e.FullPath,
		ProjectName:  project,
		ProjectDir:   projectDir,
		FirstPrompt:  e.FirstPrompt,
		MessageCount: e.MessageCount,
		Created:      e.Created,
		Modified:     e.Modified,
		GitBranch:    e.GitBranch,
	}
}
