// Package discover enumerates trace files under a projects root and feeds
// their paths to the parser. The parser itself never walks directories.
package discover

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.jsonl(\.zst)?$`)

// TraceFile represents a discovered trace on disk.
type TraceFile struct {
	Path        string
	SessionID   string // UUID extracted from filename
	ProjectDir  string // directory name under the projects root
	ProjectName string // last component of the unmangled project path
	Archived    bool   // true for .jsonl.zst
	Sidechain   bool   // true if under */subagents/
	ModTime     int64  // unix timestamp for sorting
	Size        int64
}

// Discover walks basePath recursively and returns all trace files with
// valid UUID filenames, sorted by modification time (oldest first).
func Discover(basePath string) ([]TraceFile, error) {
	var results []TraceFile

	err := filepath.Walk(basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if info.IsDir() {
			return nil
		}

		name := filepath.Base(path)
		if !uuidPattern.MatchString(name) {
			return nil
		}

		projectDir := projectDirOf(basePath, path)
		results = append(results, TraceFile{
			Path:        path,
			SessionID:   sessionIDOf(name),
			ProjectDir:  projectDir,
			ProjectName: ProjectName(projectDir),
			Archived:    strings.HasSuffix(name, ".zst"),
			Sidechain:   strings.Contains(path, string(filepath.Separator)+"subagents"+string(filepath.Separator)),
			ModTime:     info.ModTime().Unix(),
			Size:        info.Size(),
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].ModTime < results[j].ModTime
	})

	return results, nil
}

// FindBySessionID locates a specific trace by session ID under basePath.
// Checks basePath/*/{sessionID}.jsonl, the subagents subdirectory, and the
// archived .jsonl.zst variants of both.
func FindBySessionID(basePath, sessionID string) (string, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		return "", err
	}

	names := []string{sessionID + ".jsonl", sessionID + ".jsonl.zst"}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		for _, name := range names {
			candidate := filepath.Join(basePath, e.Name(), name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}

			candidate = filepath.Join(basePath, e.Name(), "subagents", name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}

	return "", os.ErrNotExist
}

// ProjectName reverses the directory-name mangling applied to project paths
// (path separators become dashes), keeping only the final component.
func ProjectName(projectDir string) string {
	trimmed := strings.Trim(projectDir, "-")
	if trimmed == "" {
		return projectDir
	}
	parts := strings.Split(trimmed, "-")
	return parts[len(parts)-1]
}

func sessionIDOf(name string) string {
	name = strings.TrimSuffix(name, ".zst")
	return strings.TrimSuffix(name, ".jsonl")
}

func projectDirOf(basePath, path string) string {
	rel, err := filepath.Rel(basePath, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}
