// Package archive stores trace files as zstd-compressed copies and opens
// them back up for parsing.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Archive compresses srcPath into archiveDir/{session-id}.jsonl.zst.
// Returns the archive path.
func Archive(srcPath, archiveDir string) (string, error) {
	sessionID := extractSessionID(srcPath)
	if sessionID == "" {
		return "", fmt.Errorf("cannot extract session ID from %s", srcPath)
	}

	destPath := ArchivePath(sessionID, archiveDir)

	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer dest.Close()

	encoder, err := zstd.NewWriter(dest)
	if err != nil {
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}

	if _, err := io.Copy(encoder, src); err != nil {
		encoder.Close()
		return "", fmt.Errorf("compress: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("finalize compression: %w", err)
	}

	return destPath, nil
}

// OpenReader opens an archived trace for streaming reads. The returned
// ReadCloser yields the decompressed JSONL.
func OpenReader(archivePath string) (io.ReadCloser, error) {
	src, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	decoder, err := zstd.NewReader(src)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &archiveReader{decoder: decoder, file: src}, nil
}

type archiveReader struct {
	decoder *zstd.Decoder
	file    *os.File
}

func (r *archiveReader) Read(p []byte) (int, error) {
	return r.decoder.Read(p)
}

func (r *archiveReader) Close() error {
	r.decoder.Close()
	return r.file.Close()
}

// Restore decompresses archivePath back into destDir as {session-id}.jsonl.
// Returns the restored path.
func Restore(archivePath, destDir string) (string, error) {
	sessionID := extractSessionID(archivePath)
	if sessionID == "" {
		return "", fmt.Errorf("cannot extract session ID from %s", archivePath)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create dest dir: %w", err)
	}

	rc, err := OpenReader(archivePath)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	destPath := filepath.Join(destDir, sessionID+".jsonl")
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create restored file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, rc); err != nil {
		return "", fmt.Errorf("decompress: %w", err)
	}

	return destPath, nil
}

// IsArchived returns true if an archive file exists for the given session ID.
func IsArchived(sessionID, archiveDir string) bool {
	_, err := os.Stat(ArchivePath(sessionID, archiveDir))
	return err == nil
}

// ArchivePath returns the deterministic archive path for a session ID.
func ArchivePath(sessionID, archiveDir string) string {
	return filepath.Join(archiveDir, sessionID+".jsonl.zst")
}

func extractSessionID(path string) string {
	base := filepath.Base(path)
	if strings.HasSuffix(base, ".jsonl.zst") {
		return strings.TrimSuffix(base, ".jsonl.zst")
	}
	if strings.HasSuffix(base, ".jsonl") {
		return strings.TrimSuffix(base, ".jsonl")
	}
	return ""
}
