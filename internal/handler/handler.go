package handler

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Paintersrp/mdw/internal/document"
	"github.com/Paintersrp/mdw/internal/pathutil"
)

// FileHandler reads and writes documents as opaque UTF-8 text.
type FileHandler struct {
	logger *slog.Logger
}

func NewFileHandler(logger *slog.Logger) *FileHandler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FileHandler{logger: logger}
}

// Read returns the full content of path.
func (h *FileHandler) Read(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", document.Wrap("read", path, err)
	}
	return string(content), nil
}

// Write replaces the content of path in place. Writing through the existing
// file keeps its identity, so a watch on it stays attached.
func (h *FileHandler) Write(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return document.Wrap("write", path, err)
	}
	h.logger.Debug("document written", "path", path, "bytes", len(content))
	return nil
}

// WalkMarkdown lists markdown files under root, skipping hidden entries and
// the named directories.
func (h *FileHandler) WalkMarkdown(root string, excludeDirs []string) ([]string, error) {
	var files []string

	var excludePaths []string
	for _, d := range excludeDirs {
		excludePaths = append(excludePaths, filepath.Clean(filepath.Join(root, d)))
	}

	err := filepath.WalkDir(
		root,
		func(path string, d os.DirEntry, err error) error {
			if err != nil {
				h.logger.Debug("skipping unreadable entry", "path", path, "error", err)
				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}
				if path == root {
					return err
				}
				return nil
			}

			cleanedPath := filepath.Clean(path)
			if d.IsDir() {
				for _, excludePath := range excludePaths {
					if cleanedPath == excludePath {
						return filepath.SkipDir
					}
				}
			}

			name := d.Name()
			if path != root && strings.HasPrefix(name, ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !d.IsDir() && pathutil.IsMarkdownFile(name) {
				files = append(files, path)
			}
			return nil
		},
	)
	if err != nil {
		return nil, document.Wrap("walk", root, err)
	}

	return files, nil
}
