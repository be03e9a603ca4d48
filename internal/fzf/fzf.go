package fzf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/Paintersrp/mdw/internal/document"
	"github.com/Paintersrp/mdw/internal/handler"
	"github.com/Paintersrp/mdw/internal/parser"
	"github.com/Paintersrp/mdw/internal/pathutil"
	"github.com/Paintersrp/mdw/internal/render"
)

var defaultExcludes = []string{"node_modules", "vendor"}

// FuzzyFinder picks a markdown file under a root directory.
type FuzzyFinder struct {
	handler *handler.FileHandler
	preview *render.Terminal
	root    string
	Header  string
	files   []string
}

func NewFuzzyFinder(h *handler.FileHandler, preview *render.Terminal, root, header string) *FuzzyFinder {
	return &FuzzyFinder{handler: h, preview: preview, root: root, Header: header}
}

// Run lets the user choose a file, optionally starting with query typed in.
// Aborting returns document.ErrCancelled.
func (f *FuzzyFinder) Run(query string) (string, error) {
	files, err := f.handler.WalkMarkdown(f.root, defaultExcludes)
	if err != nil {
		return "", fmt.Errorf("error listing files: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no markdown files found under %s", f.root)
	}
	f.files = files

	idx, err := f.fuzzySelectFile(query)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", document.ErrCancelled
		}
		return "", fmt.Errorf("error selecting file: %w", err)
	}

	return f.files[idx], nil
}

func (f *FuzzyFinder) fuzzySelectFile(query string) (int, error) {
	options := []fuzzyfinder.Option{
		fuzzyfinder.WithPreviewWindow(f.renderMarkdownPreview),
	}

	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}

	if f.Header != "" {
		options = append(options, fuzzyfinder.WithHeader(f.Header))
	}

	labels := make([]string, len(f.files))
	for i, file := range f.files {
		labels[i] = Label(f.root, file)
	}

	return fuzzyfinder.Find(f.files, func(i int) string {
		return labels[i]
	}, options...)
}

func (f *FuzzyFinder) renderMarkdownPreview(i, w, h int) string {
	if i == -1 {
		return ""
	}

	content, err := os.ReadFile(f.files[i])
	if err != nil {
		return "Error reading file"
	}

	if f.preview == nil {
		return string(content)
	}
	markdown, err := f.preview.Render(string(content), w)
	if err != nil {
		return "Error rendering markdown"
	}

	return markdown
}

// Label describes a file by its first heading, falling back to the file name,
// followed by its path relative to root.
func Label(root, path string) string {
	rel := pathutil.Relative(root, path)
	title := firstHeading(path)
	if title == "" {
		title = filepath.Base(path)
	}
	return fmt.Sprintf("%s [%s]", title, rel)
}

func firstHeading(path string) string {
	source, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return parser.Parse(source).Title
}
