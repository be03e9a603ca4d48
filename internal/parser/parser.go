// Package parser extracts a lightweight outline from markdown source.
package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

type Heading struct {
	Level int
	Text  string
	Line  int
}

type Task struct {
	Content string
	Done    bool
	Line    int
}

// Summary describes a document: its title is the first heading.
type Summary struct {
	Title    string
	Headings []Heading
	Tasks    []Task
	Words    int
}

// TaskCounts returns completed and total task list items.
func (s Summary) TaskCounts() (done, total int) {
	for _, t := range s.Tasks {
		if t.Done {
			done++
		}
	}
	return done, len(s.Tasks)
}

var md = goldmark.New(goldmark.WithExtensions(extension.TaskList))

func Parse(source []byte) Summary {
	document := md.Parser().Parse(text.NewReader(source))

	var s Summary
	ast.Walk(
		document,
		func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}

			switch n := n.(type) {
			case *ast.Heading:
				content := strings.TrimSpace(string(n.Text(source)))
				if content == "" {
					break
				}
				s.Headings = append(s.Headings, Heading{
					Level: n.Level,
					Text:  content,
					Line:  lineOf(n, source),
				})
				if s.Title == "" {
					s.Title = content
				}
			case *extast.TaskCheckBox:
				item := n.Parent()
				content := strings.TrimSpace(string(item.Text(source)))
				if content == "" {
					break
				}
				s.Tasks = append(s.Tasks, Task{
					Content: content,
					Done:    n.IsChecked,
					Line:    lineOf(item, source),
				})
			case *ast.Text:
				s.Words += len(strings.Fields(string(n.Segment.Value(source))))
			case *ast.CodeSpan, *ast.FencedCodeBlock, *ast.CodeBlock:
				return ast.WalkSkipChildren, nil
			}
			return ast.WalkContinue, nil
		},
	)

	return s
}

func lineOf(n ast.Node, source []byte) int {
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		return 1 + bytes.Count(source[:lines.At(0).Start], []byte("\n"))
	}
	if child := n.FirstChild(); child != nil {
		return lineOf(child, source)
	}
	return 0
}
