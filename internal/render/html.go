// Package render turns markdown into sanitized HTML and terminal output.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"regexp"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/Paintersrp/mdw/internal/document"
)

const DefaultHighlightStyle = "github"

var classPattern = regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)

// HTML converts markdown to HTML and sanitizes the result. Raw HTML in the
// source is passed through the markdown engine and stripped by the policy
// afterwards, so script content never survives.
type HTML struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	style  string
	mu     sync.Mutex
	buf    bytes.Buffer
}

func NewHTML(highlightStyle string) *HTML {
	if highlightStyle == "" {
		highlightStyle = DefaultHighlightStyle
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle(highlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldhtml.WithUnsafe(),
		),
	)

	return &HTML{md: md, policy: newPolicy(), style: highlightStyle}
}

// CSS returns the stylesheet for the highlight classes emitted by Render.
func (r *HTML) CSS() string {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(r.style)); err != nil {
		return ""
	}
	return buf.String()
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(classPattern).OnElements("span", "pre", "code", "div")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	return p
}

// Render returns sanitized HTML for markdown. Engine failures, including
// panics, come back as a render_error.
func (r *HTML) Render(markdown string) (out string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			out = ""
			err = &document.Error{
				Kind: document.KindRenderError,
				Op:   "render",
				Err:  fmt.Errorf("markdown engine panic: %v", rec),
			}
		}
	}()

	r.buf.Reset()
	if err := r.md.Convert([]byte(markdown), &r.buf); err != nil {
		return "", &document.Error{Kind: document.KindRenderError, Op: "render", Err: err}
	}

	return r.policy.Sanitize(r.buf.String()), nil
}

// ErrorHTML is the inline fallback shown in place of a preview that could
// not be rendered.
func ErrorHTML(err error) string {
	msg := "Render error"
	if err != nil {
		var derr *document.Error
		if errors.As(err, &derr) && derr.Err != nil {
			msg = derr.Err.Error()
		} else {
			msg = err.Error()
		}
	}
	return "<pre><code>Markdown render error:\n" + html.EscapeString(msg) + "</code></pre>"
}
