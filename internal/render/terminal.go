package render

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/Paintersrp/mdw/internal/cache"
)

const (
	DefaultStyle    = "dracula"
	DefaultWordWrap = 100
)

// Terminal renders markdown for the TUI preview pane. Glamour renderers are
// costly to build, so one is kept per wrap width.
type Terminal struct {
	style     string
	maxWrap   int
	mu        sync.Mutex
	renderers *cache.LRU[int, *glamour.TermRenderer]
}

func NewTerminal(style string, maxWrap int) *Terminal {
	if style == "" {
		style = DefaultStyle
	}
	if maxWrap <= 0 {
		maxWrap = DefaultWordWrap
	}
	return &Terminal{
		style:     style,
		maxWrap:   maxWrap,
		renderers: cache.NewLRU[int, *glamour.TermRenderer](4),
	}
}

// Render styles markdown for a pane width columns wide.
func (t *Terminal) Render(markdown string, width int) (string, error) {
	wrap := t.maxWrap
	if width > 0 && width < wrap {
		wrap = width
	}

	r, err := t.renderers.GetOrCreate(wrap, func() (*glamour.TermRenderer, error) {
		return glamour.NewTermRenderer(
			glamour.WithStandardStyle(t.style),
			glamour.WithWordWrap(wrap),
			glamour.WithColorProfile(termenv.ANSI256),
		)
	})
	if err != nil {
		return "", fmt.Errorf("failed to create terminal renderer: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
