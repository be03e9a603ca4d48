// Package document holds the in-memory model of the open markdown file.
package document

import "strings"

type ViewMode string

const (
	ModeEdit   ViewMode = "edit"
	ModeRender ViewMode = "render"
)

// ParseViewMode maps a persisted preference onto a ViewMode. Anything
// unrecognised falls back to Render.
func ParseViewMode(s string) ViewMode {
	switch ViewMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeEdit:
		return ModeEdit
	default:
		return ModeRender
	}
}

func (m ViewMode) Valid() bool {
	return m == ModeEdit || m == ModeRender
}

func (m ViewMode) Toggle() ViewMode {
	if m == ModeEdit {
		return ModeRender
	}
	return ModeEdit
}

func (m ViewMode) String() string {
	return string(m)
}

// Session is the single open document. Dirty is never stored; it is always
// derived from Buffer and LastSaved.
type Session struct {
	Path      string
	Buffer    string
	LastSaved string
	Revision  uint64
	Mode      ViewMode
}

func NewSession(mode ViewMode) *Session {
	if !mode.Valid() {
		mode = ModeRender
	}
	return &Session{Mode: mode}
}

func (s *Session) Dirty() bool {
	return s.Buffer != s.LastSaved
}

func (s *Session) HasPath() bool {
	return s.Path != ""
}

// Replace swaps in a freshly loaded document. The view mode survives since it
// is a user preference rather than part of the document.
func (s *Session) Replace(path, content string) {
	s.Path = path
	s.Buffer = content
	s.LastSaved = content
	s.Revision++
}

// MarkSaved records content as written to disk at path.
func (s *Session) MarkSaved(path, content string) {
	s.Path = path
	s.LastSaved = content
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Path:      s.Path,
		Buffer:    s.Buffer,
		LastSaved: s.LastSaved,
		Revision:  s.Revision,
		Mode:      s.Mode,
		Dirty:     s.Dirty(),
	}
}

// Snapshot is an immutable copy of a Session handed to the UI.
type Snapshot struct {
	Path      string
	Buffer    string
	LastSaved string
	Revision  uint64
	Mode      ViewMode
	Dirty     bool
}

// Preview is the output of rendering a buffer. HTML is always safe to
// display; when Err is set it holds the inline error fallback.
type Preview struct {
	Source   string
	HTML     string
	Err      error
	Revision uint64
}
