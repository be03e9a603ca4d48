package document

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestParseViewModeFallsBackToRender(t *testing.T) {
	tests := map[string]ViewMode{
		"edit":    ModeEdit,
		" EDIT ":  ModeEdit,
		"render":  ModeRender,
		"":        ModeRender,
		"preview": ModeRender,
	}

	for input, want := range tests {
		if got := ParseViewMode(input); got != want {
			t.Fatalf("ParseViewMode(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDirtyTracksBufferAgainstLastSaved(t *testing.T) {
	s := NewSession(ModeEdit)
	if s.Dirty() {
		t.Fatalf("new session should be clean")
	}

	s.Replace("/tmp/a.md", "x")
	for _, value := range []string{"xy", "x", "", "x", "xyz"} {
		s.Buffer = value
		if got, want := s.Dirty(), value != s.LastSaved; got != want {
			t.Fatalf("buffer %q: Dirty() = %v, want %v", value, got, want)
		}
	}

	s.MarkSaved("/tmp/a.md", s.Buffer)
	if s.Dirty() {
		t.Fatalf("expected clean session after MarkSaved")
	}
}

func TestReplaceBumpsRevisionAndKeepsMode(t *testing.T) {
	s := NewSession(ModeEdit)
	s.Replace("/tmp/a.md", "one")
	s.Replace("/tmp/b.md", "two")

	snap := s.Snapshot()
	if snap.Revision != 2 {
		t.Fatalf("expected revision 2, got %d", snap.Revision)
	}
	if snap.Mode != ModeEdit {
		t.Fatalf("expected mode to survive replace, got %q", snap.Mode)
	}
	if snap.Path != "/tmp/b.md" || snap.Buffer != "two" || snap.LastSaved != "two" || snap.Dirty {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestKindOfClassifiesFilesystemErrors(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{fmt.Errorf("read: %w", fs.ErrNotExist), KindNotFound},
		{fmt.Errorf("write: %w", fs.ErrPermission), KindPermissionDenied},
		{errors.New("disk on fire"), KindIOError},
		{&Error{Kind: KindRenderError, Op: "render", Err: errors.New("boom")}, KindRenderError},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Fatalf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap("read", "/tmp/missing.md", fs.ErrNotExist)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected wrapped error to unwrap to fs.ErrNotExist")
	}
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found, got %v", KindOf(err))
	}
	if Wrap("read", "x", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}
