package arg

import (
	"path/filepath"
	"testing"
)

func TestHandlePath(t *testing.T) {
	if _, err := HandlePath(nil); err == nil {
		t.Fatalf("expected error without arguments")
	}

	got, err := HandlePath([]string{"file:///tmp/notes/a.md"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got != filepath.FromSlash("/tmp/notes/a.md") {
		t.Fatalf("unexpected path %q", got)
	}

	got, err = HandlePath([]string{"b.md"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !filepath.IsAbs(got) || filepath.Base(got) != "b.md" {
		t.Fatalf("expected absolute b.md, got %q", got)
	}
}
