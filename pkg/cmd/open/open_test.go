package open

import (
	"path/filepath"
	"testing"
)

func TestResolveNonInteractive(t *testing.T) {
	path, err := resolve(nil, nil, false)
	if err != nil || path != "" {
		t.Fatalf("expected empty document without arguments, got %q, %v", path, err)
	}

	path, err = resolve(nil, []string{"notes/a.MD"}, false)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !filepath.IsAbs(path) || filepath.Base(path) != "a.MD" {
		t.Fatalf("expected absolute markdown path, got %q", path)
	}

	path, err = resolve(nil, []string{"file:///tmp/b.markdown"}, false)
	if err != nil || path != filepath.FromSlash("/tmp/b.markdown") {
		t.Fatalf("expected file URL resolved, got %q, %v", path, err)
	}

	if _, err := resolve(nil, []string{"todo"}, false); err == nil {
		t.Fatalf("expected an error for a query without a terminal")
	}
}
