package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/Paintersrp/mdw/internal/state"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestState(t *testing.T) *state.State {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MDW_WATCH_DEBOUNCE_MS", "20")
	t.Cleanup(viper.Reset)

	s, err := state.NewState(false)
	if err != nil {
		t.Fatalf("NewState returned error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWatchPrintsChanges(t *testing.T) {
	s := newTestState(t)
	path := filepath.Join(t.TempDir(), "a.md")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &lockedBuffer{}
	cmd := NewCmdWatch(s)
	cmd.SetOut(out)
	cmd.SetErr(&lockedBuffer{})
	cmd.SetArgs([]string{path})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), path) {
		if time.Now().After(deadline) {
			t.Fatalf("expected a change event for %s, got %q", path, out.String())
		}
		if err := os.WriteFile(path, []byte("x"+time.Now().String()), 0o644); err != nil {
			t.Fatalf("failed to modify file: %v", err)
		}
		time.Sleep(100 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("watch did not stop after cancellation")
	}
}

func TestWatchMissingFile(t *testing.T) {
	s := newTestState(t)

	cmd := NewCmdWatch(s)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.md")})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
