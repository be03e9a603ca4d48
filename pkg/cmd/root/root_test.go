package root

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/Paintersrp/mdw/internal/state"
)

func newTestState(t *testing.T) *state.State {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(viper.Reset)

	s, err := state.NewState(false)
	if err != nil {
		t.Fatalf("NewState returned error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRootRegistersCommands(t *testing.T) {
	cmd, err := NewCmdRoot(newTestState(t))
	if err != nil {
		t.Fatalf("NewCmdRoot returned error: %v", err)
	}

	for _, name := range []string{"open", "render", "mode", "watch", "version"} {
		found, _, err := cmd.Find([]string{name})
		if err != nil || found.Name() != name {
			t.Fatalf("expected %s subcommand, got %v (%v)", name, found, err)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	cmd, err := NewCmdRoot(newTestState(t))
	if err != nil {
		t.Fatalf("NewCmdRoot returned error: %v", err)
	}

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "mdw ") {
		t.Fatalf("unexpected version output %q", out.String())
	}
}

func TestVerboseFlagRaisesLogLevel(t *testing.T) {
	s := newTestState(t)
	cmd, err := NewCmdRoot(s)
	if err != nil {
		t.Fatalf("NewCmdRoot returned error: %v", err)
	}

	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--verbose", "version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !s.Logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("expected debug records enabled after --verbose")
	}
}
