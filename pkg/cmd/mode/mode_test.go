package mode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/Paintersrp/mdw/internal/config"
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

func TestModePrintsCurrent(t *testing.T) {
	s := newTestState(t)

	var out bytes.Buffer
	cmd := NewCmdMode(s)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("mode failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != "render" {
		t.Fatalf("expected current mode printed, got %q", out.String())
	}
}

func TestModeSetPersists(t *testing.T) {
	s := newTestState(t)

	var out bytes.Buffer
	cmd := NewCmdMode(s)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"EDIT"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("mode failed: %v", err)
	}

	cfg, err := config.Load(s.Home)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if cfg.ViewMode != "edit" {
		t.Fatalf("expected edit persisted, got %q", cfg.ViewMode)
	}
}

func TestModeRejectsUnknown(t *testing.T) {
	s := newTestState(t)

	cmd := NewCmdMode(s)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"split"})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected invalid mode to be rejected")
	}
	if s.Config.ViewMode != "render" {
		t.Fatalf("expected mode unchanged, got %q", s.Config.ViewMode)
	}
}
