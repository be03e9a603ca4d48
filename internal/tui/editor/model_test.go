package editor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Paintersrp/mdw/internal/document"
	"github.com/Paintersrp/mdw/internal/reconciler"
)

type fakeActions struct {
	mu    sync.Mutex
	calls []string
	edits []string
	revs  []uint64
}

func (a *fakeActions) record(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, name)
}

func (a *fakeActions) OpenViaDialog(ctx context.Context) { a.record("open") }
func (a *fakeActions) SaveRequested(ctx context.Context) { a.record("save") }
func (a *fakeActions) NewRequested(ctx context.Context)  { a.record("new") }
func (a *fakeActions) ToggleMode()                       { a.record("toggle") }

func (a *fakeActions) EditedAt(revision uint64, text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, "edit")
	a.edits = append(a.edits, text)
	a.revs = append(a.revs, revision)
}

// syncDispatcher runs tasks inline so tests can observe them immediately.
type syncDispatcher struct{}

func (syncDispatcher) Submit(task reconciler.Task) bool {
	task(context.Background())
	return true
}

type fakeLister struct {
	paths []string
	err   error
}

func (l *fakeLister) WalkMarkdown(root string, excludeDirs []string) ([]string, error) {
	return l.paths, l.err
}

type fakeHTML struct{}

func (fakeHTML) Render(markdown string) (string, error) {
	return "<p>" + markdown + "</p>", nil
}

func newTestModel(t *testing.T) (*Model, *fakeActions) {
	t.Helper()
	actions := &fakeActions{}
	m := New(Options{
		Actions:    actions,
		Dispatcher: syncDispatcher{},
		HTML:       fakeHTML{},
		Files:      &fakeLister{},
		Root:       t.TempDir(),
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, actions
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestShortcutsDispatchTriggers(t *testing.T) {
	m, actions := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})

	want := []string{"open", "save", "new", "toggle"}
	if len(actions.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, actions.calls)
	}
	for i := range want {
		if actions.calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, actions.calls)
		}
	}
}

func TestTypingDispatchesEditsWithRevision(t *testing.T) {
	m, actions := newTestModel(t)
	m.Update(documentMsg{doc: document.Snapshot{Path: "/tmp/a.md", Buffer: "x", LastSaved: "x", Revision: 3}})
	m.Update(modeMsg{mode: document.ModeEdit})

	m.Update(keyRunes("y"))

	if len(actions.edits) != 1 {
		t.Fatalf("expected one edit, got %v", actions.edits)
	}
	if actions.revs[0] != 3 {
		t.Fatalf("expected edit against revision 3, got %d", actions.revs[0])
	}
	if actions.edits[0] != "xy" && actions.edits[0] != "yx" {
		t.Fatalf("unexpected edited text %q", actions.edits[0])
	}
	if !m.dirty() {
		t.Fatalf("expected local dirty state after typing")
	}
}

func TestRenderModeDoesNotEdit(t *testing.T) {
	m, actions := newTestModel(t)
	m.Update(documentMsg{doc: document.Snapshot{Buffer: "x", LastSaved: "x", Revision: 1}})
	m.Update(modeMsg{mode: document.ModeRender})

	m.Update(keyRunes("z"))

	if len(actions.edits) != 0 {
		t.Fatalf("expected no edits in render mode, got %v", actions.edits)
	}
}

func TestDocumentReplacesTextareaOnlyOnNewRevision(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(documentMsg{doc: document.Snapshot{Buffer: "first", LastSaved: "first", Revision: 1}})
	if m.area.Value() != "first" {
		t.Fatalf("expected textarea loaded, got %q", m.area.Value())
	}

	m.Update(documentMsg{doc: document.Snapshot{Buffer: "echo", LastSaved: "first", Revision: 1, Dirty: true}})
	if m.area.Value() != "first" {
		t.Fatalf("expected textarea untouched for same revision, got %q", m.area.Value())
	}

	m.Update(documentMsg{doc: document.Snapshot{Buffer: "reloaded", LastSaved: "reloaded", Revision: 2}})
	if m.area.Value() != "reloaded" {
		t.Fatalf("expected textarea replaced on new revision, got %q", m.area.Value())
	}
}

func TestConfirmPromptRepliesOnce(t *testing.T) {
	tests := []struct {
		key  tea.KeyMsg
		want bool
	}{
		{keyRunes("y"), true},
		{keyRunes("n"), false},
		{tea.KeyMsg{Type: tea.KeyEsc}, false},
	}

	for _, tt := range tests {
		m, _ := newTestModel(t)
		reply := make(chan bool, 1)

		m.Update(confirmRequestMsg{message: "sure?", reply: reply})
		if m.overlay != overlayConfirm {
			t.Fatalf("expected confirm overlay")
		}

		m.Update(keyRunes("x"))
		select {
		case <-reply:
			t.Fatalf("unrelated key must not answer the prompt")
		default:
		}

		m.Update(tt.key)
		select {
		case got := <-reply:
			if got != tt.want {
				t.Fatalf("%v: expected %v, got %v", tt.key, tt.want, got)
			}
		default:
			t.Fatalf("%v: expected a reply", tt.key)
		}
		if m.overlay != overlayNone {
			t.Fatalf("expected overlay closed")
		}
	}
}

func TestSavePromptResolvesAgainstRoot(t *testing.T) {
	m, _ := newTestModel(t)
	reply := make(chan pathReply, 1)

	m.Update(saveRequestMsg{suggested: "note.md", reply: reply})
	if m.input.Value() != "note.md" {
		t.Fatalf("expected suggested name prefilled, got %q", m.input.Value())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	r := <-reply
	if r.err != nil {
		t.Fatalf("unexpected error %v", r.err)
	}
	if !filepath.IsAbs(r.path) || filepath.Base(r.path) != "note.md" {
		t.Fatalf("expected absolute note.md, got %q", r.path)
	}
	if filepath.Dir(r.path) != filepath.Clean(m.root) {
		t.Fatalf("expected path under root %q, got %q", m.root, r.path)
	}
}

func TestSavePromptCancel(t *testing.T) {
	m, _ := newTestModel(t)
	reply := make(chan pathReply, 1)

	m.Update(saveRequestMsg{suggested: "note.md", reply: reply})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	r := <-reply
	if !errors.Is(r.err, document.ErrCancelled) {
		t.Fatalf("expected cancellation, got %+v", r)
	}
}

func TestOpenPickerSelectsFile(t *testing.T) {
	m, _ := newTestModel(t)
	m.files = &fakeLister{paths: []string{"/notes/a.md", "/notes/b.md"}}
	reply := make(chan pathReply, 1)

	m.Update(openRequestMsg{reply: reply})
	if m.overlay != overlayOpen {
		t.Fatalf("expected open overlay")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	r := <-reply
	if r.err != nil || r.path != "/notes/a.md" {
		t.Fatalf("expected first file selected, got %+v", r)
	}
}

func TestOpenPickerWithNoFilesCancels(t *testing.T) {
	m, _ := newTestModel(t)
	reply := make(chan pathReply, 1)

	m.Update(openRequestMsg{reply: reply})

	r := <-reply
	if !errors.Is(r.err, document.ErrCancelled) {
		t.Fatalf("expected cancellation, got %+v", r)
	}
	if m.overlay != overlayNone {
		t.Fatalf("expected no overlay")
	}
}

func TestQuitCleanAndDirty(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(documentMsg{doc: document.Snapshot{Buffer: "x", LastSaved: "x", Revision: 1}})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	if !isQuit(cmd) {
		t.Fatalf("expected clean document to quit immediately")
	}

	m.Update(modeMsg{mode: document.ModeEdit})
	m.Update(keyRunes("!"))

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	if isQuit(cmd) || m.overlay != overlayQuit {
		t.Fatalf("expected confirmation before discarding edits")
	}

	m.Update(keyRunes("n"))
	if m.overlay != overlayNone {
		t.Fatalf("expected declined quit to return to the editor")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	_, cmd = m.Update(keyRunes("y"))
	if !isQuit(cmd) {
		t.Fatalf("expected confirmed quit")
	}
}

func TestQuitWhilePromptPendingReleasesReconciler(t *testing.T) {
	m, _ := newTestModel(t)
	reply := make(chan bool, 1)
	m.Update(confirmRequestMsg{message: "reload?", reply: reply})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})

	select {
	case got := <-reply:
		if got {
			t.Fatalf("expected pending prompt declined on quit")
		}
	default:
		t.Fatalf("expected pending prompt to be answered")
	}
	if !isQuit(cmd) {
		t.Fatalf("expected quit for a clean document")
	}
}

func TestReconcilerPromptOverQuitRestoresQuit(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(documentMsg{doc: document.Snapshot{Buffer: "x", LastSaved: "x", Revision: 1}})
	m.Update(modeMsg{mode: document.ModeEdit})
	m.Update(keyRunes("!"))

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	if m.overlay != overlayQuit {
		t.Fatalf("expected quit confirmation for dirty document")
	}

	reply := make(chan bool, 1)
	m.Update(confirmRequestMsg{message: "reload?", reply: reply})
	if m.overlay != overlayConfirm || m.confirmMessage != "reload?" {
		t.Fatalf("expected reconciler prompt shown, got %v %q", m.overlay, m.confirmMessage)
	}

	m.Update(keyRunes("n"))
	if got := <-reply; got {
		t.Fatalf("expected reload declined")
	}
	if m.overlay != overlayQuit || m.confirmMessage != msgConfirmQuit {
		t.Fatalf("expected quit confirmation restored, got %v %q", m.overlay, m.confirmMessage)
	}

	_, cmd := m.Update(keyRunes("y"))
	if !isQuit(cmd) {
		t.Fatalf("expected confirmed quit")
	}
}

func TestStatusClearsOnlyForLatestMessage(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(statusMsg{text: "Saved"})
	first := m.statusSeq
	m.Update(statusMsg{text: "Reloaded from disk"})

	m.Update(clearStatusMsg{seq: first})
	if m.Status() != "Reloaded from disk" {
		t.Fatalf("stale timer cleared newer status")
	}

	m.Update(clearStatusMsg{seq: m.statusSeq})
	if m.Status() != "" {
		t.Fatalf("expected status cleared, got %q", m.Status())
	}
}

func TestCopyHTMLUsesClipboard(t *testing.T) {
	m, _ := newTestModel(t)
	var copied string
	m.copyToClip = func(s string) error {
		copied = s
		return nil
	}
	m.Update(documentMsg{doc: document.Snapshot{Buffer: "hello", LastSaved: "hello", Revision: 1}})

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})

	if copied != "<p>hello</p>" {
		t.Fatalf("expected rendered html copied, got %q", copied)
	}
	if m.Status() != "Copied HTML" {
		t.Fatalf("unexpected status %q", m.Status())
	}
}

func TestPreviewErrorShownInPane(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(modeMsg{mode: document.ModeRender})

	m.Update(previewMsg{preview: document.Preview{
		Source: "x",
		Err:    &document.Error{Kind: document.KindRenderError, Op: "render", Err: errors.New("boom")},
	}})

	if got := m.view.View(); !strings.Contains(got, "Markdown render error") || !strings.Contains(got, "boom") {
		t.Fatalf("expected inline render error, got %q", got)
	}
}

type captureSender struct {
	msgs chan tea.Msg
}

func (s *captureSender) Send(msg tea.Msg) {
	s.msgs <- msg
}

func TestBridgeConfirmRoundTrip(t *testing.T) {
	sender := &captureSender{msgs: make(chan tea.Msg, 1)}
	b := NewBridge(sender)

	go func() {
		msg := (<-sender.msgs).(confirmRequestMsg)
		msg.reply <- true
	}()

	if !b.Confirm(context.Background(), "ok?") {
		t.Fatalf("expected confirmation to round trip")
	}
}

func TestBridgeConfirmCancelledContext(t *testing.T) {
	sender := &captureSender{msgs: make(chan tea.Msg, 1)}
	b := NewBridge(sender)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if b.Confirm(ctx, "ok?") {
		t.Fatalf("expected unanswered prompt to count as declined")
	}

	ctx2, cancel2 := context.WithCancel(context.Background())
	cancel2()
	<-sender.msgs
	if _, err := b.ChooseSavePath(ctx2, "note.md"); !errors.Is(err, document.ErrCancelled) {
		t.Fatalf("expected cancelled save dialog, got %v", err)
	}
}

func TestHeaderShowsOutlineStats(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(documentMsg{doc: document.Snapshot{
		Buffer:    "# Plan\n\n- [x] one\n- [ ] two\n",
		LastSaved: "# Plan\n\n- [x] one\n- [ ] two\n",
		Revision:  1,
	}})

	if got := m.stats(); got != "3 words · 1/2 tasks" {
		t.Fatalf("unexpected stats %q", got)
	}
}
