package editor

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Paintersrp/mdw/internal/document"
)

type documentMsg struct{ doc document.Snapshot }

type previewMsg struct{ preview document.Preview }

type statusMsg struct{ text string }

type modeMsg struct{ mode document.ViewMode }

type clearStatusMsg struct{ seq int }

type confirmRequestMsg struct {
	message string
	reply   chan bool
}

type pathReply struct {
	path string
	err  error
}

type openRequestMsg struct {
	reply chan pathReply
}

type saveRequestMsg struct {
	suggested string
	reply     chan pathReply
}

// Sender delivers messages into a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge lets the reconciler, running on its own goroutine, drive the TUI.
// Prompts are two-phase: a request message goes to the program and the
// answer comes back on a reply channel, or the context ends the wait.
type Bridge struct {
	sender Sender
}

func NewBridge(sender Sender) *Bridge {
	return &Bridge{sender: sender}
}

func (b *Bridge) ShowDocument(doc document.Snapshot) {
	b.sender.Send(documentMsg{doc: doc})
}

func (b *Bridge) ShowPreview(p document.Preview) {
	b.sender.Send(previewMsg{preview: p})
}

func (b *Bridge) ShowStatus(msg string) {
	b.sender.Send(statusMsg{text: msg})
}

func (b *Bridge) ShowMode(mode document.ViewMode) {
	b.sender.Send(modeMsg{mode: mode})
}

func (b *Bridge) Confirm(ctx context.Context, message string) bool {
	reply := make(chan bool, 1)
	b.sender.Send(confirmRequestMsg{message: message, reply: reply})

	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		return false
	}
}

func (b *Bridge) ChooseOpenPath(ctx context.Context) (string, error) {
	reply := make(chan pathReply, 1)
	b.sender.Send(openRequestMsg{reply: reply})
	return awaitPath(ctx, reply)
}

func (b *Bridge) ChooseSavePath(ctx context.Context, suggested string) (string, error) {
	reply := make(chan pathReply, 1)
	b.sender.Send(saveRequestMsg{suggested: suggested, reply: reply})
	return awaitPath(ctx, reply)
}

func awaitPath(ctx context.Context, reply <-chan pathReply) (string, error) {
	select {
	case r := <-reply:
		return r.path, r.err
	case <-ctx.Done():
		return "", document.ErrCancelled
	}
}
