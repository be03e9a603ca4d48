package editor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Paintersrp/mdw/internal/document"
	"github.com/Paintersrp/mdw/internal/fzf"
	"github.com/Paintersrp/mdw/internal/parser"
	"github.com/Paintersrp/mdw/internal/reconciler"
)

const (
	defaultStatusTimeout = 2200 * time.Millisecond
	msgConfirmQuit       = "You have unsaved edits.\n\nQuit and discard them?"
	untitled             = "Untitled"
)

var pickerExcludes = []string{"node_modules", "vendor"}

// Actions are the reconciler triggers the editor can fire.
type Actions interface {
	OpenViaDialog(ctx context.Context)
	SaveRequested(ctx context.Context)
	NewRequested(ctx context.Context)
	ToggleMode()
	EditedAt(revision uint64, text string)
}

// Dispatcher runs triggers off the UI goroutine.
type Dispatcher interface {
	Submit(task reconciler.Task) bool
}

type HTMLRenderer interface {
	Render(markdown string) (string, error)
}

type TerminalRenderer interface {
	Render(markdown string, width int) (string, error)
}

type Lister interface {
	WalkMarkdown(root string, excludeDirs []string) ([]string, error)
}

type Options struct {
	Actions       Actions
	Dispatcher    Dispatcher
	HTML          HTMLRenderer
	Terminal      TerminalRenderer
	Files         Lister
	Root          string
	StatusTimeout time.Duration
	Clipboard     func(string) error
}

type overlay int

const (
	overlayNone overlay = iota
	overlayConfirm
	overlayOpen
	overlaySave
	overlayQuit
)

type fileItem struct {
	path  string
	label string
}

func (i fileItem) Title() string       { return i.label }
func (i fileItem) Description() string { return i.path }
func (i fileItem) FilterValue() string { return i.label }

type Model struct {
	actions       Actions
	dispatcher    Dispatcher
	html          HTMLRenderer
	terminal      TerminalRenderer
	files         Lister
	root          string
	statusTimeout time.Duration
	copyToClip    func(string) error

	keys       *keyMap
	promptKeys *promptKeyMap
	help       help.Model
	area       textarea.Model
	view       viewport.Model
	picker     list.Model
	input      textinput.Model

	doc       document.Snapshot
	mode      document.ViewMode
	preview   document.Preview
	outline   parser.Summary
	status    string
	statusSeq int

	overlay        overlay
	confirmMessage string
	confirmReply   chan bool
	pathReply      chan pathReply

	// quit prompt to show again once a reconciler prompt that covered it
	// has been answered
	resumeQuit bool

	width  int
	height int
}

func New(opts Options) *Model {
	if opts.StatusTimeout <= 0 {
		opts.StatusTimeout = defaultStatusTimeout
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Root == "" {
		opts.Root = "."
	}

	area := textarea.New()
	area.Placeholder = "Start writing..."
	area.CharLimit = 0
	area.ShowLineNumbers = false

	input := textinput.New()
	input.Prompt = "Save as: "

	picker := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	picker.Title = "Open markdown file"
	picker.SetShowStatusBar(false)
	picker.DisableQuitKeybindings()

	return &Model{
		actions:       opts.Actions,
		dispatcher:    opts.Dispatcher,
		html:          opts.HTML,
		terminal:      opts.Terminal,
		files:         opts.Files,
		root:          opts.Root,
		statusTimeout: opts.StatusTimeout,
		copyToClip:    opts.Clipboard,
		keys:          newKeyMap(),
		promptKeys:    newPromptKeyMap(),
		help:          help.New(),
		area:          area,
		view:          viewport.New(0, 0),
		picker:        picker,
		input:         input,
		mode:          document.ModeRender,
	}
}

func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case documentMsg:
		m.applyDocument(msg.doc)
		return m, nil

	case previewMsg:
		m.preview = msg.preview
		m.refreshPreview()
		return m, nil

	case modeMsg:
		return m, m.applyMode(msg.mode)

	case statusMsg:
		return m, m.setStatus(msg.text)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case confirmRequestMsg:
		if m.overlay == overlayQuit {
			m.resumeQuit = true
		}
		m.overlay = overlayConfirm
		m.confirmMessage = msg.message
		m.confirmReply = msg.reply
		m.area.Blur()
		return m, nil

	case openRequestMsg:
		return m, m.beginOpen(msg.reply)

	case saveRequestMsg:
		return m, m.beginSave(msg.suggested, msg.reply)

	case tea.KeyMsg:
		if m.overlay != overlayNone {
			return m.updateOverlay(msg)
		}
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	switch m.overlay {
	case overlayOpen:
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	case overlaySave:
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m.forward(msg)
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		if m.dirty() {
			m.overlay = overlayQuit
			m.confirmMessage = msgConfirmQuit
			m.area.Blur()
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.open):
		m.dispatch(func(ctx context.Context) { m.actions.OpenViaDialog(ctx) })
		return m, nil

	case key.Matches(msg, m.keys.save):
		m.dispatch(func(ctx context.Context) { m.actions.SaveRequested(ctx) })
		return m, nil

	case key.Matches(msg, m.keys.newDoc):
		m.dispatch(func(ctx context.Context) { m.actions.NewRequested(ctx) })
		return m, nil

	case key.Matches(msg, m.keys.toggleMode):
		m.dispatch(func(context.Context) { m.actions.ToggleMode() })
		return m, nil

	case key.Matches(msg, m.keys.copyHTML):
		return m, m.copyHTML()

	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		m.setSize(m.width, m.height)
		return m, nil
	}

	return m.forward(msg)
}

// forward hands msg to the active pane. Text changes become edits against
// the revision the textarea was loaded from.
func (m *Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.mode == document.ModeRender {
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}

	before := m.area.Value()
	m.area, cmd = m.area.Update(msg)
	if after := m.area.Value(); after != before {
		m.outline = parser.Parse([]byte(after))
		rev := m.doc.Revision
		m.dispatch(func(context.Context) { m.actions.EditedAt(rev, after) })
	}
	return m, cmd
}

func (m *Model) updateOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) && m.overlay != overlayQuit {
		m.cancelPending()
		if m.dirty() {
			m.overlay = overlayQuit
			m.confirmMessage = msgConfirmQuit
			return m, nil
		}
		return m, tea.Quit
	}

	switch m.overlay {
	case overlayConfirm, overlayQuit:
		return m.updateConfirm(msg)
	case overlayOpen:
		return m.updateOpen(msg)
	case overlaySave:
		return m.updateSave(msg)
	}
	return m, nil
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var answer bool
	switch {
	case key.Matches(msg, m.promptKeys.confirm):
		answer = true
	case key.Matches(msg, m.promptKeys.decline), key.Matches(msg, m.promptKeys.cancel):
		answer = false
	case key.Matches(msg, m.keys.quit) && m.overlay == overlayQuit:
		answer = true
	default:
		return m, nil
	}

	if m.overlay == overlayQuit {
		m.closeOverlay()
		if answer {
			return m, tea.Quit
		}
		return m, m.focusPane()
	}

	reply, resume := m.confirmReply, m.resumeQuit
	m.closeOverlay()
	if reply != nil {
		reply <- answer
	}
	if resume && m.dirty() {
		m.overlay = overlayQuit
		m.confirmMessage = msgConfirmQuit
		m.area.Blur()
		return m, nil
	}
	return m, m.focusPane()
}

func (m *Model) beginOpen(reply chan pathReply) tea.Cmd {
	root := m.root
	if m.doc.Path != "" {
		root = filepath.Dir(m.doc.Path)
	}

	var paths []string
	var err error
	if m.files != nil {
		paths, err = m.files.WalkMarkdown(root, pickerExcludes)
	}
	if err != nil {
		reply <- pathReply{err: err}
		return m.setStatus("Open failed: " + document.KindOf(err).String())
	}
	if len(paths) == 0 {
		reply <- pathReply{err: document.ErrCancelled}
		return m.setStatus("No markdown files under " + root)
	}

	items := make([]list.Item, len(paths))
	for i, p := range paths {
		items[i] = fileItem{path: p, label: fzf.Label(root, p)}
	}

	m.overlay = overlayOpen
	m.pathReply = reply
	m.area.Blur()
	m.picker.ResetFilter()
	m.picker.Select(0)
	return m.picker.SetItems(items)
}

func (m *Model) updateOpen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	filtering := m.picker.FilterState() == list.Filtering

	if !filtering {
		switch {
		case key.Matches(msg, m.promptKeys.cancel):
			m.answerPath(pathReply{err: document.ErrCancelled})
			return m, m.focusPane()
		case key.Matches(msg, m.promptKeys.submit):
			item, ok := m.picker.SelectedItem().(fileItem)
			if !ok {
				return m, nil
			}
			m.answerPath(pathReply{path: item.path})
			return m, m.focusPane()
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) beginSave(suggested string, reply chan pathReply) tea.Cmd {
	m.overlay = overlaySave
	m.pathReply = reply
	m.area.Blur()
	m.input.SetValue(suggested)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) updateSave(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.promptKeys.cancel):
		m.answerPath(pathReply{err: document.ErrCancelled})
		return m, m.focusPane()
	case key.Matches(msg, m.promptKeys.submit):
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			m.answerPath(pathReply{err: document.ErrCancelled})
			return m, m.focusPane()
		}
		m.answerPath(pathReply{path: m.resolve(name)})
		return m, m.focusPane()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) resolve(name string) string {
	if strings.HasPrefix(name, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			name = filepath.Join(home, name[2:])
		}
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	base := m.root
	if m.doc.Path != "" {
		base = filepath.Dir(m.doc.Path)
	}
	p, err := filepath.Abs(filepath.Join(base, name))
	if err != nil {
		return filepath.Join(base, name)
	}
	return p
}

func (m *Model) answerPath(r pathReply) {
	reply := m.pathReply
	m.closeOverlay()
	if reply != nil {
		reply <- r
	}
}

// cancelPending releases a reconciler goroutine waiting on an open prompt.
func (m *Model) cancelPending() {
	if m.confirmReply != nil {
		m.confirmReply <- false
	}
	if m.pathReply != nil {
		m.pathReply <- pathReply{err: document.ErrCancelled}
	}
	m.closeOverlay()
}

func (m *Model) closeOverlay() {
	m.overlay = overlayNone
	m.resumeQuit = false
	m.confirmMessage = ""
	m.confirmReply = nil
	m.pathReply = nil
	m.input.Blur()
}

func (m *Model) applyDocument(doc document.Snapshot) {
	replaced := doc.Revision != m.doc.Revision
	m.doc = doc
	if replaced {
		m.area.SetValue(doc.Buffer)
		m.outline = parser.Parse([]byte(doc.Buffer))
		m.view.GotoTop()
	}
}

func (m *Model) applyMode(mode document.ViewMode) tea.Cmd {
	m.mode = mode
	if m.overlay != overlayNone {
		return nil
	}
	return m.focusPane()
}

func (m *Model) focusPane() tea.Cmd {
	if m.mode == document.ModeEdit {
		return m.area.Focus()
	}
	m.area.Blur()
	return nil
}

func (m *Model) refreshPreview() {
	if m.preview.Err != nil {
		m.view.SetContent(errorStyle.Render("Markdown render error:\n" + m.preview.Err.Error()))
		return
	}
	if m.terminal == nil {
		m.view.SetContent(m.preview.Source)
		return
	}
	out, err := m.terminal.Render(m.preview.Source, m.view.Width)
	if err != nil {
		m.view.SetContent(errorStyle.Render("Markdown render error:\n" + err.Error()))
		return
	}
	m.view.SetContent(out)
}

func (m *Model) copyHTML() tea.Cmd {
	if m.html == nil {
		return nil
	}
	out, err := m.html.Render(m.area.Value())
	if err != nil {
		return m.setStatus("Copy failed: " + document.KindOf(err).String())
	}
	if err := m.copyToClip(out); err != nil {
		return m.setStatus("Copy failed: clipboard unavailable")
	}
	return m.setStatus("Copied HTML")
}

func (m *Model) setStatus(text string) tea.Cmd {
	m.status = text
	m.statusSeq++
	seq := m.statusSeq
	return tea.Tick(m.statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (m *Model) dispatch(task reconciler.Task) {
	if m.dispatcher == nil || m.actions == nil {
		return
	}
	m.dispatcher.Submit(task)
}

// dirty compares against the textarea so keystrokes still queued for the
// reconciler count.
func (m *Model) dirty() bool {
	return m.area.Value() != m.doc.LastSaved
}

func (m *Model) setSize(width, height int) {
	m.width, m.height = width, height

	frameW, frameH := appStyle.GetFrameSize()
	innerW := max(width-frameW, 10)
	helpH := lipgloss.Height(m.help.View(m.keys))
	paneH := max(height-frameH-helpH-4, 3)

	m.area.SetWidth(innerW)
	m.area.SetHeight(paneH)
	m.view.Width = innerW
	m.view.Height = paneH
	m.picker.SetSize(innerW, paneH)
	m.input.Width = innerW - len(m.input.Prompt) - 1
	m.help.Width = innerW

	m.refreshPreview()
}

func (m *Model) View() string {
	header := m.viewHeader()

	var body string
	switch m.overlay {
	case overlayConfirm, overlayQuit:
		body = promptStyle.Render(
			promptTitleStyle.Render(m.confirmMessage) + "\n\n" + "[y] yes   [n] no",
		)
	case overlayOpen:
		body = m.picker.View()
	case overlaySave:
		body = promptStyle.Render(m.input.View() + "\n\n" + "enter to save, esc to cancel")
	default:
		if m.mode == document.ModeEdit {
			body = paneStyle.Render(m.area.View())
		} else {
			body = paneStyle.Render(m.view.View())
		}
	}

	return appStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		body,
		statusStyle.Render(m.status),
		m.help.View(m.keys),
	))
}

func (m *Model) viewHeader() string {
	name := untitled
	if m.doc.Path != "" {
		name = filepath.Base(m.doc.Path)
	}

	title := titleStyle.Render(name)
	if m.dirty() {
		title += dirtyStyle.Render("●")
	}
	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		title,
		" ",
		modeStyle.Render(strings.ToUpper(m.mode.String())),
		" ",
		statsStyle.Render(m.stats()),
	)
}

func (m *Model) stats() string {
	out := fmt.Sprintf("%d words", m.outline.Words)
	if done, total := m.outline.TaskCounts(); total > 0 {
		out += fmt.Sprintf(" · %d/%d tasks", done, total)
	}
	return out
}

// Status is the transient message currently shown, for tests and callers.
func (m *Model) Status() string {
	return m.status
}
