// Package reconciler keeps the open document, its file on disk and the view
// in agreement. Every trigger runs under one lock, so confirmation prompts and
// dialogs suspend all other triggers until they are answered.
package reconciler

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/Paintersrp/mdw/internal/document"
	"github.com/Paintersrp/mdw/internal/pathutil"
)

const (
	DefaultSuggestedName = "note.md"

	MsgConfirmOpen   = "You have unsaved edits.\n\nOpen another file and discard them?"
	MsgConfirmNew    = "You have unsaved edits.\n\nStart a new document and discard them?"
	MsgConfirmReload = "This file changed on disk.\n\nReload and discard your unsaved edits?"

	StatusOpened      = "Opened"
	StatusSaved       = "Saved"
	StatusReloaded    = "Reloaded from disk"
	StatusFileMissing = "File missing on disk"
	StatusNew         = "New document"
)

type Files interface {
	Read(path string) (string, error)
	Write(path, content string) error
}

// Dialogs return document.ErrCancelled (or an empty path) when the user
// backs out.
type Dialogs interface {
	ChooseOpenPath(ctx context.Context) (string, error)
	ChooseSavePath(ctx context.Context, suggested string) (string, error)
}

// Confirmer answers yes/no questions. A cancelled context counts as no.
type Confirmer interface {
	Confirm(ctx context.Context, message string) bool
}

type Renderer interface {
	Render(markdown string) (string, error)
}

type Watcher interface {
	Watch(path string)
	Stop()
}

type Surface interface {
	ShowDocument(doc document.Snapshot)
	ShowPreview(preview document.Preview)
	ShowStatus(msg string)
	ShowMode(mode document.ViewMode)
}

// Publisher receives the rendered HTML of every buffer change regardless of
// the view mode, e.g. the browser preview server.
type Publisher interface {
	Publish(html string)
}

type Preferences interface {
	SetViewMode(mode document.ViewMode) error
}

type Options struct {
	Files       Files
	Dialogs     Dialogs
	Confirmer   Confirmer
	Renderer    Renderer
	Watcher     Watcher
	Surface     Surface
	Preferences Preferences
	Publisher   Publisher

	Mode          document.ViewMode
	SuggestedName string
	Logger        *slog.Logger
}

type Reconciler struct {
	files     Files
	dialogs   Dialogs
	confirmer Confirmer
	renderer  Renderer
	watcher   Watcher
	surface   Surface
	prefs     Preferences
	publisher Publisher
	suggested string
	logger    *slog.Logger

	mu      sync.Mutex
	session *document.Session
}

func New(opts Options) *Reconciler {
	if opts.SuggestedName == "" {
		opts.SuggestedName = DefaultSuggestedName
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Reconciler{
		files:     opts.Files,
		dialogs:   opts.Dialogs,
		confirmer: opts.Confirmer,
		renderer:  opts.Renderer,
		watcher:   opts.Watcher,
		surface:   opts.Surface,
		prefs:     opts.Preferences,
		publisher: opts.Publisher,
		suggested: pathutil.EnsureMarkdownExt(opts.SuggestedName),
		logger:    opts.Logger,
		session:   document.NewSession(opts.Mode),
	}
}

// Start pushes the initial empty document and mode to the surface.
func (r *Reconciler) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.showMode()
	r.showDocument()
	r.refreshPreview()
}

func (r *Reconciler) Snapshot() document.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Snapshot()
}

// OpenRequested replaces the session with content loaded from path, asking
// first when that would discard unsaved edits.
func (r *Reconciler) OpenRequested(ctx context.Context, path, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.confirmDiscard(ctx, MsgConfirmOpen) {
		return
	}
	r.load(path, content, StatusOpened)
}

// OpenPath reads path and opens it. Used for launch arguments.
func (r *Reconciler) OpenPath(ctx context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.confirmDiscard(ctx, MsgConfirmOpen) {
		return
	}
	content, err := r.files.Read(path)
	if err != nil {
		r.logger.Warn("open failed", "path", path, "error", err)
		r.status("Open failed: " + document.KindOf(err).String())
		return
	}
	r.load(path, content, StatusOpened)
}

// OpenViaDialog asks for a file and opens it.
func (r *Reconciler) OpenViaDialog(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.confirmDiscard(ctx, MsgConfirmOpen) {
		return
	}

	path, err := r.dialogs.ChooseOpenPath(ctx)
	if err != nil || path == "" {
		if err != nil && !document.IsCancelled(err) {
			r.logger.Warn("open dialog failed", "error", err)
		}
		return
	}

	content, err := r.files.Read(path)
	if err != nil {
		r.logger.Warn("open failed", "path", path, "error", err)
		r.status("Open failed: " + document.KindOf(err).String())
		return
	}
	r.load(path, content, StatusOpened)
}

// NewRequested replaces the session with an empty, pathless document.
func (r *Reconciler) NewRequested(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.confirmDiscard(ctx, MsgConfirmNew) {
		return
	}

	r.watcher.Stop()
	r.session.Replace("", "")
	r.showDocument()
	r.refreshPreview()
	r.status(StatusNew)
}

// Edited records text typed by the user.
func (r *Reconciler) Edited(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edited(text)
}

// EditedAt records text only if it was produced against the current
// revision. Keystrokes queued before an open or reload are dropped.
func (r *Reconciler) EditedAt(revision uint64, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if revision != r.session.Revision {
		r.logger.Debug("dropping stale edit", "revision", revision, "current", r.session.Revision)
		return
	}
	r.edited(text)
}

func (r *Reconciler) edited(text string) {
	if text == r.session.Buffer {
		return
	}
	r.session.Buffer = text
	r.showDocument()
	r.refreshPreview()
}

// SaveRequested writes the buffer to the document's path, asking for one
// when the document has never been saved.
func (r *Reconciler) SaveRequested(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dest := r.session.Path
	if dest == "" {
		chosen, err := r.dialogs.ChooseSavePath(ctx, r.suggested)
		if err != nil || chosen == "" {
			if err != nil && !document.IsCancelled(err) {
				r.logger.Warn("save dialog failed", "error", err)
			}
			return
		}
		dest = pathutil.EnsureMarkdownExt(chosen)
	}

	content := r.session.Buffer
	if err := r.files.Write(dest, content); err != nil {
		r.logger.Warn("save failed", "path", dest, "error", err)
		r.status("Save failed: " + document.KindOf(err).String())
		return
	}

	r.session.MarkSaved(dest, content)
	r.watcher.Watch(dest)
	r.logger.Info("document saved", "path", dest)
	r.showDocument()
	r.status(StatusSaved)
}

// ExternalChangeDetected reconciles the session with the file on disk after
// the watch reported a change to path.
func (r *Reconciler) ExternalChangeDetected(ctx context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.session.HasPath() || path != r.session.Path {
		return
	}

	fresh, err := r.files.Read(path)
	if err != nil {
		r.logger.Warn("reload failed", "path", path, "error", err)
		if document.KindOf(err) == document.KindNotFound {
			r.status(StatusFileMissing)
		} else {
			r.status("Reload failed: " + document.KindOf(err).String())
		}
		return
	}

	s := r.session
	switch {
	case !s.Dirty() && fresh == s.Buffer:
		// Usually our own save echoing back.
		s.LastSaved = fresh
		return
	case !s.Dirty():
		r.reload(fresh)
		return
	case fresh == s.LastSaved:
		// Disk still holds what we last loaded or saved, typically the
		// echo of a save followed by more typing. Reloading would only
		// replace the newer edits with content the session already
		// has, so there is nothing to ask about.
		return
	}

	if !r.confirmer.Confirm(ctx, MsgConfirmReload) {
		r.logger.Info("kept local edits over external change", "path", path)
		return
	}
	r.reload(fresh)
}

// ToggleMode flips between Edit and Render.
func (r *Reconciler) ToggleMode() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setMode(r.session.Mode.Toggle())
}

func (r *Reconciler) SetViewMode(mode document.ViewMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setMode(mode)
}

// Close releases the watch when the window goes away.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watcher.Stop()
}

func (r *Reconciler) setMode(mode document.ViewMode) {
	if !mode.Valid() {
		mode = document.ModeRender
	}
	if mode == document.ModeRender {
		r.render(true, false)
	}
	r.session.Mode = mode
	r.showMode()

	if r.prefs == nil {
		return
	}
	if err := r.prefs.SetViewMode(mode); err != nil {
		r.logger.Warn("failed to persist view mode", "mode", mode, "error", err)
		r.status("Could not save view mode: " + document.KindOf(err).String())
	}
}

func (r *Reconciler) confirmDiscard(ctx context.Context, msg string) bool {
	if !r.session.Dirty() {
		return true
	}
	return r.confirmer.Confirm(ctx, msg)
}

func (r *Reconciler) load(path, content, status string) {
	r.session.Replace(path, content)
	r.watcher.Watch(path)
	r.logger.Info("document loaded", "path", path, "bytes", len(content))
	r.showDocument()
	r.refreshPreview()
	r.status(status)
}

func (r *Reconciler) reload(fresh string) {
	r.session.Replace(r.session.Path, fresh)
	r.logger.Info("reloaded from disk", "path", r.session.Path)
	r.showDocument()
	r.refreshPreview()
	r.status(StatusReloaded)
}

// refreshPreview renders the buffer for the surface while it shows the
// preview, and for the publisher whenever one is attached.
func (r *Reconciler) refreshPreview() {
	r.render(r.session.Mode == document.ModeRender, true)
}

func (r *Reconciler) render(show, publish bool) {
	show = show && r.surface != nil
	publish = publish && r.publisher != nil
	if r.renderer == nil || (!show && !publish) {
		return
	}

	p := document.Preview{Source: r.session.Buffer, Revision: r.session.Revision}
	out, err := safeRender(r.renderer, r.session.Buffer)
	if err != nil {
		r.logger.Debug("render failed", "error", err)
		p.Err = err
		p.HTML = errorHTML(err)
	} else {
		p.HTML = out
	}

	if show {
		r.surface.ShowPreview(p)
	}
	if publish {
		r.publisher.Publish(p.HTML)
	}
}

func (r *Reconciler) showDocument() {
	if r.surface != nil {
		r.surface.ShowDocument(r.session.Snapshot())
	}
}

func (r *Reconciler) showMode() {
	if r.surface != nil {
		r.surface.ShowMode(r.session.Mode)
	}
}

func (r *Reconciler) status(msg string) {
	if r.surface != nil {
		r.surface.ShowStatus(msg)
	}
}
