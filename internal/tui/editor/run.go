package editor

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/Paintersrp/mdw/internal/document"
	"github.com/Paintersrp/mdw/internal/preview"
	"github.com/Paintersrp/mdw/internal/reconciler"
	"github.com/Paintersrp/mdw/internal/state"
	"github.com/Paintersrp/mdw/internal/watch"
)

type RunOptions struct {
	// Path is opened on start when set.
	Path string
	// Mode overrides the persisted view mode when valid.
	Mode document.ViewMode
	// ServeAddr starts the browser preview when set.
	ServeAddr string
}

// Run starts the editor and blocks until the user quits.
func Run(ctx context.Context, s *state.State, opts RunOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	settings := state.CurrentSettings()
	mode := settings.ViewMode
	if opts.Mode.Valid() {
		mode = opts.Mode
	}

	root, err := os.Getwd()
	if err != nil {
		root = "."
	}

	queue := reconciler.NewQueue(s.Logger.With("component", "queue"))
	var rec *reconciler.Reconciler

	model := New(Options{
		Dispatcher:    queue,
		HTML:          s.HTML,
		Terminal:      s.Terminal,
		Files:         s.Handler,
		Root:          root,
		StatusTimeout: settings.StatusTimeout,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())

	var server *preview.Server
	var publisher reconciler.Publisher
	if opts.ServeAddr != "" {
		server = preview.New(preview.Options{CSS: s.HTML.CSS(), Logger: s.Logger.With("component", "preview")})
		publisher = server
	}

	bridge := NewBridge(program)
	watcher := s.NewWatchController(func(ev watch.ChangeEvent) {
		queue.Submit(func(ctx context.Context) {
			rec.ExternalChangeDetected(ctx, ev.Path)
		})
	})

	rec = reconciler.New(reconciler.Options{
		Files:         s.Handler,
		Dialogs:       bridge,
		Confirmer:     bridge,
		Renderer:      s.HTML,
		Watcher:       watcher,
		Surface:       bridge,
		Preferences:   s.Config,
		Publisher:     publisher,
		Mode:          mode,
		SuggestedName: settings.SuggestedName,
		Logger:        s.Logger.With("component", "reconciler"),
	})
	model.actions = rec

	queue.Submit(func(context.Context) { rec.Start() })
	if opts.Path != "" {
		path := opts.Path
		queue.Submit(func(ctx context.Context) { rec.OpenPath(ctx, path) })
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := queue.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if server != nil {
		g.Go(func() error {
			return server.ListenAndServe(gctx, opts.ServeAddr)
		})
	}

	g.Go(func() error {
		go func() {
			<-gctx.Done()
			program.Quit()
		}()
		_, err := program.Run()
		cancel()
		queue.Close()
		rec.Close()
		return err
	})

	return g.Wait()
}
