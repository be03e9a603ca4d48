package watch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// RawKind tags an OS-level notification.
type RawKind int

const (
	KindChanged RawKind = iota
	// KindReplaced means the watched path itself was renamed or removed, as
	// happens with write-to-temp-then-rename saves.
	KindReplaced
)

func (k RawKind) String() string {
	if k == KindReplaced {
		return "rename"
	}
	return "change"
}

type RawEvent struct {
	Path string
	Kind RawKind
}

// Subscription is a live OS-level watch handle.
type Subscription interface {
	Close() error
}

// Subscriber establishes OS-level watches on single files.
type Subscriber interface {
	Subscribe(path string, onEvent func(RawEvent)) (Subscription, error)
}

// FSNotify is the fsnotify backed Subscriber. Each subscription owns its own
// fsnotify.Watcher so closing one never disturbs another.
type FSNotify struct {
	logger *slog.Logger
}

func NewFSNotify(logger *slog.Logger) *FSNotify {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FSNotify{logger: logger}
}

func (f *FSNotify) Subscribe(path string, onEvent func(RawEvent)) (Subscription, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := w.Add(path); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	sub := &fsSubscription{
		watcher: w,
		path:    path,
		done:    make(chan struct{}),
		logger:  f.logger,
	}
	sub.wg.Add(1)
	go sub.loop(onEvent)

	return sub, nil
}

type fsSubscription struct {
	watcher *fsnotify.Watcher
	path    string
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	logger  *slog.Logger
}

func (s *fsSubscription) loop(onEvent func(RawEvent)) {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			raw, ok := convertEvent(s.path, event)
			if !ok {
				continue
			}
			onEvent(raw)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				s.logger.Warn("fsnotify error", slog.String("path", s.path), slog.String("error", err.Error()))
			}
		}
	}
}

// Close stops the event loop and waits for it to exit. Safe to call more
// than once; the callback is never invoked after Close returns.
func (s *fsSubscription) Close() error {
	var closeErr error
	s.once.Do(func() {
		close(s.done)
		closeErr = s.watcher.Close()
		s.wg.Wait()
	})
	if errors.Is(closeErr, fsnotify.ErrClosed) {
		return nil
	}
	return closeErr
}

func convertEvent(path string, event fsnotify.Event) (RawEvent, bool) {
	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		return RawEvent{Path: path, Kind: KindReplaced}, true
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		return RawEvent{Path: path, Kind: KindChanged}, true
	default:
		// chmod-only noise
		return RawEvent{}, false
	}
}
