// Package watch keeps a single debounced filesystem watch on the open
// document.
package watch

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultDebounce         = 250 * time.Millisecond
	DefaultResubscribeDelay = 500 * time.Millisecond
)

// ChangeEvent is the coalesced "file changed" signal.
type ChangeEvent struct {
	Path       string
	Kind       RawKind
	ObservedAt time.Time
}

type Options struct {
	Debounce         time.Duration
	ResubscribeDelay time.Duration
	Logger           *slog.Logger
}

// Controller owns at most one active watch. Bursts of raw notifications are
// coalesced into one ChangeEvent per quiet period, and a watch whose file is
// swapped out by a rename gets a single re-subscription attempt.
type Controller struct {
	subscriber Subscriber
	onChange   func(ChangeEvent)
	debounce   time.Duration
	resubDelay time.Duration
	logger     *slog.Logger

	mu       sync.Mutex
	path     string
	sub      Subscription
	gen      uint64
	timer    *time.Timer
	lastKind RawKind
	retry    *time.Timer
}

func NewController(subscriber Subscriber, onChange func(ChangeEvent), opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.ResubscribeDelay <= 0 {
		opts.ResubscribeDelay = DefaultResubscribeDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Controller{
		subscriber: subscriber,
		onChange:   onChange,
		debounce:   opts.Debounce,
		resubDelay: opts.ResubscribeDelay,
		logger:     opts.Logger,
	}
}

// Watch drops any existing watch and starts watching path. A rejected path
// leaves the controller idle; the document stays usable without auto-reload.
func (c *Controller) Watch(path string) {
	c.mu.Lock()
	old, gen := c.retargetLocked(path)
	c.mu.Unlock()

	c.attach(gen, path, old)
}

// retargetLocked detaches the current watch and records path as the new
// target. The returned generation identifies the new target.
func (c *Controller) retargetLocked(path string) (Subscription, uint64) {
	old := c.detachLocked()
	c.path = path
	return old, c.gen
}

// attach closes the previous subscription and subscribes to path, unless a
// newer Watch or Stop has moved the controller past gen in the meantime.
func (c *Controller) attach(gen uint64, path string, old Subscription) {
	closeSubscription(old, c.logger)
	if path == "" {
		return
	}

	sub, err := c.subscriber.Subscribe(path, func(ev RawEvent) {
		c.handleRaw(gen, ev)
	})

	c.mu.Lock()
	if err != nil {
		if c.gen == gen {
			c.path = ""
		}
		c.mu.Unlock()
		c.logger.Debug("watch rejected", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	if c.gen != gen {
		// superseded while subscribing
		c.mu.Unlock()
		closeSubscription(sub, c.logger)
		return
	}
	c.sub = sub
	c.mu.Unlock()

	c.logger.Debug("watching", slog.String("path", path))
}

// Stop cancels pending timers and releases the watch. Idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	old := c.detachLocked()
	c.mu.Unlock()

	closeSubscription(old, c.logger)
}

// Path returns the watched path, or "" when idle.
func (c *Controller) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sub == nil {
		return ""
	}
	return c.path
}

// Active reports whether an OS-level watch is currently held.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sub != nil
}

// detachLocked invalidates every timer and callback belonging to the current
// watch and hands back the subscription so it can be closed outside the lock.
func (c *Controller) detachLocked() Subscription {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	old := c.sub
	c.sub = nil
	c.path = ""
	return old
}

func (c *Controller) handleRaw(gen uint64, ev RawEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}

	c.lastKind = ev.Kind
	if c.timer != nil {
		c.timer.Stop()
	}
	path := c.path
	c.timer = time.AfterFunc(c.debounce, func() {
		c.fire(gen, path)
	})
}

func (c *Controller) fire(gen uint64, path string) {
	c.mu.Lock()
	if gen != c.gen || path != c.path {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	kind := c.lastKind
	if kind == KindReplaced {
		if c.retry != nil {
			c.retry.Stop()
		}
		c.retry = time.AfterFunc(c.resubDelay, func() {
			c.resubscribe(gen, path)
		})
	}
	c.mu.Unlock()

	c.logger.Debug("file changed", slog.String("path", path), slog.String("kind", kind.String()))

	if c.onChange != nil {
		c.onChange(ChangeEvent{Path: path, Kind: kind, ObservedAt: time.Now()})
	}
}

// resubscribe re-targets path only if nothing has changed the watch since
// the rename was seen. The check and the re-target share one critical
// section so a concurrent Watch always wins.
func (c *Controller) resubscribe(gen uint64, path string) {
	c.mu.Lock()
	if gen != c.gen || path != c.path {
		c.mu.Unlock()
		return
	}
	c.retry = nil
	old, next := c.retargetLocked(path)
	c.mu.Unlock()

	c.attach(next, path, old)
}

func closeSubscription(sub Subscription, logger *slog.Logger) {
	if sub == nil {
		return
	}
	if err := sub.Close(); err != nil {
		logger.Debug("closing watch", slog.String("error", err.Error()))
	}
}
