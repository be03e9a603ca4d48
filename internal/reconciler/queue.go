package reconciler

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Task is one unit of work run by a Queue.
type Task func(ctx context.Context)

// Queue runs submitted tasks one at a time in submission order. Submit never
// blocks, so a UI event loop can hand work off without stalling on prompts.
type Queue struct {
	logger *slog.Logger

	mu     sync.Mutex
	items  []Task
	closed bool
	signal chan struct{}
	done   chan struct{}
}

func NewQueue(logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Queue{
		logger: logger,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Submit appends task to the queue. It reports false once the queue is closed.
func (q *Queue) Submit(task Task) bool {
	if task == nil {
		return false
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, task)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops Run after the task in progress. Pending tasks are dropped.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.items = nil
	close(q.done)
}

// Run executes tasks until ctx is cancelled or Close is called.
func (q *Queue) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		task, ok := q.next()
		if ok {
			q.run(ctx, task)
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.done:
			return nil
		case <-q.signal:
		}
	}
}

func (q *Queue) next() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || len(q.items) == 0 {
		return nil, false
	}
	task := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return task, true
}

func (q *Queue) run(ctx context.Context, task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			q.logger.Error("task panicked", "panic", rec)
		}
	}()
	task(ctx)
}
