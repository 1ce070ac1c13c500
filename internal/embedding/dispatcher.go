package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"amateurs/internal/models"
	"amateurs/internal/observability"

	"github.com/panjf2000/ants/v2"
)

// ErrQueueFull is logged when a task is dropped because the queue is full.
var ErrQueueFull = errors.New("embedding queue is full")

const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// DefaultQueueSize bounds the tasks waiting for a free worker.
const DefaultQueueSize = 1024

// Dispatcher runs indexer calls on a worker pool without blocking the caller.
// Tasks wait in a bounded queue while every worker is busy; a full queue
// drops the task. Failures are logged and counted. Tasks are never retried
// and nothing is reported back to the caller.
type Dispatcher struct {
	pool    *ants.Pool
	indexer Indexer
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	queue   chan task
	drained chan struct{}
}

type task struct {
	ctx    context.Context
	op     string
	fields map[string]interface{}
	run    func()
}

// NewDispatcher starts a pool of workers goroutines. Each task gets its own
// timeout, detached from the request that scheduled it.
func NewDispatcher(indexer Indexer, workers int, timeout time.Duration) (*Dispatcher, error) {
	return newDispatcher(indexer, workers, DefaultQueueSize, timeout)
}

func newDispatcher(indexer Indexer, workers, queueSize int, timeout time.Duration) (*Dispatcher, error) {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	pool, err := ants.NewPool(workers,
		ants.WithPanicHandler(func(p interface{}) {
			observability.GlobalLogger.Error("embedding task panicked", slog.Any("panic", p))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding pool: %w", err)
	}
	d := &Dispatcher{
		pool:    pool,
		indexer: indexer,
		timeout: timeout,
		queue:   make(chan task, queueSize),
		drained: make(chan struct{}),
	}
	go d.feed()
	return d, nil
}

// DispatchCreate schedules indexing of a new post. post is copied.
func (d *Dispatcher) DispatchCreate(ctx context.Context, post models.Post) {
	d.submit(ctx, OpCreate, post.ID, func(taskCtx context.Context) error {
		return d.indexer.Create(taskCtx, post)
	})
}

// DispatchUpdate schedules re-indexing of an edited post. post is copied.
func (d *Dispatcher) DispatchUpdate(ctx context.Context, post models.Post) {
	d.submit(ctx, OpUpdate, post.ID, func(taskCtx context.Context) error {
		return d.indexer.Update(taskCtx, post)
	})
}

// DispatchDelete schedules removal of a post's index entry.
func (d *Dispatcher) DispatchDelete(ctx context.Context, postID uint) {
	d.submit(ctx, OpDelete, postID, func(taskCtx context.Context) error {
		return d.indexer.DeleteByPostID(taskCtx, postID)
	})
}

func (d *Dispatcher) submit(parent context.Context, op string, postID uint, fn func(context.Context) error) {
	correlationID := observability.ExtractCorrelationID(parent)
	fields := map[string]interface{}{"post_id": postID}
	t := task{
		ctx:    observability.WithCorrelationID(context.Background(), correlationID),
		op:     op,
		fields: fields,
	}
	t.run = func() {
		ctx, cancel := context.WithTimeout(t.ctx, d.timeout)
		defer cancel()

		start := time.Now()
		observability.LogAsyncOperationStart(ctx, "embedding."+op, fields)
		err := runTask(ctx, fn)
		observability.ObserveEmbeddingTask(op, start, err)
		if err != nil {
			observability.LogAsyncOperationError(ctx, "embedding."+op, err, fields)
			return
		}
		observability.LogAsyncOperationEnd(ctx, "embedding."+op, fields)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.reject(t, ants.ErrPoolClosed)
		return
	}
	select {
	case d.queue <- t:
	default:
		d.reject(t, ErrQueueFull)
	}
}

// feed hands queued tasks to the pool, waiting for a free worker.
func (d *Dispatcher) feed() {
	defer close(d.drained)
	for t := range d.queue {
		if err := d.pool.Submit(t.run); err != nil {
			d.reject(t, err)
		}
	}
}

func (d *Dispatcher) reject(t task, err error) {
	observability.EmbeddingTasksTotal.WithLabelValues(t.op, "rejected").Inc()
	observability.LogAsyncOperationError(t.ctx, "embedding."+t.op, err, t.fields)
}

// runTask converts a panic in fn into an error so it is counted like any failure.
func runTask(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("embedding task panicked: %v", r)
		}
	}()
	return fn(ctx)
}

// Running reports the number of tasks currently executing.
func (d *Dispatcher) Running() int {
	return d.pool.Running()
}

// Pending reports the number of tasks waiting for a worker.
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

// Close stops accepting tasks, waits up to timeout for queued and running
// tasks and releases the pool.
func (d *Dispatcher) Close(timeout time.Duration) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	deadline := time.Now().Add(timeout)
	select {
	case <-d.drained:
	case <-time.After(timeout):
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		remaining = time.Millisecond
	}
	return d.pool.ReleaseTimeout(remaining)
}
