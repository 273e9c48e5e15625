package taskmgr

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrRunning is returned when the manager is already running.
var ErrRunning = errors.New("task manager is already running")

// HandlerFunc handles one task queued for the given worker.
type HandlerFunc[T any] func(ctx context.Context, worker int, task T) error

// TaskManager runs a fixed set of workers concurrently. Every worker drains its
// own queue in insertion order, and Run returns only once all of them are done.
// Queues are filled before Run; a panicking handler becomes an error of its worker.
type TaskManager[T any] struct {
	mutex   sync.Mutex
	queues  []*list.List
	handler HandlerFunc[T]
	running bool
	errs    []error
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	onStart func(worker, queued int)
	onDone  func(worker int)
	logger  *zap.Logger
}

// NewTaskManager creates a manager for the given number of workers.
func NewTaskManager[T any](workers int, handler HandlerFunc[T], logger *zap.Logger) *TaskManager[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	queues := make([]*list.List, workers)
	for i := range queues {
		queues[i] = list.New()
	}
	return &TaskManager[T]{
		queues:  queues,
		handler: handler,
		logger:  logger,
	}
}

// SetHooks installs callbacks invoked when a worker starts draining its queue
// and when it has finished. Either may be nil.
func (t *TaskManager[T]) SetHooks(onStart func(worker, queued int), onDone func(worker int)) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.onStart = onStart
	t.onDone = onDone
}

// AddTask queues a task for the worker. It fails with ErrRunning once Run has started.
func (t *TaskManager[T]) AddTask(worker int, task T) error {
	if worker < 0 || worker >= len(t.queues) {
		return fmt.Errorf("worker %d out of range [0, %d)", worker, len(t.queues))
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.running {
		return ErrRunning
	}
	t.queues[worker].PushBack(task)
	return nil
}

// AddTasks queues all tasks for the worker, in order.
func (t *TaskManager[T]) AddTasks(worker int, tasks []T) error {
	for _, task := range tasks {
		if err := t.AddTask(worker, task); err != nil {
			return err
		}
	}
	return nil
}

func (t *TaskManager[T]) sendError(err error) {
	if err == nil {
		return
	}
	t.mutex.Lock()
	if cause := t.ctx.Err(); cause != nil && errors.Is(err, cause) {
		// the worker only noticed the abort, Run reports its cause
		t.mutex.Unlock()
		return
	}
	t.errs = append(t.errs, err)
	t.mutex.Unlock()
	// one failure aborts every worker
	t.cancel()
}

func (t *TaskManager[T]) runWorker(worker int, onStart func(worker, queued int), onDone func(worker int)) {
	defer t.wg.Done()
	t.mutex.Lock()
	q := t.queues[worker]
	queued := q.Len()
	t.mutex.Unlock()

	if onStart != nil {
		onStart(worker, queued)
	}
	t.mutex.Lock()
	for {
		if q.Len() == 0 || t.ctx.Err() != nil {
			t.mutex.Unlock()
			if onDone != nil {
				onDone(worker)
			}
			return
		}
		task := q.Remove(q.Front()).(T)
		t.mutex.Unlock()
		t.sendError(t.handle(worker, task))
		t.mutex.Lock()
	}
}

func (t *TaskManager[T]) handle(worker int, task T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker %d panicked: %v", worker, r)
		}
	}()
	return t.handler(t.ctx, worker, task)
}

// Run starts every worker, including those with an empty queue, and blocks
// until all of them have finished. The first handler error cancels the
// remaining work; all handler errors are joined into the result.
func (t *TaskManager[T]) Run(ctx context.Context) error {
	t.mutex.Lock()
	if t.running {
		t.mutex.Unlock()
		return ErrRunning
	}
	t.running = true
	t.errs = nil
	t.ctx, t.cancel = context.WithCancel(ctx)
	t.wg.Add(len(t.queues))
	for worker := range t.queues {
		go t.runWorker(worker, t.onStart, t.onDone)
	}
	t.mutex.Unlock()

	t.wg.Wait()
	t.cancel()
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.running = false
	errs := t.errs
	if len(errs) == 0 && ctx.Err() != nil {
		errs = append(errs, ctx.Err())
	}
	if len(errs) > 0 {
		t.logger.Debug("workers finished with errors", zap.Int("workers", len(t.queues)), zap.Int("errors", len(errs)))
	}
	return errors.Join(errs...)
}
