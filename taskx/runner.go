// Package taskx runs cooperatively scheduled tasks on a shared worker
// goroutine. A task executes in slices: each invocation of its TaskFunc is
// one scheduling slice, and the task's bound diagnostic scope is installed
// before the slice and restored after it, so tasks interleaved on the same
// worker never observe each other's ambient logging state.
package taskx

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-logx"
	"github.com/arloliu/go-logx/diag"
	"github.com/arloliu/go-logx/internal/pool"
	"github.com/arloliu/go-logx/internal/queue"
)

// TaskFunc performs one scheduling slice of a cooperative task. It should
// return true to be scheduled again, or false when the task is finished.
type TaskFunc func(ctx context.Context) bool

// startTimeout bounds how long Start waits for the worker to accept a task.
const startTimeout = 5 * time.Second

// task carries one cooperative task through the worker's run queue.
type task struct {
	name    string
	fn      TaskFunc
	tc      *logx.TaskContext
	started chan error
}

// Runner manages the lifecycle of cooperative tasks within an application.
// It provides a structured way to start, stop, and wait for tasks, ensuring
// proper cancellation and resource cleanup.
//
// The Runner uses a context.Context to manage the lifecycle of its tasks.
// When the context is canceled, the worker and all interval tasks are
// signaled to stop. A sync.WaitGroup waits for everything to terminate
// before Wait() returns.
//
// Example Usage:
//
//	// Create a new Runner and use ctx as the parent context
//	runner := taskx.NewRunner(ctx, logx.Of[Server]())
//
//	// Start a cooperative task
//	runner.Start("myTask", func(ctx context.Context) bool {
//	    // ... one slice of task logic ...
//	    return true // Return true to be scheduled again, false to finish
//	})
//
//	// ... other operations ...
//
//	// Stop all tasks
//	runner.Stop()
//
//	// Wait for all tasks to terminate
//	runner.Wait()
type Runner struct {
	pctx     context.Context
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	logger   *logx.Logger
	count    atomic.Int32
	incoming queue.Queue[*task]
	tickers  *xsync.MapOf[string, *time.Ticker]
	workerMu sync.Mutex   // protect worker startup and shutdown
	workerUp bool         // guarded by workerMu
	mu       sync.RWMutex // protect ctx and cancel
	taskMu   sync.RWMutex // protect task creation during Wait()
}

// NewRunner creates a new Runner with the given context as the parent
// context. A nil logger is replaced by a logger bound to the noop engine.
func NewRunner(ctx context.Context, log *logx.Logger) *Runner {
	if log == nil {
		log = logx.New(nil)
	}

	r := &Runner{
		pctx:     ctx,
		logger:   log,
		incoming: queue.NewLockFreeQueue[*task](),
		tickers:  xsync.NewMapOf[string, *time.Ticker](),
	}
	r.ctx, r.cancel = context.WithCancel(ctx)

	return r
}

// getContext safely returns the current context
func (r *Runner) getContext() context.Context {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.ctx
}

// Start submits a cooperative task to the shared worker and waits for the
// worker to accept it.
//
// Each invocation of fn is one scheduling slice. It runs with the task's
// bound diagnostic scope installed; without WithTaskContext the bound scope
// is empty, so every slice starts from a clean ambient state. Mutations a
// slice makes to the ambient state are discarded when the slice ends.
//
// fn should return true to be scheduled again, or false when finished.
func (r *Runner) Start(name string, fn TaskFunc, opts ...TaskOption) error {
	r.logger.Debugf(r.getContext(), "start task %s", name)

	if fn == nil {
		return fmt.Errorf("task function is nil")
	}

	cfg := newTaskConfig()
	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return err
		}
	}

	ctx := r.getContext()

	// check if already cancelled
	select {
	case <-ctx.Done():
		return fmt.Errorf("task runner already stopped")
	default:
	}

	tk := &task{name: name, fn: fn, tc: cfg.tc, started: make(chan error, 1)}
	r.incoming.Enqueue(tk)
	r.ensureWorker()

	return r.waitForAccept(tk)
}

// waitForAccept waits for the worker to register the task, with timeout.
func (r *Runner) waitForAccept(tk *task) error {
	ctx := r.getContext()

	timer := pool.GetTimer(startTimeout)
	defer pool.PutTimer(timer)

	select {
	case err := <-tk.started:
		if err != nil {
			return fmt.Errorf("failed to start %s: %w", tk.name, err)
		}

		return nil

	case <-timer.C:
		return fmt.Errorf("timeout waiting for %s to start", tk.name)

	case <-ctx.Done():
		return fmt.Errorf("context cancelled while starting %s", tk.name)
	}
}

// ensureWorker spawns the shared worker goroutine when none is running.
func (r *Runner) ensureWorker() {
	r.workerMu.Lock()
	defer r.workerMu.Unlock()

	if r.workerUp {
		return
	}
	r.workerUp = true

	r.taskMu.RLock()
	r.wg.Add(1)
	r.taskMu.RUnlock()

	go r.runWorker(r.getContext())
}

// tryReleaseWorker lets the worker exit when no handoff is pending. It
// returns false when new tasks arrived after the worker drained its queue.
func (r *Runner) tryReleaseWorker() bool {
	r.workerMu.Lock()
	defer r.workerMu.Unlock()

	if !r.incoming.IsEmpty() {
		return false
	}
	r.workerUp = false

	return true
}

// releaseWorker marks the worker as stopped unconditionally.
func (r *Runner) releaseWorker() {
	r.workerMu.Lock()
	r.workerUp = false
	r.workerMu.Unlock()
}

// runWorker round-robins runnable tasks until the context is canceled or
// every task has finished.
func (r *Runner) runWorker(ctx context.Context) {
	defer r.wg.Done()

	// ambient state for every slice run on this worker lives in a store
	// owned by the worker goroutine
	wctx := diag.WithStore(ctx, diag.NewStore())

	runnable := queue.NewSliceQueue[*task](8)

	for {
		select {
		case <-ctx.Done():
			r.count.Add(int32(-runnable.Length()))
			r.releaseWorker()
			r.logger.Debugf(ctx, "task worker stopped, %d tasks cancelled", runnable.Length())

			return
		default:
		}

		r.acceptIncoming(runnable)

		tk, ok := runnable.Dequeue()
		if !ok {
			if r.tryReleaseWorker() {
				return
			}

			continue
		}

		if r.runSlice(wctx, tk) {
			runnable.Enqueue(tk)
		} else {
			r.count.Add(-1)
			r.logger.DebugFunc(ctx, func() any {
				return fmt.Sprintf("%s task terminated, %d tasks running", tk.name, r.TaskCount())
			})
		}
	}
}

// acceptIncoming registers every task handed off since the last pass.
func (r *Runner) acceptIncoming(runnable queue.Queue[*task]) {
	for {
		tk, ok := r.incoming.Dequeue()
		if !ok {
			return
		}

		r.count.Add(1)
		tk.started <- nil
		runnable.Enqueue(tk)
	}
}

// runSlice executes one scheduling slice with the task's scope installed and
// panic protection. A panic terminates the task.
func (r *Runner) runSlice(ctx context.Context, tk *task) (again bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Errorf(r.getContext(), "panic in task %s: %v", tk.name, rec)
			again = false
		}
	}()

	sctx, prior := tk.tc.Enter(ctx)
	defer tk.tc.Exit(prior)

	return tk.fn(sctx)
}

// StartInterval starts a dedicated goroutine that executes one slice of the
// given task function at the specified interval. If runNow is true, one
// slice is executed immediately before starting the interval.
// The function returns a *time.Ticker that can be used to stop the interval.
func (r *Runner) StartInterval(name string, fn TaskFunc, interval time.Duration, runNow bool, opts ...TaskOption) (*time.Ticker, error) {
	r.logger.Debugf(r.getContext(), "start interval task %s, interval: %v, runNow: %v", name, interval, runNow)

	if interval <= 0 {
		return nil, fmt.Errorf("invalid interval: %v", interval)
	}
	if fn == nil {
		return nil, fmt.Errorf("task function is nil")
	}

	cfg := newTaskConfig()
	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	tk := &task{name: name, fn: fn, tc: cfg.tc}

	ticker := time.NewTicker(interval)

	// store ticker before starting goroutine
	if _, loaded := r.tickers.LoadOrStore(name, ticker); loaded {
		ticker.Stop()
		return nil, fmt.Errorf("interval task %s already exists", name)
	}

	// cleanup on any error
	cleanup := func() {
		ticker.Stop()
		r.tickers.Delete(name)
	}

	// run immediately if requested
	if runNow {
		rctx := diag.WithStore(r.getContext(), diag.NewStore())
		if !r.runSlice(rctx, tk) {
			cleanup()
			r.logger.Debugf(r.getContext(), "%s interval task terminated by runNow", name)

			return ticker, nil
		}
	}

	starter, err := r.newTaskStarter(name)
	if err != nil {
		cleanup()
		return nil, err
	}

	starter.startTask(func() {
		defer cleanup()

		store := diag.NewStore()
		for {
			ctx := r.getContext()
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.logger.Debugf(ctx, "execute interval task %s", name)
				if !r.runSlice(diag.WithStore(ctx, store), tk) {
					return
				}
			}
		}
	})

	if err := starter.waitForStart(); err != nil {
		cleanup()
		return nil, err
	}

	return ticker, nil
}

// StopInterval stops the interval task with the given name.
//
// It returns an error if no interval task with that name is running.
func (r *Runner) StopInterval(name string) error {
	if ticker, ok := r.tickers.LoadAndDelete(name); ok {
		ticker.Stop()
		return nil
	}

	return fmt.Errorf("interval task %s not found", name)
}

// Stop signals the worker and all interval tasks to terminate.
func (r *Runner) Stop() {
	// stop all tickers
	r.tickers.Range(func(_ string, ticker *time.Ticker) bool {
		ticker.Stop()
		return true
	})

	// terminate all tasks
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
}

// Wait waits for the worker and all interval tasks to terminate.
func (r *Runner) Wait() {
	r.taskMu.Lock()
	defer r.taskMu.Unlock()

	// wait all tasks be terminated
	r.wg.Wait()

	// recreate context with lock
	r.mu.Lock()
	r.ctx, r.cancel = context.WithCancel(r.pctx)
	r.mu.Unlock()
}

// TaskCount returns the number of currently live tasks.
func (r *Runner) TaskCount() int {
	return int(r.count.Load())
}

// taskStarter encapsulates common startup logic for dedicated goroutines
type taskStarter struct {
	r       *Runner
	name    string
	started chan error
}

func (r *Runner) newTaskStarter(name string) (*taskStarter, error) {
	ctx := r.getContext()

	// check if already cancelled
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("task runner already stopped")
	default:
	}

	return &taskStarter{
		r:       r,
		name:    name,
		started: make(chan error, 1),
	}, nil
}

// startTask runs the common startup sequence for dedicated task goroutines
func (s *taskStarter) startTask(taskBody func()) {
	s.r.taskMu.RLock()
	defer s.r.taskMu.RUnlock()

	s.r.wg.Add(1)

	go func() {
		defer s.r.wg.Done()

		// signal startup status
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					s.started <- fmt.Errorf("panic during startup: %v", rec)
				}
			}()

			s.r.count.Add(1)
			s.started <- nil
		}()

		// setup cleanup
		defer func() {
			s.r.count.Add(-1)
			s.r.logger.DebugFunc(s.r.getContext(), func() any {
				return fmt.Sprintf("%s task terminated, %d tasks running", s.name, s.r.TaskCount())
			})
		}()

		// run the actual task body
		taskBody()
	}()
}

// waitForStart waits for the task to start with timeout
func (s *taskStarter) waitForStart() error {
	ctx := s.r.getContext()

	timer := pool.GetTimer(startTimeout)
	defer pool.PutTimer(timer)

	select {
	case err := <-s.started:
		if err != nil {
			s.r.wg.Done() // compensate for failed start
			return fmt.Errorf("failed to start %s: %w", s.name, err)
		}

		return nil

	case <-timer.C:
		return fmt.Errorf("timeout waiting for %s to start", s.name)

	case <-ctx.Done():
		return fmt.Errorf("context cancelled while starting %s", s.name)
	}
}

// Go runs fn once on its own goroutine with a fresh diagnostic store and
// tc's scope installed for the duration of the call. It is the one-shot
// counterpart of Runner.Start for work that never suspends. A nil tc runs
// fn with an empty ambient state.
func Go(ctx context.Context, tc *logx.TaskContext, fn func(context.Context)) {
	go func() {
		gctx := diag.WithStore(ctx, diag.NewStore())

		gctx, prior := tc.Enter(gctx)
		defer tc.Exit(prior)

		fn(gctx)
	}()
}
