package taskx

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-logx"
	"github.com/arloliu/go-logx/diag"
)

func TestRunner_Start(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(ctx, nil)

	var slices atomic.Int32
	err := runner.Start("counter", func(ctx context.Context) bool {
		return slices.Add(1) < 5
	})
	require.NoError(t, err)

	// Wait returns once every task has finished
	runner.Wait()

	assert.Equal(t, int32(5), slices.Load())
	assert.Equal(t, 0, runner.TaskCount())
}

func TestRunner_StartStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(ctx, nil)

	err := runner.Start("forever", func(ctx context.Context) bool {
		return true
	})
	require.NoError(t, err)

	// Allow some time for the worker to pick the task up
	time.Sleep(100 * time.Millisecond)

	// Verify that the task is running
	assert.Equal(t, 1, runner.TaskCount())

	// Stop the runner to cancel the task
	runner.Stop()
	runner.Wait()

	// Verify that the task has stopped
	assert.Equal(t, 0, runner.TaskCount())
}

func TestRunner_RoundRobin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(ctx, nil)

	const slicesPerTask = 3

	var mu sync.Mutex
	counts := map[string]int{}

	startTask := func(name string) {
		err := runner.Start(name, func(ctx context.Context) bool {
			mu.Lock()
			counts[name]++
			n := counts[name]
			mu.Unlock()

			return n < slicesPerTask
		})
		require.NoError(t, err)
	}

	startTask("a")
	startTask("b")

	runner.Wait()

	assert.Equal(t, slicesPerTask, counts["a"])
	assert.Equal(t, slicesPerTask, counts["b"])
	assert.Equal(t, 0, runner.TaskCount())
}

func TestRunner_SliceScopeIsolation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(ctx, nil)

	const slicesPerTask = 10

	var mu sync.Mutex
	var violations []string

	record := func(format string, args ...any) {
		mu.Lock()
		violations = append(violations, fmt.Sprintf(format, args...))
		mu.Unlock()
	}

	startTask := func(name string) {
		var slices int

		tc := logx.Replacing(diag.NewSnapshot(map[string]string{"task": name}, nil))
		err := runner.Start(name, func(ctx context.Context) bool {
			// the bound scope must be installed for every slice
			if got, _ := diag.Get(ctx, "task"); got != name {
				record("task %s: bound value is %q", name, got)
			}
			// mutations from earlier slices, own or foreign, must be gone
			if got, ok := diag.Get(ctx, "scratch"); ok {
				record("task %s: stale scratch value %q", name, got)
			}
			if depth := diag.Depth(ctx); depth != 0 {
				record("task %s: stale stack depth %d", name, depth)
			}

			diag.Put(ctx, "scratch", name)
			diag.Push(ctx, name)

			slices++

			return slices < slicesPerTask
		}, WithTaskContext(tc))
		require.NoError(t, err)
	}

	startTask("left")
	startTask("right")

	runner.Wait()

	assert.Empty(t, violations)
}

func TestRunner_TaskPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(ctx, nil)

	var panicky, healthy atomic.Int32

	err := runner.Start("panicky", func(ctx context.Context) bool {
		if panicky.Add(1) == 2 {
			panic("task blew up")
		}
		return true
	})
	require.NoError(t, err)

	err = runner.Start("healthy", func(ctx context.Context) bool {
		return healthy.Add(1) < 5
	})
	require.NoError(t, err)

	runner.Wait()

	// the panicking task is terminated, the healthy one runs to completion
	assert.Equal(t, int32(2), panicky.Load())
	assert.Equal(t, int32(5), healthy.Load())
	assert.Equal(t, 0, runner.TaskCount())
}

func TestRunner_StartAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(ctx, nil)

	runner.Stop()

	err := runner.Start("late", func(ctx context.Context) bool { return false })
	assert.Error(t, err)

	// Wait recreates the context, so the runner is usable again
	runner.Wait()

	var ran atomic.Bool
	err = runner.Start("again", func(ctx context.Context) bool {
		ran.Store(true)
		return false
	})
	require.NoError(t, err)

	runner.Wait()
	assert.True(t, ran.Load())
}

func TestRunner_StartErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(ctx, nil)

	err := runner.Start("nil-func", nil)
	assert.Error(t, err)

	err = runner.Start("nil-tc", func(ctx context.Context) bool { return false }, WithTaskContext(nil))
	assert.Error(t, err)
}

func TestRunner_StartInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(ctx, nil)

	var ticks atomic.Int32
	ticker, err := runner.StartInterval("tick", func(ctx context.Context) bool {
		ticks.Add(1)
		return true
	}, 10*time.Millisecond, true)
	require.NoError(t, err)
	require.NotNil(t, ticker)

	// Allow some time for the interval task to run
	time.Sleep(100 * time.Millisecond)

	// Verify that the task is running and has ticked
	assert.Equal(t, 1, runner.TaskCount())
	assert.GreaterOrEqual(t, ticks.Load(), int32(2))

	runner.Stop()
	runner.Wait()

	// Verify that the task has stopped
	assert.Equal(t, 0, runner.TaskCount())
}

func TestRunner_StartIntervalScope(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(ctx, nil)

	var wrong atomic.Int32
	var ticks atomic.Int32

	tc := logx.Replacing(diag.NewSnapshot(map[string]string{"job": "tick"}, nil))
	_, err := runner.StartInterval("tick", func(ctx context.Context) bool {
		if job, _ := diag.Get(ctx, "job"); job != "tick" {
			wrong.Add(1)
		}
		ticks.Add(1)
		return true
	}, 10*time.Millisecond, false, WithTaskContext(tc))
	require.NoError(t, err)

	// Allow some time for a few ticks
	time.Sleep(100 * time.Millisecond)

	runner.Stop()
	runner.Wait()

	assert.GreaterOrEqual(t, ticks.Load(), int32(2))
	assert.Equal(t, int32(0), wrong.Load())
}

func TestRunner_StartIntervalErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(ctx, nil)

	fn := func(ctx context.Context) bool { return true }

	_, err := runner.StartInterval("bad", fn, 0, false)
	assert.Error(t, err)

	_, err = runner.StartInterval("bad", nil, 10*time.Millisecond, false)
	assert.Error(t, err)

	_, err = runner.StartInterval("dup", fn, 10*time.Millisecond, false)
	require.NoError(t, err)

	_, err = runner.StartInterval("dup", fn, 10*time.Millisecond, false)
	assert.Error(t, err)

	runner.Stop()
	runner.Wait()
}

func TestRunner_StopInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(ctx, nil)

	assert.Error(t, runner.StopInterval("missing"))

	_, err := runner.StartInterval("tick", func(ctx context.Context) bool { return true }, 10*time.Millisecond, false)
	require.NoError(t, err)

	assert.NoError(t, runner.StopInterval("tick"))
	assert.Error(t, runner.StopInterval("tick"))

	runner.Stop()
	runner.Wait()
}

func TestRunner_RunNowTermination(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(ctx, nil)

	var calls atomic.Int32
	ticker, err := runner.StartInterval("once", func(ctx context.Context) bool {
		calls.Add(1)
		return false
	}, 10*time.Millisecond, true)
	require.NoError(t, err)
	require.NotNil(t, ticker)

	// Allow time that would cover several ticks
	time.Sleep(50 * time.Millisecond)

	// the runNow slice returned false, so no interval goroutine was started
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 0, runner.TaskCount())
}

func TestGo(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()
	ctx, callerStore := diag.EnsureStore(ctx)
	diag.Put(ctx, "caller", "value")

	done := make(chan string, 1)

	tc := logx.Replacing(diag.NewSnapshot(map[string]string{"job": "one-shot"}, nil))
	Go(ctx, tc, func(ctx context.Context) {
		diag.Put(ctx, "inner", "mutation")
		job, _ := diag.Get(ctx, "job")
		done <- job
	})

	select {
	case got := <-done:
		assert.Equal("one-shot", got)
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}

	// the goroutine ran on its own store; the caller's is untouched
	assert.Equal(map[string]string{"caller": "value"}, callerStore.Values())
}

func TestGoNilTaskContext(t *testing.T) {
	assert := assert.New(t)

	done := make(chan string, 1)

	Go(context.Background(), nil, func(ctx context.Context) {
		// a fresh store is installed even without a bound scope
		diag.Put(ctx, "key", "set")
		got, _ := diag.Get(ctx, "key")
		done <- got
	})

	select {
	case got := <-done:
		assert.Equal("set", got)
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}
}
