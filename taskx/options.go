package taskx

import (
	"errors"

	"github.com/arloliu/go-logx"
	"github.com/arloliu/go-logx/diag"
)

type taskConfig struct {
	tc *logx.TaskContext
}

func newTaskConfig() *taskConfig {
	// an empty replace-scope gives every slice a clean ambient state
	return &taskConfig{tc: logx.Replacing(diag.NewSnapshot(nil, nil))}
}

// TaskOption configures a task submitted to a Runner.
type TaskOption interface {
	apply(*taskConfig) error
}

type taskOptFunc struct {
	name      string
	applyFunc func(*taskConfig) error
}

func (o *taskOptFunc) apply(cfg *taskConfig) error { return o.applyFunc(cfg) }

func newTaskOptFunc(name string, f func(*taskConfig) error) *taskOptFunc {
	return &taskOptFunc{name: name, applyFunc: f}
}

// WithTaskContext binds tc to the task: every scheduling slice runs with
// tc's scope installed, entered before the slice and exited after it.
func WithTaskContext(tc *logx.TaskContext) TaskOption {
	return newTaskOptFunc("WithTaskContext", func(cfg *taskConfig) error {
		if cfg == nil {
			return errors.New("task config is nil")
		}

		if tc == nil {
			return errors.New("task context is nil")
		}

		cfg.tc = tc

		return nil
	})
}
