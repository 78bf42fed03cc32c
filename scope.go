package logx

import (
	"context"

	"github.com/arloliu/go-logx/diag"
)

// TaskContext binds a diagnostic-state snapshot to the scheduling boundaries
// of a cooperatively scheduled task. A host scheduler calls Enter right
// before running a task slice on an execution unit and Exit right after the
// slice suspends or finishes; the pair installs the bound state for the
// duration of the slice and puts back exactly what was there before, so
// interleaved tasks sharing a worker never observe each other's state.
//
// A TaskContext is immutable and may bracket any number of slices, on any
// number of execution units, concurrently.
type TaskContext struct {
	snap    diag.Snapshot
	augment bool
}

// Replacing binds snap with replace semantics: on entry the ambient state
// becomes exactly snap, and fields absent from snap become empty rather than
// retaining stale values.
func Replacing(snap diag.Snapshot) *TaskContext {
	return &TaskContext{snap: snap}
}

// Augmenting binds snap with augment semantics: on entry snap is merged on
// top of whatever ambient state is live at that moment, mapping-over-mapping
// for the values and appended for the stack. Nested augmenting scopes
// therefore compose additively.
func Augmenting(snap diag.Snapshot) *TaskContext {
	return &TaskContext{snap: snap, augment: true}
}

// Prior is the restoration token returned by Enter. Feed it back to the Exit
// call closing the same slice. The zero value is inert.
type Prior struct {
	store *diag.Store
	snap  diag.Snapshot
	ok    bool
}

// Enter installs the bound state on the context's diagnostic store, creating
// the store (and deriving a new context) when ctx carries none. It returns
// the context to run the slice with and the token that restores the previous
// state. Enter/Exit pairs nest strictly: an inner pair must close before the
// outer one.
func (tc *TaskContext) Enter(ctx context.Context) (context.Context, Prior) {
	if tc == nil {
		return ctx, Prior{}
	}

	ctx, store := diag.EnsureStore(ctx)
	prior := diag.Capture(store)

	installed := tc.snap
	if tc.augment {
		installed = tc.snap.MergeOnto(prior)
	}
	installed.Apply(store)

	return ctx, Prior{store: store, snap: prior, ok: true}
}

// Exit restores the state captured by the Enter call that produced prior,
// discarding every change the slice made. An inert token does nothing.
func (tc *TaskContext) Exit(prior Prior) {
	if !prior.ok {
		return
	}

	prior.snap.Apply(prior.store)
}

// Run executes fn inside the bound scope: Enter before, Exit after.
// Restoration is guaranteed on every exit path, including a panic out of fn
// or a cancellation surfacing as fn's error.
func (tc *TaskContext) Run(ctx context.Context, fn func(context.Context) error) error {
	ctx, prior := tc.Enter(ctx)
	defer tc.Exit(prior)

	return fn(ctx)
}

// RunValue is the valued variant of TaskContext.Run.
func RunValue[T any](ctx context.Context, tc *TaskContext, fn func(context.Context) (T, error)) (T, error) {
	ctx, prior := tc.Enter(ctx)
	defer tc.Exit(prior)

	return fn(ctx)
}

// WithFields runs fn with the given fields merged into the ambient mapping,
// restoring the previous state afterward.
func WithFields(ctx context.Context, fields map[string]string, fn func(context.Context) error) error {
	return Augmenting(diag.NewSnapshot(fields, nil)).Run(ctx, fn)
}

// WithStacked runs fn with entry pushed on the ambient diagnostic stack,
// restoring the previous state afterward.
func WithStacked(ctx context.Context, entry string, fn func(context.Context) error) error {
	return Augmenting(diag.NewSnapshot(nil, []string{entry})).Run(ctx, fn)
}
