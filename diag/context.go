package diag

import "context"

type storeCtxKey struct{}

// WithStore returns a context carrying the given store.
func WithStore(ctx context.Context, s *Store) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, storeCtxKey{}, s)
}

// FromContext returns the store carried by ctx, if any.
func FromContext(ctx context.Context) (*Store, bool) {
	if ctx == nil {
		return nil, false
	}

	s, ok := ctx.Value(storeCtxKey{}).(*Store)
	if !ok || s == nil {
		return nil, false
	}

	return s, true
}

// EnsureStore returns ctx and its store when one is already carried, or a
// derived context carrying a fresh empty store otherwise.
func EnsureStore(ctx context.Context) (context.Context, *Store) {
	if s, ok := FromContext(ctx); ok {
		return ctx, s
	}

	s := NewStore()

	return WithStore(ctx, s), s
}

// The functions below mirror the Store operations but resolve the store from
// the context on every call. When ctx carries no store, reads return empty
// results and writes do nothing.

// Get returns the value mapped to key in the context's store.
func Get(ctx context.Context, key string) (string, bool) {
	s, ok := FromContext(ctx)
	if !ok {
		return "", false
	}

	return s.Value(key)
}

// Put maps key to value in the context's store.
func Put(ctx context.Context, key, value string) {
	if s, ok := FromContext(ctx); ok {
		s.SetValue(key, value)
	}
}

// PutAll copies every entry of values into the context's store.
func PutAll(ctx context.Context, values map[string]string) {
	if s, ok := FromContext(ctx); ok {
		s.SetAll(values)
	}
}

// Remove deletes the mapping for key from the context's store.
func Remove(ctx context.Context, key string) {
	if s, ok := FromContext(ctx); ok {
		s.Remove(key)
	}
}

// RemoveAll deletes the mappings for all given keys from the context's store.
func RemoveAll(ctx context.Context, keys ...string) {
	if s, ok := FromContext(ctx); ok {
		s.RemoveAll(keys...)
	}
}

// Clear removes every key-value mapping from the context's store.
func Clear(ctx context.Context) {
	if s, ok := FromContext(ctx); ok {
		s.ClearValues()
	}
}

// Empty reports whether the context's store holds no key-value mappings.
// It returns true when ctx carries no store.
func Empty(ctx context.Context) bool {
	s, ok := FromContext(ctx)
	if !ok {
		return true
	}

	return s.Empty()
}

// View returns a read-only copy of the mappings in the context's store.
func View(ctx context.Context) map[string]string {
	s, ok := FromContext(ctx)
	if !ok {
		return nil
	}

	return s.Values()
}

// Copy returns a mutable copy of the mappings in the context's store.
func Copy(ctx context.Context) map[string]string {
	s, ok := FromContext(ctx)
	if !ok {
		return map[string]string{}
	}

	return s.CopyValues()
}

// Push appends value to the diagnostic stack of the context's store.
func Push(ctx context.Context, value string) {
	if s, ok := FromContext(ctx); ok {
		s.Push(value)
	}
}

// Pop removes and returns the top of the diagnostic stack of the context's
// store.
func Pop(ctx context.Context) string {
	s, ok := FromContext(ctx)
	if !ok {
		return ""
	}

	return s.Pop()
}

// Peek returns the top of the diagnostic stack of the context's store.
func Peek(ctx context.Context) string {
	s, ok := FromContext(ctx)
	if !ok {
		return ""
	}

	return s.Peek()
}

// Depth returns the number of entries on the diagnostic stack of the
// context's store.
func Depth(ctx context.Context) int {
	s, ok := FromContext(ctx)
	if !ok {
		return 0
	}

	return s.Depth()
}

// ClearStack removes every entry from the diagnostic stack of the context's
// store.
func ClearStack(ctx context.Context) {
	if s, ok := FromContext(ctx); ok {
		s.ClearStack()
	}
}

// SetStack replaces the diagnostic stack of the context's store.
func SetStack(ctx context.Context, values []string) {
	if s, ok := FromContext(ctx); ok {
		s.SetStack(values)
	}
}

// StackView returns a read-only copy of the diagnostic stack of the
// context's store, bottom first.
func StackView(ctx context.Context) []string {
	s, ok := FromContext(ctx)
	if !ok {
		return nil
	}

	return s.Stack()
}

// Trim shrinks the diagnostic stack of the context's store to at most depth
// entries.
func Trim(ctx context.Context, depth int) {
	if s, ok := FromContext(ctx); ok {
		s.Trim(depth)
	}
}
