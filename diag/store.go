// Package diag maintains ambient diagnostic state for a single execution unit:
// a key-value map of correlation fields and a stack of diagnostic scope labels.
// Logging engines consult this state when formatting output; application code
// reads and writes it through a Store carried in a context.Context.
//
// A Store is deliberately unsynchronized. It belongs to exactly one execution
// unit (goroutine or cooperatively scheduled task) at a time, and ownership is
// handed over between units by capturing a Snapshot on suspension and applying
// it on resumption. The context-level functions in this package tolerate a
// context without a Store: reads return empty results and writes do nothing.
package diag

import "maps"

// Store holds the live, mutable diagnostic state of one execution unit.
//
// The zero value is not usable; create stores with NewStore.
type Store struct {
	values map[string]string
	stack  []string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Value returns the value mapped to key and whether the key is present.
func (s *Store) Value(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// SetValue maps key to value, replacing any previous mapping.
func (s *Store) SetValue(key, value string) {
	s.values[key] = value
}

// SetAll copies every entry of values into the store, replacing existing
// mappings for the same keys and keeping the rest.
func (s *Store) SetAll(values map[string]string) {
	for k, v := range values {
		s.values[k] = v
	}
}

// Remove deletes the mapping for key, if any.
func (s *Store) Remove(key string) {
	delete(s.values, key)
}

// RemoveAll deletes the mappings for all given keys.
func (s *Store) RemoveAll(keys ...string) {
	for _, k := range keys {
		delete(s.values, k)
	}
}

// ClearValues removes every key-value mapping.
func (s *Store) ClearValues() {
	clear(s.values)
}

// Empty reports whether the store holds no key-value mappings.
func (s *Store) Empty() bool {
	return len(s.values) == 0
}

// Values returns a copy of the current mappings for inspection. Mutating the
// returned map does not affect the store.
func (s *Store) Values() map[string]string {
	return maps.Clone(s.values)
}

// CopyValues returns a mutable copy of the current mappings that the caller
// owns. Changes to the copy do not affect the store.
func (s *Store) CopyValues() map[string]string {
	cp := make(map[string]string, len(s.values))
	maps.Copy(cp, s.values)

	return cp
}

// Push appends value to the top of the diagnostic stack.
func (s *Store) Push(value string) {
	s.stack = append(s.stack, value)
}

// Pop removes and returns the top of the diagnostic stack.
// It returns the empty string when the stack is empty.
func (s *Store) Pop() string {
	if len(s.stack) == 0 {
		return ""
	}

	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]

	return top
}

// Peek returns the top of the diagnostic stack without removing it.
// It returns the empty string when the stack is empty.
func (s *Store) Peek() string {
	if len(s.stack) == 0 {
		return ""
	}

	return s.stack[len(s.stack)-1]
}

// Depth returns the number of entries on the diagnostic stack.
func (s *Store) Depth() int {
	return len(s.stack)
}

// ClearStack removes every entry from the diagnostic stack.
func (s *Store) ClearStack() {
	s.stack = s.stack[:0]
}

// SetStack replaces the diagnostic stack with a copy of values, bottom first.
func (s *Store) SetStack(values []string) {
	s.stack = s.stack[:0]
	s.stack = append(s.stack, values...)
}

// Stack returns a copy of the diagnostic stack, bottom first. Mutating the
// returned slice does not affect the store.
func (s *Store) Stack() []string {
	if len(s.stack) == 0 {
		return nil
	}

	cp := make([]string, len(s.stack))
	copy(cp, s.stack)

	return cp
}

// Trim shrinks the diagnostic stack to at most depth entries, dropping the
// topmost entries first. A negative depth clears the stack.
func (s *Store) Trim(depth int) {
	if depth < 0 {
		depth = 0
	}
	if depth < len(s.stack) {
		s.stack = s.stack[:depth]
	}
}
