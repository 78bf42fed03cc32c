package diag

import "maps"

// Snapshot is an immutable capture of diagnostic state at a point in time.
// Snapshots are safe to copy, share between goroutines, and apply any number
// of times. The zero value is an empty snapshot.
type Snapshot struct {
	values map[string]string
	stack  []string
}

// NewSnapshot builds a snapshot from the given mappings and stack entries.
// Both arguments are copied; either may be nil.
func NewSnapshot(values map[string]string, stack []string) Snapshot {
	snap := Snapshot{}
	if len(values) > 0 {
		snap.values = maps.Clone(values)
	}
	if len(stack) > 0 {
		snap.stack = make([]string, len(stack))
		copy(snap.stack, stack)
	}

	return snap
}

// Capture snapshots the current state of the store.
// A nil store yields an empty snapshot.
func Capture(s *Store) Snapshot {
	if s == nil {
		return Snapshot{}
	}

	return NewSnapshot(s.values, s.stack)
}

// Values returns a copy of the captured key-value mappings.
func (sn Snapshot) Values() map[string]string {
	if len(sn.values) == 0 {
		return nil
	}

	return maps.Clone(sn.values)
}

// Stack returns a copy of the captured diagnostic stack, bottom first.
func (sn Snapshot) Stack() []string {
	if len(sn.stack) == 0 {
		return nil
	}

	cp := make([]string, len(sn.stack))
	copy(cp, sn.stack)

	return cp
}

// Empty reports whether the snapshot captured no mappings and no stack
// entries.
func (sn Snapshot) Empty() bool {
	return len(sn.values) == 0 && len(sn.stack) == 0
}

// Apply overwrites the store's state with the snapshot: mappings absent from
// the snapshot are removed, and the stack is replaced entirely.
// Applying to a nil store does nothing.
func (sn Snapshot) Apply(s *Store) {
	if s == nil {
		return
	}

	clear(s.values)
	for k, v := range sn.values {
		s.values[k] = v
	}

	s.stack = s.stack[:0]
	s.stack = append(s.stack, sn.stack...)
}

// MergeOnto layers the snapshot on top of base: the result maps every key of
// base plus every key of sn, with sn winning conflicts, and its stack is
// base's entries followed by sn's entries.
func (sn Snapshot) MergeOnto(base Snapshot) Snapshot {
	merged := Snapshot{}

	if n := len(base.values) + len(sn.values); n > 0 {
		merged.values = make(map[string]string, n)
		maps.Copy(merged.values, base.values)
		maps.Copy(merged.values, sn.values)
	}

	if n := len(base.stack) + len(sn.stack); n > 0 {
		merged.stack = make([]string, 0, n)
		merged.stack = append(merged.stack, base.stack...)
		merged.stack = append(merged.stack, sn.stack...)
	}

	return merged
}
