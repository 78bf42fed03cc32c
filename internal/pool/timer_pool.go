// Package pool recycles timers used for operation deadlines. Waits that
// usually finish well before their deadline would otherwise allocate a
// fresh timer per call and leave it live until it fires.
package pool

import (
	"sync"
	"time"
)

var timers sync.Pool

// GetTimer returns a timer armed with duration d. Hand it back with
// PutTimer once the wait is over.
func GetTimer(d time.Duration) *time.Timer {
	v := timers.Get()
	if v == nil {
		return time.NewTimer(d)
	}

	t, _ := v.(*time.Timer) // the pool only ever holds *time.Timer
	if t.Reset(d) {
		// The timer was still armed, discard a pending fire so the new
		// deadline is the only one observable on the channel.
		select {
		case <-t.C:
		default:
		}
	}

	return t
}

// PutTimer stops t and returns it to the pool.
//
// t must not be touched after the call.
func PutTimer(t *time.Timer) {
	if !t.Stop() {
		// Drain t.C if the fire wasn't consumed by the caller.
		select {
		case <-t.C:
		default:
		}
	}

	timers.Put(t)
}
