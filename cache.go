package logx

import (
	"reflect"

	"github.com/arloliu/go-logx/internal/lru"
)

// DefaultCacheCapacity bounds the owner-type logger cache.
const DefaultCacheCapacity = 256

// unknownChannel names the channel used when no owner type can be derived.
const unknownChannel = "unknown"

var loggerCache = lru.New[reflect.Type, *Logger](DefaultCacheCapacity)

// For returns the memoized logger for the owner's type. Pointer owners
// resolve to their element type, so a *Worker and a Worker share one
// channel. Lookups hit a bounded cache with least-recently-used eviction;
// concurrent lookups are safe, and a racing duplicate construction for the
// same type is benign because loggers are stateless wrappers.
func For(owner any) *Logger {
	if owner == nil {
		return Named(unknownChannel)
	}

	return forType(reflect.TypeOf(owner))
}

// Of returns the memoized logger for the type T, resolving pointer types to
// their element type like For.
func Of[T any]() *Logger {
	return forType(reflect.TypeFor[T]())
}

// ChannelName derives the canonical channel name for the owner's type, e.g.
// "mypkg.Worker". Pointer owners resolve to their element type.
func ChannelName(owner any) string {
	if owner == nil {
		return unknownChannel
	}

	return typeName(reflect.TypeOf(owner))
}

// CacheMetrics is a point-in-time snapshot of the owner-type cache counters.
type CacheMetrics struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
}

// LoggerCacheMetrics reports how the owner-type logger cache is performing.
func LoggerCacheMetrics() CacheMetrics {
	m := loggerCache.Metrics()

	return CacheMetrics{
		Hits:      m.Hits,
		Misses:    m.Misses,
		Evictions: m.Evictions,
		Size:      m.Size,
	}
}

func forType(t reflect.Type) *Logger {
	if t == nil {
		return Named(unknownChannel)
	}

	t = unwrapPtr(t)
	if lg, ok := loggerCache.Get(t); ok {
		return lg
	}

	lg := Named(t.String())
	loggerCache.Add(t, lg)

	return lg
}

func typeName(t reflect.Type) string {
	if t == nil {
		return unknownChannel
	}

	return unwrapPtr(t).String()
}

func unwrapPtr(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

func resetLoggerCache() {
	loggerCache.Clear()
}
