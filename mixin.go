package logx

import "sync"

// Mixin adds a memoized Logger accessor to the type that embeds it. The type
// parameter is the embedding type itself, which names the channel:
//
//	type Worker struct {
//	    logx.Mixin[Worker]
//	}
//
//	func (w *Worker) process(ctx context.Context) {
//	    w.Logger().Info(ctx, "processing")
//	}
//
// The logger is resolved through the owner-type cache on first use and
// memoized per instance. Mixin carries no other state, so embedding it keeps
// the zero value of the embedding type usable.
type Mixin[T any] struct {
	once   sync.Once
	logger *Logger
}

// Logger returns the logger for the embedding type's channel.
func (m *Mixin[T]) Logger() *Logger {
	m.once.Do(func() {
		m.logger = Of[T]()
	})

	return m.logger
}
