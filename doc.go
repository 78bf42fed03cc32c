// Package logx provides a deferred-evaluation logging facade over pluggable
// logging engines, with ambient diagnostic context that survives cooperative
// task scheduling and structured flow tracing around blocks of work.
//
// Engines:
// The facade delegates every logging decision to an Engine, an opaque
// collaborator that owns named channels. Install one with SetEngine during
// startup; until then the noop engine is active and every level reports
// disabled. The zerologx and slogx subpackages provide ready engines, and
// the diag subpackage holds the ambient state the engines render.
//
// Deferred evaluation:
// Every logging method checks level enablement before doing any work. The
// Func variants take a MessageFunc producer that is only invoked when the
// level is enabled, and then exactly once:
//   - Disabled level: producer never runs, call costs one level check.
//   - Enabled level: producer runs once, its result is emitted unchanged.
//
// Loggers are obtained by explicit name (Named), by owning type (For, Of,
// both memoized in a bounded cache), or by embedding Mixin into a type.
//
// Flow tracing:
// Enter returns a FlowEntry that pairs the entry notification with the Exit
// call closing the same flow. ExitValue attaches a result to the exit,
// Catching and Throwing report propagating errors, and Traced/TracedValue
// bracket a whole function, reporting a failure exactly once and rethrowing
// it unchanged.
//
// Context propagation:
// Ambient state (a key-value mapping and a diagnostic stack, see the diag
// package) belongs to one execution unit at a time. A TaskContext installs a
// bound snapshot around each scheduling slice of a cooperative task and
// restores the previous state afterward, either replacing the ambient state
// or augmenting it. The taskx subpackage contains a runner that drives these
// boundaries for interleaved tasks sharing a worker goroutine.
package logx
