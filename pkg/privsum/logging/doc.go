// Package logging provides a minimal slog-backed logging facade for the
// summation engine.
//
// The Logger interface wraps the context-aware subset of log/slog so
// applications can substitute their own sinks. The engine logs state
// transitions and message counts only; anything that could reconstruct a
// private input (shares, partial sums, list elements) is replaced by the
// Redacted attribute. Sessions default to the Nop logger, so the library is
// silent until an application opts in.
package logging
