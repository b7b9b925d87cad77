// Package tracecontext provides a passive, append-only data structure that
// accumulates diagnostic entries (errors, warnings, info, traces) as a
// decode or encode pass progresses over an instruction buffer. It does not
// perform I/O or formatting — a separate renderer consumes the entries to
// produce output.
package tracecontext
