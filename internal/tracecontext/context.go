package tracecontext

import "sync"

// Context is a passive, append-only data structure that accumulates
// diagnostic entries as a decode or encode pass progresses over an
// instruction buffer. It is thread-safe for concurrent writes, though in
// practice a single buffer (and its Context) is owned by one goroutine at
// a time.
//
// Create a Context exclusively through New(). It is passed by reference —
// every caller that records a diagnostic during a pass (such as the sample
// CLI's disassemble/reassemble loops) writes into the same context.
//
// The context does not perform I/O or formatting. A separate renderer
// (the sample CLI's disassemble/reassemble commands) consumes the entries
// to produce output.
type Context struct {
	imagePath string
	phase     string
	entries   []*Entry
	mu        sync.Mutex
}

// New returns a *Context initialized with the image path being processed,
// an empty entry list, and the phase set to "" (no phase).
func New(imagePath string) *Context {
	return &Context{
		imagePath: imagePath,
		entries:   make([]*Entry, 0),
	}
}

// --- Phases ---

// SetPhase sets the current phase ("decode" or "encode"). Subsequent
// entries are tagged with this phase until it is changed again.
func (c *Context) SetPhase(name string) {
	c.mu.Lock()
	c.phase = name
	c.mu.Unlock()
}

// Phase returns the current phase name.
func (c *Context) Phase() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// --- Location helpers ---

// Loc creates a Location using the image path from the context.
func (c *Context) Loc(address uint64) Location {
	return Loc(c.imagePath, address)
}

// --- Recording methods ---

func (c *Context) record(severity string, location Location, message string) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &Entry{
		severity: severity,
		phase:    c.phase,
		message:  message,
		location: location,
	}
	c.entries = append(c.entries, entry)
	return entry
}

// Error records an entry with severity "error" and returns the *Entry for
// optional chaining (WithSnippet, WithHint).
func (c *Context) Error(location Location, message string) *Entry {
	return c.record(SeverityError, location, message)
}

// Warning records an entry with severity "warning".
func (c *Context) Warning(location Location, message string) *Entry {
	return c.record(SeverityWarning, location, message)
}

// Info records an entry with severity "info".
func (c *Context) Info(location Location, message string) *Entry {
	return c.record(SeverityInfo, location, message)
}

// Trace records an entry with severity "trace".
func (c *Context) Trace(location Location, message string) *Entry {
	return c.record(SeverityTrace, location, message)
}

// --- Querying entries ---

// Entries returns all recorded entries in insertion order.
func (c *Context) Entries() []*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]*Entry, len(c.entries))
	copy(result, c.entries)
	return result
}

// Errors returns only entries with severity "error".
func (c *Context) Errors() []*Entry {
	return c.filter(SeverityError)
}

// Warnings returns only entries with severity "warning".
func (c *Context) Warnings() []*Entry {
	return c.filter(SeverityWarning)
}

// HasErrors returns true if at least one "error" entry exists. This is the
// primary check used to decide whether a rewrite pass should abort.
func (c *Context) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the total number of entries.
func (c *Context) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ImagePath returns the path of the image being processed.
func (c *Context) ImagePath() string {
	return c.imagePath
}

func (c *Context) filter(severity string) []*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var result []*Entry
	for _, e := range c.entries {
		if e.severity == severity {
			result = append(result, e)
		}
	}
	return result
}
