package domain

import "fmt"

// RunLog accumulates human-readable notes about non-fatal failures during a
// single run. It is scoped to one run invocation and included in the
// snapshot when the result set is empty. Not safe for concurrent use; runs
// are sequential by design.
type RunLog struct {
	entries []string
}

// Addf appends a formatted entry.
func (l *RunLog) Addf(format string, args ...any) {
	l.entries = append(l.entries, fmt.Sprintf(format, args...))
}

// Entries returns the accumulated entries in insertion order.
func (l *RunLog) Entries() []string {
	return l.entries
}
