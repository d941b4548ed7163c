package bce

import (
	"fmt"
	"log/slog"
	"sync"
)

// Trace collects diagnostic lines of one validation.
type Trace struct {
	mu    sync.Mutex
	lines []string
}

// Printf appends a formatted line.
func (t *Trace) Printf(format string, args ...any) {
	t.mu.Lock()
	t.lines = append(t.lines, fmt.Sprintf(format, args...))
	t.mu.Unlock()
}

// Lines returns a copy of the collected lines.
func (t *Trace) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// tracef records a diagnostic line when the request asked for diagnostics.
func (p *pass) tracef(format string, args ...any) {
	if p.trace == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	p.trace.Printf("%s %s", p.statusType, line)
	slog.Debug("bce trace",
		"item", p.in.ItemNo,
		"fare_id", p.fare.ID,
		"scope", p.statusType.String(),
		"line", line,
	)
}
