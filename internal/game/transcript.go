package game

import (
	"sync"
)

// Transcript records one human-readable line per resolved action, for the
// chat log and spectators. Lines are appended by the match loop and read by
// renders and the end report.
type Transcript struct {
	mu    sync.RWMutex
	lines []string
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{lines: make([]string, 0, 64)}
}

// Append adds one event-description line.
func (t *Transcript) Append(line string) {
	if line == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
}

// Lines returns a copy of every recorded line.
func (t *Transcript) Lines() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// Tail returns a copy of the most recent n lines.
func (t *Transcript) Tail(n int) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n > len(t.lines) {
		n = len(t.lines)
	}
	out := make([]string, n)
	copy(out, t.lines[len(t.lines)-n:])
	return out
}

// Len returns the number of recorded lines.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.lines)
}
