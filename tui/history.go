// Package tui provides a Bubble Tea terminal UI for the Parley interpreter.
package tui

// History keeps recently entered commands for arrow-key recall. A cursor
// walks backward from the newest entry; stepping past the newest end puts
// the input line back in the fresh (empty) state.
type History struct {
	lines []string
	limit int
	pos   int // index into lines while navigating, len(lines) otherwise
}

// NewHistory creates a history holding at most limit entries.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Push records an entered command and leaves navigation mode. A repeat of
// the newest entry is not stored twice.
func (h *History) Push(line string) {
	if n := len(h.lines); n == 0 || h.lines[n-1] != line {
		h.lines = append(h.lines, line)
		if len(h.lines) > h.limit {
			h.lines = h.lines[1:]
		}
	}
	h.pos = len(h.lines)
}

// Prev steps to the next older entry, sticking at the oldest.
func (h *History) Prev() (string, bool) {
	if len(h.lines) == 0 {
		return "", false
	}
	if h.pos > 0 {
		h.pos--
	}
	return h.lines[h.pos], true
}

// Next steps toward the newest entry. Past the newest it reports false and
// the input line goes back to empty.
func (h *History) Next() (string, bool) {
	if h.pos >= len(h.lines) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.lines) {
		return "", false
	}
	return h.lines[h.pos], true
}

// ResetCursor leaves navigation mode.
func (h *History) ResetCursor() {
	h.pos = len(h.lines)
}
