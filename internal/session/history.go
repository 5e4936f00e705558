package session

import (
	"strings"
	"sync"
)

// History is the append-only log of serialized step outcomes, oldest first.
type History struct {
	mu      sync.RWMutex
	entries []string
}

func (h *History) Append(entry string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Entries returns a copy of the log.
func (h *History) Entries() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// String joins the entries with newlines.
func (h *History) String() string {
	return strings.Join(h.Entries(), "\n")
}
