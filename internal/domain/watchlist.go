package domain

import (
	"sort"
	"sync"
)

// Watchlist is a set of starred coin IDs.
// It is owned by whoever renders the table; there is no shared global instance.
// Thread-safe for concurrent use.
type Watchlist struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewWatchlist creates a watchlist pre-populated with ids.
func NewWatchlist(ids ...string) *Watchlist {
	w := &Watchlist{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			w.ids[id] = struct{}{}
		}
	}
	return w
}

// Add stars a coin.
func (w *Watchlist) Add(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ids[id] = struct{}{}
}

// Remove un-stars a coin.
func (w *Watchlist) Remove(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.ids, id)
}

// Toggle flips the starred state of id and returns the new state.
func (w *Watchlist) Toggle(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.ids[id]; ok {
		delete(w.ids, id)
		return false
	}
	w.ids[id] = struct{}{}
	return true
}

// Has reports whether id is starred.
func (w *Watchlist) Has(id string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.ids[id]
	return ok
}

// IDs returns the starred IDs in lexical order.
func (w *Watchlist) IDs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, 0, len(w.ids))
	for id := range w.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
