package links

import (
	"context"
	"sync"
)

// History is the in-memory copy of an identity's stored records, owned by a
// single UI context. The backing store remains the source of truth: loads
// replace the list wholesale, creates prepend only after the store confirms,
// and deletes are optimistic with rollback on failure.
type History struct {
	repo     HistoryRepository
	identity Identity

	mu    sync.Mutex
	items []ShortenedLink
}

func NewHistory(repo HistoryRepository, identity Identity) *History {
	return &History{repo: repo, identity: identity}
}

// Load fetches the full history and replaces (never merges) the in-memory
// list. Used at startup and whenever the identity changes.
func (h *History) Load(ctx context.Context) error {
	items, err := h.repo.List(ctx, h.identity)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.items = items
	h.mu.Unlock()
	return nil
}

// Reset empties the list without touching the store. Used on sign-out and
// while no session is established.
func (h *History) Reset() {
	h.mu.Lock()
	h.items = nil
	h.mu.Unlock()
}

// Create persists the record and prepends the store's canonical shape. The
// list is not mutated until the store confirms.
func (h *History) Create(ctx context.Context, link ShortenedLink) (ShortenedLink, error) {
	persisted, err := h.repo.Insert(ctx, h.identity, link)
	if err != nil {
		return ShortenedLink{}, err
	}
	h.mu.Lock()
	h.items = append([]ShortenedLink{persisted}, h.items...)
	h.mu.Unlock()
	return persisted, nil
}

// Delete removes the record optimistically and restores the pre-delete list,
// order included, when the store rejects the operation.
func (h *History) Delete(ctx context.Context, id string) error {
	h.mu.Lock()
	idx := -1
	for i := range h.items {
		if h.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		h.mu.Unlock()
		return ErrNotFound
	}
	removed := h.items[idx]
	h.items = append(h.items[:idx:idx], h.items[idx+1:]...)
	h.mu.Unlock()

	if err := h.repo.Delete(ctx, h.identity, id); err != nil {
		h.mu.Lock()
		restored := make([]ShortenedLink, 0, len(h.items)+1)
		restored = append(restored, h.items[:idx]...)
		restored = append(restored, removed)
		restored = append(restored, h.items[idx:]...)
		h.items = restored
		h.mu.Unlock()
		return err
	}
	return nil
}

// Items returns a copy of the current list, newest first.
func (h *History) Items() []ShortenedLink {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ShortenedLink, len(h.items))
	copy(out, h.items)
	return out
}

// Len reports the number of in-memory records.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}
