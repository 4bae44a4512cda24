package memory

import (
	"sync"
	"time"
)

type entry struct {
	value       any
	lastUpdated time.Time
}

// Repository caches decoded archive documents by path. Entries older than the
// TTL are treated as absent.
type Repository struct {
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
	mu      sync.RWMutex
}

func NewRepository(ttl time.Duration) *Repository {
	return &Repository{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

func (r *Repository) Save(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = entry{value: value, lastUpdated: r.now()}
}

func (r *Repository) Get(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	if !ok || r.now().Sub(e.lastUpdated) > r.ttl {
		return nil, false
	}
	return e.value, true
}

// Invalidate drops every entry, e.g. after a pipeline run rewrote the archive.
func (r *Repository) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.entries)
}

func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
