// Package handles hands out short-lived references to in-memory binary data,
// the terminal counterpart of a browser object URL.
package handles

import (
	"sync"

	"github.com/google/uuid"
)

const scheme = "blob:"

type Handle string

type Registry struct {
	mu   sync.Mutex
	data map[Handle]entry
}

type entry struct {
	bytes []byte
	mime  string
}

func NewRegistry() *Registry {
	return &Registry{data: map[Handle]entry{}}
}

// Create registers data and returns a fresh handle. The registry keeps its own
// reference; callers must Revoke the handle when done.
func (r *Registry) Create(data []byte, mime string) Handle {
	h := Handle(scheme + uuid.NewString())
	r.mu.Lock()
	r.data[h] = entry{bytes: data, mime: mime}
	r.mu.Unlock()
	return h
}

func (r *Registry) Open(h Handle) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.data[h]
	return e.bytes, ok
}

func (r *Registry) MIME(h Handle) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data[h].mime
}

// Revoke releases h. Revoking an unknown or already revoked handle is a no-op.
func (r *Registry) Revoke(h Handle) {
	if h == "" {
		return
	}
	r.mu.Lock()
	delete(r.data, h)
	r.mu.Unlock()
}

// Live reports how many handles are still registered.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}
