package ws

import (
	"sync"
)

// Registry is the per-process map of open connections, keyed by connection
// id. A single user may own any number of simultaneous connections.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Conn)}
}

// Add registers a connection.
func (r *Registry) Add(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.ID] = c
}

// Remove unregisters and returns the connection, or nil if unknown.
func (r *Registry) Remove(connID string) *Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.conns[connID]
	delete(r.conns, connID)
	return c
}

// All snapshots every open connection.
func (r *Registry) All() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

// ForUser returns the user's open connections. Guests are never
// addressable by user id.
func (r *Registry) ForUser(userID string) []*Conn {
	if userID == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Conn
	for _, c := range r.conns {
		if c.Participant.Guest {
			continue
		}
		if c.Participant.ID == userID {
			out = append(out, c)
		}
	}
	return out
}

// OnlineCount reports the number of distinct connected participants, not
// connections.
func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make(map[string]struct{}, len(r.conns))
	for _, c := range r.conns {
		ids[c.Participant.ID] = struct{}{}
	}
	return len(ids)
}

// Len reports the number of open connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
