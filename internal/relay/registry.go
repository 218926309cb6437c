package relay

import (
	"sort"
	"sync"
	"time"

	"github.com/eleven-am/transcribe-relay/internal/provider"
)

type ConnectionInfo struct {
	ID           string
	Provider     provider.Name
	OwnerID      string
	Ready        bool
	PendingBytes int
	StartedAt    time.Time
}

type registryEntry struct {
	conn    *Connection
	ownerID string
}

// Registry tracks live connections on this instance.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]registryEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]registryEntry)}
}

func (r *Registry) Add(conn *Connection, ownerID string) {
	r.mu.Lock()
	r.conns[conn.ID()] = registryEntry{conn: conn, ownerID: ownerID}
	r.mu.Unlock()
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.conns, id)
	r.mu.Unlock()
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) CountByProvider() map[provider.Name]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[provider.Name]int)
	for _, e := range r.conns {
		counts[e.conn.Provider()]++
	}
	return counts
}

func (r *Registry) List() []ConnectionInfo {
	r.mu.RLock()
	entries := make([]registryEntry, 0, len(r.conns))
	for _, e := range r.conns {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	infos := make([]ConnectionInfo, len(entries))
	for i, e := range entries {
		infos[i] = ConnectionInfo{
			ID:           e.conn.ID(),
			Provider:     e.conn.Provider(),
			OwnerID:      e.ownerID,
			Ready:        e.conn.Ready(),
			PendingBytes: e.conn.PendingBytes(),
			StartedAt:    e.conn.createdAt,
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].StartedAt.Before(infos[j].StartedAt) })
	return infos
}

// CloseAll closes every live connection with code and reason and returns how
// many were closed. Connections remove themselves once torn down.
func (r *Registry) CloseAll(code int, reason string) int {
	r.mu.RLock()
	conns := make([]*Connection, 0, len(r.conns))
	for _, e := range r.conns {
		conns = append(conns, e.conn)
	}
	r.mu.RUnlock()

	for _, conn := range conns {
		conn.Close(code, reason)
	}
	return len(conns)
}
