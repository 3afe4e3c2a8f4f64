package ws

import "sync"

// Registry maps a user to their single live connection. Last registration
// wins; a superseded connection stays alive but is orphaned from the map
// and the transport layer eventually closes it.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

func (r *Registry) Register(userID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[userID] = c
}

// Unregister removes the association only if c is still the registered
// connection. A user who reconnected before the old connection's teardown
// finished keeps their new registration.
func (r *Registry) Unregister(userID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.clients[userID]; ok && cur == c {
		delete(r.clients, userID)
	}
}

// Resolve returns the live connections for users, preserving input order.
// Users with no connection are silently skipped; this is the expected case
// for offline recipients.
func (r *Registry) Resolve(users []string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(users))
	for _, u := range users {
		if c, ok := r.clients[u]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Users returns the identities of all registered connections.
func (r *Registry) Users() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.clients))
	for u := range r.clients {
		out = append(out, u)
	}
	return out
}
