package core

// Registry owns the connection-to-client mapping.
type Registry struct {
	clients map[string]*Client // keyed by connection ID
}

// NewRegistry constructs an empty session registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Add inserts a new, unregistered client.
func (r *Registry) Add(c *Client) {
	r.clients[c.ID] = c
}

// Remove deletes the client. The caller must have detached it from every
// channel first.
func (r *Registry) Remove(c *Client) {
	delete(r.clients, c.ID)
}

// Has reports whether the client is still present.
func (r *Registry) Has(c *Client) bool {
	_, ok := r.clients[c.ID]
	return ok
}

// FindByNick returns the client holding the nickname, or nil. Comparison
// is byte-exact; there is no casefolding.
func (r *Registry) FindByNick(nick string) *Client {
	if nick == "" {
		return nil
	}
	for _, c := range r.clients {
		if c.Nick == nick {
			return c
		}
	}
	return nil
}

// Len is the number of connected clients.
func (r *Registry) Len() int {
	return len(r.clients)
}
