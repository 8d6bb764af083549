package chat

import "sync"

// PresenceTable is the single authoritative user -> connection mapping. All
// mutation goes through this API under one lock; callers never read-modify-
// write around it. At most one connection per user: a later connection for
// the same user replaces the earlier mapping (last-connect-wins).
type PresenceTable struct {
	mu     sync.RWMutex
	byUser map[string]*Client
}

func NewPresenceTable() *PresenceTable {
	return &PresenceTable{byUser: make(map[string]*Client)}
}

// Set registers the connection for its user, returning the replaced client
// (nil if the user was offline). The replaced connection is not closed here;
// it simply stops receiving user-routed events.
func (t *PresenceTable) Set(userID string, c *Client) (replaced *Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	replaced = t.byUser[userID]
	if replaced == c {
		replaced = nil
	}
	t.byUser[userID] = c
	return replaced
}

// RemoveIfMatches removes the user's entry only when it still points at this
// exact connection, so a stale disconnect cannot evict a newer session that
// won a reconnect race.
func (t *PresenceTable) RemoveIfMatches(userID string, c *Client) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.byUser[userID]
	if !ok || cur != c {
		return false
	}
	delete(t.byUser, userID)
	return true
}

func (t *PresenceTable) Get(userID string) (*Client, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.byUser[userID]
	return c, ok
}

// Snapshot returns the online user ids at this instant. Concurrent connects
// and disconnects may race it; convergence comes from subsequent presence
// events.
func (t *PresenceTable) Snapshot() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.byUser))
	for u := range t.byUser {
		out = append(out, u)
	}
	return out
}

// Clients returns every registered connection.
func (t *PresenceTable) Clients() []*Client {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Client, 0, len(t.byUser))
	for _, c := range t.byUser {
		out = append(out, c)
	}
	return out
}

func (t *PresenceTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byUser)
}
