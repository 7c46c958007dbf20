// Package relay implements the support chat core: the session
// directory of live connections, the append-only message log, and the
// router that fans sent messages out to the right connections.
package relay

import (
	"sync"

	"grant-desk/contract"
	"grant-desk/domain"
)

// Directory is the live mapping from participant identifier to active
// connection. Keys are unique: one entry per authenticated identifier,
// the last registration wins.
type Directory struct {
	mu       sync.RWMutex
	sessions map[string]contract.Session
}

func NewDirectory() *Directory {
	return &Directory{
		sessions: make(map[string]contract.Session),
	}
}

// Register binds a participant to its connection sink. When the
// identifier already holds an entry backed by a different sink, that
// sink is returned so the caller can close it (close-on-replace).
func (d *Directory) Register(p domain.Participant, sink contract.Sink) contract.Sink {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev, existed := d.sessions[p.ID]
	d.sessions[p.ID] = contract.Session{Participant: p, Sink: sink}

	if existed && prev.Sink != sink {
		return prev.Sink
	}
	return nil
}

// Lookup resolves an identifier to its live session.
func (d *Directory) Lookup(id string) (contract.Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	sess, ok := d.sessions[id]
	return sess, ok
}

// Unregister removes every entry backed by the given sink. Removal is
// by value so a stale connection cannot evict the entry of a newer one
// registered for the same identifier. The scan is acceptable given the
// expected low cardinality of concurrent connections.
func (d *Directory) Unregister(sink contract.Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, sess := range d.sessions {
		if sess.Sink == sink {
			delete(d.sessions, id)
		}
	}
}

// AllWithRole returns a snapshot of the sessions currently registered
// with the given role.
func (d *Directory) AllWithRole(role domain.Role) []contract.Session {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var res []contract.Session
	for _, sess := range d.sessions {
		if sess.Participant.Role == role {
			res = append(res, sess)
		}
	}
	return res
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}
