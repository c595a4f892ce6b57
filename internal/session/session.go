// Package session holds the agent's current login state: who is
// signed in and which bearer token, if any, to attach to gateway
// calls.  Offline logins have no token; the holder still records the
// identity so role checks and profile display keep working.
package session

import (
	"sync"

	"github.com/iliyamo/evcharge-agent/internal/model"
)

// Identity is the last-known signed-in user.
type Identity struct {
	Identifier string
	Role       model.Role
	FullName   string
}

// Holder is a mutex-guarded session store.  It satisfies the gateway's
// TokenSource interface via Token().
type Holder struct {
	mu       sync.RWMutex
	loggedIn bool
	token    string
	identity Identity
}

func NewHolder() *Holder { return &Holder{} }

// Set records a successful login.  token may be empty for offline
// sessions.
func (h *Holder) Set(token string, id Identity) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loggedIn = true
	h.token = token
	h.identity = id
}

// Token returns the current bearer token, empty when logged out or
// offline.
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Identity returns the signed-in identity and whether a session
// exists.
func (h *Holder) Identity() (Identity, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.identity, h.loggedIn
}

// Clear wipes the session on logout.
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loggedIn = false
	h.token = ""
	h.identity = Identity{}
}
