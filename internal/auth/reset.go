package auth

import (
	"sync"
	"time"
)

// DefaultResetTTL is how long password reset tokens stay usable.
const DefaultResetTTL = 15 * time.Minute

type resetEntry struct {
	userID    string
	expiresAt time.Time
}

// resetTokens is the transient mapping of outstanding password reset
// tokens. Tokens live in memory only, a restart voids them. Requesting a
// new token does not invalidate earlier unconsumed ones, each is
// independently single-use.
type resetTokens struct {
	mu      sync.Mutex
	entries map[string]resetEntry
}

func newResetTokens() *resetTokens {
	return &resetTokens{
		entries: make(map[string]resetEntry),
	}
}

func (r *resetTokens) put(token, userID string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[token] = resetEntry{
		userID:    userID,
		expiresAt: expiresAt,
	}
}

func (r *resetTokens) remove(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, token)
}

// consume removes and returns the entry for token. The entry is removed
// even when it turns out to be expired, tokens are single-use on every
// path. Expired tokens report !ok, they are inert even before removal.
func (r *resetTokens) consume(token string, now time.Time) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[token]
	if !ok {
		return "", false
	}

	delete(r.entries, token)

	if now.After(entry.expiresAt) {
		return "", false
	}

	return entry.userID, true
}
