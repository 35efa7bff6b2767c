package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/LSkevi/PieTracker/internal/category"
)

const (
	// legacyUserIDHeader is the pre-auth way for clients to pick a tenant.
	// Its value is used verbatim, there is no existence check.
	legacyUserIDHeader = "X-User-Id"

	// anonymousUserID is the tenant shared by all unauthenticated callers.
	anonymousUserID = "anonymous"
)

// Identity is the resolved identity of a request.
type Identity struct {
	// UserID is the tenant key for all data operations in the request.
	// Never empty.
	UserID string
	// Verified is true only when UserID came out of a valid bearer token.
	Verified bool
}

// resolveIdentity determines the effective user id of a request:
//
//  1. A valid bearer token wins, its subject is the user id. This takes
//     precedence over the legacy header, holding a valid token for one
//     user must not allow acting as another.
//  2. A present but invalid or expired bearer token falls through as if
//     no token was sent. Pre-auth clients keep working, routes that
//     require verification reject these requests instead.
//  3. A non-empty legacy header value is used verbatim, except the
//     reserved category migration-source key. Addressing that key would
//     let a request tamper with the shared map every later migration
//     clones from, so it resolves to the anonymous tenant instead.
//  4. Everyone else shares the anonymous tenant.
func (s *Server) resolveIdentity(r *http.Request) Identity {
	if raw, ok := bearerToken(r); ok {
		userID, err := s.deps.Tokens.Verify(raw)
		if err == nil {
			return Identity{UserID: userID, Verified: true}
		}
	}

	if legacy := strings.TrimSpace(r.Header.Get(legacyUserIDHeader)); legacy != "" && legacy != category.LegacyNamespace {
		return Identity{UserID: legacy}
	}

	return Identity{UserID: anonymousUserID}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// identity resolves the request identity once and stores it in the
// context. All data operations in the same request use it uniformly.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ContextWithIdentity(r.Context(), s.resolveIdentity(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type ctxKey string

const identityKey ctxKey = "pietrackerIdentity"

func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok {
		return Identity{}, false
	}
	return id, true
}
