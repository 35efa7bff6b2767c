package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/LSkevi/PieTracker/internal/auth"
	"github.com/LSkevi/PieTracker/internal/category"
	"github.com/LSkevi/PieTracker/internal/errorz"
	"github.com/LSkevi/PieTracker/internal/expense"
)

// ServerDeps are the dependencies for the server.
type ServerDeps struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	Tokens      *auth.TokenService
	Expenses    *expense.Service
	Categories  *category.Service
}

// ServerConfig is the configuration for the server.
type ServerConfig struct {
	// AllowedOrigins are the CORS origins the browser frontend may call
	// from. Entries may use a leading "*." wildcard.
	AllowedOrigins []string
}

type Server struct {
	deps    *ServerDeps
	cfg     ServerConfig
	mux     *http.ServeMux
	handler http.Handler
}

func NewServer(deps *ServerDeps, cfg ServerConfig) *Server {
	s := &Server{
		deps: deps,
		cfg:  cfg,
		mux:  http.NewServeMux(),
	}

	// Liveness endpoints.
	s.public("GET /health", http.HandlerFunc(s.handleHealth))
	s.public("GET /{$}", http.HandlerFunc(s.handleRoot))

	// Auth endpoints.
	s.public("POST /auth/signup", http.HandlerFunc(s.handleSignup))
	s.public("POST /auth/login", http.HandlerFunc(s.handleLogin))
	s.verified("GET /auth/me", http.HandlerFunc(s.handleMe))
	s.public("POST /auth/forgot-password", http.HandlerFunc(s.handleForgotPassword))
	s.public("POST /auth/reset-password", http.HandlerFunc(s.handleResetPassword))

	// Admin endpoints. These never fall back to the legacy header or the
	// anonymous tenant, an invalid token fails closed.
	s.adminOnly("GET /admin/users", http.HandlerFunc(s.handleListUsers))
	s.adminOnly("PUT /admin/users/{id}", http.HandlerFunc(s.handleSetRole))
	s.adminOnly("DELETE /admin/users/{id}", http.HandlerFunc(s.handleDeleteUser))
	s.adminOnly("POST /admin/users/{id}/activate", s.handleSetActive(true))
	s.adminOnly("POST /admin/users/{id}/deactivate", s.handleSetActive(false))
	s.adminOnly("GET /admin/stats", http.HandlerFunc(s.handleStats))

	// Tenant-scoped resource endpoints. The resolved user id is the
	// implicit parameter for all of them.
	s.public("GET /expenses", http.HandlerFunc(s.handleListExpenses))
	s.public("POST /expenses", http.HandlerFunc(s.handleCreateExpense))
	s.public("DELETE /expenses/{id}", http.HandlerFunc(s.handleDeleteExpense))
	s.public("GET /expenses/month/{year}/{month}", http.HandlerFunc(s.handleExpensesForMonth))
	s.public("GET /expenses/summary/{year}/{month}", http.HandlerFunc(s.handleMonthlySummary))
	s.public("GET /expenses/available-months", http.HandlerFunc(s.handleAvailableMonths))

	s.public("GET /categories", http.HandlerFunc(s.handleListCategories))
	s.public("POST /categories", http.HandlerFunc(s.handleAddCategory))
	s.public("DELETE /categories/{name}", http.HandlerFunc(s.handleDeleteCategory))
	s.public("GET /categories/colors", http.HandlerFunc(s.handleCategoryColors))

	s.public("GET /currencies", http.HandlerFunc(s.handleCurrencies))

	// Wrap the mux with global middlewares.
	middlewares := []func(http.Handler) http.Handler{
		s.cors,
		s.identity,
	}
	s.handler = s.mux
	for i := len(middlewares) - 1; i >= 0; i-- {
		s.handler = middlewares[i](s.handler)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) public(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

// verified registers a handler that requires a valid bearer token. The
// silent fallback of resolveIdentity does not apply here, a present but
// invalid token is rejected instead of downgraded.
func (s *Server) verified(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok || !id.Verified {
			s.handleError(w, r, errorz.ErrUnauthenticated)
			return
		}

		handler.ServeHTTP(w, r)
	}))
}

// adminOnly registers a handler that requires a valid bearer token
// resolving to an active admin user.
func (s *Server) adminOnly(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok || !id.Verified {
			s.handleError(w, r, errorz.ErrUnauthenticated)
			return
		}

		actor, err := s.deps.AuthService.Me(r.Context(), id.UserID)
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		if !actor.Role.IsAdmin() {
			s.handleError(w, r, errorz.ErrForbidden)
			return
		}

		handler.ServeHTTP(w, r)
	}))
}

// requestIdentity returns the identity stored by the identity middleware.
func (s *Server) requestIdentity(r *http.Request) (Identity, error) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		return Identity{}, errors.New("request reached handler without identity")
	}
	return id, nil
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+legacyUserIDHeader)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == origin {
			return true
		}
		// Entries like "https://*.vercel.app" match any subdomain.
		if prefix, host, ok := strings.Cut(allowed, "*."); ok {
			if strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, "."+host) {
				return true
			}
		}
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "PieTracker API is running",
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to PieTracker API",
	})
}
