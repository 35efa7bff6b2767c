package web

import (
	"net/http"
	"time"

	"github.com/LSkevi/PieTracker/internal/auth"
	"github.com/LSkevi/PieTracker/internal/email"
	"github.com/LSkevi/PieTracker/internal/errorz"
)

// userJSON is the API shape of a user. The password hash never leaves the
// server.
type userJSON struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

func toUserJSON(u auth.User) userJSON {
	return userJSON{
		ID:        u.ID,
		Username:  u.Username,
		Email:     string(u.Email),
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

type sessionJSON struct {
	User  userJSON `json:"user"`
	Token string   `json:"token"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &body); err != nil {
		s.handleError(w, r, err)
		return
	}

	addr, err := email.ParseAddress(body.Email)
	if err != nil {
		s.handleError(w, r, errorz.InvalidInput{errorz.Keyed{Key: "email", Err: err}})
		return
	}

	pwd, err := auth.ParsePassword(body.Password)
	if err != nil {
		s.handleError(w, r, errorz.InvalidInput{errorz.Keyed{Key: "password", Err: err}})
		return
	}

	user, token, err := s.deps.AuthService.Signup(r.Context(), body.Username, addr, pwd)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, sessionJSON{User: toUserJSON(user), Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &body); err != nil {
		s.handleError(w, r, err)
		return
	}

	// A password outside the accepted bounds cannot match any stored
	// credential, treat it like a mismatch rather than a validation error.
	pwd, err := auth.ParsePassword(body.Password)
	if err != nil {
		s.handleError(w, r, errorz.ErrUnauthenticated)
		return
	}

	user, token, err := s.deps.AuthService.Login(r.Context(), body.Username, pwd)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, sessionJSON{User: toUserJSON(user), Token: token})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, err := s.requestIdentity(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	user, err := s.deps.AuthService.Me(r.Context(), id.UserID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]userJSON{"user": toUserJSON(user)})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := readJSON(r, &body); err != nil {
		s.handleError(w, r, err)
		return
	}

	// The response is identical whether or not the address matches an
	// account, or is even well-formed. Anything else would allow probing
	// for registered addresses.
	if addr, err := email.ParseAddress(body.Email); err == nil {
		s.deps.AuthService.RequestPasswordReset(r.Context(), addr)
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "If that email address is registered, reset instructions are on the way.",
	})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := readJSON(r, &body); err != nil {
		s.handleError(w, r, err)
		return
	}

	pwd, err := auth.ParsePassword(body.NewPassword)
	if err != nil {
		s.handleError(w, r, errorz.InvalidInput{errorz.Keyed{Key: "new_password", Err: err}})
		return
	}

	if err := s.deps.AuthService.ResetPassword(r.Context(), body.Token, pwd); err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password updated, login with your new password.",
	})
}
