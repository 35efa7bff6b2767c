package web

import (
	"net/http"

	"github.com/LSkevi/PieTracker/internal/auth"
	"github.com/LSkevi/PieTracker/internal/errorz"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.deps.AuthService.ListUsers(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	out := make([]userJSON, 0, len(users))
	for _, u := range users {
		out = append(out, toUserJSON(u))
	}

	s.writeJSON(w, http.StatusOK, map[string][]userJSON{"users": out})
}

func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role string `json:"role"`
	}
	if err := readJSON(r, &body); err != nil {
		s.handleError(w, r, err)
		return
	}

	role, err := auth.ParseRole(body.Role)
	if err != nil {
		s.handleError(w, r, errorz.InvalidInput{errorz.Keyed{Key: "role", Err: err}})
		return
	}

	user, err := s.deps.AuthService.SetRole(r.Context(), r.PathValue("id"), role)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]userJSON{"user": toUserJSON(user)})
}

func (s *Server) handleSetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.deps.AuthService.SetActive(r.Context(), r.PathValue("id"), active)
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]userJSON{"user": toUserJSON(user)})
	}
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.AuthService.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "User and all associated data deleted",
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.AuthService.UserStats(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	withData, err := s.deps.Expenses.UsersWithData(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		auth.Stats
		UsersWithData int `json:"users_with_data"`
	}{
		Stats:         stats,
		UsersWithData: withData,
	})
}
