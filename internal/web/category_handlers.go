package web

import (
	"fmt"
	"net/http"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	id, err := s.requestIdentity(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	categories, err := s.deps.Categories.List(r.Context(), id.UserID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	id, err := s.requestIdentity(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var body struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := readJSON(r, &body); err != nil {
		s.handleError(w, r, err)
		return
	}

	color, err := s.deps.Categories.Add(r.Context(), id.UserID, body.Name, body.Color)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message":  fmt.Sprintf("Category %q added successfully", body.Name),
		"category": body.Name,
		"color":    color,
	})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := s.requestIdentity(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	name := r.PathValue("name")

	removed, err := s.deps.Categories.Delete(r.Context(), id.UserID, name)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message":          fmt.Sprintf("Category %q deleted successfully", name),
		"deleted_expenses": removed,
	})
}

func (s *Server) handleCategoryColors(w http.ResponseWriter, r *http.Request) {
	id, err := s.requestIdentity(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	colors, err := s.deps.Categories.Colors(r.Context(), id.UserID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, colors)
}
