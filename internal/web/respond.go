package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/LSkevi/PieTracker/internal/errorz"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.deps.Logger.Error("failed to encode response", "error", err)
	}
}

type detailJSON struct {
	Detail string `json:"detail"`
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var invalidInput errorz.InvalidInput
	switch {
	case errors.As(err, &invalidInput):
		s.writeJSON(w, http.StatusBadRequest, detailJSON{Detail: invalidInput.Error()})
	case errors.Is(err, errorz.ErrInvalidOrExpired):
		// Deliberately uninformative, see the reset flow.
		s.writeJSON(w, http.StatusBadRequest, detailJSON{Detail: "invalid or expired token"})
	case errors.Is(err, errorz.ErrUnauthenticated):
		s.writeJSON(w, http.StatusUnauthorized, detailJSON{Detail: "unauthenticated"})
	case errors.Is(err, errorz.ErrForbidden):
		s.writeJSON(w, http.StatusForbidden, detailJSON{Detail: "forbidden"})
	case errors.Is(err, errorz.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, detailJSON{Detail: "not found"})
	default:
		s.deps.Logger.Error("internal server error", "url", r.URL.String(), "error", err)
		s.writeJSON(w, http.StatusInternalServerError, detailJSON{Detail: "internal server error"})
	}
}

// readJSON decodes the request body into v. A malformed body maps to a
// 400 via errorz.InvalidInput.
func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errorz.InvalidInput{err}
	}
	return nil
}
