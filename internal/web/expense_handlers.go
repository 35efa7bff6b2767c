package web

import (
	"net/http"
	"strconv"

	"github.com/LSkevi/PieTracker/internal/errorz"
	"github.com/LSkevi/PieTracker/internal/expense"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	id, err := s.requestIdentity(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	expenses, err := s.deps.Expenses.List(r.Context(), id.UserID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := s.requestIdentity(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var body struct {
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Description string  `json:"description"`
		Date        string  `json:"date"`
		Currency    string  `json:"currency"`
	}
	if err := readJSON(r, &body); err != nil {
		s.handleError(w, r, err)
		return
	}

	exp, err := s.deps.Expenses.Create(r.Context(), id.UserID, expense.NewExpense{
		Amount:      body.Amount,
		Category:    body.Category,
		Description: body.Description,
		Date:        body.Date,
		Currency:    body.Currency,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, exp)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := s.requestIdentity(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if err := s.deps.Expenses.Delete(r.Context(), id.UserID, r.PathValue("id")); err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Expense deleted successfully",
	})
}

func (s *Server) handleExpensesForMonth(w http.ResponseWriter, r *http.Request) {
	id, err := s.requestIdentity(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	year, month, err := yearMonth(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	expenses, err := s.deps.Expenses.ForMonth(r.Context(), id.UserID, year, month)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	id, err := s.requestIdentity(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	year, month, err := yearMonth(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	sum, err := s.deps.Expenses.MonthlySummary(r.Context(), id.UserID, year, month)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleAvailableMonths(w http.ResponseWriter, r *http.Request) {
	id, err := s.requestIdentity(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	months, err := s.deps.Expenses.AvailableMonths(r.Context(), id.UserID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, months)
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, expense.Currencies())
}

func yearMonth(r *http.Request) (int, int, error) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		return 0, 0, errorz.InvalidInput{errorz.Keyed{Key: "year", Err: err}}
	}

	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil {
		return 0, 0, errorz.InvalidInput{errorz.Keyed{Key: "month", Err: err}}
	}

	return year, month, nil
}
