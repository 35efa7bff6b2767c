package jsonfile

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/LSkevi/PieTracker/internal/expense"
)

const expensesFile = "expenses.json"

// expenseRecord is the on-disk shape of an expense.
type expenseRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

// Expenses stores expenses per user in a single JSON document.
type Expenses struct {
	mu   sync.Mutex
	path string
	byID map[string][]expenseRecord
}

// OpenExpenses loads the expense collection from dir, creating an empty
// one if no document exists yet.
func OpenExpenses(dir string) (*Expenses, error) {
	s := &Expenses{
		path: filepath.Join(dir, expensesFile),
		byID: make(map[string][]expenseRecord),
	}

	_, err := readDocument(s.path, &s.byID)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// ForUser returns a copy of the expenses belonging to userID.
func (s *Expenses) ForUser(_ context.Context, userID string) ([]expense.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.byID[userID]
	out := make([]expense.Expense, 0, len(recs))
	for _, rec := range recs {
		out = append(out, expense.Expense(rec))
	}

	return out, nil
}

// SetForUser replaces the expenses of userID and persists the collection.
func (s *Expenses) SetForUser(_ context.Context, userID string, expenses []expense.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := make([]expenseRecord, 0, len(expenses))
	for _, e := range expenses {
		recs = append(recs, expenseRecord(e))
	}

	prev, existed := s.byID[userID]
	s.byID[userID] = recs

	if err := writeDocument(s.path, s.byID); err != nil {
		if existed {
			s.byID[userID] = prev
		} else {
			delete(s.byID, userID)
		}
		return err
	}

	return nil
}

// PurgeUser removes all expenses of userID and persists the collection.
func (s *Expenses) PurgeUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.byID[userID]
	if !existed {
		return nil
	}

	delete(s.byID, userID)

	if err := writeDocument(s.path, s.byID); err != nil {
		s.byID[userID] = prev
		return err
	}

	return nil
}

// UsersWithData counts users that have at least one expense.
func (s *Expenses) UsersWithData(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, recs := range s.byID {
		if len(recs) > 0 {
			n++
		}
	}

	return n, nil
}
