package expense

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LSkevi/PieTracker/internal/errorz"
)

// Store provides access to the expense collection, keyed by user id.
// Every mutation durably persists the full collection.
type Store interface {
	ForUser(ctx context.Context, userID string) ([]Expense, error)
	SetForUser(ctx context.Context, userID string, expenses []Expense) error
	PurgeUser(ctx context.Context, userID string) error
	UsersWithData(ctx context.Context) (int, error)
}

// NewExpense is the input for creating an expense.
type NewExpense struct {
	Amount      float64
	Category    string
	Description string
	Date        string
	Currency    string
}

// Service implements the expense operations for a single tenant at a
// time, the user id is an implicit parameter resolved per request.
type Service struct {
	store Store

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store:   store,
		NowFunc: time.Now,
	}
}

// Create stores a new expense for userID.
func (s *Service) Create(ctx context.Context, userID string, in NewExpense) (Expense, error) {
	var errs errorz.InvalidInput
	if in.Amount < 0 {
		errs = append(errs, errorz.Keyed{Key: "amount", Err: errors.New("must not be negative")})
	}
	if strings.TrimSpace(in.Category) == "" {
		errs = append(errs, errorz.Keyed{Key: "category", Err: errors.New("must not be empty")})
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		errs = append(errs, errorz.Keyed{Key: "date", Err: errors.New("must be a YYYY-MM-DD date")})
	}
	if len(errs) > 0 {
		return Expense{}, errs
	}

	if in.Currency == "" {
		in.Currency = DefaultCurrency
	}

	exp := Expense{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        in.Date,
		Currency:    in.Currency,
		CreatedAt:   s.NowFunc(),
	}

	expenses, err := s.store.ForUser(ctx, userID)
	if err != nil {
		return Expense{}, err
	}

	expenses = append(expenses, exp)
	if err := s.store.SetForUser(ctx, userID, expenses); err != nil {
		return Expense{}, err
	}

	return exp, nil
}

// List returns all expenses of userID.
func (s *Service) List(ctx context.Context, userID string) ([]Expense, error) {
	return s.store.ForUser(ctx, userID)
}

// Delete removes the expense with the given id from userID's records.
// Deleting an id that does not exist is not an error.
func (s *Service) Delete(ctx context.Context, userID, expenseID string) error {
	expenses, err := s.store.ForUser(ctx, userID)
	if err != nil {
		return err
	}

	kept := expenses[:0]
	for _, e := range expenses {
		if e.ID != expenseID {
			kept = append(kept, e)
		}
	}

	if len(kept) == len(expenses) {
		return nil
	}

	return s.store.SetForUser(ctx, userID, kept)
}

// ForMonth returns userID's expenses in the given calendar month.
func (s *Service) ForMonth(ctx context.Context, userID string, year, month int) ([]Expense, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}

	expenses, err := s.store.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefix := monthPrefix(year, month)
	out := make([]Expense, 0)
	for _, e := range expenses {
		if strings.HasPrefix(e.Date, prefix) {
			out = append(out, e)
		}
	}

	return out, nil
}

// Summary aggregates a calendar month of expenses.
type Summary struct {
	Month        string             `json:"month"`
	Total        float64            `json:"total"`
	Categories   map[string]float64 `json:"categories"`
	ExpenseCount int                `json:"expense_count"`
}

// MonthlySummary totals userID's expenses in the given month per category.
func (s *Service) MonthlySummary(ctx context.Context, userID string, year, month int) (Summary, error) {
	expenses, err := s.ForMonth(ctx, userID, year, month)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		Month:        monthPrefix(year, month),
		Categories:   make(map[string]float64),
		ExpenseCount: len(expenses),
	}
	for _, e := range expenses {
		sum.Categories[e.Category] += e.Amount
		sum.Total += e.Amount
	}

	return sum, nil
}

// Month is a year-month combination that has expenses.
type Month struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	YearMonth string `json:"year_month"`
}

// AvailableMonths returns the sorted year-month combinations with at
// least one expense for userID.
func (s *Service) AvailableMonths(ctx context.Context, userID string) ([]Month, error) {
	expenses, err := s.store.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]Month)
	for _, e := range expenses {
		t, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			continue
		}
		ym := t.Format("2006-01")
		seen[ym] = Month{
			Year:      t.Year(),
			Month:     int(t.Month()),
			YearMonth: ym,
		}
	}

	out := make([]Month, 0, len(seen))
	for _, m := range seen {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].YearMonth < out[j].YearMonth
	})

	return out, nil
}

// UsedCategories returns the distinct categories appearing in userID's
// expenses.
func (s *Service) UsedCategories(ctx context.Context, userID string) ([]string, error) {
	expenses, err := s.store.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, e := range expenses {
		if e.Category == "" {
			continue
		}
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}

	return out, nil
}

// DeleteByCategory removes all of userID's expenses in the given category
// and reports how many were removed.
func (s *Service) DeleteByCategory(ctx context.Context, userID, category string) (int, error) {
	expenses, err := s.store.ForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	kept := expenses[:0]
	for _, e := range expenses {
		if e.Category != category {
			kept = append(kept, e)
		}
	}

	removed := len(expenses) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if err := s.store.SetForUser(ctx, userID, kept); err != nil {
		return 0, err
	}

	return removed, nil
}

// PurgeUser removes all expense data of userID.
func (s *Service) PurgeUser(ctx context.Context, userID string) error {
	return s.store.PurgeUser(ctx, userID)
}

// UsersWithData counts users that have at least one expense.
func (s *Service) UsersWithData(ctx context.Context) (int, error) {
	return s.store.UsersWithData(ctx)
}

func validateMonth(year, month int) error {
	if year < 1 || month < 1 || month > 12 {
		return errorz.InvalidInput{fmt.Errorf("invalid month %d-%d", year, month)}
	}
	return nil
}

func monthPrefix(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
