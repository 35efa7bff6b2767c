package jsonfile_test

import (
	"context"
	"testing"
	"time"

	"github.com/LSkevi/PieTracker/internal/expense"
	"github.com/LSkevi/PieTracker/internal/storage/jsonfile"
)

func testExpense(id, userID string) expense.Expense {
	return expense.Expense{
		ID:        id,
		UserID:    userID,
		Amount:    12.5,
		Category:  "Food",
		Date:      "2026-08-23",
		Currency:  "CAD",
		CreatedAt: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
	}
}

func Test_Expenses(t *testing.T) {
	ctx := context.Background()

	t.Run("ok, expenses survive a reopen", func(t *testing.T) {
		dir := t.TempDir()

		store, err := jsonfile.OpenExpenses(dir)
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}

		want := []expense.Expense{testExpense("e-1", "user-1"), testExpense("e-2", "user-1")}
		if err := store.SetForUser(ctx, "user-1", want); err != nil {
			t.Fatalf("failed to set expenses: %v", err)
		}

		reopened, err := jsonfile.OpenExpenses(dir)
		if err != nil {
			t.Fatalf("failed to reopen store: %v", err)
		}

		got, err := reopened.ForUser(ctx, "user-1")
		if err != nil {
			t.Fatalf("failed to get expenses: %v", err)
		}
		if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("wanted %v, got %v", want, got)
		}
	})

	t.Run("ok, users are isolated", func(t *testing.T) {
		store, err := jsonfile.OpenExpenses(t.TempDir())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}

		if err := store.SetForUser(ctx, "user-1", []expense.Expense{testExpense("e-1", "user-1")}); err != nil {
			t.Fatalf("failed to set expenses: %v", err)
		}

		got, err := store.ForUser(ctx, "user-2")
		if err != nil {
			t.Fatalf("failed to get expenses: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("wanted no expenses for other user, got %v", got)
		}
	})

	t.Run("ok, purge removes only one user", func(t *testing.T) {
		store, err := jsonfile.OpenExpenses(t.TempDir())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}

		if err := store.SetForUser(ctx, "user-1", []expense.Expense{testExpense("e-1", "user-1")}); err != nil {
			t.Fatalf("failed to set expenses: %v", err)
		}
		if err := store.SetForUser(ctx, "user-2", []expense.Expense{testExpense("e-2", "user-2")}); err != nil {
			t.Fatalf("failed to set expenses: %v", err)
		}

		if err := store.PurgeUser(ctx, "user-1"); err != nil {
			t.Fatalf("failed to purge: %v", err)
		}

		got, err := store.ForUser(ctx, "user-1")
		if err != nil {
			t.Fatalf("failed to get expenses: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("wanted no expenses after purge, got %v", got)
		}

		kept, err := store.ForUser(ctx, "user-2")
		if err != nil {
			t.Fatalf("failed to get expenses: %v", err)
		}
		if len(kept) != 1 {
			t.Errorf("other user should keep their expenses, got %v", kept)
		}
	})

	t.Run("ok, users with data", func(t *testing.T) {
		store, err := jsonfile.OpenExpenses(t.TempDir())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}

		if err := store.SetForUser(ctx, "user-1", []expense.Expense{testExpense("e-1", "user-1")}); err != nil {
			t.Fatalf("failed to set expenses: %v", err)
		}
		if err := store.SetForUser(ctx, "user-2", nil); err != nil {
			t.Fatalf("failed to set expenses: %v", err)
		}

		n, err := store.UsersWithData(ctx)
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if n != 1 {
			t.Errorf("wanted 1 user with data, got %d", n)
		}
	})
}
