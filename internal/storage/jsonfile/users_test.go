package jsonfile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LSkevi/PieTracker/internal/auth"
	"github.com/LSkevi/PieTracker/internal/email"
	"github.com/LSkevi/PieTracker/internal/errorz"
	"github.com/LSkevi/PieTracker/internal/storage/jsonfile"
)

func testUser(id, username string) auth.User {
	return auth.User{
		ID:           id,
		Username:     username,
		Email:        email.Address(username + "@example.com"),
		PasswordHash: "$argon2id$fake",
		Role:         auth.RoleUser,
		IsActive:     true,
		CreatedAt:    time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
	}
}

func Test_Users(t *testing.T) {
	ctx := context.Background()

	t.Run("ok, open empty directory", func(t *testing.T) {
		store, err := jsonfile.OpenUsers(t.TempDir())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}

		users, err := store.List(ctx)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(users) != 0 {
			t.Errorf("wanted no users, got %d", len(users))
		}
	})

	t.Run("ok, upsert survives a reopen", func(t *testing.T) {
		dir := t.TempDir()

		store, err := jsonfile.OpenUsers(dir)
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}

		want := testUser("id-1", "alice")
		if err := store.Upsert(ctx, want); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}

		reopened, err := jsonfile.OpenUsers(dir)
		if err != nil {
			t.Fatalf("failed to reopen store: %v", err)
		}

		got, err := reopened.FindByID(ctx, "id-1")
		if err != nil {
			t.Fatalf("failed to find user: %v", err)
		}
		if got.Username != want.Username || got.Email != want.Email || got.Role != want.Role {
			t.Errorf("wanted %+v, got %+v", want, got)
		}
	})

	t.Run("ok, lookups are case-insensitive", func(t *testing.T) {
		store, err := jsonfile.OpenUsers(t.TempDir())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}

		if err := store.Upsert(ctx, testUser("id-1", "Alice")); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}

		if _, err := store.FindByUsername(ctx, "aLiCe"); err != nil {
			t.Errorf("failed to find by username: %v", err)
		}
		if _, err := store.FindByEmail(ctx, "ALICE@example.com"); err != nil {
			t.Errorf("failed to find by email: %v", err)
		}
	})

	t.Run("ok, upsert replaces an existing user", func(t *testing.T) {
		store, err := jsonfile.OpenUsers(t.TempDir())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}

		user := testUser("id-1", "alice")
		if err := store.Upsert(ctx, user); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}

		user.IsActive = false
		if err := store.Upsert(ctx, user); err != nil {
			t.Fatalf("failed to upsert again: %v", err)
		}

		got, err := store.FindByID(ctx, "id-1")
		if err != nil {
			t.Fatalf("failed to find user: %v", err)
		}
		if got.IsActive {
			t.Errorf("wanted inactive user after update")
		}
	})

	t.Run("ok, delete removes the user", func(t *testing.T) {
		dir := t.TempDir()

		store, err := jsonfile.OpenUsers(dir)
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}

		if err := store.Upsert(ctx, testUser("id-1", "alice")); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
		if err := store.Delete(ctx, "id-1"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}

		reopened, err := jsonfile.OpenUsers(dir)
		if err != nil {
			t.Fatalf("failed to reopen store: %v", err)
		}

		_, err = reopened.FindByID(ctx, "id-1")
		if !errors.Is(err, errorz.ErrNotFound) {
			t.Errorf("wanted ErrNotFound, got %v", err)
		}
	})

	t.Run("fail, find unknown user", func(t *testing.T) {
		store, err := jsonfile.OpenUsers(t.TempDir())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}

		_, err = store.FindByID(ctx, "no-such-id")
		if !errors.Is(err, errorz.ErrNotFound) {
			t.Errorf("wanted ErrNotFound, got %v", err)
		}
	})

	t.Run("fail, delete unknown user", func(t *testing.T) {
		store, err := jsonfile.OpenUsers(t.TempDir())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}

		err = store.Delete(ctx, "no-such-id")
		if !errors.Is(err, errorz.ErrNotFound) {
			t.Errorf("wanted ErrNotFound, got %v", err)
		}
	})
}
