package jsonfile_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/LSkevi/PieTracker/internal/storage/jsonfile"
)

func openCategories(t *testing.T, dir string) *jsonfile.Categories {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := jsonfile.OpenCategories(dir, logger)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return store
}

func writeCategoriesFile(t *testing.T, dir, content string) {
	t.Helper()

	path := filepath.Join(dir, "categories.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}
}

func Test_Categories(t *testing.T) {
	ctx := context.Background()

	t.Run("ok, set and get a namespace", func(t *testing.T) {
		store := openCategories(t, t.TempDir())

		want := map[string]string{"Sushi": "#111111"}
		if err := store.SetNamespace(ctx, "user-1", want); err != nil {
			t.Fatalf("failed to set namespace: %v", err)
		}

		got, ok, err := store.Namespace(ctx, "user-1")
		if err != nil {
			t.Fatalf("failed to get namespace: %v", err)
		}
		if !ok {
			t.Fatalf("namespace should exist")
		}
		if got["Sushi"] != "#111111" {
			t.Errorf("wanted %v, got %v", want, got)
		}
	})

	t.Run("ok, an empty namespace still exists", func(t *testing.T) {
		store := openCategories(t, t.TempDir())

		if err := store.SetNamespace(ctx, "user-1", map[string]string{}); err != nil {
			t.Fatalf("failed to set namespace: %v", err)
		}

		got, ok, err := store.Namespace(ctx, "user-1")
		if err != nil {
			t.Fatalf("failed to get namespace: %v", err)
		}
		if !ok {
			t.Errorf("empty namespace should still exist")
		}
		if len(got) != 0 {
			t.Errorf("wanted empty namespace, got %v", got)
		}
	})

	t.Run("ok, returned namespace is a copy", func(t *testing.T) {
		store := openCategories(t, t.TempDir())

		if err := store.SetNamespace(ctx, "user-1", map[string]string{"Sushi": "#111111"}); err != nil {
			t.Fatalf("failed to set namespace: %v", err)
		}

		first, _, err := store.Namespace(ctx, "user-1")
		if err != nil {
			t.Fatalf("failed to get namespace: %v", err)
		}

		// Mutating the returned map must not affect the store.
		delete(first, "Sushi")

		second, _, err := store.Namespace(ctx, "user-1")
		if err != nil {
			t.Fatalf("failed to get namespace again: %v", err)
		}
		if second["Sushi"] != "#111111" {
			t.Errorf("store was mutated through a returned copy: %v", second)
		}
	})

	t.Run("ok, namespaces survive a reopen", func(t *testing.T) {
		dir := t.TempDir()

		store := openCategories(t, dir)
		if err := store.SetNamespace(ctx, "user-1", map[string]string{"Sushi": "#111111"}); err != nil {
			t.Fatalf("failed to set namespace: %v", err)
		}

		reopened := openCategories(t, dir)
		got, ok, err := reopened.Namespace(ctx, "user-1")
		if err != nil {
			t.Fatalf("failed to get namespace: %v", err)
		}
		if !ok || got["Sushi"] != "#111111" {
			t.Errorf("namespace did not survive reopen: ok=%t %v", ok, got)
		}
	})

	t.Run("ok, delete namespace", func(t *testing.T) {
		store := openCategories(t, t.TempDir())

		if err := store.SetNamespace(ctx, "user-1", map[string]string{"Sushi": "#111111"}); err != nil {
			t.Fatalf("failed to set namespace: %v", err)
		}
		if err := store.DeleteNamespace(ctx, "user-1"); err != nil {
			t.Fatalf("failed to delete namespace: %v", err)
		}

		_, ok, err := store.Namespace(ctx, "user-1")
		if err != nil {
			t.Fatalf("failed to get namespace: %v", err)
		}
		if ok {
			t.Errorf("namespace should be gone")
		}
	})

	t.Run("ok, deleting an absent namespace is a no-op", func(t *testing.T) {
		store := openCategories(t, t.TempDir())

		if err := store.DeleteNamespace(ctx, "no-such-user"); err != nil {
			t.Errorf("wanted nil, got %v", err)
		}
	})
}

func Test_Categories_Migration(t *testing.T) {
	ctx := context.Background()

	t.Run("ok, flat map becomes the legacy namespace", func(t *testing.T) {
		dir := t.TempDir()
		writeCategoriesFile(t, dir, `{"Food": "#ff0000", "Travel": "#00ff00"}`)

		store := openCategories(t, dir)

		legacy, ok, err := store.Legacy(ctx)
		if err != nil {
			t.Fatalf("failed to get legacy namespace: %v", err)
		}
		if !ok {
			t.Fatalf("legacy namespace should exist")
		}
		if legacy["Food"] != "#ff0000" || legacy["Travel"] != "#00ff00" {
			t.Errorf("unexpected legacy namespace: %v", legacy)
		}

		// The migration is written back, a reopen sees the versioned form
		// without migrating again.
		reopened := openCategories(t, dir)
		legacy, ok, err = reopened.Legacy(ctx)
		if err != nil || !ok || legacy["Food"] != "#ff0000" {
			t.Errorf("migration did not persist: ok=%t err=%v %v", ok, err, legacy)
		}
	})

	t.Run("ok, ancient list form migrates to an empty document", func(t *testing.T) {
		dir := t.TempDir()
		writeCategoriesFile(t, dir, `["Food", "Travel"]`)

		store := openCategories(t, dir)

		_, ok, err := store.Legacy(ctx)
		if err != nil {
			t.Fatalf("failed to get legacy namespace: %v", err)
		}
		if ok {
			t.Errorf("list form carries no colors, legacy namespace should not exist")
		}
	})

	t.Run("ok, current versioned document loads as-is", func(t *testing.T) {
		dir := t.TempDir()
		writeCategoriesFile(t, dir, `{"version": 2, "namespaces": {"user-1": {"Sushi": "#111111"}}}`)

		store := openCategories(t, dir)

		got, ok, err := store.Namespace(ctx, "user-1")
		if err != nil || !ok || got["Sushi"] != "#111111" {
			t.Errorf("versioned document did not load: ok=%t err=%v %v", ok, err, got)
		}
	})

	t.Run("fail, unsupported document version", func(t *testing.T) {
		dir := t.TempDir()
		writeCategoriesFile(t, dir, `{"version": 99, "namespaces": {}}`)

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		_, err := jsonfile.OpenCategories(dir, logger)
		if err == nil {
			t.Errorf("expected error, got nil")
		}
	})

	t.Run("fail, garbage document", func(t *testing.T) {
		dir := t.TempDir()
		writeCategoriesFile(t, dir, `not json at all`)

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		_, err := jsonfile.OpenCategories(dir, logger)
		if err == nil {
			t.Errorf("expected error, got nil")
		}
	})
}
