// Package category manages per-user category namespaces, maps of
// category name to display color. It owns the one-way migration of the
// pre-multi-tenant shared map into private namespaces.
package category

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/LSkevi/PieTracker/internal/errorz"
)

// DefaultColor is assigned to categories created without a color.
const DefaultColor = "#a8b5a0"

// LegacyNamespace is the reserved key holding the pre-multi-tenant
// shared category map. It is only ever read as a migration source and
// is never a valid tenant, requests must not be able to address it.
const LegacyNamespace = "__legacy__"

// DefaultCategories are always available and cannot be deleted.
var DefaultCategories = []string{"Food", "Transportation", "Shopping", "Entertainment"}

// Store provides access to the category namespace collection.
// Every mutation durably persists the full collection.
type Store interface {
	// Namespace returns the stored namespace for userID and whether an
	// entry exists. An existing empty namespace reports true.
	Namespace(ctx context.Context, userID string) (map[string]string, bool, error)
	// Legacy returns the reserved pre-migration shared namespace.
	Legacy(ctx context.Context) (map[string]string, bool, error)
	SetNamespace(ctx context.Context, userID string, ns map[string]string) error
	DeleteNamespace(ctx context.Context, userID string) error
}

// Expenses is the slice of the expense collaborator the category service
// needs: which categories a user's expenses reference, and cascading
// deletes.
type Expenses interface {
	UsedCategories(ctx context.Context, userID string) ([]string, error)
	DeleteByCategory(ctx context.Context, userID, category string) (int, error)
}

// Service implements the category operations for the resolved user of a
// request.
type Service struct {
	store    Store
	expenses Expenses
}

func NewService(store Store, expenses Expenses) *Service {
	return &Service{
		store:    store,
		expenses: expenses,
	}
}

// Namespace returns userID's category map, migrating the legacy shared
// map on first access.
//
// Migration is one-way and idempotent: the first access copies the legacy
// map (by value) into a private entry for userID. Once a user has an
// entry, even an empty one, the legacy map is never consulted for that
// user again.
func (s *Service) Namespace(ctx context.Context, userID string) (map[string]string, error) {
	ns, ok, err := s.store.Namespace(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ok {
		return ns, nil
	}

	legacy, _, err := s.store.Legacy(ctx)
	if err != nil {
		return nil, err
	}

	ns = make(map[string]string, len(legacy))
	for name, color := range legacy {
		ns[name] = color
	}

	// Persisting the (possibly empty) entry marks userID as migrated.
	if err := s.store.SetNamespace(ctx, userID, ns); err != nil {
		return nil, err
	}

	return ns, nil
}

// List returns all category names visible to userID: the defaults, the
// categories referenced by their expenses and their custom categories,
// deduplicated and sorted.
func (s *Service) List(ctx context.Context, userID string) ([]string, error) {
	ns, err := s.Namespace(ctx, userID)
	if err != nil {
		return nil, err
	}

	used, err := s.expenses.UsedCategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, len(DefaultCategories)+len(used)+len(ns))
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	for _, name := range DefaultCategories {
		add(name)
	}
	for _, name := range used {
		add(name)
	}
	for name := range ns {
		add(name)
	}

	sort.Strings(out)

	return out, nil
}

// Add creates a custom category in userID's namespace and returns the
// stored color. An empty color gets DefaultColor.
func (s *Service) Add(ctx context.Context, userID, name, color string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errorz.InvalidInput{errorz.Keyed{Key: "name", Err: errors.New("category name is required")}}
	}
	if color == "" {
		color = DefaultColor
	}

	existing, err := s.List(ctx, userID)
	if err != nil {
		return "", err
	}
	for _, c := range existing {
		if c == name {
			return "", errorz.InvalidInput{errorz.Keyed{Key: "name", Err: fmt.Errorf("category %q already exists", name)}}
		}
	}

	ns, err := s.Namespace(ctx, userID)
	if err != nil {
		return "", err
	}

	ns[name] = color

	if err := s.store.SetNamespace(ctx, userID, ns); err != nil {
		return "", err
	}

	return color, nil
}

// Delete removes a custom category from userID's namespace and cascades
// to their expenses in that category. It reports how many expenses were
// removed. Default categories cannot be deleted.
func (s *Service) Delete(ctx context.Context, userID, name string) (int, error) {
	for _, c := range DefaultCategories {
		if c == name {
			return 0, errorz.InvalidInput{fmt.Errorf("cannot delete default category: %s", name)}
		}
	}

	ns, err := s.Namespace(ctx, userID)
	if err != nil {
		return 0, err
	}

	if _, ok := ns[name]; ok {
		delete(ns, name)
		if err := s.store.SetNamespace(ctx, userID, ns); err != nil {
			return 0, err
		}
	}

	return s.expenses.DeleteByCategory(ctx, userID, name)
}

// Colors returns userID's category color map.
func (s *Service) Colors(ctx context.Context, userID string) (map[string]string, error) {
	return s.Namespace(ctx, userID)
}

// PurgeUser removes userID's namespace entirely. Used when a user is
// deleted, not reachable through the HTTP API.
func (s *Service) PurgeUser(ctx context.Context, userID string) error {
	return s.store.DeleteNamespace(ctx, userID)
}
