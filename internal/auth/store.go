package auth

import (
	"context"

	"github.com/LSkevi/PieTracker/internal/email"
)

// Store provides access to the user collection.
//
// Lookups by username and email are case-insensitive. The store performs
// no uniqueness checks itself, the Service does so before inserting.
// Every mutation durably persists the full collection.
type Store interface {
	FindByID(ctx context.Context, id string) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByEmail(ctx context.Context, addr email.Address) (User, error)
	List(ctx context.Context) ([]User, error)
	Upsert(ctx context.Context, u User) error
	Delete(ctx context.Context, id string) error
}

// Purger removes all data a service holds for a user. Deleting a user
// cascades to their expense and category data through this interface.
type Purger interface {
	PurgeUser(ctx context.Context, userID string) error
}
