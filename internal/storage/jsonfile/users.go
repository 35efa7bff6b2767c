package jsonfile

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/LSkevi/PieTracker/internal/auth"
	"github.com/LSkevi/PieTracker/internal/email"
	"github.com/LSkevi/PieTracker/internal/errorz"
)

const usersFile = "users.json"

// userRecord is the on-disk shape of a user, keyed by id in the document.
type userRecord struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
}

// Users is a user store backed by a single JSON document.
type Users struct {
	mu    sync.Mutex
	path  string
	users map[string]userRecord
}

// OpenUsers loads the user collection from dir, creating an empty one if
// no document exists yet.
func OpenUsers(dir string) (*Users, error) {
	s := &Users{
		path:  filepath.Join(dir, usersFile),
		users: make(map[string]userRecord),
	}

	_, err := readDocument(s.path, &s.users)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Users) FindByID(_ context.Context, id string) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return auth.User{}, errorz.ErrNotFound
	}

	return toUser(rec)
}

func (s *Users) FindByUsername(_ context.Context, username string) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.users {
		if strings.EqualFold(rec.Username, username) {
			return toUser(rec)
		}
	}

	return auth.User{}, errorz.ErrNotFound
}

func (s *Users) FindByEmail(_ context.Context, addr email.Address) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.users {
		if strings.EqualFold(rec.Email, string(addr)) {
			return toUser(rec)
		}
	}

	return auth.User{}, errorz.ErrNotFound
}

func (s *Users) List(_ context.Context) ([]auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]auth.User, 0, len(s.users))
	for _, rec := range s.users {
		u, err := toUser(rec)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, nil
}

func (s *Users) Upsert(_ context.Context, u auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.users[u.ID]
	s.users[u.ID] = toRecord(u)

	if err := writeDocument(s.path, s.users); err != nil {
		// Keep memory and disk consistent, roll the collection back.
		if existed {
			s.users[u.ID] = prev
		} else {
			delete(s.users, u.ID)
		}
		return err
	}

	return nil
}

func (s *Users) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.users[id]
	if !ok {
		return errorz.ErrNotFound
	}

	delete(s.users, id)

	if err := writeDocument(s.path, s.users); err != nil {
		s.users[id] = prev
		return err
	}

	return nil
}

func toRecord(u auth.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Username:     u.Username,
		Email:        string(u.Email),
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		LastLogin:    u.LastLogin,
	}
}

func toUser(rec userRecord) (auth.User, error) {
	role, err := auth.ParseRole(rec.Role)
	if err != nil {
		return auth.User{}, fmt.Errorf("user %s: %w", rec.ID, err)
	}

	return auth.User{
		ID:           rec.ID,
		Username:     rec.Username,
		Email:        email.Address(rec.Email),
		PasswordHash: rec.PasswordHash,
		Role:         role,
		IsActive:     rec.IsActive,
		CreatedAt:    rec.CreatedAt,
		LastLogin:    rec.LastLogin,
	}, nil
}

var _ auth.Store = (*Users)(nil)
