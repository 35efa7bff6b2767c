package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LSkevi/PieTracker/internal/email"
	"github.com/LSkevi/PieTracker/internal/errorz"
	"github.com/LSkevi/PieTracker/internal/krypto"
)

var (
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already taken")
)

// Notifier delivers password reset tokens out-of-band.
type Notifier interface {
	SendPasswordReset(ctx context.Context, recipient email.Address, token krypto.Token) error
}

// ErrFunc is a function that handles errors from worker goroutines.
type ErrFunc func(error)

// ServiceConfig is the configuration for the Service.
type ServiceConfig struct {
	// WorkerTimeout is the max duration worker goroutines are allowed
	// to take before they are cancelled.
	WorkerTimeout time.Duration
	// ResetTokenExpiry is the duration a password reset token is valid.
	ResetTokenExpiry time.Duration
	// SuperUsername and SuperPassword are the reserved bootstrap
	// credentials. A login attempt with these exact credentials creates
	// or refreshes a fixed super admin account.
	SuperUsername string
	SuperPassword krypto.Secret
}

// Service provides the main rules for authentication and account
// management.
type Service struct {
	store      Store
	tokens     *TokenService
	notifier   Notifier
	purgers    []Purger
	resets     *resetTokens
	wg         *sync.WaitGroup
	errHandler ErrFunc
	cfg        ServiceConfig

	// comparisonHash is used to compare passwords when no user was found.
	comparisonHash string

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewService(store Store, tokens *TokenService, notifier Notifier, errHandler ErrFunc, cfg ServiceConfig) (*Service, error) {
	if cfg.ResetTokenExpiry == 0 {
		cfg.ResetTokenExpiry = DefaultResetTTL
	}

	tok, err := krypto.GenerateToken()
	if err != nil {
		return nil, err
	}

	hash, err := krypto.HashArgon2(tok[:])
	if err != nil {
		return nil, err
	}

	svc := &Service{
		store:          store,
		tokens:         tokens,
		notifier:       notifier,
		resets:         newResetTokens(),
		wg:             &sync.WaitGroup{},
		errHandler:     errHandler,
		cfg:            cfg,
		comparisonHash: hash,
		NowFunc:        time.Now,
	}

	return svc, nil
}

// AddPurger registers a collaborator whose per-user data is removed when
// a user is deleted.
func (s *Service) AddPurger(p Purger) {
	s.purgers = append(s.purgers, p)
}

// Wait waits for all open workers to finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Signup creates a new user with the provided credentials and returns the
// user together with a bearer token for it.
func (s *Service) Signup(ctx context.Context, username string, addr email.Address, pwd Password) (User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, "", errorz.InvalidInput{errorz.Keyed{Key: "username", Err: errors.New("must not be empty")}}
	}

	// Uniqueness is enforced here, before insert, not by the store.
	_, err := s.store.FindByUsername(ctx, username)
	if err == nil {
		return User{}, "", errorz.InvalidInput{errorz.Keyed{Key: "username", Err: ErrDuplicateUsername}}
	}
	if !errors.Is(err, errorz.ErrNotFound) {
		return User{}, "", err
	}

	_, err = s.store.FindByEmail(ctx, addr)
	if err == nil {
		return User{}, "", errorz.InvalidInput{errorz.Keyed{Key: "email", Err: ErrDuplicateEmail}}
	}
	if !errors.Is(err, errorz.ErrNotFound) {
		return User{}, "", err
	}

	hash, err := pwd.Hash()
	if err != nil {
		return User{}, "", err
	}

	now := s.NowFunc()
	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        addr,
		PasswordHash: hash,
		Role:         RoleUser,
		IsActive:     true,
		CreatedAt:    now,
	}

	if err := s.store.Upsert(ctx, user); err != nil {
		return User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return User{}, "", err
	}

	return user, token, nil
}

// Login verifies the provided credentials and returns the user and a
// fresh bearer token.
//
// A wrong username or password yields errorz.ErrUnauthenticated. A correct
// password on a deactivated account yields errorz.ErrForbidden, the
// account exists but may not be used.
func (s *Service) Login(ctx context.Context, username string, pwd Password) (User, string, error) {
	username = strings.TrimSpace(username)

	if s.isSuperLogin(username, pwd) {
		return s.bootstrapSuperAdmin(ctx, username, pwd)
	}

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errorz.ErrNotFound) {
			// Even if no user is found we compare to a hash to prevent
			// timing differences that could result in user enumeration
			// attacks.
			_ = pwd.Match(s.comparisonHash)
			return User{}, "", errorz.ErrUnauthenticated
		}
		return User{}, "", err
	}

	if !pwd.Match(user.PasswordHash) {
		return User{}, "", errorz.ErrUnauthenticated
	}

	if !user.IsActive {
		return User{}, "", errorz.ErrForbidden
	}

	now := s.NowFunc()
	user.LastLogin = &now
	if err := s.store.Upsert(ctx, user); err != nil {
		return User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return User{}, "", err
	}

	return user, token, nil
}

func (s *Service) isSuperLogin(username string, pwd Password) bool {
	if s.cfg.SuperUsername == "" || len(s.cfg.SuperPassword.SecretValue()) == 0 {
		return false
	}

	if !strings.EqualFold(username, s.cfg.SuperUsername) {
		return false
	}

	// Compare through a hash so the plaintext never leaves the Password.
	hash, err := krypto.HashArgon2(s.cfg.SuperPassword.SecretValue())
	if err != nil {
		return false
	}

	return pwd.Match(hash)
}

// bootstrapSuperAdmin creates or refreshes the reserved super admin
// account. It runs on every login attempt with the exact superuser
// credentials, so a locked-out or deleted super admin can always be
// restored.
func (s *Service) bootstrapSuperAdmin(ctx context.Context, username string, pwd Password) (User, string, error) {
	now := s.NowFunc()

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, errorz.ErrNotFound) {
			return User{}, "", err
		}

		addr, addrErr := email.ParseAddress(username)
		if addrErr != nil {
			addr = email.Address(strings.ToLower(username) + "@pietracker.local")
		}

		// Signup cannot reserve the superuser address, so another account
		// may already hold it. Creating a second user with the same email
		// would break email uniqueness, refuse instead.
		_, emailErr := s.store.FindByEmail(ctx, addr)
		if emailErr == nil {
			return User{}, "", fmt.Errorf("superuser bootstrap: email %s is already taken by another account", addr)
		}
		if !errors.Is(emailErr, errorz.ErrNotFound) {
			return User{}, "", emailErr
		}

		user = User{
			ID:        uuid.NewString(),
			Username:  username,
			Email:     addr,
			CreatedAt: now,
		}
	}

	hash, err := pwd.Hash()
	if err != nil {
		return User{}, "", err
	}

	user.PasswordHash = hash
	user.Role = RoleSuperAdmin
	user.IsActive = true
	user.LastLogin = &now

	if err := s.store.Upsert(ctx, user); err != nil {
		return User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return User{}, "", err
	}

	return user, token, nil
}

// Me returns the profile of the user identified by userID.
func (s *Service) Me(ctx context.Context, userID string) (User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errorz.ErrNotFound) {
			// The token was valid but its subject no longer exists.
			return User{}, errorz.ErrUnauthenticated
		}
		return User{}, err
	}

	if !user.IsActive {
		return User{}, errorz.ErrForbidden
	}

	return user, nil
}

// RequestPasswordReset mints a single-use reset token for the user with
// the provided email address and delivers it out-of-band.
//
// The main work of this method is done in a separate goroutine and no
// output indicates whether the email matched an account. This is by
// design to prevent information leakage.
func (s *Service) RequestPasswordReset(_ context.Context, addr email.Address) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		wCtx, cancel := context.WithTimeout(context.Background(), s.cfg.WorkerTimeout)
		defer cancel()

		err := s.startPasswordReset(wCtx, addr)
		if err != nil {
			s.errHandler(err)
			return
		}
	}()
}

func (s *Service) startPasswordReset(ctx context.Context, addr email.Address) error {
	user, err := s.store.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, errorz.ErrNotFound) {
			// No matching account. The caller already received the generic
			// response, nothing more to do.
			return nil
		}
		return err
	}

	token, err := krypto.GenerateToken()
	if err != nil {
		return err
	}

	// Earlier unconsumed tokens for the same user stay valid until they
	// expire or get used.
	s.resets.put(token.String(), user.ID, s.NowFunc().Add(s.cfg.ResetTokenExpiry))

	err = s.notifier.SendPasswordReset(ctx, user.Email, token)
	if err != nil {
		// The user never received the token, don't leave it outstanding.
		s.resets.remove(token.String())
		return err
	}

	return nil
}

// ResetPassword consumes a reset token and stores a new password for the
// referenced user.
//
// Unknown, expired and already-used tokens all fail with
// errorz.ErrInvalidOrExpired, the cases are deliberately not
// distinguishable by the caller. The token record is removed on every
// failure path, tokens are single-use.
func (s *Service) ResetPassword(ctx context.Context, rawToken string, newPwd Password) error {
	userID, ok := s.resets.consume(rawToken, s.NowFunc())
	if !ok {
		return errorz.ErrInvalidOrExpired
	}

	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errorz.ErrNotFound) {
			// The referenced user no longer exists, fail closed.
			return errorz.ErrInvalidOrExpired
		}
		return err
	}

	hash, err := newPwd.Hash()
	if err != nil {
		return err
	}

	user.PasswordHash = hash

	return s.store.Upsert(ctx, user)
}

// ListUsers returns all users, active and inactive.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

// SetActive toggles the active flag of the user with the given id.
func (s *Service) SetActive(ctx context.Context, userID string, active bool) (User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return User{}, err
	}

	user.IsActive = active
	if err := s.store.Upsert(ctx, user); err != nil {
		return User{}, err
	}

	return user, nil
}

// SetRole changes the role of the user with the given id.
func (s *Service) SetRole(ctx context.Context, userID string, role Role) (User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return User{}, err
	}

	user.Role = role
	if err := s.store.Upsert(ctx, user); err != nil {
		return User{}, err
	}

	return user, nil
}

// DeleteUser removes a user and cascades to all their data via the
// registered purgers.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	_, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	for _, p := range s.purgers {
		if err := p.PurgeUser(ctx, userID); err != nil {
			return fmt.Errorf("purge user data: %w", err)
		}
	}

	return s.store.Delete(ctx, userID)
}

// Stats summarizes the user collection.
type Stats struct {
	TotalUsers    int `json:"total_users"`
	ActiveUsers   int `json:"active_users"`
	InactiveUsers int `json:"inactive_users"`
	AdminUsers    int `json:"admin_users"`
}

// UserStats counts users by state.
func (s *Service) UserStats(ctx context.Context) (Stats, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{TotalUsers: len(users)}
	for _, u := range users {
		if u.IsActive {
			stats.ActiveUsers++
		} else {
			stats.InactiveUsers++
		}
		if u.Role.IsAdmin() {
			stats.AdminUsers++
		}
	}

	return stats, nil
}
