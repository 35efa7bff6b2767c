package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/LSkevi/PieTracker/internal/errorz"
	"github.com/LSkevi/PieTracker/internal/krypto"
)

// DefaultTokenTTL is how long issued bearer tokens stay valid unless
// configured otherwise.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenService issues and verifies the signed bearer tokens that bind a
// request to a user id. Tokens are stateless, the server only holds the
// signing secret.
type TokenService struct {
	secret krypto.Secret
	ttl    time.Duration

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

// NewTokenService creates a TokenService signing with the given secret.
// A ttl of 0 means DefaultTokenTTL.
func NewTokenService(secret krypto.Secret, ttl time.Duration) *TokenService {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	return &TokenService{
		secret:  secret,
		ttl:     ttl,
		NowFunc: time.Now,
	}
}

// Issue creates a signed token with userID as its subject and an absolute
// expiry of now + the configured ttl.
func (s *TokenService) Issue(userID string) (string, error) {
	now := s.NowFunc()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})

	signed, err := token.SignedString(s.secret.SecretValue())
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the signature and expiry of raw and returns the subject.
// Any structural or cryptographic failure, and expiry, yield
// errorz.ErrUnauthenticated. There is no partial trust.
func (s *TokenService) Verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret.SecretValue(), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return s.NowFunc() }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errorz.ErrUnauthenticated, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", errorz.ErrUnauthenticated
	}

	return claims.Subject, nil
}
