package auth

import (
	"fmt"

	"github.com/LSkevi/PieTracker/internal/krypto"
)

const (
	minPasswordBytes = 8
	// Plaintext length is capped before hashing to bound hashing cost and
	// avoid algorithm-specific truncation pitfalls.
	maxPasswordBytes = 256
)

var ErrInvalidPassword = fmt.Errorf("invalid password")

// Password is a plaintext password.
//
// It should never be persisted, logged or exposed in any other way. To
// protect ourselves from accidentally doing so, the type implements
// several common interfaces that would allow it to be used inappropriately.
//
// There are only two operations allowed on a Password:
// - Converting it to a hash.
// - Comparing it with an existing hash to see if they match.
type Password struct {
	plain []byte
}

// ParsePassword creates a new Password from a plaintext string.
// It errors if the password is too short or too long.
func ParsePassword(pwd string) (Password, error) {
	if len(pwd) < minPasswordBytes || len(pwd) > maxPasswordBytes {
		return Password{}, ErrInvalidPassword
	}

	return Password{
		plain: []byte(pwd),
	}, nil
}

// Match checks if the plaintext password matches the given hash.
// Malformed hashes never match.
func (p Password) Match(hash string) bool {
	return krypto.MatchArgon2(hash, p.plain)
}

// Hash hashes the plaintext password using the argon2id algorithm.
func (p Password) Hash() (string, error) {
	return krypto.HashArgon2(p.plain)
}

func (p Password) Format(f fmt.State, verb rune) {
	f.Write([]byte(krypto.SecretMarker))
}

func (p Password) MarshalText() ([]byte, error) {
	return []byte(krypto.SecretMarker), nil
}
