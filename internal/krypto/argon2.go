package krypto

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argonVariant = "argon2id"

	saltLen = 16
	keyLen  = 32

	memoryKiB   = 64 * 1024
	iterations  = 3
	parallelism = 2
)

var ErrInvalidHash = errors.New("invalid argon2 hash")

// HashArgon2 hashes the provided bytes using argon2id with a random salt.
// The result is in PHC string format:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>
func HashArgon2(plain []byte) (string, error) {
	salt, err := genRandomBytes(saltLen)
	if err != nil {
		return "", err
	}

	hash := argon2.IDKey(plain, salt, iterations, memoryKiB, parallelism, keyLen)

	encoded := fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argonVariant,
		argon2.Version,
		memoryKiB,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return encoded, nil
}

// MatchArgon2 reports whether plain matches the provided PHC formatted hash.
// Malformed hashes never match, they do not result in an error. The hash
// parameters are taken from the encoded hash, so hashes created with older
// settings keep matching.
func MatchArgon2(encoded string, plain []byte) bool {
	params, salt, hash, err := decodeHash(encoded)
	if err != nil {
		return false
	}

	other := argon2.IDKey(plain, salt, params.iterations, params.memoryKiB, params.parallelism, uint32(len(hash)))

	return subtle.ConstantTimeCompare(hash, other) == 1
}

type argonParams struct {
	memoryKiB   uint32
	iterations  uint32
	parallelism uint8
}

func decodeHash(encoded string) (argonParams, []byte, []byte, error) {
	var params argonParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return params, nil, nil, ErrInvalidHash
	}

	if parts[1] != argonVariant {
		return params, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params, nil, nil, ErrInvalidHash
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memoryKiB, &params.iterations, &params.parallelism); err != nil {
		return params, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, ErrInvalidHash
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return params, nil, nil, ErrInvalidHash
	}

	return params, salt, hash, nil
}
