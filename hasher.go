package registry

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
)

const (
	hashScheme        = "pbkdf2-sha512"
	defaultHashRounds = 29000
	hashSaltSize      = 16
	hashKeySize       = 64
)

// hashEncoding is the adapted base64 alphabet used inside modular-crypt
// digests: "+" becomes "." and padding is dropped.
var hashEncoding = base64.NewEncoding(
	"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789./",
).WithPadding(base64.NoPadding)

// HashPassword derives a salted digest of the password. Each call draws a
// fresh random salt, so hashing the same password twice yields two
// different digests. The round count is embedded in the digest so it can be
// raised later without invalidating stored hashes.
//
// Digest layout: $pbkdf2-sha512$<rounds>$<salt>$<key>
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	salt := make([]byte, hashSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate password salt")
	}

	return hashWithParams(password, salt, defaultHashRounds), nil
}

// VerifyPassword recomputes the digest using the salt and round count
// embedded in it and compares in constant time. Malformed digests verify
// as false rather than erroring.
func VerifyPassword(password, digest string) bool {
	rounds, salt, key, ok := parseDigest(digest)
	if !ok {
		return false
	}

	derived := pbkdf2.Key([]byte(password), salt, rounds, len(key), sha512.New)
	return subtle.ConstantTimeCompare(derived, key) == 1
}

// RandomPasswordHash is a temporary password
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := HashPassword(pwd.String())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}

func hashWithParams(password string, salt []byte, rounds int) string {
	key := pbkdf2.Key([]byte(password), salt, rounds, hashKeySize, sha512.New)

	var b strings.Builder
	b.WriteByte('$')
	b.WriteString(hashScheme)
	b.WriteByte('$')
	b.WriteString(strconv.Itoa(rounds))
	b.WriteByte('$')
	b.WriteString(hashEncoding.EncodeToString(salt))
	b.WriteByte('$')
	b.WriteString(hashEncoding.EncodeToString(key))
	return b.String()
}

func parseDigest(digest string) (rounds int, salt, key []byte, ok bool) {
	parts := strings.Split(digest, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != hashScheme {
		return 0, nil, nil, false
	}

	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds < 1 {
		return 0, nil, nil, false
	}

	salt, err = hashEncoding.DecodeString(parts[3])
	if err != nil {
		return 0, nil, nil, false
	}

	key, err = hashEncoding.DecodeString(parts[4])
	if err != nil || len(key) == 0 {
		return 0, nil, nil, false
	}

	return rounds, salt, key, true
}
