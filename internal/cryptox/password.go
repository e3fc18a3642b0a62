// Package cryptox holds password hashing and token digests.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/dmitrijs2005/vidmark/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// NormalizePassword returns the prefix of password that bcrypt actually
// consumes: at most common.MaxPasswordBytes bytes, with any invalid UTF-8 left
// in it dropped. A multi-byte character cut at the limit is dropped whole, so
// the result is always valid UTF-8.
func NormalizePassword(password string) []byte {
	if len(password) > common.MaxPasswordBytes {
		password = password[:common.MaxPasswordBytes]
	}
	return []byte(strings.ToValidUTF8(password, ""))
}

// HashPassword hashes the normalized password with the given bcrypt cost.
func HashPassword(password string, cost int) (string, error) {
	h, err := bcrypt.GenerateFromPassword(NormalizePassword(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyPassword reports whether password matches hash. A malformed hash
// counts as a mismatch.
func VerifyPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), NormalizePassword(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false
	}
	return err == nil
}

// HashToken returns the hex SHA-256 digest stored in place of a raw refresh
// token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
