// Package crypt holds the credential primitives: token generation, the
// deterministic password digest, and reversible field encryption.
package crypt

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
)

// Alphabet selects the character set for RandomToken.
type Alphabet int

const (
	Digits Alphabet = iota
	Letters
	Alphanumeric
)

const (
	digitChars  = "0123456789"
	letterChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

func (a Alphabet) chars() (string, error) {
	switch a {
	case Digits:
		return digitChars, nil
	case Letters:
		return letterChars, nil
	case Alphanumeric:
		return digitChars + letterChars, nil
	default:
		return "", fmt.Errorf("unknown alphabet %d", a)
	}
}

// RandomToken returns a fixed-length token drawn uniformly from the given
// alphabet using crypto/rand.
func RandomToken(length int, alphabet Alphabet) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("token length must be positive, got %d", length)
	}

	chars, err := alphabet.chars()
	if err != nil {
		return "", err
	}

	max := big.NewInt(int64(len(chars)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("reading random index: %w", err)
		}
		out[i] = chars[n.Int64()]
	}
	return string(out), nil
}

// HashPassword returns the deterministic SHA-256 hex digest used for stored
// credentials. Equal inputs always produce equal digests.
func HashPassword(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// ComparePassword recomputes the digest of candidate and compares it against
// the stored digest in constant time.
func ComparePassword(candidate, digest string) bool {
	computed := HashPassword(candidate)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// LookupDigest is the equality key stored alongside encrypted fields so they
// stay findable without decrypting every record.
func LookupDigest(s string) string {
	sum := sha256.Sum256([]byte("dayplan.lookup:" + s))
	return hex.EncodeToString(sum[:])
}
