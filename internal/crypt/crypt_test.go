package crypt

import (
	"encoding/hex"
	"strings"
	"testing"
)

func TestRandomTokenLengthAndAlphabet(t *testing.T) {
	tests := []struct {
		name     string
		alphabet Alphabet
		allowed  string
	}{
		{"digits", Digits, digitChars},
		{"letters", Letters, letterChars},
		{"alphanumeric", Alphanumeric, digitChars + letterChars},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := RandomToken(64, tt.alphabet)
			if err != nil {
				t.Fatalf("RandomToken() error = %v", err)
			}
			if len(token) != 64 {
				t.Fatalf("len = %d, want 64", len(token))
			}
			for _, r := range token {
				if !strings.ContainsRune(tt.allowed, r) {
					t.Fatalf("token %q contains %q outside alphabet", token, r)
				}
			}
		})
	}
}

func TestRandomTokenRejectsBadLength(t *testing.T) {
	if _, err := RandomToken(0, Digits); err == nil {
		t.Fatal("expected error for zero length")
	}
}

func TestHashPasswordDeterministic(t *testing.T) {
	a := HashPassword("correct horse battery staple")
	b := HashPassword("correct horse battery staple")
	if a != b {
		t.Fatalf("digests differ: %q vs %q", a, b)
	}
	if a == HashPassword("Correct horse battery staple") {
		t.Fatal("distinct inputs produced equal digests")
	}
}

func TestComparePassword(t *testing.T) {
	digest := HashPassword("hunter2")
	if !ComparePassword("hunter2", digest) {
		t.Fatal("ComparePassword rejected the matching password")
	}
	if ComparePassword("hunter3", digest) {
		t.Fatal("ComparePassword accepted a wrong password")
	}
}

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher("test-passphrase")
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}

	plaintext := "alice@example.com"
	sealed, err := c.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	got, err := c.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if got != plaintext {
		t.Fatalf("round trip = %q, want %q", got, plaintext)
	}
}

func TestCipherUsesFreshNonces(t *testing.T) {
	c, err := NewCipher("test-passphrase")
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}

	a, err := c.Encrypt("same input")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	b, err := c.Encrypt("same input")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if a == b {
		t.Fatal("two encryptions of the same plaintext produced the same ciphertext")
	}
}

func TestCipherRejectsTampering(t *testing.T) {
	c, err := NewCipher("test-passphrase")
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}

	sealed, err := c.Encrypt("alice@example.com")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	raw, err := hex.DecodeString(sealed)
	if err != nil {
		t.Fatalf("decoding ciphertext: %v", err)
	}
	raw[len(raw)-1] ^= 0xff // flip a bit in the auth tag
	if _, err := c.Decrypt(hex.EncodeToString(raw)); err == nil {
		t.Fatal("Decrypt accepted a tampered ciphertext")
	}
}

func TestCipherKeysDifferByPassphrase(t *testing.T) {
	a, err := NewCipher("passphrase-a")
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}
	b, err := NewCipher("passphrase-b")
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}

	sealed, err := a.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if _, err := b.Decrypt(sealed); err == nil {
		t.Fatal("cipher with a different passphrase decrypted the data")
	}
}
