package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// Hasher derives and verifies password hashes. Plaintext is first reduced to
// the SHA-256 hex digest of plaintext||salt||secret, then fed to bcrypt. The
// pre-hash binds the process-wide salt and secret pepper into the credential
// and keeps the bcrypt input under its 72-byte limit regardless of password
// length.
type Hasher struct {
	salt      string
	secret    string
	decoyHash string
}

// NewHasher creates a Hasher with the given salt and secret pepper.
func NewHasher(salt, secret string) *Hasher {
	h := &Hasher{salt: salt, secret: secret}
	// Precompute a throwaway hash so VerifyDummy costs one real bcrypt
	// comparison.
	decoy, err := h.Hash("decoy-password-for-timing-equalization")
	if err == nil {
		h.decoyHash = decoy
	}
	return h
}

// Hash returns the bcrypt hash of the pre-hashed plaintext. Hashing the same
// password twice yields different strings that both verify, because bcrypt
// salts each call.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(h.prehash(plaintext), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash. A mismatch
// returns (false, nil); a malformed or corrupt stored hash returns
// (false, err) so callers can log the infrastructure problem server-side
// while still presenting a generic auth failure to the client.
func (h *Hasher) Verify(plaintext, stored string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(stored), h.prehash(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("verify password: %w", err)
}

// VerifyDummy burns one bcrypt comparison against a throwaway hash. Callers
// use it when the login ID is unknown so that rejected logins take the same
// time whether or not the account exists.
func (h *Hasher) VerifyDummy() {
	if h.decoyHash == "" {
		return
	}
	_, _ = h.Verify("not-the-decoy-password", h.decoyHash)
}

func (h *Hasher) prehash(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext + h.salt + h.secret))
	digest := hex.EncodeToString(sum[:])
	return []byte(digest)
}
