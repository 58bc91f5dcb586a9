package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Scheme     = "pbkdf2-sha256"
	pbkdf2Rounds     = 29000
	pbkdf2SaltLength = 16
	pbkdf2KeyLength  = 32
)

// ab64 is base64 with '.' in place of '+' and no padding, the alphabet used
// by modular crypt hashes.
var ab64 = base64.RawStdEncoding

// PasswordHasher hashes passwords with PBKDF2-HMAC-SHA256 and encodes them as
// $pbkdf2-sha256$<rounds>$<salt>$<checksum>.
type PasswordHasher struct {
	rounds int
}

// NewPasswordHasher creates a hasher. rounds <= 0 selects the default.
func NewPasswordHasher(rounds int) *PasswordHasher {
	if rounds <= 0 {
		rounds = pbkdf2Rounds
	}
	return &PasswordHasher{rounds: rounds}
}

// Hash returns a salted hash of password. Two calls with the same password
// return different strings.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, pbkdf2SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, h.rounds, pbkdf2KeyLength, sha256.New)

	return fmt.Sprintf("$%s$%d$%s$%s", pbkdf2Scheme, h.rounds, encodeAB64(salt), encodeAB64(key)), nil
}

// Verify reports whether password matches hash. Malformed hashes never match.
func (h *PasswordHasher) Verify(password, hash string) bool {
	parts := strings.Split(hash, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != pbkdf2Scheme {
		return false
	}

	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds <= 0 {
		return false
	}
	salt, err := decodeAB64(parts[3])
	if err != nil {
		return false
	}
	want, err := decodeAB64(parts[4])
	if err != nil || len(want) == 0 {
		return false
	}

	got := pbkdf2.Key([]byte(password), salt, rounds, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func encodeAB64(b []byte) string {
	return strings.ReplaceAll(ab64.EncodeToString(b), "+", ".")
}

func decodeAB64(s string) ([]byte, error) {
	return ab64.DecodeString(strings.ReplaceAll(s, ".", "+"))
}
