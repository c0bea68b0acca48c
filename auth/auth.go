// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidAdminKey  = errors.New("invalid admin key")
	ErrInvalidVoteToken = errors.New("invalid vote token format")
)

// voteTokenBytes is the entropy of a vote token before encoding
const voteTokenBytes = 32

// NewID returns a random UUID string for database rows
func NewID() string {
	return uuid.NewString()
}

// GenerateAdminKey creates an HMAC-based admin key for an assembly.
// Deterministic, so the key never has to be stored.
func GenerateAdminKey(assemblyID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte("admin:" + assemblyID))
	sum := h.Sum(nil)
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the assembly
func ValidateAdminKey(assemblyID, adminKey, salt string) error {
	expected := GenerateAdminKey(assemblyID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// GenerateVoteToken creates the random secret embedded in an attendee's
// e-mail link. It is the only credential for GET/POST /api/vote-by-email.
func GenerateVoteToken() (string, error) {
	b := make([]byte, voteTokenBytes)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate vote token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// CheckVoteTokenFormat rejects strings that cannot have come from
// GenerateVoteToken, so malformed links never reach the database.
func CheckVoteTokenFormat(token string) error {
	if len(token) != base64.RawURLEncoding.EncodedLen(voteTokenBytes) {
		return ErrInvalidVoteToken
	}
	if _, err := base64.RawURLEncoding.DecodeString(token); err != nil {
		return ErrInvalidVoteToken
	}
	return nil
}

// GenerateKioskSlug creates a short, deterministic slug for the lobby display
// of an open assembly
func GenerateKioskSlug(assemblyID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte("kiosk:" + assemblyID))
	sum := h.Sum(nil)

	return base62Encode(sum[:8])
}

// base62Encode converts bytes to base62 (0-9, a-z, A-Z)
func base62Encode(data []byte) string {
	const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	var num uint64
	for i := 0; i < len(data) && i < 8; i++ {
		num = num<<8 | uint64(data[i])
	}

	if num == 0 {
		return "0"
	}

	result := make([]byte, 0, 11) // max length for uint64
	for num > 0 {
		result = append(result, base62Chars[num%62])
		num /= 62
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return string(result)
}

// HashIP creates a one-way hash of an IP address for the consent audit trail
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}
