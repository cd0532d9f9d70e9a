package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

// OAuth tokens are encrypted before they reach the users table. The prefix
// lets Encrypt be idempotent: already-encrypted values pass through untouched.
const encryptedPrefix = "enc:v1:"

// IsEncrypted reports whether the value already carries the ciphertext prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, encryptedPrefix)
}

// Encrypt seals the plaintext with a key derived from the configured secret.
// Empty plaintext and already-encrypted values are returned as-is.
func Encrypt(plaintext, key string) (string, error) {
	if plaintext == "" || IsEncrypted(plaintext) {
		return plaintext, nil
	}
	if key == "" {
		return "", fmt.Errorf("encryption key is not configured")
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	secretKey := deriveKey(key)
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &secretKey)
	return encryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Unprefixed values are assumed to
// be plaintext (legacy rows) and returned unchanged.
func Decrypt(value, key string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}
	if key == "" {
		return "", fmt.Errorf("encryption key is not configured")
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, encryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if len(raw) < 24 {
		return "", fmt.Errorf("ciphertext too short")
	}

	var nonce [24]byte
	copy(nonce[:], raw[:24])

	secretKey := deriveKey(key)
	opened, ok := secretbox.Open(nil, raw[24:], &nonce, &secretKey)
	if !ok {
		return "", fmt.Errorf("failed to decrypt value")
	}
	return string(opened), nil
}

func deriveKey(key string) [32]byte {
	return sha256.Sum256([]byte(key))
}
