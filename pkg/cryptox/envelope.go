package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Envelope layout: salt(16) || nonce(12) || ciphertext+tag.
// The salt and nonce are generated fresh on every seal, so the same
// plaintext never produces the same envelope twice and a nonce is never
// reused under a derived key.
const (
	EnvelopeSaltSize  = 16
	EnvelopeNonceSize = 12

	// envelopeKDFIterations is the PBKDF2-SHA256 iteration count for the
	// envelope key. Keep at or above 250k.
	envelopeKDFIterations = 310_000

	envelopeKeySize = 32 // AES-256
)

// ErrDecryptionFailure reports an envelope that could not be opened:
// wrong passphrase, corrupted bytes, or an invalid layout. Callers must
// treat all three identically.
var ErrDecryptionFailure = errors.New("cryptox: envelope decryption failure")

// DeriveEnvelopeKey stretches a passphrase into an AES-256 key using
// PBKDF2-SHA256. The key is only ever used for authenticated symmetric
// encryption, never for signing.
func DeriveEnvelopeKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, envelopeKDFIterations, envelopeKeySize, sha256.New)
}

// SealEnvelope encrypts plaintext under a key derived from passphrase
// and returns a self-describing envelope: salt || nonce || ciphertext.
func SealEnvelope(plaintext []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, EnvelopeSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate envelope salt: %w", err)
	}

	key := DeriveEnvelopeKey(passphrase, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, EnvelopeNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate envelope nonce: %w", err)
	}

	envelope := make([]byte, 0, EnvelopeSaltSize+EnvelopeNonceSize+len(plaintext)+gcm.Overhead())
	envelope = append(envelope, salt...)
	envelope = append(envelope, nonce...)
	envelope = gcm.Seal(envelope, nonce, plaintext, nil)

	return envelope, nil
}

// OpenEnvelope splits an envelope at the fixed offsets, re-derives the
// key from the embedded salt and decrypts. Any authentication-tag
// mismatch surfaces as ErrDecryptionFailure; corrupted envelopes can
// never yield silently wrong plaintext.
func OpenEnvelope(envelope []byte, passphrase string) ([]byte, error) {
	if len(envelope) < EnvelopeSaltSize+EnvelopeNonceSize {
		return nil, ErrDecryptionFailure
	}

	salt := envelope[:EnvelopeSaltSize]
	nonce := envelope[EnvelopeSaltSize : EnvelopeSaltSize+EnvelopeNonceSize]
	ciphertext := envelope[EnvelopeSaltSize+EnvelopeNonceSize:]

	key := DeriveEnvelopeKey(passphrase, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailure
	}

	return plaintext, nil
}
