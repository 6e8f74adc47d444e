package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// The root secret configures every server-side key this service holds.
// It is never used directly: independent sub-keys are derived for token
// signing and for envelope encryption, so compromise of signing
// material does not decrypt stored password envelopes.
const (
	rootKeySize = 32

	signingKeyInfo  = "quillboard/session-signing/v1"
	envelopeKeyInfo = "quillboard/secret-envelope/v1"
)

// RootKey holds the derived sub-keys for the identity service.
type RootKey struct {
	signing  []byte
	envelope []byte
}

// LoadRootKey reads root key material from path (preferred) or, when
// path is empty, from the IDENTITY_ROOT_SECRET environment variable,
// and derives the service sub-keys.
func LoadRootKey(path string) (*RootKey, error) {
	var material []byte

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read root secret file: %w", err)
		}
		material = []byte(strings.TrimSpace(string(data)))
	} else if env := os.Getenv("IDENTITY_ROOT_SECRET"); env != "" {
		material = []byte(env)
	}

	if len(material) == 0 {
		return nil, fmt.Errorf("no root secret configured")
	}

	return NewRootKey(material)
}

// NewRootKey derives the signing and envelope sub-keys from raw key
// material using HKDF-SHA256 with distinct info strings.
func NewRootKey(material []byte) (*RootKey, error) {
	rk := &RootKey{}

	var err error
	if rk.signing, err = deriveSubKey(material, signingKeyInfo); err != nil {
		return nil, err
	}
	if rk.envelope, err = deriveSubKey(material, envelopeKeyInfo); err != nil {
		return nil, err
	}

	return rk, nil
}

func deriveSubKey(material []byte, info string) ([]byte, error) {
	r := hkdf.New(sha256.New, material, nil, []byte(info))
	key := make([]byte, rootKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to derive %q sub-key: %w", info, err)
	}
	return key, nil
}

// SigningKey returns the HMAC key for session token signing.
func (rk *RootKey) SigningKey() []byte { return rk.signing }

// EnvelopePassphrase returns the passphrase for sealing and opening
// stored password envelopes. Encoded so it is stable across restarts
// for the same root material.
func (rk *RootKey) EnvelopePassphrase() string {
	return base64.RawURLEncoding.EncodeToString(rk.envelope)
}
