package ledger

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// SentinelDigest is persisted in place of the signature and entry hash when
// signing is unavailable. It is a fixed-length value so the row layout stays
// uniform, and it can never collide with a real hex digest of the key.
const SentinelDigest = "0000000000000000000000000000000000000000000000000000000000000000"

// ErrNoSigningKey indicates the ledger signing key is not configured.
var ErrNoSigningKey = errors.New("ledger: signing key not configured")

// Signer computes the HMAC signature and hash-chain link for ledger entries.
// The key never leaves the process; rotation happens out-of-band and
// invalidates verification of entries signed under the old key.
type Signer struct {
	key []byte
}

// NewSigner constructs a Signer. An empty key yields a signer whose Sign
// calls fail with ErrNoSigningKey; the recorder degrades entries instead of
// refusing to start.
func NewSigner(key string) *Signer {
	return &Signer{key: []byte(key)}
}

// Sign returns the hex HMAC-SHA256 signature over the canonical payload.
func (s *Signer) Sign(payload map[string]any) (string, error) {
	if len(s.key) == 0 {
		return "", ErrNoSigningKey
	}
	return s.digest(Canonicalize(payload)), nil
}

// EntryHash folds the predecessor's entry hash and this entry's signature
// into the chain link: HMAC(key, prev_hash || "|" || signature). prevHash is
// nil for the first entry ever written.
func (s *Signer) EntryHash(prevHash *string, signature string) (string, error) {
	if len(s.key) == 0 {
		return "", ErrNoSigningKey
	}
	prev := ""
	if prevHash != nil {
		prev = *prevHash
	}
	return s.digest(prev + "|" + signature), nil
}

// Verify recomputes the signature and entry hash from scratch and compares
// both in constant time. It is used by offline compliance tooling, never by
// the hot authorization path.
func (s *Signer) Verify(payload map[string]any, signature string, prevHash *string, entryHash string) bool {
	expectedSig, err := s.Sign(payload)
	if err != nil {
		return false
	}
	if !hmac.Equal([]byte(signature), []byte(expectedSig)) {
		return false
	}
	expectedHash, err := s.EntryHash(prevHash, signature)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(entryHash), []byte(expectedHash))
}

func (s *Signer) digest(input string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(input))
	return hex.EncodeToString(mac.Sum(nil))
}
