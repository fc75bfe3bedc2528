// package auth implements the PKCE authorization flow and token lifecycle
// gating every authenticated call to the Spotify Web API.
//
// The flow follows RFC 7636: a random code verifier is generated and stored
// before redirecting the user to the provider, its S256 challenge is sent
// with the authorization request, and the verifier is presented once during
// the code exchange.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/SyedSaifuddin045/spolist/internal/shared"
)

// verifierAlphabet is the unreserved subset used for code verifiers.
const verifierAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	// MinVerifierLength and MaxVerifierLength are the RFC 7636 bounds.
	MinVerifierLength = 43
	MaxVerifierLength = 128

	// DefaultVerifierLength matches the length the provider documents in its
	// PKCE walkthrough.
	DefaultVerifierLength = 128
)

// GenerateVerifier produces a code verifier of exactly length characters
// drawn uniformly from the unreserved alphabet using crypto/rand.
//
// Lengths outside [MinVerifierLength, MaxVerifierLength] fail with
// [shared.ErrInvalidParameter].
func GenerateVerifier(length int) (string, error) {
	if length < MinVerifierLength || length > MaxVerifierLength {
		return "", fmt.Errorf("%w: verifier length %d outside [%d, %d]",
			shared.ErrInvalidParameter, length, MinVerifierLength, MaxVerifierLength)
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length)

	// Rejection sampling keeps the distribution uniform over the 62 symbols.
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			idx := int(b & 0x3F)
			if idx >= len(verifierAlphabet) {
				continue
			}
			out = append(out, verifierAlphabet[idx])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}

// Challenge derives the S256 code challenge for a verifier:
// base64url(SHA-256(verifier)) without padding.
//
// Deterministic and byte-identical across platforms. A challenge that does
// not match its verifier makes the provider silently reject the exchange.
func Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
