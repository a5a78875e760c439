// Package auth validates exhibit-device credentials and issues short-lived
// machine-to-machine tokens.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DeviceAuthenticator checks the shared bearer secret exhibit devices
// present. A missing header, a wrong scheme and a wrong token are all the
// same failure; callers must not be able to tell which one happened.
type DeviceAuthenticator struct {
	tokenDigest [32]byte
	bcryptHash  []byte
}

// NewDeviceAuthenticator builds an authenticator from the configured secret.
// When bcryptHash is non-empty it wins over the plain token.
func NewDeviceAuthenticator(token, bcryptHash string) *DeviceAuthenticator {
	a := &DeviceAuthenticator{}
	if bcryptHash != "" {
		a.bcryptHash = []byte(bcryptHash)
		return a
	}

	a.tokenDigest = sha256.Sum256([]byte(token))
	return a
}

// Authenticate validates a raw Authorization header value.
func (a *DeviceAuthenticator) Authenticate(authorization string) bool {
	scheme, token, found := strings.Cut(authorization, " ")
	if !found || scheme != "Bearer" || token == "" {
		return false
	}

	if a.bcryptHash != nil {
		return bcrypt.CompareHashAndPassword(a.bcryptHash, []byte(token)) == nil
	}

	// Comparing fixed-size digests keeps the comparison constant-time and
	// avoids leaking the secret's length.
	presented := sha256.Sum256([]byte(token))
	return subtle.ConstantTimeCompare(presented[:], a.tokenDigest[:]) == 1
}
