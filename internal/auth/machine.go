package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSecret is returned when machine token issuance is not configured.
var ErrNoSecret = errors.New("machine token secret not configured")

// TokenIssuer produces short-lived machine-to-machine tokens for trusted
// devices. Issuance is best-effort everywhere it is called: a failure means
// the token is omitted from the response, never that the request fails.
type TokenIssuer interface {
	Issue(ctx context.Context, slug string) (string, error)
}

// MachineTokenIssuer signs HS256 JWTs scoped to a single artwork.
type MachineTokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewMachineTokenIssuer(secret string, ttl time.Duration) *MachineTokenIssuer {
	return &MachineTokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (i *MachineTokenIssuer) Issue(ctx context.Context, slug string) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrNoSecret
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss": "nfc-gateway",
		"sub": slug,
		"iat": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}
