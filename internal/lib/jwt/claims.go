// Package jwt issues and parses the signed session tokens. The original
// front end shipped an unsigned base64 triple shaped like a JWT; here the
// token is a real HS256-signed JWT with the same claim set.
package jwt

import "time"

// Maker issues and validates session tokens.
type Maker interface {
	// GenerateToken signs a token for the given user id, email and role.
	GenerateToken(userID, email, role string) (string, error)
	// ParseToken validates a token and returns its claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl implements Maker with a shared secret and a token TTL.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewMaker builds a MakerImpl from the signing secret and the TTL.
func NewMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
