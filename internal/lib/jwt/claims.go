// Package jwt implements generation and parsing of JWT tokens with custom
// claim fields.
//
// Maker is the interface for creating and verifying tokens carrying the
// username, role and user UID; MakerImpl is the concrete implementation
// backed by a secret key and a TTL.
package jwt

import (
	"time"
)

// Maker describes the interface for generating and parsing JWT tokens.
type Maker interface {
	// GenerateToken creates a signed token for the given user.
	GenerateToken(username, role, userUID string) (string, error)
	// ParseToken verifies a token and returns its custom claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl implements Maker with a secret key and a token TTL.
type MakerImpl struct {
	secretKey string        // Secret key used to sign tokens.
	tokenTTL  time.Duration // Token lifetime.
}

// NewJWTMaker builds a MakerImpl from a secret key and a TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
