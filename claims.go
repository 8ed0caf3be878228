package registry

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims is the claim set carried by access and refresh tokens. The
// registered ID claim holds the JTI used as the revocation key.
type SessionClaims struct {
	jwt.RegisteredClaims
	UID        string     `json:"uid,omitempty"`
	Admin      bool       `json:"admin,omitempty"`
	TokenClass TokenClass `json:"type,omitempty"`
}

// JTI returns the unique token id.
func (c *SessionClaims) JTI() string {
	return c.RegisteredClaims.ID
}

// UserID returns the owning user id.
func (c *SessionClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// Identity returns the identity (email) the token was issued for.
func (c *SessionClaims) Identity() string {
	return c.RegisteredClaims.Subject
}

// IsRefresh reports whether this is a refresh token claim set.
func (c *SessionClaims) IsRefresh() bool {
	return c.TokenClass == TokenClassRefresh
}

// Expires returns the expiration time
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ensureTokenID assigns a fresh random JTI when the claims carry none.
// Token ids must be unique with overwhelming probability because the
// revocation ledger indexes by id.
func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
