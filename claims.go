package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenUsePreAuth = "preauth"
	tokenUseSession = "session"
)

// PreAuthClaims bridges "password verified" to "workspace selected" without
// re-sending the password. Short lived.
type PreAuthClaims struct {
	jwt.RegisteredClaims
	UID      int64  `json:"uid"`
	Email    string `json:"email"`
	TokenUse string `json:"use"`
}

// SessionClaims is the only credential shape accepted for workspace-scoped
// operations.
type SessionClaims struct {
	jwt.RegisteredClaims
	UID         int64          `json:"uid"`
	WorkspaceID int64          `json:"wid"`
	TokenUse    string         `json:"use"`
	Extra       map[string]any `json:"data,omitempty"`
}

// UserID returns the principal id carried by the session.
func (c *SessionClaims) UserID() int64 {
	return c.UID
}

// Workspace returns the workspace id the session is bound to.
func (c *SessionClaims) Workspace() int64 {
	return c.WorkspaceID
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
