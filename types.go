package registry

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes the token issuer needs from a principal.
type Identity interface {
	ID() string
	Email() string
	IsAdmin() bool
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSecretKey() string
	GetPasswordSalt() string
	GetAccessTokenExpiration() time.Duration
	GetRefreshTokenExpiration() time.Duration
	GetConfirmationWindow() time.Duration
	GetIssuer() string
	GetAudience() []string
}

// Mailer delivers outbound email. The SMTP transport lives outside this
// module; registration and reset flows only need the send hook.
type Mailer interface {
	Send(ctx context.Context, recipients []string, subject, body string) error
}

// TokenIssuer mints signed session tokens. It holds no state; callers are
// responsible for recording the returned token id in the ledger.
type TokenIssuer interface {
	IssueAccess(identity Identity) (token string, jti string, err error)
	IssueRefresh(identity Identity) (token string, jti string, err error)
	Validate(token string) (*SessionClaims, error)
}

// ConfirmationCodec produces and verifies signed, time-limited encodings of
// an email address.
type ConfirmationCodec interface {
	GenerateToken(email string) (string, error)
	ConfirmToken(token string, maxAge time.Duration) (string, bool)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, digest string) bool
}

// SimpleConfig is a plain value implementation of Config.
type SimpleConfig struct {
	SigningKey        string
	SecretKey         string
	PasswordSalt      string
	AccessExpiration  time.Duration
	RefreshExpiration time.Duration
	ConfirmWindow     time.Duration
	Issuer            string
	Audience          []string
}

func (c SimpleConfig) GetSigningKey() string   { return c.SigningKey }
func (c SimpleConfig) GetSecretKey() string    { return c.SecretKey }
func (c SimpleConfig) GetPasswordSalt() string { return c.PasswordSalt }

func (c SimpleConfig) GetAccessTokenExpiration() time.Duration {
	if c.AccessExpiration == 0 {
		return DefaultAccessExpiration
	}
	return c.AccessExpiration
}

func (c SimpleConfig) GetRefreshTokenExpiration() time.Duration {
	if c.RefreshExpiration == 0 {
		return DefaultRefreshExpiration
	}
	return c.RefreshExpiration
}

func (c SimpleConfig) GetConfirmationWindow() time.Duration {
	if c.ConfirmWindow == 0 {
		return DefaultConfirmationWindow
	}
	return c.ConfirmWindow
}

func (c SimpleConfig) GetIssuer() string     { return c.Issuer }
func (c SimpleConfig) GetAudience() []string { return c.Audience }

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] REGISTRY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] REGISTRY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] REGISTRY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] REGISTRY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, recipients []string, subject, body string) error {
	return nil
}
