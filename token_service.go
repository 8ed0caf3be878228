package registry

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

const (
	// DefaultAccessExpiration matches the one day window of the access
	// token class.
	DefaultAccessExpiration = 24 * time.Hour
	// DefaultRefreshExpiration keeps refresh tokens alive for thirty days.
	DefaultRefreshExpiration = 30 * 24 * time.Hour
)

// TokenService mints and validates session tokens. It keeps no state of its
// own: the caller persists each returned JTI into the revocation ledger.
type TokenService struct {
	signingKey        []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	issuer            string
	audience          jwt.ClaimStrings
	logger            Logger
}

var _ TokenIssuer = (*TokenService)(nil)

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg Config, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenService{
		signingKey:        []byte(cfg.GetSigningKey()),
		accessExpiration:  cfg.GetAccessTokenExpiration(),
		refreshExpiration: cfg.GetRefreshTokenExpiration(),
		issuer:            cfg.GetIssuer(),
		audience:          cfg.GetAudience(),
		logger:            logger,
	}
}

// IssueAccess mints a signed access token bound to the identity, returning
// the token and its freshly generated JTI.
func (ts *TokenService) IssueAccess(identity Identity) (string, string, error) {
	return ts.issue(identity, TokenClassAccess, ts.accessExpiration)
}

// IssueRefresh mints a signed refresh token bound to the identity.
func (ts *TokenService) IssueRefresh(identity Identity) (string, string, error) {
	return ts.issue(identity, TokenClassRefresh, ts.refreshExpiration)
}

func (ts *TokenService) issue(identity Identity, class TokenClass, ttl time.Duration) (string, string, error) {
	if identity == nil {
		return "", "", errors.New("identity is required", errors.CategoryBadInput)
	}

	now := time.Now()

	var aud jwt.ClaimStrings
	if len(ts.audience) > 0 {
		aud = make(jwt.ClaimStrings, len(ts.audience))
		copy(aud, ts.audience)
	}

	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.Email(),
			Audience:  aud,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UID:        identity.ID(),
		Admin:      identity.IsAdmin(),
		TokenClass: class,
	}

	ensureTokenID(&claims.RegisteredClaims)

	token, err := ts.SignClaims(claims)
	if err != nil {
		return "", "", err
	}

	return token, claims.JTI(), nil
}

// SignClaims signs arbitrary session claims using the configured signing key.
func (ts *TokenService) SignClaims(claims *SessionClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims
func (ts *TokenService) Validate(tokenString string) (*SessionClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionTokenExpired
		}
		return nil, errors.Wrap(err, ErrSessionTokenMalformed.Category, ErrSessionTokenMalformed.Message).
			WithTextCode(ErrSessionTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrSessionTokenMalformed
}
