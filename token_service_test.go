package registry_test

import (
	"testing"
	"time"

	"github.com/sproulclub/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testIdentity struct {
	id    string
	email string
	admin bool
}

func (i testIdentity) ID() string    { return i.id }
func (i testIdentity) Email() string { return i.email }
func (i testIdentity) IsAdmin() bool { return i.admin }

func newTestConfig() registry.SimpleConfig {
	return registry.SimpleConfig{
		SigningKey:   "test-signing-key",
		SecretKey:    "test-secret-key",
		PasswordSalt: "test-password-salt",
		Issuer:       "sproul.club",
		Audience:     []string{"club-registry"},
	}
}

func TestIssueAccess(t *testing.T) {
	ts := registry.NewTokenService(newTestConfig(), nil)
	identity := testIdentity{id: "usr-1", email: "club@berkeley.edu"}

	token, jti, err := ts.IssueAccess(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)

	claims, err := ts.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "club@berkeley.edu", claims.Identity())
	assert.Equal(t, "usr-1", claims.UserID())
	assert.Equal(t, registry.TokenClassAccess, claims.TokenClass)
	assert.Equal(t, jti, claims.JTI())
	assert.False(t, claims.IsRefresh())
	assert.WithinDuration(t,
		time.Now().Add(registry.DefaultAccessExpiration),
		claims.Expires(), time.Minute)
}

func TestIssueRefresh(t *testing.T) {
	ts := registry.NewTokenService(newTestConfig(), nil)
	identity := testIdentity{id: "usr-1", email: "club@berkeley.edu", admin: true}

	token, jti, err := ts.IssueRefresh(identity)
	require.NoError(t, err)

	claims, err := ts.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, registry.TokenClassRefresh, claims.TokenClass)
	assert.True(t, claims.IsRefresh())
	assert.True(t, claims.Admin)
	assert.Equal(t, jti, claims.JTI())
	assert.WithinDuration(t,
		time.Now().Add(registry.DefaultRefreshExpiration),
		claims.Expires(), time.Minute)
}

func TestIssueNilIdentity(t *testing.T) {
	ts := registry.NewTokenService(newTestConfig(), nil)

	_, _, err := ts.IssueAccess(nil)
	assert.Error(t, err)

	_, _, err = ts.IssueRefresh(nil)
	assert.Error(t, err)
}

func TestTokenIDUniqueness(t *testing.T) {
	ts := registry.NewTokenService(newTestConfig(), nil)
	identity := testIdentity{id: "usr-1", email: "club@berkeley.edu"}

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		_, jti, err := ts.IssueAccess(identity)
		require.NoError(t, err)

		_, dup := seen[jti]
		require.False(t, dup, "duplicate jti after %d issuances", i)
		seen[jti] = struct{}{}
	}
}

func TestValidateExpiredToken(t *testing.T) {
	cfg := newTestConfig()
	cfg.AccessExpiration = -time.Hour

	ts := registry.NewTokenService(cfg, nil)
	token, _, err := ts.IssueAccess(testIdentity{id: "usr-1", email: "club@berkeley.edu"})
	require.NoError(t, err)

	_, err = ts.Validate(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrSessionTokenExpired)
	assert.True(t, registry.IsTokenExpiredError(err))
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	ts := registry.NewTokenService(newTestConfig(), nil)

	otherCfg := newTestConfig()
	otherCfg.SigningKey = "other-signing-key"
	other := registry.NewTokenService(otherCfg, nil)

	token, _, err := other.IssueAccess(testIdentity{id: "usr-1", email: "club@berkeley.edu"})
	require.NoError(t, err)

	_, err = ts.Validate(token)
	require.Error(t, err)
	assert.True(t, registry.IsMalformedError(err))
}

func TestValidateMalformedToken(t *testing.T) {
	ts := registry.NewTokenService(newTestConfig(), nil)

	tests := []struct {
		name  string
		token string
	}{
		{name: "Empty string", token: ""},
		{name: "Garbage", token: "not.a.jwt"},
		{name: "Truncated", token: "eyJhbGciOiJIUzI1NiJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.Validate(tt.token)
			assert.Error(t, err)
		})
	}
}
