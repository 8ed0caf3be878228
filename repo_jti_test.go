package registry_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sproulclub/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRecordAndBlacklist(t *testing.T) {
	ctx := context.Background()
	ledger := registry.NewTokenLedger(setupTestDB(t), nil)
	owner := uuid.New()

	jti := uuid.NewString()
	require.NoError(t, ledger.Record(ctx, owner, jti, registry.TokenClassAccess))

	// Freshly recorded ids are valid.
	revoked, err := ledger.IsBlacklisted(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, ledger.Revoke(ctx, jti, registry.TokenClassAccess))

	revoked, err = ledger.IsBlacklisted(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestLedgerUnknownIDIsNotBlacklisted(t *testing.T) {
	ctx := context.Background()
	ledger := registry.NewTokenLedger(setupTestDB(t), nil)

	// Fail-open: an id the ledger never saw reports as valid.
	revoked, err := ledger.IsBlacklisted(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestLedgerClassNamespaces(t *testing.T) {
	ctx := context.Background()
	ledger := registry.NewTokenLedger(setupTestDB(t), nil)
	owner := uuid.New()

	accessJTI := uuid.NewString()
	refreshJTI := uuid.NewString()

	require.NoError(t, ledger.Record(ctx, owner, accessJTI, registry.TokenClassAccess))
	require.NoError(t, ledger.Record(ctx, owner, refreshJTI, registry.TokenClassRefresh))

	// Revoking in the wrong class must not touch the other namespace.
	err := ledger.Revoke(ctx, accessJTI, registry.TokenClassRefresh)
	assert.ErrorIs(t, err, registry.ErrTokenRecordNotFound)

	revoked, err := ledger.IsBlacklisted(ctx, accessJTI)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, ledger.Revoke(ctx, refreshJTI, registry.TokenClassRefresh))

	revoked, err = ledger.IsBlacklisted(ctx, refreshJTI)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestLedgerRevokeMissingID(t *testing.T) {
	ctx := context.Background()
	ledger := registry.NewTokenLedger(setupTestDB(t), nil)

	err := ledger.Revoke(ctx, uuid.NewString(), registry.TokenClassAccess)
	assert.ErrorIs(t, err, registry.ErrTokenRecordNotFound)
}

func TestLedgerRevokeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ledger := registry.NewTokenLedger(setupTestDB(t), nil)
	owner := uuid.New()

	jti := uuid.NewString()
	require.NoError(t, ledger.Record(ctx, owner, jti, registry.TokenClassRefresh))

	require.NoError(t, ledger.Revoke(ctx, jti, registry.TokenClassRefresh))
	require.NoError(t, ledger.Revoke(ctx, jti, registry.TokenClassRefresh))

	revoked, err := ledger.IsBlacklisted(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestLedgerDuplicateIDIsIntegrityViolation(t *testing.T) {
	ctx := context.Background()
	ledger := registry.NewTokenLedger(setupTestDB(t), nil)
	owner := uuid.New()

	jti := uuid.NewString()
	require.NoError(t, ledger.Record(ctx, owner, jti, registry.TokenClassAccess))

	err := ledger.Record(ctx, owner, jti, registry.TokenClassAccess)
	assert.ErrorIs(t, err, registry.ErrTokenIDCollision)
}

func TestLedgerUnknownClass(t *testing.T) {
	ctx := context.Background()
	ledger := registry.NewTokenLedger(setupTestDB(t), nil)

	err := ledger.Record(ctx, uuid.New(), uuid.NewString(), "session")
	assert.Error(t, err)

	err = ledger.Revoke(ctx, uuid.NewString(), "session")
	assert.Error(t, err)
}

func TestLedgerRevokeAll(t *testing.T) {
	ctx := context.Background()
	ledger := registry.NewTokenLedger(setupTestDB(t), nil)

	owner := uuid.New()
	other := uuid.New()

	ownerAccess := uuid.NewString()
	ownerRefresh := uuid.NewString()
	otherAccess := uuid.NewString()

	require.NoError(t, ledger.Record(ctx, owner, ownerAccess, registry.TokenClassAccess))
	require.NoError(t, ledger.Record(ctx, owner, ownerRefresh, registry.TokenClassRefresh))
	require.NoError(t, ledger.Record(ctx, other, otherAccess, registry.TokenClassAccess))

	require.NoError(t, ledger.RevokeAll(ctx, owner))

	for _, jti := range []string{ownerAccess, ownerRefresh} {
		revoked, err := ledger.IsBlacklisted(ctx, jti)
		require.NoError(t, err)
		assert.True(t, revoked)
	}

	// Other owners keep their tokens.
	revoked, err := ledger.IsBlacklisted(ctx, otherAccess)
	require.NoError(t, err)
	assert.False(t, revoked)
}
