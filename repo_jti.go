package registry

import (
	"context"
	"database/sql"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TokenLedger is the durable record of issued token ids and their
// revocation state. Access and refresh ids live in separate namespaces.
type TokenLedger interface {
	Record(ctx context.Context, ownerID uuid.UUID, jti string, class TokenClass) error
	RecordTx(ctx context.Context, tx bun.IDB, ownerID uuid.UUID, jti string, class TokenClass) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	Revoke(ctx context.Context, jti string, class TokenClass) error
	RevokeAll(ctx context.Context, ownerID uuid.UUID) error
	RevokeAllTx(ctx context.Context, tx bun.IDB, ownerID uuid.UUID) error
}

type tokenLedger struct {
	db     *bun.DB
	logger Logger
}

// NewTokenLedger returns a bun backed TokenLedger.
func NewTokenLedger(db *bun.DB, logger Logger) TokenLedger {
	if logger == nil {
		logger = defLogger{}
	}
	return &tokenLedger{db: db, logger: logger}
}

// Record inserts a fresh, non expired ledger row for the token id. A
// duplicate id within the class is an integrity violation: ids are random
// UUIDs and the ledger is keyed by them.
func (l *tokenLedger) Record(ctx context.Context, ownerID uuid.UUID, jti string, class TokenClass) error {
	return l.RecordTx(ctx, l.db, ownerID, jti, class)
}

func (l *tokenLedger) RecordTx(ctx context.Context, tx bun.IDB, ownerID uuid.UUID, jti string, class TokenClass) error {
	var model any
	switch class {
	case TokenClassAccess:
		model = &AccessJTI{ID: uuid.New(), OwnerID: ownerID, TokenID: jti}
	case TokenClassRefresh:
		model = &RefreshJTI{ID: uuid.New(), OwnerID: ownerID, TokenID: jti}
	default:
		return errors.New("unknown token class: "+class, errors.CategoryBadInput)
	}

	if _, err := tx.NewInsert().Model(model).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			l.logger.Error("token id collision in %s ledger: %s", class, jti)
			return ErrTokenIDCollision
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to record token id")
	}

	return nil
}

// IsBlacklisted looks the id up in both namespaces. An id absent from both
// is reported as not blacklisted: unknown tokens are deliberately treated
// as valid (fail open), matching the issuance contract where every minted
// token is recorded. A stricter deployment may want to invert this.
func (l *tokenLedger) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	access := &AccessJTI{}
	err := l.db.NewSelect().Model(access).
		Where("?TableAlias.token_id = ?", jti).
		Limit(1).
		Scan(ctx)

	if err == nil {
		return access.Expired, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, errors.Wrap(err, errors.CategoryInternal, "access ledger lookup failed")
	}

	refresh := &RefreshJTI{}
	err = l.db.NewSelect().Model(refresh).
		Where("?TableAlias.token_id = ?", jti).
		Limit(1).
		Scan(ctx)

	if err == nil {
		return refresh.Expired, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, errors.Wrap(err, errors.CategoryInternal, "refresh ledger lookup failed")
	}

	return false, nil
}

// Revoke flips the expired flag for the id within its class. Revoking an
// already revoked id is a no-op success; the flag is never unset.
func (l *tokenLedger) Revoke(ctx context.Context, jti string, class TokenClass) error {
	var query *bun.UpdateQuery
	switch class {
	case TokenClassAccess:
		query = l.db.NewUpdate().Model((*AccessJTI)(nil))
	case TokenClassRefresh:
		query = l.db.NewUpdate().Model((*RefreshJTI)(nil))
	default:
		return errors.New("unknown token class: "+class, errors.CategoryBadInput)
	}

	res, err := query.
		Set("expired = ?", true).
		Where("?TableAlias.token_id = ?", jti).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to revoke token id")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to read revocation result")
	}

	if affected == 0 {
		return ErrTokenRecordNotFound
	}

	return nil
}

// RevokeAll expires every access and refresh record owned by the user.
// Only the password reset flow calls this. Failure on one class does not
// stop the other; both errors are surfaced.
func (l *tokenLedger) RevokeAll(ctx context.Context, ownerID uuid.UUID) error {
	return l.RevokeAllTx(ctx, l.db, ownerID)
}

func (l *tokenLedger) RevokeAllTx(ctx context.Context, tx bun.IDB, ownerID uuid.UUID) error {
	var failed []string

	if _, err := tx.NewUpdate().Model((*AccessJTI)(nil)).
		Set("expired = ?", true).
		Where("?TableAlias.owner_id = ?", ownerID).
		Exec(ctx); err != nil {
		l.logger.Warn("revoke all could not expire access tokens for %s: %v", ownerID, err)
		failed = append(failed, TokenClassAccess)
	}

	if _, err := tx.NewUpdate().Model((*RefreshJTI)(nil)).
		Set("expired = ?", true).
		Where("?TableAlias.owner_id = ?", ownerID).
		Exec(ctx); err != nil {
		l.logger.Warn("revoke all could not expire refresh tokens for %s: %v", ownerID, err)
		failed = append(failed, TokenClassRefresh)
	}

	if len(failed) > 0 {
		return errors.New(
			"failed to expire "+strings.Join(failed, ", ")+" tokens",
			errors.CategoryInternal,
		)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
