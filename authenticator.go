package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	confirmEmailSubject  = "Please confirm your email"
	resetPasswordSubject = "Reset your password"
)

// Authenticator holds the club registry auth flows.
type Authenticator interface {
	Register(ctx context.Context, req RegisterRequest) error
	ConfirmEmail(ctx context.Context, token string) error
	Login(ctx context.Context, req LoginRequest) (*TokenPair, error)
	Refresh(ctx context.Context, claims *SessionClaims) (string, error)
	RevokeAccess(ctx context.Context, jti string) error
	RevokeRefresh(ctx context.Context, jti string) error
	ResetPassword(ctx context.Context, email string, req ResetPasswordRequest) error
	RequestPasswordReset(ctx context.Context, email string) error
	IsTokenRevoked(ctx context.Context, claims *SessionClaims) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	FutureSignup(ctx context.Context, req FutureSignupRequest) error
}

// TokenPair is the login result: both session tokens, already recorded in
// the revocation ledger.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Auther orchestrates the credential store, hasher, token issuer, ledger,
// and confirmation codec. It owns none of the records it touches; every
// flow is a short-lived sequence of checks with fail-fast branches.
type Auther struct {
	repo         RepositoryManager
	tokenService TokenIssuer
	verifier     ConfirmationCodec
	mailer       Mailer
	confirmURL   string
	window       time.Duration
	logger       Logger
	activitySink ActivitySink
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, opts Config) *Auther {
	return &Auther{
		repo:         repo,
		tokenService: NewTokenService(opts, nil),
		verifier:     NewEmailVerifier(opts.GetSecretKey(), opts.GetPasswordSalt()),
		mailer:       noopMailer{},
		window:       opts.GetConfirmationWindow(),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithMailer configures the outbound email hook used by registration and
// password reset.
func (s *Auther) WithMailer(mailer Mailer) *Auther {
	if mailer != nil {
		s.mailer = mailer
	}
	return s
}

// WithConfirmationURL sets the base URL embedded in confirmation emails.
func (s *Auther) WithConfirmationURL(base string) *Auther {
	s.confirmURL = base
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// TokenService returns the TokenIssuer instance used by this Authenticator
func (s *Auther) TokenService() TokenIssuer {
	return s.tokenService
}

// Register creates an unconfirmed user plus their club profile and emails
// a signed confirmation link. The email must already be on the
// pre-verified allowlist.
func (s *Auther) Register(ctx context.Context, req RegisterRequest) error {
	if _, err := s.repo.PreVerifiedEmails().GetByIdentifier(ctx, req.Email); err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrEmailNotPreapproved
		}
		return errors.Wrap(err, errors.CategoryInternal, "allowlist lookup failed")
	}

	if _, err := s.repo.Users().GetByEmail(ctx, req.Email); err == nil {
		return ErrUserExists
	} else if !repository.IsRecordNotFound(err) {
		return errors.Wrap(err, errors.CategoryInternal, "user lookup failed")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return richErr
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	tagIDs, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return err
	}

	user := &User{
		Email:        req.Email,
		PasswordHash: hash,
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if user, err = s.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return errors.Wrap(err, errors.CategoryConflict, "could not create user")
		}

		club := &Club{
			Name:             req.Name,
			OwnerID:          user.ID,
			TagIDs:           tagIDs,
			AppRequired:      req.AppRequired,
			AcceptingMembers: req.AcceptingMembers,
		}

		if id, err := hashid.NewUUID(req.Name); err == nil {
			club.ID = id
		}

		if _, err := s.repo.Clubs().CreateTx(ctx, tx, club); err != nil {
			return errors.Wrap(err, errors.CategoryConflict, "could not create club")
		}

		return nil
	})

	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return richErr
		}
		return errors.Wrap(err, errors.CategoryInternal, "registration transaction failed")
	}

	s.emitAuthEvent(ctx, ActivityEventRegistration, ActorRef{ID: user.ID.String(), Type: "user"}, user.ID.String(), map[string]any{
		"email": req.Email,
	})

	s.sendConfirmationEmail(ctx, req.Email)

	return nil
}

// ConfirmEmail validates the signed token and flips the user's confirmed
// flag. Already confirmed users short-circuit to success so the link stays
// idempotent.
func (s *Auther) ConfirmEmail(ctx context.Context, token string) error {
	email, ok := s.verifier.ConfirmToken(token, s.window)
	if !ok {
		return ErrConfirmationInvalid
	}

	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "user lookup failed")
	}

	if user.Confirmed {
		return nil
	}

	if err := s.repo.Users().Confirm(ctx, user.ID); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to confirm user")
	}

	s.emitAuthEvent(ctx, ActivityEventEmailConfirmed, ActorRef{ID: user.ID.String(), Type: "user"}, user.ID.String(), map[string]any{
		"email": email,
	})

	return nil
}

// Login verifies the credentials, mints an access and a refresh token, and
// records both token ids in the ledger before returning the pair.
func (s *Auther) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	user, err := s.repo.Users().GetByEmail(ctx, req.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.emitLoginFailure(ctx, req.Email, ErrUserNotFound)
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "user lookup failed")
	}

	if !VerifyPassword(req.Password, user.PasswordHash) {
		s.emitLoginFailure(ctx, req.Email, ErrBadCredentials)
		return nil, ErrBadCredentials
	}

	identity := NewIdentityFromUser(user)

	access, accessJTI, err := s.tokenService.IssueAccess(identity)
	if err != nil {
		return nil, err
	}

	refresh, refreshJTI, err := s.tokenService.IssueRefresh(identity)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Ledger().Record(ctx, user.ID, accessJTI, TokenClassAccess); err != nil {
		return nil, err
	}

	if err := s.repo.Ledger().Record(ctx, user.ID, refreshJTI, TokenClassRefresh); err != nil {
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, ActorRef{ID: user.ID.String(), Type: "user"}, user.ID.String(), map[string]any{
		"email": req.Email,
	})

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh mints a new access token for an already authenticated refresh
// token identity. The refresh token itself is not rotated.
func (s *Auther) Refresh(ctx context.Context, claims *SessionClaims) (string, error) {
	if claims == nil || !claims.IsRefresh() {
		return "", ErrSessionTokenMalformed
	}

	ownerID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryBadInput, "refresh claims carry no valid user id")
	}

	identity := claimsIdentity{claims: claims}

	access, jti, err := s.tokenService.IssueAccess(identity)
	if err != nil {
		return "", err
	}

	if err := s.repo.Ledger().Record(ctx, ownerID, jti, TokenClassAccess); err != nil {
		return "", err
	}

	s.emitAuthEvent(ctx, ActivityEventTokenRefreshed, ActorRef{ID: claims.UserID(), Type: "user"}, claims.UserID(), nil)

	return access, nil
}

// RevokeAccess expires the presented access token id.
func (s *Auther) RevokeAccess(ctx context.Context, jti string) error {
	return s.revoke(ctx, jti, TokenClassAccess)
}

// RevokeRefresh expires the presented refresh token id.
func (s *Auther) RevokeRefresh(ctx context.Context, jti string) error {
	return s.revoke(ctx, jti, TokenClassRefresh)
}

func (s *Auther) revoke(ctx context.Context, jti string, class TokenClass) error {
	if err := s.repo.Ledger().Revoke(ctx, jti, class); err != nil {
		return err
	}

	s.emitAuthEvent(ctx, ActivityEventTokenRevoked, ActorRef{Type: "user"}, "", map[string]any{
		"class": class,
	})

	return nil
}

// ResetPassword requires the two submitted passwords to match, then
// invalidates every outstanding token for the user before overwriting the
// password hash. Plaintexts are compared directly; each hashing call salts
// differently so digests of equal inputs never match.
func (s *Auther) ResetPassword(ctx context.Context, email string, req ResetPasswordRequest) error {
	if req.Password != req.ConfirmPassword {
		return ErrPasswordMismatch
	}

	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "user lookup failed")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return richErr
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.repo.Ledger().RevokeAllTx(ctx, tx, user.ID); err != nil {
			return err
		}
		return s.repo.Users().ResetPasswordTx(ctx, tx, user.ID, hash)
	})

	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return richErr
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to finalize password reset")
	}

	s.emitAuthEvent(ctx, ActivityEventPasswordResetSuccess, ActorRef{ID: user.ID.String(), Type: "user"}, user.ID.String(), nil)

	return nil
}

// RequestPasswordReset emails a reset link to an authenticated user.
func (s *Auther) RequestPasswordReset(ctx context.Context, email string) error {
	if _, err := s.repo.Users().GetByEmail(ctx, email); err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "user lookup failed")
	}

	body := "A password reset was requested for your club account. " +
		"Follow the link in your dashboard to choose a new password."

	if err := s.mailer.Send(ctx, []string{email}, resetPasswordSubject, body); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to send reset email")
	}

	return nil
}

// IsTokenRevoked answers the blacklist query for the middleware: a token id
// found in either namespace reports its expired flag, an unknown id reports
// not revoked.
func (s *Auther) IsTokenRevoked(ctx context.Context, claims *SessionClaims) (bool, error) {
	if claims == nil {
		return false, nil
	}
	return s.repo.Ledger().IsBlacklisted(ctx, claims.JTI())
}

// EmailExists reports allowlist membership so the sign-up form can steer
// organizations toward the future sign-up list.
func (s *Auther) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.PreVerifiedEmails().GetByIdentifier(ctx, email)
	if err == nil {
		return true, nil
	}
	if repository.IsRecordNotFound(err) {
		return false, nil
	}
	return false, errors.Wrap(err, errors.CategoryInternal, "allowlist lookup failed")
}

// FutureSignup records an organization waiting for allowlist approval.
func (s *Auther) FutureSignup(ctx context.Context, req FutureSignupRequest) error {
	if _, err := s.repo.FutureUsers().GetByIdentifier(ctx, req.OrgEmail); err == nil {
		return ErrFutureSignupExists
	} else if !repository.IsRecordNotFound(err) {
		return errors.Wrap(err, errors.CategoryInternal, "future signup lookup failed")
	}

	record := &FutureUser{
		OrgName:  req.OrgName,
		OrgEmail: req.OrgEmail,
		PocName:  req.PocName,
		PocEmail: req.PocEmail,
	}

	if _, err := s.repo.FutureUsers().Create(ctx, record); err != nil {
		return errors.Wrap(err, errors.CategoryConflict, "could not save future signup")
	}

	return nil
}

func (s *Auther) resolveTags(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	records, err := s.repo.Tags().GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "tag lookup failed")
	}

	resolved := make([]int64, 0, len(records))
	for _, tag := range records {
		resolved = append(resolved, tag.ID)
	}

	return resolved, nil
}

// Send failures are logged, never fatal: the user can request a fresh link
// and the account is already persisted.
func (s *Auther) sendConfirmationEmail(ctx context.Context, email string) {
	token, err := s.verifier.GenerateToken(email)
	if err != nil {
		s.logger.Error("could not generate confirmation token for %s: %v", email, err)
		return
	}

	body := fmt.Sprintf(
		"Welcome! Please confirm your email by following %s/api/user/confirm/%s",
		s.confirmURL, token,
	)

	if err := s.mailer.Send(ctx, []string{email}, confirmEmailSubject, body); err != nil {
		s.logger.Error("could not send confirmation email to %s: %v", email, err)
	}
}

func (s *Auther) emitLoginFailure(ctx context.Context, email string, cause error) {
	s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
		"email": email,
		"error": cause.Error(),
	})
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

// claimsIdentity lets the refresh flow reuse the issuer without a user
// lookup; everything the access token needs is already in the refresh
// claims.
type claimsIdentity struct {
	claims *SessionClaims
}

func (c claimsIdentity) ID() string    { return c.claims.UserID() }
func (c claimsIdentity) Email() string { return c.claims.Identity() }
func (c claimsIdentity) IsAdmin() bool { return c.claims.Admin }
