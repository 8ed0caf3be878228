package registry

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// TextCode values used to tag structured errors for API consumers.
const (
	TextCodeNotPreapproved     = "EMAIL_NOT_PREAPPROVED"
	TextCodeUserExists         = "USER_EXISTS"
	TextCodeUserNotFound       = "USER_NOT_FOUND"
	TextCodeInvalidCreds       = "INVALID_CREDENTIALS"
	TextCodeConfirmationToken  = "CONFIRMATION_INVALID"
	TextCodePasswordMismatch   = "PASSWORD_MISMATCH"
	TextCodeTokenNotFound      = "TOKEN_NOT_FOUND"
	TextCodeTokenIDCollision   = "TOKEN_ID_COLLISION"
	TextCodeTokenExpired       = "AUTH_TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "AUTH_TOKEN_MALFORMED"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
	TextCodeFutureSignupExists = "FUTURE_SIGNUP_EXISTS"
)

// ErrEmailNotPreapproved is returned when a registration email is not part
// of the pre-verified allowlist.
var ErrEmailNotPreapproved = errors.New("the email is not part of the pre-verified list of emails", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode(TextCodeNotPreapproved)

// ErrUserExists is returned when a club under that email is already registered.
var ErrUserExists = errors.New("a club under that email already exists", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode(TextCodeUserExists)

// ErrUserNotFound is returned when no user matches the given email.
var ErrUserNotFound = errors.New("the user does not exist", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode(TextCodeUserNotFound)

// ErrBadCredentials is returned when password verification fails.
var ErrBadCredentials = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCreds)

// ErrConfirmationInvalid collapses malformed, tampered, and expired
// confirmation tokens into a single indistinguishable failure.
var ErrConfirmationInvalid = errors.New("the confirmation link is invalid or has expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeConfirmationToken)

// ErrPasswordMismatch is returned when the reset passwords do not match.
var ErrPasswordMismatch = errors.New("the given passwords do not match", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodePasswordMismatch)

// ErrTokenRecordNotFound is returned when revoking a token id that was
// never recorded in the ledger.
var ErrTokenRecordNotFound = errors.New("token does not exist", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode(TextCodeTokenNotFound)

// ErrTokenIDCollision signals a duplicate token id in the ledger. Token ids
// are random UUIDs so this should never happen; treat it as a fatal
// integrity violation, not a user-facing condition.
var ErrTokenIDCollision = errors.New("duplicate token id in revocation ledger", errors.CategoryInternal).
	WithTextCode(TextCodeTokenIDCollision)

// ErrSessionTokenExpired is returned for session tokens past their deadline.
var ErrSessionTokenExpired = errors.New("authentication token has expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrSessionTokenMalformed is returned for session tokens that fail parsing
// or signature checks.
var ErrSessionTokenMalformed = errors.New("authentication token is malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeEmptyPassword)

// ErrFutureSignupExists is returned when an organization email was already
// captured by the future sign-up list.
var ErrFutureSignupExists = errors.New("the organization email has already been registered", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode(TextCodeFutureSignupExists)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
