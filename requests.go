package registry

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Request payloads arrive from the HTTP layer already JSON decoded. Each
// one validates itself as a pure function before the facade runs.

// RegisterRequest carries a new club registration.
type RegisterRequest struct {
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Password         string  `json:"password"`
	Tags             []int64 `json:"tags"`
	AppRequired      bool    `json:"app-required"`
	AcceptingMembers bool    `json:"new-members"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

// LoginRequest carries the credentials for the login flow.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// ResetPasswordRequest carries both submitted passwords for the reset
// confirmation step.
type ResetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm-password"`
}

// Validate will validate the payload
func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

// FutureSignupRequest captures interest from organizations whose email is
// not yet on the allowlist.
type FutureSignupRequest struct {
	OrgName  string `json:"org-name"`
	OrgEmail string `json:"org-email"`
	PocName  string `json:"poc-name"`
	PocEmail string `json:"poc-email"`
}

// Validate will validate the payload
func (r FutureSignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OrgName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.OrgEmail, validation.Required, is.Email),
		validation.Field(&r.PocName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.PocEmail, validation.Required, is.Email),
	)
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}
