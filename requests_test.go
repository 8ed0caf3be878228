package registry_test

import (
	"testing"

	"github.com/sproulclub/registry"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     registry.RegisterRequest
		wantErr bool
	}{
		{
			name: "Valid request",
			req: registry.RegisterRequest{
				Name:     "Quantum Club",
				Email:    "club@org.edu",
				Password: "hunter2hunter2",
			},
			wantErr: false,
		},
		{
			name: "Missing name",
			req: registry.RegisterRequest{
				Email:    "club@org.edu",
				Password: "hunter2hunter2",
			},
			wantErr: true,
		},
		{
			name: "Bad email",
			req: registry.RegisterRequest{
				Name:     "Quantum Club",
				Email:    "not-an-email",
				Password: "hunter2hunter2",
			},
			wantErr: true,
		},
		{
			name: "Short password",
			req: registry.RegisterRequest{
				Name:     "Quantum Club",
				Email:    "club@org.edu",
				Password: "short",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoginRequestValidate(t *testing.T) {
	valid := registry.LoginRequest{Email: "club@org.edu", Password: "hunter2"}
	assert.NoError(t, valid.Validate())

	missing := registry.LoginRequest{Email: "club@org.edu"}
	assert.Error(t, missing.Validate())

	badEmail := registry.LoginRequest{Email: "club", Password: "hunter2"}
	assert.Error(t, badEmail.Validate())
}

func TestResetPasswordRequestValidate(t *testing.T) {
	valid := registry.ResetPasswordRequest{
		Password:        "hunter2hunter2",
		ConfirmPassword: "hunter2hunter2",
	}
	assert.NoError(t, valid.Validate())

	mismatch := registry.ResetPasswordRequest{
		Password:        "hunter2hunter2",
		ConfirmPassword: "different-pass",
	}
	assert.Error(t, mismatch.Validate())

	short := registry.ResetPasswordRequest{
		Password:        "short",
		ConfirmPassword: "short",
	}
	assert.Error(t, short.Validate())
}

func TestFutureSignupRequestValidate(t *testing.T) {
	valid := registry.FutureSignupRequest{
		OrgName:  "Robotics at Berkeley",
		OrgEmail: "robotics@org.edu",
		PocName:  "Sam Lee",
		PocEmail: "sam@org.edu",
	}
	assert.NoError(t, valid.Validate())

	missing := valid
	missing.PocEmail = ""
	assert.Error(t, missing.Validate())
}
