package middleware

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,strongpassword"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
}

func newTestValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	RegisterValidations(v)
	return v
}

func TestStrongPassword(t *testing.T) {
	v := newTestValidator()
	tests := []struct {
		password string
		valid    bool
	}{
		{"Secret1", true},
		{"aB3456", true},
		{"short", false},
		{"Ab1", false},
		{"alllower1", false},
		{"ALLUPPER1", false},
		{"NoDigitsHere", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := v.Var(tt.password, "strongpassword")
			assert.Equal(t, tt.valid, err == nil)
		})
	}
}

func TestPhone(t *testing.T) {
	v := newTestValidator()
	tests := []struct {
		phone string
		valid bool
	}{
		{"+977-9841234567", true},
		{"(01) 442 1234", true},
		{"9800000000", true},
		{"call me", false},
		{"98412x", false},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			err := v.Var(tt.phone, "phone")
			assert.Equal(t, tt.valid, err == nil)
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	v := newTestValidator()

	err := v.Struct(signupForm{Name: "S", Email: "not-an-email", Password: "weak", Phone: "abc"})
	require.Error(t, err)

	resp := FormatValidationErrors(err, "req-1")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)

	messages := map[string]string{}
	for _, d := range resp.Error.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "Must be at least 2 characters", messages["name"])
	assert.Equal(t, "Invalid email format", messages["email"])
	assert.Contains(t, messages["password"], "uppercase")
	assert.Equal(t, "Please provide a valid phone number", messages["phone"])
}

func TestValidationDetails_NonValidatorError(t *testing.T) {
	assert.Nil(t, ValidationDetails(errors.New("EOF")))
}

func TestSetupValidator_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		SetupValidator()
		SetupValidator()
	})
}
