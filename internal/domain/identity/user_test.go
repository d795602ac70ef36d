package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates customer with hashed password", func(t *testing.T) {
		u, err := NewUser(" Sita ", " Sita@Example.COM ", "Secret1")
		require.NoError(t, err)
		assert.Equal(t, "Sita", u.Name)
		assert.Equal(t, "sita@example.com", u.Email)
		assert.Equal(t, RoleCustomer, u.Role)
		assert.NotEqual(t, "Secret1", u.PasswordHash)
		assert.True(t, u.VerifyPassword("Secret1"))
		assert.False(t, u.VerifyPassword("secret1"))
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewUser("Sita", "not-an-email", "Secret1")
		require.Error(t, err)
	})

	t.Run("rejects weak passwords", func(t *testing.T) {
		for _, pw := range []string{"Ab1", "alllower1", "ALLUPPER1", "NoDigits"} {
			_, err := NewUser("Sita", "sita@example.com", pw)
			assert.Error(t, err, pw)
		}
	})
}

func TestUser_SetPassword(t *testing.T) {
	u, err := NewUser("Ram", "ram@example.com", "Secret1")
	require.NoError(t, err)

	require.NoError(t, u.SetPassword("Better2"))
	assert.True(t, u.VerifyPassword("Better2"))
	assert.False(t, u.VerifyPassword("Secret1"))

	require.Error(t, u.SetPassword("weak"))
	assert.True(t, u.VerifyPassword("Better2"))
}

func TestRole(t *testing.T) {
	assert.True(t, RoleAdmin.IsAdmin())
	assert.True(t, RoleSuperAdmin.IsAdmin())
	assert.False(t, RoleCustomer.IsAdmin())
	assert.False(t, Role("owner").IsValid())
}

func TestUserPatch(t *testing.T) {
	email := " New@Mail.com "
	role := RoleAdmin
	p := UserPatch{Email: &email, Role: &role}
	require.NoError(t, p.Validate())
	assert.Equal(t, map[string]any{"email": "new@mail.com", "role": "admin"}, p.Columns())

	bad := Role("root")
	assert.Error(t, UserPatch{Role: &bad}.Validate())
	assert.Empty(t, UserPatch{}.Columns())
}
