package users

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	for _, ok := range []string{"a@x.com", "first.last@mail.example.co", "a-b_c@x-y.org"} {
		require.NoError(t, ValidateEmail(ok), ok)
	}
	for _, bad := range []string{"", "a", "a@", "@x.com", "a@x", "a@x.c", "a b@x.com"} {
		require.Error(t, ValidateEmail(bad), bad)
	}
}

func TestValidatePassword(t *testing.T) {
	require.Error(t, ValidatePassword("12345"))
	require.NoError(t, ValidatePassword("secret1"))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", hash)
	require.True(t, CheckPasswordHash("secret1", hash))
	require.False(t, CheckPasswordHash("secret2", hash))

	u := &User{PasswordHash: hash}
	require.True(t, u.CheckPassword("secret1"))
	require.False(t, (&User{}).CheckPassword(""))
}

func TestUserValidate(t *testing.T) {
	require.Error(t, (&User{Email: "a@x.com", PasswordHash: "h"}).Validate(), "name required")
	require.Error(t, (&User{Name: "A"}).Validate(), "email or google id")
	require.Error(t, (&User{Name: "A", Email: "a@x.com"}).Validate(), "local user needs password")
	require.NoError(t, (&User{Name: "A", GoogleID: "g-1"}).Validate())
	require.NoError(t, (&User{Name: "A", Email: "a@x.com", PasswordHash: "h"}).Validate())

	expires := time.Now()
	require.Error(t, (&User{Name: "A", GoogleID: "g", ResetTokenExpires: &expires}).Validate())
}

func TestJSONNeverCarriesSecrets(t *testing.T) {
	expires := time.Now()
	u := &User{
		ID:                "1",
		Email:             "a@x.com",
		Name:              "A",
		PasswordHash:      "hash",
		ResetTokenHash:    "reset",
		ResetTokenExpires: &expires,
	}
	data, err := json.Marshal(u)
	require.NoError(t, err)
	require.NotContains(t, string(data), "hash")
	require.NotContains(t, string(data), "reset")
	require.NotContains(t, string(data), "password")

	s := u.Sanitized()
	require.Empty(t, s.PasswordHash)
	require.False(t, s.HasPendingReset())
	require.True(t, u.HasPendingReset())
}
