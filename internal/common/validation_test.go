package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "alice@example.com", false},
		{"valid with whitespace", "  alice@example.com  ", false},
		{"valid uppercase", "ALICE@EXAMPLE.COM", false},
		{"empty", "", true},
		{"missing at", "alice.example.com", true},
		{"missing domain dot", "alice@example", true},
		{"trailing dot", "alice@example.", true},
		{"at first char", "@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("12345"))
	assert.NoError(t, ValidatePassword("123456"))
	assert.NoError(t, ValidatePassword(strings.Repeat("a", 100)))
	assert.Error(t, ValidatePassword(strings.Repeat("a", 101)))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret-password")
	assert.NoError(t, err)
	assert.NotEqual(t, "secret-password", hash)

	assert.NoError(t, CheckPassword("secret-password", hash))
	assert.Error(t, CheckPassword("wrong-password", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-123", "alice@example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "whispr", claims.Issuer)
}

func TestValidToken_Garbage(t *testing.T) {
	_, err := ValidToken("not-a-token")
	assert.Error(t, err)
}
