package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidScope_Valid(t *testing.T) {
	valids := []string{
		"a",
		"openid",
		"profile_nickname",
		"account_email",
		"https://www.googleapis.com/auth/userinfo.email",
		"email:read",
		strings.Repeat("s", 256),
	}
	for _, v := range valids {
		assert.True(t, ValidScope(v), v)
	}
}

func TestValidScope_Invalid(t *testing.T) {
	invalids := []string{
		"",
		"bad space",
		"quote\"d",
		`back\slash`,
		"tab\t",
		"한글",
		strings.Repeat("s", 257),
	}
	for _, v := range invalids {
		assert.False(t, ValidScope(v), v)
	}
}

func TestInvalidScopes(t *testing.T) {
	assert.Empty(t, InvalidScopes([]string{"openid", "email"}))
	assert.Equal(t, []string{"two words"}, InvalidScopes([]string{"openid", "two words"}))
}
