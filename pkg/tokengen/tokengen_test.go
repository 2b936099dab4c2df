package tokengen

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpaqueToken(t *testing.T) {
	g := New()
	seen := make(map[string]struct{})

	for i := 0; i < 500; i++ {
		token, err := g.NewOpaqueToken()
		require.NoError(t, err)
		assert.Len(t, token, 43)
		assert.Regexp(t, `^[A-Za-z0-9_-]+$`, token)

		_, dup := seen[token]
		require.False(t, dup, "token generated twice: %s", token)
		seen[token] = struct{}{}
	}
}

func TestNewConfirmCode(t *testing.T) {
	g := New()
	re := regexp.MustCompile(`^\d{6}$`)

	for i := 0; i < 500; i++ {
		code, err := g.NewConfirmCode()
		require.NoError(t, err)
		assert.Truef(t, re.MatchString(code), "code %q is not six digits", code)
	}
}
