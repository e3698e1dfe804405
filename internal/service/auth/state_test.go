package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ga-bridge/pkg/errors"
)

func TestStateRoundTrip(t *testing.T) {
	issuer := NewStateIssuer("test-secret")

	state, err := issuer.Issue("global")
	require.NoError(t, err)
	require.NotEmpty(t, state)

	scope, err := issuer.Validate(state)
	require.NoError(t, err)
	assert.Equal(t, "global", scope)
}

func TestStateValidate_WrongSecret(t *testing.T) {
	state, err := NewStateIssuer("secret-a").Issue("global")
	require.NoError(t, err)

	_, err = NewStateIssuer("secret-b").Validate(state)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAuth))
}

func TestStateValidate_Expired(t *testing.T) {
	issuer := NewStateIssuer("test-secret")
	issuer.lifetime = -time.Minute

	state, err := issuer.Issue("global")
	require.NoError(t, err)

	_, err = issuer.Validate(state)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAuth))
}

func TestStateValidate_RejectsUnsignedToken(t *testing.T) {
	issuer := NewStateIssuer("test-secret")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"scope": "global",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	state, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Validate(state)
	require.Error(t, err)
}

func TestStateValidate_Garbage(t *testing.T) {
	_, err := NewStateIssuer("test-secret").Validate("not-a-jwt")
	require.Error(t, err)
}

func TestStateIssue_MissingSecret(t *testing.T) {
	_, err := NewStateIssuer("").Issue("global")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}
