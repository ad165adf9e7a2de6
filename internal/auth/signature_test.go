package auth

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "dt-shared-secret"

func newTestVerifier() (*Verifier, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	logger := slog.New(slog.NewTextHandler(buf, nil))
	return NewVerifier(secret, logger), buf
}

func TestVerify_AcceptsSignedTokens(t *testing.T) {
	v, logs := newTestVerifier()

	empty, err := Sign(secret, nil)
	require.NoError(t, err)
	assert.NoError(t, v.Verify(empty))

	// Claims are not interpreted, so an expired token still verifies.
	expired, err := Sign(secret, map[string]any{"exp": 1, "sub": "dynatrace"})
	require.NoError(t, err)
	assert.NoError(t, v.Verify(expired))

	assert.Empty(t, logs.String())
}

func TestVerify_Rejects(t *testing.T) {
	wrongSecret, err := Sign("another-secret", nil)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{}).SignedString([]byte(secret))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	valid, err := Sign(secret, nil)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "Empty", token: ""},
		{name: "Whitespace", token: "   "},
		{name: "Garbage", token: "not-a-token"},
		{name: "TwoSegments", token: "abc.def"},
		{name: "WrongSecret", token: wrongSecret},
		{name: "WrongAlgorithm", token: hs512},
		{name: "NoneAlgorithm", token: none},
		{name: "TamperedSignature", token: valid[:len(valid)-2] + "xx"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v, logs := newTestVerifier()

			err := v.Verify(test.token)
			assert.ErrorIs(t, err, ErrInvalidSignature)
			assert.Equal(t, "invalid signature", err.Error())

			assert.Contains(t, logs.String(), "level=ERROR")
			assert.Contains(t, logs.String(), "invalid signature")
			if len(test.token) > 8 {
				assert.NotContains(t, logs.String(), test.token)
			}
		})
	}
}

func TestSign_RequiresSecret(t *testing.T) {
	_, err := Sign("", nil)
	assert.Error(t, err)
}
