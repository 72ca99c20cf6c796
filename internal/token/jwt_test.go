package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/authgate/internal/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestJWT_Roundtrip(t *testing.T) {
	t.Parallel()

	issued := time.Now().Truncate(time.Second)
	j := NewJWT("secret")
	j.now = fixedClock(issued)

	tok, err := j.Issue(1, "alice")
	require.NoError(t, err)

	claims, err := j.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IssuedAt.Equal(issued))
	assert.Equal(t, int64(3600), claims.ExpiresAt.Unix()-claims.IssuedAt.Unix())
}

func TestJWT_PayloadFieldNames(t *testing.T) {
	t.Parallel()

	j := NewJWT("secret")
	tok, err := j.Issue(7, "bob")
	require.NoError(t, err)

	parsed := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, parsed)
	require.NoError(t, err)

	assert.EqualValues(t, 7, parsed["userId"])
	assert.Equal(t, "bob", parsed["username"])
	assert.Contains(t, parsed, "iat")
	assert.Contains(t, parsed, "exp")
}

func TestJWT_Verify_Invalid(t *testing.T) {
	t.Parallel()

	issued := time.Now()
	j := NewJWT("secret")
	j.now = fixedClock(issued)

	valid, err := j.Issue(1, "alice")
	require.NoError(t, err)

	other := NewJWT("another-secret")
	other.now = fixedClock(issued)
	foreign, err := other.Issue(1, "alice")
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour))},
		UserID:           1,
		Username:         "alice",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1, Username: "alice"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-token"},
		{name: "tampered payload", token: tampered},
		{name: "wrong secret", token: foreign},
		{name: "alg none", token: none},
		{name: "missing exp", token: noExp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := j.Verify(tt.token)
			require.ErrorIs(t, err, model.ErrInvalidToken)
		})
	}
}

func TestJWT_Verify_Expired(t *testing.T) {
	t.Parallel()

	issued := time.Now()
	j := NewJWT("secret")
	j.now = fixedClock(issued)

	tok, err := j.Issue(1, "alice")
	require.NoError(t, err)

	j.now = fixedClock(issued.Add(59 * time.Minute))
	_, err = j.Verify(tok)
	require.NoError(t, err)

	j.now = fixedClock(issued.Add(61 * time.Minute))
	_, err = j.Verify(tok)
	require.ErrorIs(t, err, model.ErrInvalidToken)
}
