package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, sessionID, err := TokenNew(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, sessionID)

	userID, parsedSessionID, err := TokenCheck(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, sessionID, parsedSessionID)
}

func TestTokenCheckRejectsGarbage(t *testing.T) {
	_, _, err := TokenCheck("not-a-token")
	assert.Error(t, err)
}

func TestTokenCheckRejectsForeignSignature(t *testing.T) {
	// signed with a different key
	foreign := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9." +
		"eyJ1c2VyX2lkIjo0MiwianRpIjoieCJ9." +
		"p6GPZZ1cfz1YyJ1cfz1YyJ1cfz1YyJ1cfz1YyJ1cfz0"

	_, _, err := TokenCheck(foreign)
	assert.Error(t, err)
}

func TestSessionIDsAreUnique(t *testing.T) {
	_, first, err := TokenNew(1)
	require.NoError(t, err)
	_, second, err := TokenNew(1)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
