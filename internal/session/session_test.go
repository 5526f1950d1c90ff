package session_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"feedsync/internal/session"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return token
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("reads the id claim", func(t *testing.T) {
		t.Parallel()

		token := sign(t, jwt.MapClaims{"id": "user-1"})

		s, err := session.New(token)
		require.NoError(t, err)
		require.Equal(t, "user-1", s.ViewerID())
		require.Equal(t, token, s.Token)
	})

	t.Run("accepts a bearer prefix", func(t *testing.T) {
		t.Parallel()

		token := sign(t, jwt.MapClaims{"id": "user-1"})

		s, err := session.New("Bearer " + token)
		require.NoError(t, err)
		require.Equal(t, token, s.Token)
	})

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()

		_, err := session.New("  ")
		require.ErrorIs(t, err, session.ErrNoToken)
	})

	t.Run("missing claim", func(t *testing.T) {
		t.Parallel()

		_, err := session.New(sign(t, jwt.MapClaims{"sub": "user-1"}))
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()

		_, err := session.New("not-a-jwt")
		require.Error(t, err)
	})
}

func TestSession_ViewerIDOfNil(t *testing.T) {
	t.Parallel()

	var s *session.Session
	require.Empty(t, s.ViewerID())
}
