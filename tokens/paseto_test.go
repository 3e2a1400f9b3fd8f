package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testKey = "YELLOW SUBMARINE, BLACK WIZARDRY"

func TestNewPasetoMaker(t *testing.T) {
	t.Run("rejects keys of the wrong size", func(t *testing.T) {
		_, err := NewPasetoMaker("too short")
		require.Error(t, err)
	})

	t.Run("accepts a 32 byte key", func(t *testing.T) {
		_, err := NewPasetoMaker(testKey)
		require.NoError(t, err)
	})
}

func TestPasetoMaker(t *testing.T) {
	maker, err := NewPasetoMaker(testKey)
	require.NoError(t, err)

	t.Run("round trips a token", func(t *testing.T) {
		issuedAt := time.Now()
		token, payload, err := maker.CreateToken("judge", time.Minute)
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.NotEmpty(t, payload.ID)

		got, err := maker.VerifyToken(token)
		require.NoError(t, err)
		require.Equal(t, payload.ID, got.ID)
		require.Equal(t, "judge", got.Username)
		require.WithinDuration(t, issuedAt, got.IssuedAt, time.Second)
		require.WithinDuration(t, issuedAt.Add(time.Minute), got.ExpiredAt, time.Second)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		token, _, err := maker.CreateToken("judge", -time.Minute)
		require.NoError(t, err)

		_, err = maker.VerifyToken(token)
		require.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects a tampered token", func(t *testing.T) {
		token, _, err := maker.CreateToken("judge", time.Minute)
		require.NoError(t, err)

		_, err = maker.VerifyToken(token + "x")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects a token from another key", func(t *testing.T) {
		other, err := NewPasetoMaker("12345678901234567890123456789012")
		require.NoError(t, err)

		token, _, err := other.CreateToken("judge", time.Minute)
		require.NoError(t, err)

		_, err = maker.VerifyToken(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}
