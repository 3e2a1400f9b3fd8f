package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults fill everything but the key", func(t *testing.T) {
		t.Setenv("TOKEN_SYMMETRIC_KEY", "12345678901234567890123456789012")

		config, err := LoadConfig()
		require.NoError(t, err)
		require.Equal(t, "8080", config.Port)
		require.Equal(t, "./static", config.StaticDir)
		require.Equal(t, 24*time.Hour, config.TokenDuration)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("TOKEN_SYMMETRIC_KEY", "12345678901234567890123456789012")
		t.Setenv("PORT", "9000")
		t.Setenv("STATIC_DIR", "/srv/static")
		t.Setenv("TOKEN_DURATION", "15m")

		config, err := LoadConfig()
		require.NoError(t, err)
		require.Equal(t, "9000", config.Port)
		require.Equal(t, "/srv/static", config.StaticDir)
		require.Equal(t, 15*time.Minute, config.TokenDuration)
	})

	t.Run("rejects a key of the wrong length", func(t *testing.T) {
		t.Setenv("TOKEN_SYMMETRIC_KEY", "short")

		_, err := LoadConfig()
		require.Error(t, err)
	})

	t.Run("rejects a malformed duration", func(t *testing.T) {
		t.Setenv("TOKEN_SYMMETRIC_KEY", "12345678901234567890123456789012")
		t.Setenv("TOKEN_DURATION", "soon")

		_, err := LoadConfig()
		require.Error(t, err)
	})

	t.Run("rejects a non-numeric port", func(t *testing.T) {
		t.Setenv("TOKEN_SYMMETRIC_KEY", "12345678901234567890123456789012")
		t.Setenv("PORT", "eighty")

		_, err := LoadConfig()
		require.Error(t, err)
	})
}
