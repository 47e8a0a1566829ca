package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDeriveAPIKey(t *testing.T) {
	day := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

	t.Run("deterministic", func(t *testing.T) {
		a := DeriveAPIKey("alice", "secret", day)
		b := DeriveAPIKey("alice", "secret", day)
		require.Equal(t, a, b)
		require.Len(t, a, 64, "hex-encoded sha256")
	})

	t.Run("same day, different clock time", func(t *testing.T) {
		later := time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC)
		require.Equal(t,
			DeriveAPIKey("alice", "secret", day),
			DeriveAPIKey("alice", "secret", later),
		)
	})

	t.Run("varies with username, secret, and date", func(t *testing.T) {
		base := DeriveAPIKey("alice", "secret", day)
		require.NotEqual(t, base, DeriveAPIKey("bob", "secret", day))
		require.NotEqual(t, base, DeriveAPIKey("alice", "other", day))
		require.NotEqual(t, base, DeriveAPIKey("alice", "secret", day.AddDate(0, 0, 1)))
	})
}
