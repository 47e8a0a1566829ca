package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := Load()
		require.Equal(t, "8080", cfg.Port)
		require.Equal(t, "vision_assist", cfg.MongoDB)
		require.Equal(t, "users", cfg.UserCollection)
		require.Equal(t, "gemini", cfg.VisionBackend)
		require.False(t, cfg.MinioUseSSL)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("PORT", "9999")
		t.Setenv("VISION_BACKEND", "moondream")
		t.Setenv("MINIO_USE_SSL", "true")
		t.Setenv("API_KEY_SECRET", "sss")
		t.Setenv("MOON_DREAM_KEY", "md-key")

		cfg := Load()
		require.Equal(t, "9999", cfg.Port)
		require.Equal(t, "moondream", cfg.VisionBackend)
		require.True(t, cfg.MinioUseSSL)
		require.Equal(t, "sss", cfg.APIKeySecret)
		require.Equal(t, "md-key", cfg.MoondreamKey)
	})
}
