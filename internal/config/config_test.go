package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		ServerPort:        "8080",
		RequestTimeout:    30 * time.Second,
		APIBaseURL:        "https://api.calmate.example",
		UpstreamTimeout:   30 * time.Second,
		SessionCookieName: "calmate_session",
		SessionSecret:     "secret",
		SessionTTL:        168 * time.Hour,
		MaxUploadSize:     10 << 20,
		MaxImageEdge:      1600,
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, validConfig().Validate())

	t.Run("requires an absolute API base URL", func(t *testing.T) {
		cfg := validConfig()
		cfg.APIBaseURL = ""
		require.Error(t, cfg.Validate())

		cfg.APIBaseURL = "not-a-url"
		require.Error(t, cfg.Validate())
	})

	t.Run("requires a session secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.SessionSecret = "  "
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects non-positive limits", func(t *testing.T) {
		cfg := validConfig()
		cfg.SessionTTL = 0
		require.Error(t, cfg.Validate())

		cfg = validConfig()
		cfg.MaxUploadSize = 0
		require.Error(t, cfg.Validate())

		cfg = validConfig()
		cfg.UpstreamRetries = -1
		require.Error(t, cfg.Validate())
	})
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.calmate.example/")
	t.Setenv("SESSION_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.ServerPort)
	// Trailing slash is normalized away so path joins stay predictable.
	require.Equal(t, "https://api.calmate.example", cfg.APIBaseURL)
	require.Equal(t, "calmate_session", cfg.SessionCookieName)
	require.Equal(t, 168*time.Hour, cfg.SessionTTL)
	require.Equal(t, int64(10485760), cfg.MaxUploadSize)
	require.Equal(t, 1600, cfg.MaxImageEdge)
	require.Equal(t, 2, cfg.UpstreamRetries)
	require.Equal(t, 300, cfg.RateLimitRPM)
	require.Equal(t, 10, cfg.AuthRateLimitRPM)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("CALMATE_TEST_INT", "not-a-number")
	require.Equal(t, 7, getInt("CALMATE_TEST_INT", 7))

	t.Setenv("CALMATE_TEST_DUR", "90s")
	require.Equal(t, 90*time.Second, getDuration("CALMATE_TEST_DUR", time.Minute))

	t.Setenv("CALMATE_TEST_BOOL", "true")
	require.True(t, getBool("CALMATE_TEST_BOOL", false))

	require.Equal(t, []string{"a", "b"}, splitCSV(" a , b ,"))
	require.Nil(t, splitCSV("  "))
}
